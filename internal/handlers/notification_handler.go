package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/middleware"
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor *models.UserCompact `json:"actor,omitempty"`
}

func (h *NotificationHandler) enrichNotifications(c echo.Context, notifications []models.Notification) ([]EnrichedNotification, error) {
	seen := make(map[primitive.ObjectID]bool)
	var actorIDs []primitive.ObjectID
	for _, n := range notifications {
		if id, err := primitive.ObjectIDFromHex(n.ActorID); err == nil && !seen[id] {
			seen[id] = true
			actorIDs = append(actorIDs, id)
		}
	}

	actors := make(map[string]models.UserCompact, len(actorIDs))
	if len(actorIDs) > 0 {
		users, err := h.userRepository.GetUsersByIDs(c.Request().Context(), actorIDs)
		if err != nil {
			return nil, err
		}
		for i := range users {
			actors[users[i].ID.Hex()] = users[i].ToCompact()
		}
	}

	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if actor, ok := actors[n.ActorID]; ok {
			enriched[i].Actor = &actor
		}
	}
	return enriched, nil
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	params := parsePage(c, 20, 50)
	notifications, total, err := h.notificationRepository.GetByRecipientID(currentUserID.Hex(), params.page, params.limit)
	if err != nil {
		return err
	}

	enriched, err := h.enrichNotifications(c, notifications)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": enriched,
		},
		"meta": params.meta(total),
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(currentUserID.Hex())
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return apperr.InvalidField("id", "invalid notification id")
	}

	if err := h.notificationRepository.MarkAsRead(uint(notifID), currentUserID.Hex()); err != nil {
		return err
	}

	return ok(c, http.StatusOK, echo.Map{"success": true})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAllAsRead(currentUserID.Hex()); err != nil {
		return err
	}

	return ok(c, http.StatusOK, echo.Map{"success": true})
}
