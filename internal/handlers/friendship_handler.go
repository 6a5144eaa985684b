package handlers

import (
	"net/http"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/middleware"
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendshipHandler handles friend requests and friend lists
type FriendshipHandler struct {
	relations *services.RelationshipService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(relations *services.RelationshipService) *FriendshipHandler {
	return &FriendshipHandler{relations: relations}
}

// RegisterFriendshipRoutes registers friendship routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.GET("/users/:id/userslist", h.ListNonFriends)
	g.GET("/users/:id/friends", h.ListFriends)
	g.GET("/users/:id/requests", h.ListRequests)
	g.POST("/users/:id/requests", h.SendRequest)
	g.DELETE("/users/:id/requests/:requesterid", h.RemoveRequest)
	g.PUT("/users/:id/addfriend", h.AddFriend)
}

// ListNonFriends returns users that :id could still befriend
func (h *FriendshipHandler) ListNonFriends(c echo.Context) error {
	id, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	users, err := h.relations.ListNonFriends(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"users": users})
}

// ListFriends returns the friends of :id
func (h *FriendshipHandler) ListFriends(c echo.Context) error {
	id, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	friends, err := h.relations.ListFriends(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"friends": friends})
}

// ListRequests returns the pending requests on the caller
func (h *FriendshipHandler) ListRequests(c echo.Context) error {
	callerID, err := selfParam(c)
	if err != nil {
		return err
	}
	requests, err := h.relations.ListRequests(c.Request().Context(), callerID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"requests": requests})
}

// SendRequest sends a friend request from the caller to :id
func (h *FriendshipHandler) SendRequest(c echo.Context) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	targetID, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.relations.SendRequest(c.Request().Context(), callerID, targetID); err != nil {
		return err
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Friend request sent"})
}

// RemoveRequest declines a pending request on the caller
func (h *FriendshipHandler) RemoveRequest(c echo.Context) error {
	callerID, err := selfParam(c)
	if err != nil {
		return err
	}
	requesterID, err := objectIDParam(c, "requesterid", "friend request")
	if err != nil {
		return err
	}
	if err := h.relations.RemoveRequest(c.Request().Context(), callerID, requesterID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Friend request removed"})
}

// AddFriend accepts a request from, or toggles friendship with, the body's friend
func (h *FriendshipHandler) AddFriend(c echo.Context) error {
	callerID, err := selfParam(c)
	if err != nil {
		return err
	}

	var req models.FriendRequestBody
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	friendID, err := primitive.ObjectIDFromHex(req.Friend)
	if err != nil {
		return apperr.InvalidField("friend", "must be a valid id")
	}

	result, err := h.relations.AcceptOrToggleFriend(c.Request().Context(), callerID, friendID)
	if err != nil {
		return err
	}

	message := "Friend added"
	if result.Action == models.ToggleRemoved {
		message = "Friend removed"
	}
	return ok(c, http.StatusOK, echo.Map{
		"message": message,
		"action":  result.Action,
		"friends": result.Friends,
	})
}
