package handlers

import (
	"net/http"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/media"
	"github.com/anonto42/odin-book/backend/internal/middleware"
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"github.com/anonto42/odin-book/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// UserHandler handles user profile requests
type UserHandler struct {
	users     repositories.UserRepository
	posts     repositories.PostRepository
	accounts  *services.AccountService
	cascade   *services.CascadeService
	uploader  media.Uploader
	maxUpload int64
	log       logrus.FieldLogger
}

// NewUserHandler creates a new UserHandler. uploader may be nil.
func NewUserHandler(users repositories.UserRepository, posts repositories.PostRepository, accounts *services.AccountService,
	cascade *services.CascadeService, uploader media.Uploader, maxUpload int64, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		users:     users,
		posts:     posts,
		accounts:  accounts,
		cascade:   cascade,
		uploader:  uploader,
		maxUpload: maxUpload,
		log:       log,
	}
}

// RegisterUserRoutes registers user profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.GET("/users/:id", h.GetUser)
	g.PUT("/users/:id", h.UpdateUser)
	g.DELETE("/users/:id", h.DeleteUser)
	g.PUT("/users/:id/changepassword", h.ChangePassword)
	g.PUT("/users/:id/newprofileimage", h.UploadProfileImage)
}

// ListUsers returns every user ordered by username
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.users.GetUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"users": users})
}

// GetUser returns a user with their posts
func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	posts, err := h.posts.GetPostsByUserID(ctx, id)
	if err != nil {
		return err
	}
	views, err := services.PostViews(ctx, h.users, posts, callerID)
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, echo.Map{"user": user, "posts": views})
}

// UpdateUser changes the caller's profile fields
func (h *UserHandler) UpdateUser(c echo.Context) error {
	callerID, err := selfParam(c)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.UpdateProfile(c.Request().Context(), callerID, req)
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, echo.Map{"message": "User details updated successfully", "user": user})
}

// ChangePassword replaces the caller's password
func (h *UserHandler) ChangePassword(c echo.Context) error {
	callerID, err := selfParam(c)
	if err != nil {
		return err
	}

	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), callerID, req); err != nil {
		return err
	}

	return ok(c, http.StatusOK, echo.Map{"message": "Password updated successfully"})
}

// UploadProfileImage stores a new profile image for the caller
func (h *UserHandler) UploadProfileImage(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, err := selfParam(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile(media.FormField)
	if err != nil {
		return apperr.InvalidField(media.FormField, "an image file is required")
	}
	url, err := media.UploadImage(ctx, h.uploader, media.KindProfile, file, h.maxUpload)
	if err != nil {
		return err
	}

	user, err := h.accounts.SetProfileImage(ctx, callerID, url)
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, echo.Map{"message": "Profile image uploaded", "user": user, "url": url})
}

// DeleteUser removes the caller's account and everything it owns
func (h *UserHandler) DeleteUser(c echo.Context) error {
	callerID, err := selfParam(c)
	if err != nil {
		return err
	}

	report, err := h.cascade.DeleteUser(c.Request().Context(), callerID)
	if err != nil {
		return err
	}
	h.log.WithFields(logrus.Fields{
		"user_id":  callerID.Hex(),
		"affected": report.Affected,
	}).Info("user deleted")

	return ok(c, http.StatusOK, echo.Map{"message": "User deleted", "report": report})
}
