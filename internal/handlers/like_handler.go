package handlers

import (
	"net/http"

	"github.com/anonto42/odin-book/backend/internal/middleware"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"github.com/anonto42/odin-book/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like toggles on posts and comments
type LikeHandler struct {
	likes *services.LikeService
	users repositories.UserRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes *services.LikeService, users repositories.UserRepository) *LikeHandler {
	return &LikeHandler{likes: likes, users: users}
}

// RegisterLikeRoutes registers like routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PUT("/posts/:id/like", h.TogglePostLike)
	g.GET("/posts/:id/likes", h.GetPostLikes)
	g.PUT("/posts/:id/comments/:commentid/like", h.ToggleCommentLike)
}

// TogglePostLike likes or unlikes a post for the caller
func (h *LikeHandler) TogglePostLike(c echo.Context) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}

	result, err := h.likes.TogglePostLike(c.Request().Context(), postID, callerID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"action": result.Action, "likes": result.Likes})
}

// GetPostLikes returns the users who liked a post
func (h *LikeHandler) GetPostLikes(c echo.Context) error {
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}

	users, err := h.likes.PostLikers(c.Request().Context(), h.users, postID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"users": users, "count": len(users)})
}

// ToggleCommentLike likes or unlikes a comment for the caller
func (h *LikeHandler) ToggleCommentLike(c echo.Context) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	postID, commentID, err := commentParams(c)
	if err != nil {
		return err
	}

	result, err := h.likes.ToggleCommentLike(c.Request().Context(), postID, commentID, callerID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"action": result.Action, "likes": result.Likes})
}
