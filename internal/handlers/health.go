package handlers

import (
	"net/http"

	"github.com/anonto42/odin-book/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

func HealthCheck(e echo.Context) error {
	return e.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "odin-book-api",
	})
}

// IndexHandler reports how many users, posts and comments exist.
type IndexHandler struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
}

func NewIndexHandler(users repositories.UserRepository, posts repositories.PostRepository, comments repositories.CommentRepository) *IndexHandler {
	return &IndexHandler{users: users, posts: posts, comments: comments}
}

func (h *IndexHandler) Counts(c echo.Context) error {
	ctx := c.Request().Context()
	numUsers, err := h.users.CountUsers(ctx)
	if err != nil {
		return err
	}
	numPosts, err := h.posts.CountPosts(ctx)
	if err != nil {
		return err
	}
	numComments, err := h.comments.CountComments(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"numberOfUsers":    numUsers,
		"numberOfPosts":    numPosts,
		"numberOfComments": numComments,
	})
}
