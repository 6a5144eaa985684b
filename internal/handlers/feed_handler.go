package handlers

import (
	"net/http"

	"github.com/anonto42/odin-book/backend/internal/middleware"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"github.com/anonto42/odin-book/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feed  *services.FeedService
	users repositories.UserRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService, users repositories.UserRepository) *FeedHandler {
	return &FeedHandler{feed: feed, users: users}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/users/:id/feed", h.GetFeed)
}

// GetFeed returns the posts of :id and their friends, newest first. Without
// a limit query parameter the whole feed is returned.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	feed, err := h.feed.GetFeed(ctx, id)
	if err != nil {
		return err
	}

	params := pageParams{page: 1}
	if c.QueryParam("limit") != "" {
		params = parsePage(c, 10, 100)
	}
	start, end := params.bounds(len(feed.Posts))

	posts, err := services.PostViews(ctx, h.users, feed.Posts[start:end], callerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"user":  feed.User.ToCompact(),
			"posts": posts,
		},
		"meta": params.meta(int64(len(feed.Posts))),
	})
}
