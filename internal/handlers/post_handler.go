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

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	content   *services.ContentService
	posts     repositories.PostRepository
	users     repositories.UserRepository
	uploader  media.Uploader
	maxUpload int64
	log       logrus.FieldLogger
}

// NewPostHandler creates a new PostHandler. uploader may be nil.
func NewPostHandler(content *services.ContentService, posts repositories.PostRepository, users repositories.UserRepository,
	uploader media.Uploader, maxUpload int64, log logrus.FieldLogger) *PostHandler {
	return &PostHandler{
		content:   content,
		posts:     posts,
		users:     users,
		uploader:  uploader,
		maxUpload: maxUpload,
		log:       log,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/users/:id/posts", h.GetUserPosts)
	g.POST("/users/:id/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.PUT("/posts/:id/image", h.UploadPostImage)
}

// GetUserPosts returns the posts of :id, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := objectIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	if _, err := h.users.GetUserByID(ctx, id); err != nil {
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
	return ok(c, http.StatusOK, echo.Map{"posts": views})
}

// CreatePost creates a new post owned by the caller
func (h *PostHandler) CreatePost(c echo.Context) error {
	callerID, err := selfParam(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.content.CreatePost(c.Request().Context(), callerID, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Post created", "post": post})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	post, err := h.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	views, err := services.PostViews(ctx, h.users, []models.Post{*post}, callerID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"post": views[0]})
}

// UpdatePost updates the text of an owned post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.content.UpdatePost(c.Request().Context(), postID, callerID, req.Text)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Post updated", "post": post})
}

// DeletePost deletes an owned post and its comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}

	report, err := h.content.DeletePost(c.Request().Context(), postID, callerID)
	if err != nil {
		return err
	}
	h.log.WithFields(logrus.Fields{
		"post_id":  postID.Hex(),
		"affected": report.Affected,
	}).Info("post deleted")

	return ok(c, http.StatusOK, echo.Map{"message": "Post deleted", "report": report})
}

// UploadPostImage attaches an uploaded image to an owned post
func (h *PostHandler) UploadPostImage(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}
	if _, err := h.content.OwnedPost(ctx, postID, callerID); err != nil {
		return err
	}

	file, err := c.FormFile(media.FormField)
	if err != nil {
		return apperr.InvalidField(media.FormField, "an image file is required")
	}
	url, err := media.UploadImage(ctx, h.uploader, media.KindPost, file, h.maxUpload)
	if err != nil {
		return err
	}

	post, err := h.content.SetPostImage(ctx, postID, callerID, url)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Post image uploaded", "post": post, "url": url})
}
