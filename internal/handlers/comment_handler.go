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
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	content   *services.ContentService
	users     repositories.UserRepository
	uploader  media.Uploader
	maxUpload int64
}

// NewCommentHandler creates a new CommentHandler. uploader may be nil.
func NewCommentHandler(content *services.ContentService, users repositories.UserRepository, uploader media.Uploader, maxUpload int64) *CommentHandler {
	return &CommentHandler{content: content, users: users, uploader: uploader, maxUpload: maxUpload}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.GetComments)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments/:commentid", h.GetComment)
	g.PUT("/posts/:id/comments/:commentid", h.UpdateComment)
	g.DELETE("/posts/:id/comments/:commentid", h.DeleteComment)
	g.PUT("/posts/:id/comments/:commentid/image", h.UploadCommentImage)
}

func commentParams(c echo.Context) (postID, commentID primitive.ObjectID, err error) {
	if postID, err = objectIDParam(c, "id", "post"); err != nil {
		return
	}
	commentID, err = objectIDParam(c, "commentid", "comment")
	return
}

// GetComments returns the comments of a post, newest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	ctx := c.Request().Context()
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}

	comments, err := h.content.ListComments(ctx, postID)
	if err != nil {
		return err
	}
	views, err := services.CommentViews(ctx, h.users, comments)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"comments": views})
}

// CreateComment adds a comment by the caller to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "post")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.content.CreateComment(c.Request().Context(), postID, callerID, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Comment created", "comment": comment})
}

// GetComment returns one comment of a post
func (h *CommentHandler) GetComment(c echo.Context) error {
	ctx := c.Request().Context()
	postID, commentID, err := commentParams(c)
	if err != nil {
		return err
	}

	comment, err := h.content.GetComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	views, err := services.CommentViews(ctx, h.users, []models.Comment{*comment})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"comment": views[0]})
}

// UpdateComment changes the text of an owned comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	postID, commentID, err := commentParams(c)
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.content.UpdateComment(c.Request().Context(), postID, commentID, callerID, req.Text)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Comment updated", "comment": comment})
}

// DeleteComment deletes an owned comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	postID, commentID, err := commentParams(c)
	if err != nil {
		return err
	}

	if err := h.content.DeleteComment(c.Request().Context(), postID, commentID, callerID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Comment deleted"})
}

// UploadCommentImage attaches an uploaded image to an owned comment
func (h *CommentHandler) UploadCommentImage(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	postID, commentID, err := commentParams(c)
	if err != nil {
		return err
	}
	comment, err := h.content.GetComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if comment.User != callerID {
		return services.ErrNotCommentOwner
	}

	file, err := c.FormFile(media.FormField)
	if err != nil {
		return apperr.InvalidField(media.FormField, "an image file is required")
	}
	url, err := media.UploadImage(ctx, h.uploader, media.KindComment, file, h.maxUpload)
	if err != nil {
		return err
	}

	updated, err := h.content.SetCommentImage(ctx, postID, commentID, callerID, url)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Comment image uploaded", "comment": updated, "url": url})
}
