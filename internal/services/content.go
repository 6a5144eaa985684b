package services

import (
	"context"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotPostOwner    = apperr.Forbidden("you can only modify your own posts")
	ErrNotCommentOwner = apperr.Forbidden("you can only modify your own comments")
)

// ContentService creates and edits posts and comments, enforcing ownership.
type ContentService struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	cascade  *CascadeService
	notifier *Notifier
}

func NewContentService(users repositories.UserRepository, posts repositories.PostRepository,
	comments repositories.CommentRepository, cascade *CascadeService, notifier *Notifier) *ContentService {
	return &ContentService{users: users, posts: posts, comments: comments, cascade: cascade, notifier: notifier}
}

func (s *ContentService) CreatePost(ctx context.Context, authorID primitive.ObjectID, req models.CreatePostRequest) (*models.Post, error) {
	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		return nil, err
	}
	post := &models.Post{
		User:      authorID,
		Text:      req.Text,
		PostImage: req.PostImage,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// OwnedPost loads postID and checks that callerID owns it.
func (s *ContentService) OwnedPost(ctx context.Context, postID, callerID primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.User != callerID {
		return nil, ErrNotPostOwner
	}
	return post, nil
}

func (s *ContentService) UpdatePost(ctx context.Context, postID, callerID primitive.ObjectID, text string) (*models.Post, error) {
	if _, err := s.OwnedPost(ctx, postID, callerID); err != nil {
		return nil, err
	}
	if err := s.posts.UpdatePost(ctx, postID, text); err != nil {
		return nil, err
	}
	return s.posts.GetPostByID(ctx, postID)
}

func (s *ContentService) SetPostImage(ctx context.Context, postID, callerID primitive.ObjectID, url string) (*models.Post, error) {
	if _, err := s.OwnedPost(ctx, postID, callerID); err != nil {
		return nil, err
	}
	if err := s.posts.SetPostImage(ctx, postID, url); err != nil {
		return nil, err
	}
	return s.posts.GetPostByID(ctx, postID)
}

// DeletePost removes an owned post and its comments.
func (s *ContentService) DeletePost(ctx context.Context, postID, callerID primitive.ObjectID) (*Report, error) {
	if _, err := s.OwnedPost(ctx, postID, callerID); err != nil {
		return nil, err
	}
	return s.cascade.DeletePost(ctx, postID)
}

func (s *ContentService) CreateComment(ctx context.Context, postID, authorID primitive.ObjectID, req models.CreateCommentRequest) (*models.Comment, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{
		User:         authorID,
		Post:         postID,
		Text:         req.Text,
		CommentImage: req.CommentImage,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.notifier.Notify(models.NotificationComment, authorID, post.User, post.ID, "post", "commented on your post")
	return comment, nil
}

// ListComments returns the comments of an existing post, newest first.
func (s *ContentService) ListComments(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.GetCommentsByPostID(ctx, postID)
}

// GetComment loads commentID, which must belong to postID.
func (s *ContentService) GetComment(ctx context.Context, postID, commentID primitive.ObjectID) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Post != postID {
		return nil, repositories.ErrCommentNotFound
	}
	return comment, nil
}

func (s *ContentService) ownedComment(ctx context.Context, postID, commentID, callerID primitive.ObjectID) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.User != callerID {
		return nil, ErrNotCommentOwner
	}
	return comment, nil
}

func (s *ContentService) UpdateComment(ctx context.Context, postID, commentID, callerID primitive.ObjectID, text string) (*models.Comment, error) {
	if _, err := s.ownedComment(ctx, postID, commentID, callerID); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateComment(ctx, commentID, text); err != nil {
		return nil, err
	}
	return s.comments.GetCommentByID(ctx, commentID)
}

func (s *ContentService) SetCommentImage(ctx context.Context, postID, commentID, callerID primitive.ObjectID, url string) (*models.Comment, error) {
	if _, err := s.ownedComment(ctx, postID, commentID, callerID); err != nil {
		return nil, err
	}
	if err := s.comments.SetCommentImage(ctx, commentID, url); err != nil {
		return nil, err
	}
	return s.comments.GetCommentByID(ctx, commentID)
}

func (s *ContentService) DeleteComment(ctx context.Context, postID, commentID, callerID primitive.ObjectID) error {
	if _, err := s.ownedComment(ctx, postID, commentID, callerID); err != nil {
		return err
	}
	return s.comments.DeleteComment(ctx, commentID)
}
