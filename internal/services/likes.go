package services

import (
	"context"

	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToggleLike adds userID to the likes of the entity, or removes it if present.
func ToggleLike(ctx context.Context, target repositories.Likeable, id, userID primitive.ObjectID) (*models.LikeToggle, error) {
	likes, err := target.GetLikes(ctx, id)
	if err != nil {
		return nil, err
	}
	action := models.ToggleAdded
	if models.ContainsID(likes, userID) {
		action = models.ToggleRemoved
		err = target.RemoveLike(ctx, id, userID)
	} else {
		err = target.AddLike(ctx, id, userID)
	}
	if err != nil {
		return nil, err
	}
	likes, err = target.GetLikes(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.LikeToggle{Action: action, Likes: likes}, nil
}

type LikeService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	notifier *Notifier
}

func NewLikeService(posts repositories.PostRepository, comments repositories.CommentRepository, notifier *Notifier) *LikeService {
	return &LikeService{posts: posts, comments: comments, notifier: notifier}
}

func (s *LikeService) TogglePostLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.LikeToggle, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	result, err := ToggleLike(ctx, s.posts, postID, userID)
	if err != nil {
		return nil, err
	}
	if result.Action == models.ToggleAdded {
		s.notifier.Notify(models.NotificationPostLike, userID, post.User, post.ID, "post", "liked your post")
	}
	return result, nil
}

// ToggleCommentLike toggles a like on a comment that must belong to postID.
func (s *LikeService) ToggleCommentLike(ctx context.Context, postID, commentID, userID primitive.ObjectID) (*models.LikeToggle, error) {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Post != postID {
		return nil, repositories.ErrCommentNotFound
	}
	result, err := ToggleLike(ctx, s.comments, commentID, userID)
	if err != nil {
		return nil, err
	}
	if result.Action == models.ToggleAdded {
		s.notifier.Notify(models.NotificationCommentLike, userID, comment.User, comment.ID, "comment", "liked your comment")
	}
	return result, nil
}

// PostLikers resolves the users who liked postID.
func (s *LikeService) PostLikers(ctx context.Context, users repositories.UserRepository, postID primitive.ObjectID) ([]models.UserCompact, error) {
	likes, err := s.posts.GetLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := []models.UserCompact{}
	if len(likes) == 0 {
		return out, nil
	}
	found, err := users.GetUsersByIDs(ctx, likes)
	if err != nil {
		return nil, err
	}
	for i := range found {
		out = append(out, found[i].ToCompact())
	}
	return out, nil
}
