package services

import (
	"context"

	"github.com/anonto42/odin-book/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StepDeletePostComments     = "delete comments on post"
	StepDeletePost             = "delete post"
	StepDeleteUserPostComments = "delete comments on user's posts"
	StepDeleteUserPosts        = "delete user's posts"
	StepDeleteAuthoredComments = "delete comments authored by user"
	StepRemoveLikes            = "remove user from likes"
	StepRemoveRelations        = "remove user from friends and requests"
	StepDeleteNotifications    = "delete notifications"
	StepDeleteUser             = "delete user"
)

// CascadeService deletes an entity together with everything that depends on it.
type CascadeService struct {
	users         repositories.UserRepository
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	notifications repositories.NotificationRepository
}

// NewCascadeService builds the service. notifications may be nil.
func NewCascadeService(users repositories.UserRepository, posts repositories.PostRepository,
	comments repositories.CommentRepository, notifications repositories.NotificationRepository) *CascadeService {
	return &CascadeService{users: users, posts: posts, comments: comments, notifications: notifications}
}

func (s *CascadeService) DeletePost(ctx context.Context, postID primitive.ObjectID) (*Report, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	return NewUnitOfWork("delete post "+postID.Hex()).
		Step(StepDeletePostComments, func(ctx context.Context) (int64, error) {
			return s.comments.DeleteCommentsByPostIDs(ctx, []primitive.ObjectID{postID})
		}).
		Step(StepDeletePost, func(ctx context.Context) (int64, error) {
			return 1, s.posts.DeletePost(ctx, postID)
		}).
		Run(ctx)
}

func (s *CascadeService) DeleteUser(ctx context.Context, userID primitive.ObjectID) (*Report, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	uow := NewUnitOfWork("delete user "+userID.Hex()).
		Step(StepDeleteUserPostComments, func(ctx context.Context) (int64, error) {
			posts, err := s.posts.GetPostsByUserID(ctx, userID)
			if err != nil || len(posts) == 0 {
				return 0, err
			}
			ids := make([]primitive.ObjectID, len(posts))
			for i, p := range posts {
				ids[i] = p.ID
			}
			return s.comments.DeleteCommentsByPostIDs(ctx, ids)
		}).
		Step(StepDeleteUserPosts, func(ctx context.Context) (int64, error) {
			return s.posts.DeletePostsByUserID(ctx, userID)
		}).
		Step(StepDeleteAuthoredComments, func(ctx context.Context) (int64, error) {
			return s.comments.DeleteCommentsByUserID(ctx, userID)
		}).
		Step(StepRemoveLikes, func(ctx context.Context) (int64, error) {
			n, err := s.posts.RemoveLikesByUser(ctx, userID)
			if err != nil {
				return n, err
			}
			m, err := s.comments.RemoveLikesByUser(ctx, userID)
			return n + m, err
		}).
		Step(StepRemoveRelations, func(ctx context.Context) (int64, error) {
			return 0, s.users.RemoveFromRelations(ctx, userID)
		})
	if s.notifications != nil {
		uow.Step(StepDeleteNotifications, func(context.Context) (int64, error) {
			return s.notifications.DeleteByUserID(userID.Hex())
		})
	}
	return uow.Step(StepDeleteUser, func(ctx context.Context) (int64, error) {
		return 1, s.users.DeleteUser(ctx, userID)
	}).Run(ctx)
}
