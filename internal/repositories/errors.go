package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrUserNotFound         = apperr.NotFound("user not found")
	ErrPostNotFound         = apperr.NotFound("post not found")
	ErrCommentNotFound      = apperr.NotFound("comment not found")
	ErrNotificationNotFound = apperr.NotFound("notification not found")
	ErrUsernameTaken        = apperr.Duplicate("username already in use")
)

// Likeable is implemented by every repository whose documents carry a likes array.
type Likeable interface {
	GetLikes(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error)
	AddLike(ctx context.Context, id, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error
}

// notFound maps mongo.ErrNoDocuments to the given domain error.
func notFound(err error, domainErr error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domainErr
	}
	return err
}

func emptyIfNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
