package memory

import (
	"context"
	"sort"

	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentRepository implements repositories.CommentRepository.
type CommentRepository struct{ s *Store }

func (r *CommentRepository) CreateComment(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	if comment.Timestamp.IsZero() {
		comment.Timestamp = r.s.now()
	}
	comment.UpdatedAt = comment.Timestamp
	if comment.Likes == nil {
		comment.Likes = []primitive.ObjectID{}
	}
	r.s.comments[comment.ID] = cloneComment(*comment)
	return nil
}

func (r *CommentRepository) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	c = cloneComment(c)
	return &c, nil
}

func (r *CommentRepository) GetCommentsByPostID(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comments := []models.Comment{}
	for _, c := range r.s.comments {
		if c.Post == postID {
			comments = append(comments, cloneComment(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].Timestamp.After(comments[j].Timestamp)
	})
	return comments, nil
}

func (r *CommentRepository) UpdateComment(_ context.Context, id primitive.ObjectID, text string) error {
	return r.mutate(id, func(c *models.Comment) {
		c.Text = text
		c.UpdatedAt = r.s.now()
	})
}

func (r *CommentRepository) SetCommentImage(_ context.Context, id primitive.ObjectID, url string) error {
	return r.mutate(id, func(c *models.Comment) {
		c.CommentImage = url
		c.UpdatedAt = r.s.now()
	})
}

func (r *CommentRepository) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return repositories.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *CommentRepository) DeleteCommentsByPostIDs(_ context.Context, postIDs []primitive.ObjectID) (int64, error) {
	return r.deleteWhere(func(c models.Comment) bool { return models.ContainsID(postIDs, c.Post) }), nil
}

func (r *CommentRepository) DeleteCommentsByUserID(_ context.Context, userID primitive.ObjectID) (int64, error) {
	return r.deleteWhere(func(c models.Comment) bool { return c.User == userID }), nil
}

func (r *CommentRepository) deleteWhere(match func(models.Comment) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.comments {
		if match(c) {
			delete(r.s.comments, id)
			n++
		}
	}
	return n
}

func (r *CommentRepository) GetLikes(_ context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	return cloneIDs(c.Likes), nil
}

func (r *CommentRepository) AddLike(_ context.Context, id, userID primitive.ObjectID) error {
	return r.mutate(id, func(c *models.Comment) { c.Likes = addID(c.Likes, userID) })
}

func (r *CommentRepository) RemoveLike(_ context.Context, id, userID primitive.ObjectID) error {
	return r.mutate(id, func(c *models.Comment) { c.Likes = models.RemoveID(c.Likes, userID) })
}

func (r *CommentRepository) RemoveLikesByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.comments {
		if models.ContainsID(c.Likes, userID) {
			c.Likes = models.RemoveID(c.Likes, userID)
			r.s.comments[id] = c
			n++
		}
	}
	return n, nil
}

func (r *CommentRepository) CountComments(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.comments)), nil
}

func (r *CommentRepository) mutate(id primitive.ObjectID, fn func(c *models.Comment)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return repositories.ErrCommentNotFound
	}
	c = cloneComment(c)
	fn(&c)
	r.s.comments[id] = c
	return nil
}
