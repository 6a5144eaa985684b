package memory

import (
	"context"

	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostRepository implements repositories.PostRepository.
type PostRepository struct{ s *Store }

func (r *PostRepository) CreatePost(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	post.ID = primitive.NewObjectID()
	if post.Timestamp.IsZero() {
		post.Timestamp = r.s.now()
	}
	post.UpdatedAt = post.Timestamp
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	r.s.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *PostRepository) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (r *PostRepository) GetPostsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return r.GetPostsByUserIDs(ctx, []primitive.ObjectID{userID})
}

func (r *PostRepository) GetPostsByUserIDs(_ context.Context, userIDs []primitive.ObjectID) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	posts := []models.Post{}
	for _, p := range r.s.posts {
		if models.ContainsID(userIDs, p.User) {
			posts = append(posts, clonePost(p))
		}
	}
	sortPosts(posts)
	return posts, nil
}

func (r *PostRepository) UpdatePost(_ context.Context, id primitive.ObjectID, text string) error {
	return r.mutate(id, func(p *models.Post) {
		p.Text = text
		p.UpdatedAt = r.s.now()
	})
}

func (r *PostRepository) SetPostImage(_ context.Context, id primitive.ObjectID, url string) error {
	return r.mutate(id, func(p *models.Post) {
		p.PostImage = url
		p.UpdatedAt = r.s.now()
	})
}

func (r *PostRepository) DeletePost(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *PostRepository) DeletePostsByUserID(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.posts {
		if p.User == userID {
			delete(r.s.posts, id)
			n++
		}
	}
	return n, nil
}

func (r *PostRepository) GetLikes(_ context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	return cloneIDs(p.Likes), nil
}

func (r *PostRepository) AddLike(_ context.Context, id, userID primitive.ObjectID) error {
	return r.mutate(id, func(p *models.Post) { p.Likes = addID(p.Likes, userID) })
}

func (r *PostRepository) RemoveLike(_ context.Context, id, userID primitive.ObjectID) error {
	return r.mutate(id, func(p *models.Post) { p.Likes = models.RemoveID(p.Likes, userID) })
}

func (r *PostRepository) RemoveLikesByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.posts {
		if models.ContainsID(p.Likes, userID) {
			p.Likes = models.RemoveID(p.Likes, userID)
			r.s.posts[id] = p
			n++
		}
	}
	return n, nil
}

func (r *PostRepository) CountPosts(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.posts)), nil
}

func (r *PostRepository) mutate(id primitive.ObjectID, fn func(p *models.Post)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	p = clonePost(p)
	fn(&p)
	r.s.posts[id] = p
	return nil
}
