// Package memory implements the repository interfaces over process memory.
// It backs STORE_DRIVER=memory for local runs and the test suites.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection behind one lock.
type Store struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]models.User
	posts         map[primitive.ObjectID]models.Post
	comments      map[primitive.ObjectID]models.Comment
	notifications map[uint]models.Notification
	nextNotifID   uint
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[primitive.ObjectID]models.User),
		posts:         make(map[primitive.ObjectID]models.Post),
		comments:      make(map[primitive.ObjectID]models.Comment),
		notifications: make(map[uint]models.Notification),
		now:           time.Now,
	}
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{s: s} }
func (s *Store) Posts() *PostRepository                 { return &PostRepository{s: s} }
func (s *Store) Comments() *CommentRepository           { return &CommentRepository{s: s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s: s} }

var (
	_ repositories.UserRepository         = (*UserRepository)(nil)
	_ repositories.PostRepository         = (*PostRepository)(nil)
	_ repositories.CommentRepository      = (*CommentRepository)(nil)
	_ repositories.NotificationRepository = (*NotificationRepository)(nil)
)

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	if models.ContainsID(ids, id) {
		return ids
	}
	return append(cloneIDs(ids), id)
}

func cloneUser(u models.User) models.User {
	u.Friends = cloneIDs(u.Friends)
	u.Requests = cloneIDs(u.Requests)
	return u
}

func clonePost(p models.Post) models.Post {
	p.Likes = cloneIDs(p.Likes)
	return p
}

func cloneComment(c models.Comment) models.Comment {
	c.Likes = cloneIDs(c.Likes)
	return c
}

// sortPosts orders newest first, then by descending id, the same order the
// Mongo repository asks for.
func sortPosts(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Timestamp.Equal(posts[j].Timestamp) {
			return posts[i].Timestamp.After(posts[j].Timestamp)
		}
		return posts[i].ID.Hex() > posts[j].ID.Hex()
	})
}
