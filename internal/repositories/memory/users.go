package memory

import (
	"context"
	"sort"

	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository implements repositories.UserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return repositories.ErrUsernameTaken
		}
	}
	user.ID = primitive.NewObjectID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now()
	}
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	if user.Requests == nil {
		user.Requests = []primitive.ObjectID{}
	}
	r.s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *UserRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *UserRepository) GetUsers(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, cloneUser(u))
	}
	sortUsers(users)
	return users, nil
}

func (r *UserRepository) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := []models.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok && !containsUser(users, id) {
			users = append(users, cloneUser(u))
		}
	}
	sortUsers(users)
	return users, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.UpdateUserRequest) error {
	return r.mutate(id, func(u *models.User) error {
		if update.Username != "" && update.Username != u.Username {
			for _, other := range r.s.users {
				if other.Username == update.Username {
					return repositories.ErrUsernameTaken
				}
			}
			u.Username = update.Username
		}
		if update.FirstName != "" {
			u.FirstName = update.FirstName
		}
		if update.LastName != "" {
			u.LastName = update.LastName
		}
		if update.Email != "" {
			u.Email = update.Email
		}
		return nil
	})
}

func (r *UserRepository) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return r.mutate(id, func(u *models.User) error {
		u.Password = hash
		return nil
	})
}

func (r *UserRepository) UpdateProfileImage(_ context.Context, id primitive.ObjectID, url string) error {
	return r.mutate(id, func(u *models.User) error {
		u.ProfileImage = url
		return nil
	})
}

func (r *UserRepository) AddRequest(_ context.Context, userID, requesterID primitive.ObjectID) error {
	return r.mutate(userID, func(u *models.User) error {
		u.Requests = addID(u.Requests, requesterID)
		return nil
	})
}

func (r *UserRepository) RemoveRequest(_ context.Context, userID, requesterID primitive.ObjectID) (bool, error) {
	var removed bool
	err := r.mutate(userID, func(u *models.User) error {
		removed = models.ContainsID(u.Requests, requesterID)
		u.Requests = models.RemoveID(u.Requests, requesterID)
		return nil
	})
	return removed, err
}

func (r *UserRepository) AddFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	return r.mutate(userID, func(u *models.User) error {
		u.Friends = addID(u.Friends, friendID)
		u.Requests = models.RemoveID(u.Requests, friendID)
		return nil
	})
}

func (r *UserRepository) RemoveFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	return r.mutate(userID, func(u *models.User) error {
		u.Friends = models.RemoveID(u.Friends, friendID)
		return nil
	})
}

func (r *UserRepository) RemoveFromRelations(_ context.Context, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		u.Friends = models.RemoveID(u.Friends, userID)
		u.Requests = models.RemoveID(u.Requests, userID)
		r.s.users[id] = u
	}
	return nil
}

func (r *UserRepository) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepository) CountUsers(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

func (r *UserRepository) mutate(id primitive.ObjectID, fn func(u *models.User) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u = cloneUser(u)
	if err := fn(&u); err != nil {
		return err
	}
	r.s.users[id] = u
	return nil
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
}

func containsUser(users []models.User, id primitive.ObjectID) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}
