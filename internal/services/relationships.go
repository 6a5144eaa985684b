package services

import (
	"context"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrSelfRequest      = apperr.InvalidField("id", "cannot send a friend request to yourself")
	ErrSelfFriend       = apperr.InvalidField("friend", "cannot befriend yourself")
	ErrAlreadyFriends   = apperr.Duplicate("already friends")
	ErrDuplicateRequest = apperr.Duplicate("friend request already sent")
	ErrRequestNotFound  = apperr.NotFound("friend request not found")
)

// RelationshipService manages friend requests and friendships. Each update is
// a single-document array operation; the pair of updates that makes a
// friendship symmetric is not transactional.
type RelationshipService struct {
	users    repositories.UserRepository
	notifier *Notifier
}

func NewRelationshipService(users repositories.UserRepository, notifier *Notifier) *RelationshipService {
	return &RelationshipService{users: users, notifier: notifier}
}

// SendRequest records a pending request from "from" on "to".
func (s *RelationshipService) SendRequest(ctx context.Context, from, to primitive.ObjectID) error {
	if from == to {
		return ErrSelfRequest
	}
	target, err := s.users.GetUserByID(ctx, to)
	if err != nil {
		return err
	}
	if target.IsFriend(from) {
		return ErrAlreadyFriends
	}
	if target.HasRequestFrom(from) {
		return ErrDuplicateRequest
	}
	if err := s.users.AddRequest(ctx, to, from); err != nil {
		return err
	}
	s.notifier.Notify(models.NotificationFriendRequest, from, to, from, "user", "sent you a friend request")
	return nil
}

// RemoveRequest declines or withdraws the pending request from requesterID on userID.
func (s *RelationshipService) RemoveRequest(ctx context.Context, userID, requesterID primitive.ObjectID) error {
	removed, err := s.users.RemoveRequest(ctx, userID, requesterID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrRequestNotFound
	}
	return nil
}

// AcceptOrToggleFriend makes userID and otherID friends, or unfriends them if
// they already are. Pending requests between the two are cleared either way
// a friendship is formed.
func (s *RelationshipService) AcceptOrToggleFriend(ctx context.Context, userID, otherID primitive.ObjectID) (*models.FriendToggle, error) {
	if userID == otherID {
		return nil, ErrSelfFriend
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetUserByID(ctx, otherID); err != nil {
		return nil, err
	}

	action := models.ToggleAdded
	if user.IsFriend(otherID) {
		action = models.ToggleRemoved
		if err := s.users.RemoveFriend(ctx, userID, otherID); err != nil {
			return nil, err
		}
		if err := s.users.RemoveFriend(ctx, otherID, userID); err != nil {
			return nil, err
		}
	} else {
		if err := s.users.AddFriend(ctx, userID, otherID); err != nil {
			return nil, err
		}
		if err := s.users.AddFriend(ctx, otherID, userID); err != nil {
			return nil, err
		}
	}

	updated, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if action == models.ToggleAdded {
		s.notifier.Notify(models.NotificationFriendAccepted, userID, otherID, userID, "user", "accepted your friend request")
	}
	return &models.FriendToggle{Action: action, Friends: updated.Friends}, nil
}

// ListNonFriends returns every user other than userID and its friends, by username.
func (s *RelationshipService) ListNonFriends(ctx context.Context, userID primitive.ObjectID) ([]models.UserCompact, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.users.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.UserCompact{}
	for i := range all {
		if all[i].ID == userID || user.IsFriend(all[i].ID) {
			continue
		}
		out = append(out, all[i].ToCompact())
	}
	return out, nil
}

func (s *RelationshipService) ListFriends(ctx context.Context, userID primitive.ObjectID) ([]models.UserCompact, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.compacts(ctx, user.Friends)
}

// ListRequests resolves the users with a pending request on userID.
func (s *RelationshipService) ListRequests(ctx context.Context, userID primitive.ObjectID) ([]models.UserCompact, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.compacts(ctx, user.Requests)
}

func (s *RelationshipService) compacts(ctx context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error) {
	out := []models.UserCompact{}
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		out = append(out, users[i].ToCompact())
	}
	return out, nil
}
