package services

import (
	"context"
	"errors"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/auth"
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidCredentials = apperr.Auth("invalid username or password")
	ErrWrongPassword      = apperr.InvalidField("current_password", "current password is incorrect")
	ErrNothingToUpdate    = apperr.InvalidField("body", "no fields to update")
)

// AccountService handles signup, login and profile changes. Request shapes
// are expected to be validated by the caller.
type AccountService struct {
	users               repositories.UserRepository
	defaultProfileImage string
}

func NewAccountService(users repositories.UserRepository, defaultProfileImage string) *AccountService {
	return &AccountService{users: users, defaultProfileImage: defaultProfileImage}
}

func (s *AccountService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := s.ensureUsernameFree(ctx, req.Username, primitive.NilObjectID); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	image := req.ProfileImage
	if image == "" {
		image = s.defaultProfileImage
	}
	user := &models.User{
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     hash,
		ProfileImage: image,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateProfile applies the non-empty fields of req and returns the updated user.
func (s *AccountService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req models.UpdateUserRequest) (*models.User, error) {
	if req.Empty() {
		return nil, ErrNothingToUpdate
	}
	if req.Username != "" {
		if err := s.ensureUsernameFree(ctx, req.Username, userID); err != nil {
			return nil, err
		}
	}
	if err := s.users.UpdateProfile(ctx, userID, req); err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, userID)
}

func (s *AccountService) ChangePassword(ctx context.Context, userID primitive.ObjectID, req models.ChangePasswordRequest) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := auth.CheckPassword(user.Password, req.CurrentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *AccountService) SetProfileImage(ctx context.Context, userID primitive.ObjectID, url string) (*models.User, error) {
	if err := s.users.UpdateProfileImage(ctx, userID, url); err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, userID)
}

func (s *AccountService) ensureUsernameFree(ctx context.Context, username string, self primitive.ObjectID) error {
	existing, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return repositories.ErrUsernameTaken
	}
	return nil
}
