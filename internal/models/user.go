package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a member of the network, stored in the "users" collection.
type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"`
	FirstName    string               `json:"first_name" bson:"first_name"`
	LastName     string               `json:"last_name" bson:"last_name"`
	Email        string               `json:"email" bson:"email"`
	Password     string               `json:"-" bson:"password"` // bcrypt hash
	Friends      []primitive.ObjectID `json:"friends" bson:"friends"`
	Requests     []primitive.ObjectID `json:"requests" bson:"requests"` // incoming, pending
	ProfileImage string               `json:"profile_image" bson:"profile_image"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
}

// Name is the display name built from first and last name.
func (u *User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// URL is the API path of the user.
func (u *User) URL() string {
	return "/users/" + u.ID.Hex()
}

// IsFriend reports whether id is in the user's friends.
func (u *User) IsFriend(id primitive.ObjectID) bool {
	return ContainsID(u.Friends, id)
}

// HasRequestFrom reports whether id has a pending request to the user.
func (u *User) HasRequestFrom(id primitive.ObjectID) bool {
	return ContainsID(u.Requests, id)
}

// MarshalJSON adds the computed name and url fields.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	friends, requests := u.Friends, u.Requests
	if friends == nil {
		friends = []primitive.ObjectID{}
	}
	if requests == nil {
		requests = []primitive.ObjectID{}
	}
	p := plain(u)
	p.Friends, p.Requests = friends, requests
	return json.Marshal(struct {
		plain
		Name string `json:"name"`
		URL  string `json:"url"`
	}{p, u.Name(), u.URL()})
}

// UserCompact is the public summary embedded in posts, comments and lists.
type UserCompact struct {
	ID           primitive.ObjectID `json:"id"`
	Username     string             `json:"username"`
	Name         string             `json:"name"`
	ProfileImage string             `json:"profile_image"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name(),
		ProfileImage: u.ProfileImage,
	}
}

// SignupRequest is the body of POST /users/signup.
type SignupRequest struct {
	Username        string `json:"username" validate:"required,min=4,max=30"`
	FirstName       string `json:"first_name" validate:"required,min=1,max=100"`
	LastName        string `json:"last_name" validate:"required,min=1,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,password"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	ProfileImage    string `json:"profile_image,omitempty" validate:"omitempty,url"`
}

// Normalize trims surrounding whitespace before validation.
func (r *SignupRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.ProfileImage = strings.TrimSpace(r.ProfileImage)
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

// UpdateUserRequest is the body of PUT /users/:id. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Username  string `json:"username,omitempty" validate:"omitempty,min=4,max=30"`
	FirstName string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

func (r *UpdateUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
}

// Empty reports whether the request changes nothing.
func (r UpdateUserRequest) Empty() bool {
	return r.Username == "" && r.FirstName == "" && r.LastName == "" && r.Email == ""
}

// ChangePasswordRequest is the body of PUT /users/:id/changepassword.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password" validate:"required,password"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// FriendRequestBody is the body of PUT /users/:id/addfriend.
type FriendRequestBody struct {
	Friend string `json:"friend" validate:"required,len=24,hexadecimal"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ContainsID reports whether id is in ids.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveID returns ids without any occurrence of id.
func RemoveID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
