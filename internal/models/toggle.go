package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ToggleAction tells which way a membership toggle went.
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
)

// LikeToggle is the outcome of toggling a like on a post or comment.
type LikeToggle struct {
	Action ToggleAction         `json:"action"`
	Likes  []primitive.ObjectID `json:"likes"`
}

// FriendToggle is the outcome of accepting or removing a friend.
type FriendToggle struct {
	Action  ToggleAction         `json:"action"`
	Friends []primitive.ObjectID `json:"friends"`
}
