package models

import "time"

// Notification types
const (
	NotificationFriendRequest  = "friend_request"
	NotificationFriendAccepted = "friend_accepted"
	NotificationPostLike       = "post_like"
	NotificationCommentLike    = "comment_like"
	NotificationComment        = "comment"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     string    `json:"actor_id" gorm:"size:24;index"`
	RecipientID string    `json:"recipient_id" gorm:"size:24;index"`
	TargetID    string    `json:"target_id" gorm:"size:24"`  // post or comment ID
	TargetType  string    `json:"target_type" gorm:"size:20"` // post, comment, user
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
