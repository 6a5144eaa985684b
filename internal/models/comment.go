package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a reply to a post, stored in the "comments" collection.
type Comment struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	User         primitive.ObjectID   `json:"user" bson:"user"` // author
	Post         primitive.ObjectID   `json:"post" bson:"post"`
	Text         string               `json:"text" bson:"text"`
	Timestamp    time.Time            `json:"timestamp" bson:"timestamp"`
	Likes        []primitive.ObjectID `json:"likes" bson:"likes"`
	CommentImage string               `json:"comment_image,omitempty" bson:"comment_image,omitempty"`
	UpdatedAt    time.Time            `json:"updated_at" bson:"updated_at"`
}

func (c *Comment) URL() string {
	return "/posts/" + c.Post.Hex() + "/comments/" + c.ID.Hex()
}

func (c Comment) MarshalJSON() ([]byte, error) {
	type plain Comment
	p := plain(c)
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	return json.Marshal(struct {
		plain
		URL string `json:"url"`
	}{p, c.URL()})
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Text         string `json:"text" validate:"required,min=1,max=5000"`
	CommentImage string `json:"comment_image,omitempty" validate:"omitempty,url"`
}

func (r *CreateCommentRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	r.CommentImage = strings.TrimSpace(r.CommentImage)
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=5000"`
}

func (r *UpdateCommentRequest) Normalize() { r.Text = strings.TrimSpace(r.Text) }

// CommentView is a comment with its author.
type CommentView struct {
	Comment
	Author UserCompact `json:"author"`
}

func (v CommentView) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.Comment)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m["author"], err = json.Marshal(v.Author); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}
