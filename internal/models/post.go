package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID   `json:"user" bson:"user"` // owner
	Text      string               `json:"text" bson:"text"`
	Timestamp time.Time            `json:"timestamp" bson:"timestamp"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	PostImage string               `json:"post_image,omitempty" bson:"post_image,omitempty"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// URL is the API path of the post.
func (p *Post) URL() string {
	return "/posts/" + p.ID.Hex()
}

func (p Post) MarshalJSON() ([]byte, error) {
	type plain Post
	c := plain(p)
	if c.Likes == nil {
		c.Likes = []primitive.ObjectID{}
	}
	return json.Marshal(struct {
		plain
		URL string `json:"url"`
	}{c, p.URL()})
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Text      string `json:"text" validate:"required,min=1,max=10000"`
	PostImage string `json:"post_image,omitempty" validate:"omitempty,url"`
}

func (r *CreatePostRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	r.PostImage = strings.TrimSpace(r.PostImage)
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Text string `json:"text" validate:"required,min=1,max=10000"`
}

func (r *UpdatePostRequest) Normalize() { r.Text = strings.TrimSpace(r.Text) }

// PostView is a post with its author and the caller's like state.
type PostView struct {
	Post
	Author  UserCompact `json:"author"`
	IsLiked bool        `json:"is_liked"`
}

func (v PostView) MarshalJSON() ([]byte, error) {
	post, err := json.Marshal(v.Post)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(post, &m); err != nil {
		return nil, err
	}
	if m["author"], err = json.Marshal(v.Author); err != nil {
		return nil, err
	}
	if m["is_liked"], err = json.Marshal(v.IsLiked); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}
