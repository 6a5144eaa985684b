package services

import (
	"context"
	"sort"

	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feed is a user together with their own and their friends' posts, newest first.
type Feed struct {
	User  *models.User
	Posts []models.Post
}

type FeedService struct {
	users repositories.UserRepository
	posts repositories.PostRepository
}

func NewFeedService(users repositories.UserRepository, posts repositories.PostRepository) *FeedService {
	return &FeedService{users: users, posts: posts}
}

func (s *FeedService) GetFeed(ctx context.Context, userID primitive.ObjectID) (*Feed, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	own, err := s.posts.GetPostsByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	posts := append([]models.Post{}, own...)
	if len(user.Friends) > 0 {
		friends, err := s.posts.GetPostsByUserIDs(ctx, user.Friends)
		if err != nil {
			return nil, err
		}
		posts = append(posts, friends...)
	}
	SortPosts(posts)
	return &Feed{User: user, Posts: posts}, nil
}

// SortPosts orders posts by timestamp descending, breaking ties by id descending.
func SortPosts(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Timestamp.Equal(posts[j].Timestamp) {
			return posts[i].Timestamp.After(posts[j].Timestamp)
		}
		return posts[i].ID.Hex() > posts[j].ID.Hex()
	})
}

// PostViews attaches each post's author and whether viewerID liked it.
func PostViews(ctx context.Context, users repositories.UserRepository, posts []models.Post, viewerID primitive.ObjectID) ([]models.PostView, error) {
	ids := make([]primitive.ObjectID, len(posts))
	for i := range posts {
		ids[i] = posts[i].User
	}
	authors, err := authorsOf(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		views[i] = models.PostView{
			Post:    p,
			Author:  authors[p.User],
			IsLiked: models.ContainsID(p.Likes, viewerID),
		}
	}
	return views, nil
}

// CommentViews attaches each comment's author.
func CommentViews(ctx context.Context, users repositories.UserRepository, comments []models.Comment) ([]models.CommentView, error) {
	ids := make([]primitive.ObjectID, len(comments))
	for i := range comments {
		ids[i] = comments[i].User
	}
	authors, err := authorsOf(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = models.CommentView{Comment: c, Author: authors[c.User]}
	}
	return views, nil
}

func authorsOf(ctx context.Context, users repositories.UserRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserCompact, error) {
	out := make(map[primitive.ObjectID]models.UserCompact, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range found {
		out[found[i].ID] = found[i].ToCompact()
	}
	return out, nil
}
