package repositories

import (
	"context"
	"time"

	"github.com/anonto42/odin-book/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Likeable
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// GetPostsByUserID returns the user's posts, newest first.
	GetPostsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	// GetPostsByUserIDs returns posts owned by any of userIDs, newest first.
	GetPostsByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Post, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, text string) error
	SetPostImage(ctx context.Context, id primitive.ObjectID, url string) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	DeletePostsByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// RemoveLikesByUser pulls userID from the likes of every post.
	RemoveLikesByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountPosts(ctx context.Context) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the owner/timestamp index used by profile pages and feeds.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	if post.Timestamp.IsZero() {
		post.Timestamp = time.Now()
	}
	post.UpdatedAt = post.Timestamp
	post.Likes = emptyIfNil(post.Likes)
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return &post, nil
}

func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *MongoPostRepository) GetPostsByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Post, error) {
	if len(userIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"user": bson.M{"$in": userIDs}})
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost replaces the text of an existing post
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id primitive.ObjectID, text string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"text": text, "updated_at": time.Now()}})
}

func (r *MongoPostRepository) SetPostImage(ctx context.Context, id primitive.ObjectID, url string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"post_image": url, "updated_at": time.Now()}})
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *MongoPostRepository) DeletePostsByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoPostRepository) GetLikes(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	var doc struct {
		Likes []primitive.ObjectID `bson:"likes"`
	}
	opts := options.FindOne().SetProjection(bson.M{"likes": 1})
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc); err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return emptyIfNil(doc.Likes), nil
}

func (r *MongoPostRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (r *MongoPostRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *MongoPostRepository) RemoveLikesByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx, bson.M{"likes": userID}, bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoPostRepository) CountPosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoPostRepository) updateOne(ctx context.Context, id primitive.ObjectID, update interface{}) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}
