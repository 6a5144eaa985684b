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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Likeable
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	// GetCommentsByPostID returns the post's comments, newest first.
	GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	UpdateComment(ctx context.Context, id primitive.ObjectID, text string) error
	SetCommentImage(ctx context.Context, id primitive.ObjectID, url string) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteCommentsByPostIDs(ctx context.Context, postIDs []primitive.ObjectID) (int64, error)
	DeleteCommentsByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error)
	RemoveLikesByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountComments(ctx context.Context) (int64, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

func (r *MongoCommentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "post", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
	})
	return err
}

func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	if comment.Timestamp.IsZero() {
		comment.Timestamp = time.Now()
	}
	comment.UpdatedAt = comment.Timestamp
	comment.Likes = emptyIfNil(comment.Likes)
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	return &comment, nil
}

func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *MongoCommentRepository) UpdateComment(ctx context.Context, id primitive.ObjectID, text string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"text": text, "updated_at": time.Now()}})
}

func (r *MongoCommentRepository) SetCommentImage(ctx context.Context, id primitive.ObjectID, url string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"comment_image": url, "updated_at": time.Now()}})
}

func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *MongoCommentRepository) DeleteCommentsByPostIDs(ctx context.Context, postIDs []primitive.ObjectID) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	return r.deleteMany(ctx, bson.M{"post": bson.M{"$in": postIDs}})
}

func (r *MongoCommentRepository) DeleteCommentsByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.deleteMany(ctx, bson.M{"user": userID})
}

func (r *MongoCommentRepository) deleteMany(ctx context.Context, filter interface{}) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoCommentRepository) GetLikes(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	var doc struct {
		Likes []primitive.ObjectID `bson:"likes"`
	}
	opts := options.FindOne().SetProjection(bson.M{"likes": 1})
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc); err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	return emptyIfNil(doc.Likes), nil
}

func (r *MongoCommentRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (r *MongoCommentRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *MongoCommentRepository) RemoveLikesByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx, bson.M{"likes": userID}, bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoCommentRepository) CountComments(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoCommentRepository) updateOne(ctx context.Context, id primitive.ObjectID, update interface{}) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}
