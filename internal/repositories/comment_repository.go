package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/caiots/vorp-friends/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ParentRoots selects only top-level comments when passed as the parent
// argument to Find.
const ParentRoots = "root"

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Find(ctx context.Context, postID, parent string, skip, limit int64) ([]models.Comment, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	UpdateContent(ctx context.Context, id, content string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteReplies(ctx context.Context, parentID string) error
	DeleteByPost(ctx context.Context, postID string) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// Create inserts a new comment
func (r *MongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetByID retrieves a comment by ID
func (r *MongoCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID format: %w", err)
	}

	var comment models.Comment
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Find retrieves a post's comments, newest first. parent narrows the result:
// ParentRoots for top-level comments only, a comment id for its direct
// replies, empty for all comments on the post.
func (r *MongoCommentRepository) Find(ctx context.Context, postID, parent string, skip, limit int64) ([]models.Comment, error) {
	query := bson.M{"postId": postID}
	switch parent {
	case "":
	case ParentRoots:
		query["parentId"] = nil
	default:
		query["parentId"] = parent
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByPost counts all comments on a post, replies included
func (r *MongoCommentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"postId": postID})
}

// UpdateContent sets a comment's content and returns the updated document
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id, content string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID format: %w", err)
	}

	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Delete removes a single comment by ID
func (r *MongoCommentRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid comment ID format: %w", err)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

// DeleteReplies removes the direct replies of a comment
func (r *MongoCommentRepository) DeleteReplies(ctx context.Context, parentID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"parentId": parentID})
	return err
}

// DeleteByPost removes every comment on a post, replies included
func (r *MongoCommentRepository) DeleteByPost(ctx context.Context, postID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"postId": postID})
	return err
}
