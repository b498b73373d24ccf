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

// FeedFilter narrows the feed query. Zero values mean "no filter".
type FeedFilter struct {
	AuthorID string
	Since    *time.Time
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Find(ctx context.Context, filter FeedFilter, skip, limit int64) ([]models.Post, error)
	Count(ctx context.Context, filter FeedFilter) (int64, error)
	UpdateContent(ctx context.Context, id, content string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	IncCommentsCount(ctx context.Context, postID string, delta int) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// Create inserts a new post
func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Images == nil {
		post.Images = []models.ImageRef{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetByID retrieves a post by ID
func (r *MongoPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func feedQuery(filter FeedFilter) bson.M {
	query := bson.M{}
	if filter.AuthorID != "" {
		query["authorId"] = filter.AuthorID
	}
	if filter.Since != nil {
		query["createdAt"] = bson.M{"$gt": *filter.Since}
	}
	return query
}

// Find retrieves posts matching the filter, newest first, with pagination
func (r *MongoPostRepository) Find(ctx context.Context, filter FeedFilter, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, feedQuery(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Count counts the posts matching the filter
func (r *MongoPostRepository) Count(ctx context.Context, filter FeedFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, feedQuery(filter))
}

// UpdateContent sets a post's content and returns the updated document
func (r *MongoPostRepository) UpdateContent(ctx context.Context, id, content string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Delete removes a post by ID
func (r *MongoPostRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// AddLike adds userID to the likes set and bumps likesCount in one update.
// The membership predicate lives in the filter, so the set and the counter
// can only move together. Returns false when the user already liked the post.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return false, fmt.Errorf("invalid post ID format: %w", err)
	}

	filter := bson.M{"_id": objID, "likes": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$inc":      bson.M{"likesCount": 1},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// RemoveLike removes userID from the likes set and decrements likesCount.
// Returns false when the user had not liked the post, so the counter can
// never go negative.
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return false, fmt.Errorf("invalid post ID format: %w", err)
	}

	filter := bson.M{"_id": objID, "likes": userID}
	update := bson.M{
		"$pull": bson.M{"likes": userID},
		"$inc":  bson.M{"likesCount": -1},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// IncCommentsCount adjusts the denormalized top-level comment counter
func (r *MongoPostRepository) IncCommentsCount(ctx context.Context, postID string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	update := bson.M{
		"$inc": bson.M{"commentsCount": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	return err
}
