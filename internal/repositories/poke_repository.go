package repositories

import (
	"context"
	"time"

	"github.com/caiots/vorp-friends/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PokeRepository defines the interface for poke data operations
type PokeRepository interface {
	Create(ctx context.Context, poke *models.Poke) error
	FindRecent(ctx context.Context, fromUserID, toUserID string, since time.Time) (*models.Poke, error)
	CountReceived(ctx context.Context, toUserID string) (int64, error)
	CountUnseen(ctx context.Context, toUserID string) (int64, error)
	ListReceived(ctx context.Context, toUserID string, limit int64) ([]models.Poke, error)
	MarkAllSeen(ctx context.Context, toUserID string) error
}

// MongoPokeRepository implements PokeRepository for MongoDB
type MongoPokeRepository struct {
	collection *mongo.Collection
}

// NewMongoPokeRepository creates a new MongoPokeRepository
func NewMongoPokeRepository(db *mongo.Database) *MongoPokeRepository {
	return &MongoPokeRepository{collection: db.Collection("pokes")}
}

// Create inserts a new poke
func (r *MongoPokeRepository) Create(ctx context.Context, poke *models.Poke) error {
	poke.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, poke)
	return err
}

// FindRecent returns a poke from fromUserID to toUserID created at or after
// since, or nil when none exists. Backs the sliding rate-limit window.
func (r *MongoPokeRepository) FindRecent(ctx context.Context, fromUserID, toUserID string, since time.Time) (*models.Poke, error) {
	filter := bson.M{
		"fromUserId": fromUserID,
		"toUserId":   toUserID,
		"createdAt":  bson.M{"$gte": since},
	}

	var poke models.Poke
	err := r.collection.FindOne(ctx, filter).Decode(&poke)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &poke, nil
}

// CountReceived counts all pokes ever received by a user
func (r *MongoPokeRepository) CountReceived(ctx context.Context, toUserID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"toUserId": toUserID})
}

// CountUnseen counts the received pokes not yet marked seen
func (r *MongoPokeRepository) CountUnseen(ctx context.Context, toUserID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"toUserId": toUserID, "seen": false})
}

// ListReceived returns the newest received pokes up to limit
func (r *MongoPokeRepository) ListReceived(ctx context.Context, toUserID string, limit int64) ([]models.Poke, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"toUserId": toUserID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pokes []models.Poke
	if err = cursor.All(ctx, &pokes); err != nil {
		return nil, err
	}
	return pokes, nil
}

// MarkAllSeen flips the seen flag on every unseen poke received by a user
func (r *MongoPokeRepository) MarkAllSeen(ctx context.Context, toUserID string) error {
	filter := bson.M{"toUserId": toUserID, "seen": false}
	_, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"seen": true}})
	return err
}
