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

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetByID(ctx context.Context, id string) (*models.Friendship, error)
	FindBetween(ctx context.Context, userA, userB string) (*models.Friendship, error)
	Reopen(ctx context.Context, id, requesterID, addresseeID string) error
	Respond(ctx context.Context, id, addresseeID, status string) (bool, error)
	Delete(ctx context.Context, id, partyID string) (bool, error)
	ListBySubject(ctx context.Context, subjectID, status string, skip, limit int64) ([]models.Friendship, error)
	CountBySubject(ctx context.Context, subjectID, status string) (int64, error)
}

// MongoFriendshipRepository implements FriendshipRepository for MongoDB
type MongoFriendshipRepository struct {
	collection *mongo.Collection
}

// NewMongoFriendshipRepository creates a new MongoFriendshipRepository
func NewMongoFriendshipRepository(db *mongo.Database) *MongoFriendshipRepository {
	return &MongoFriendshipRepository{collection: db.Collection("friendships")}
}

// Create inserts a new friendship record
func (r *MongoFriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	friendship.ID = primitive.NewObjectID()
	friendship.CreatedAt = time.Now()
	friendship.UpdatedAt = friendship.CreatedAt
	_, err := r.collection.InsertOne(ctx, friendship)
	return err
}

// GetByID retrieves a friendship by id
func (r *MongoFriendshipRepository) GetByID(ctx context.Context, id string) (*models.Friendship, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid friendship ID format: %w", err)
	}

	var friendship models.Friendship
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&friendship)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &friendship, nil
}

// FindBetween returns the single record between two users, checking both
// orderings. Returns nil when no record exists.
func (r *MongoFriendshipRepository) FindBetween(ctx context.Context, userA, userB string) (*models.Friendship, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"requesterId": userA, "addresseeId": userB},
			bson.M{"requesterId": userB, "addresseeId": userA},
		},
	}

	var friendship models.Friendship
	err := r.collection.FindOne(ctx, filter).Decode(&friendship)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &friendship, nil
}

// Reopen rewrites a rejected record back to pending with the given
// direction, preserving the one-record-per-pair invariant.
func (r *MongoFriendshipRepository) Reopen(ctx context.Context, id, requesterID, addresseeID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid friendship ID format: %w", err)
	}

	update := bson.M{
		"$set": bson.M{
			"requesterId": requesterID,
			"addresseeId": addresseeID,
			"status":      models.FriendshipStatusPending,
			"updatedAt":   time.Now(),
		},
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	return err
}

// Respond sets the terminal status of a pending request. The filter requires
// the acting user to be the addressee, so a requester can never accept their
// own request. Returns false when no matching pending record exists.
func (r *MongoFriendshipRepository) Respond(ctx context.Context, id, addresseeID, status string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid friendship ID format: %w", err)
	}

	filter := bson.M{
		"_id":         objID,
		"addresseeId": addresseeID,
		"status":      models.FriendshipStatusPending,
	}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete physically removes a friendship record. The filter requires the
// acting user to be one of the two parties. Returns false when nothing
// matched.
func (r *MongoFriendshipRepository) Delete(ctx context.Context, id, partyID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid friendship ID format: %w", err)
	}

	filter := bson.M{
		"_id": objID,
		"$or": bson.A{
			bson.M{"requesterId": partyID},
			bson.M{"addresseeId": partyID},
		},
	}
	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func subjectFilter(subjectID, status string) bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{"requesterId": subjectID, "status": status},
			bson.M{"addresseeId": subjectID, "status": status},
		},
	}
}

// ListBySubject returns friendships where the subject appears on either side,
// newest first
func (r *MongoFriendshipRepository) ListBySubject(ctx context.Context, subjectID, status string, skip, limit int64) ([]models.Friendship, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, subjectFilter(subjectID, status), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var friendships []models.Friendship
	if err = cursor.All(ctx, &friendships); err != nil {
		return nil, err
	}
	return friendships, nil
}

// CountBySubject counts the records ListBySubject would page through
func (r *MongoFriendshipRepository) CountBySubject(ctx context.Context, subjectID, status string) (int64, error) {
	return r.collection.CountDocuments(ctx, subjectFilter(subjectID, status))
}
