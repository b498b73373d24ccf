package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Friendship statuses stored in MongoDB. The record is canonical and
// directionless; viewpoint-specific labels are derived at read time.
const (
	FriendshipStatusPending  = "pending"
	FriendshipStatusAccepted = "accepted"
	FriendshipStatusRejected = "rejected"
	FriendshipStatusBlocked  = "blocked"
)

// Friendship is the single relationship document between two users.
// At most one record exists per unordered pair of users.
type Friendship struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RequesterID string             `json:"requesterId" bson:"requesterId"`
	AddresseeID string             `json:"addresseeId" bson:"addresseeId"`
	Status      string             `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SendFriendRequest defines the request body for sending a friend request
type SendFriendRequest struct {
	AddresseeID string `json:"addresseeId" validate:"required"`
}

// RespondFriendRequest defines the request body for responding to a pending request
type RespondFriendRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject block"`
}

// FriendshipData is a friendship with both parties hydrated for the API
type FriendshipData struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requesterId"`
	AddresseeID string    `json:"addresseeId"`
	Status      string    `json:"status"`
	Requester   UserInfo  `json:"requester"`
	Addressee   UserInfo  `json:"addressee"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
