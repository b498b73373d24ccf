package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PokeWindow is the sliding window during which a repeat poke to the same
// user is rejected.
const PokeWindow = 30 * time.Minute

// Poke is a one-way social ping stored in MongoDB. Pokes are never deleted;
// the seen flag is flipped in bulk by the mark-all-seen action.
type Poke struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FromUserID string             `json:"fromUserId" bson:"fromUserId"`
	ToUserID   string             `json:"toUserId" bson:"toUserId"`
	Seen       bool               `json:"seen" bson:"seen"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// SendPokeRequest defines the request body for poking a user
type SendPokeRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
}

// PokeActionRequest defines the request body for poke bulk actions
type PokeActionRequest struct {
	Action string `json:"action" validate:"required,oneof=markAllSeen"`
}
