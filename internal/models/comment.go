package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment stored in MongoDB. ParentID is nil for
// top-level comments and holds the parent comment id for replies.
type Comment struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Content   string             `json:"content" bson:"content"`
	PostID    string             `json:"postId" bson:"postId"`
	AuthorID  string             `json:"authorId" bson:"authorId"`
	ParentID  *string            `json:"parentId" bson:"parentId"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateCommentRequest defines the request body for creating a comment
type CreateCommentRequest struct {
	Content  string  `json:"content" validate:"required,max=300"`
	ParentID *string `json:"parentId,omitempty"`
}

// UpdateCommentRequest defines the request body for editing a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=300"`
}

// CommentData is a comment hydrated with author info for the API
type CommentData struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	ParentID  *string   `json:"parentId"`
	Author    UserInfo  `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
