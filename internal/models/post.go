package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coordinates is a lat/lng pair attached to a post location
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Location is an optional place tag on a post
type Location struct {
	Name        string       `json:"name,omitempty" bson:"name,omitempty"`
	Address     string       `json:"address,omitempty" bson:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

// ImageRef points at an image hosted on the external image service
type ImageRef struct {
	UUID string `json:"uuid" bson:"uuid"`
	URL  string `json:"url" bson:"url"`
}

// Post represents a post stored in MongoDB. LikesCount is kept in lockstep
// with the likes array; CommentsCount counts top-level comments only.
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Content       string             `json:"content" bson:"content"`
	AuthorID      string             `json:"authorId" bson:"authorId"`
	Location      *Location          `json:"location,omitempty" bson:"location,omitempty"`
	Images        []ImageRef         `json:"images" bson:"images"`
	Likes         []string           `json:"-" bson:"likes"`
	LikesCount    int                `json:"likesCount" bson:"likesCount"`
	CommentsCount int                `json:"commentsCount" bson:"commentsCount"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// IsLikedBy reports whether userID is in the post's likes set
func (p *Post) IsLikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest defines the JSON body for creating a post
type CreatePostRequest struct {
	Content  string    `json:"content" validate:"required,max=500"`
	Location *Location `json:"location,omitempty"`
}

// UpdatePostRequest defines the request body for editing a post
type UpdatePostRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

// PostData is a post hydrated with author info for the API
type PostData struct {
	ID            string     `json:"id"`
	Content       string     `json:"content"`
	AuthorID      string     `json:"authorId"`
	Author        UserInfo   `json:"author"`
	Location      *Location  `json:"location"`
	Images        []ImageRef `json:"images"`
	LikesCount    int        `json:"likesCount"`
	CommentsCount int        `json:"commentsCount"`
	IsLiked       bool       `json:"isLiked"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Pagination is the page metadata returned by list endpoints
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}
