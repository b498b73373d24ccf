package models

import "gorm.io/gorm"

// UserProfile is the locally stored profile for a Firebase user, synced on
// login and used for hydration, search and bio updates.
type UserProfile struct {
	gorm.Model  `json:"-"`
	UID         string `json:"id" gorm:"uniqueIndex"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// UserInfo is the public shape of a user attached to posts, comments and
// friendships.
type UserInfo struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}

// ToInfo converts a stored profile to its public shape
func (p *UserProfile) ToInfo() UserInfo {
	return UserInfo{
		ID:          p.UID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Avatar:      p.Avatar,
	}
}

// PlaceholderUser is returned when hydration fails for a user id, so a feed
// page never fails because the identity provider is down.
func PlaceholderUser(id string) UserInfo {
	return UserInfo{ID: id, Username: "user", DisplayName: "Usuário"}
}

// UpdateBioRequest defines the request body for updating the caller's bio
type UpdateBioRequest struct {
	Bio string `json:"bio" validate:"max=500"`
}

// SyncProfileRequest carries profile fields when the dev token path is in
// use and there is no Firebase record to sync from.
type SyncProfileRequest struct {
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}
