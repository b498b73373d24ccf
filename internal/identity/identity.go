// Package identity hydrates bare user ids into display info. Lookups hit
// the local profile store first and fall back to Firebase for ids not yet
// synced; any failure degrades to a placeholder instead of failing the
// caller's request.
package identity

import (
	"context"
	"log"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/caiots/vorp-friends/internal/models"
	"github.com/caiots/vorp-friends/internal/repositories"
)

// Service resolves user ids to profile info
type Service struct {
	users      repositories.UserRepository
	authClient *auth.Client // nil when running with dev tokens
}

// NewService creates a new identity Service. authClient may be nil.
func NewService(users repositories.UserRepository, authClient *auth.Client) *Service {
	return &Service{users: users, authClient: authClient}
}

// GetUser resolves a single user id, falling back to a placeholder
func (s *Service) GetUser(ctx context.Context, id string) models.UserInfo {
	return s.GetUsers(ctx, []string{id})[id]
}

// GetUsers resolves a batch of user ids in one profile query plus at most
// one Firebase batch call. Ids are deduplicated; every requested id is
// present in the result.
func (s *Service) GetUsers(ctx context.Context, ids []string) map[string]models.UserInfo {
	result := make(map[string]models.UserInfo, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := result[id]; ok {
			continue
		}
		result[id] = models.PlaceholderUser(id)
		unique = append(unique, id)
	}

	profiles, err := s.users.GetByUIDs(unique)
	if err != nil {
		log.Printf("identity: profile lookup failed: %v", err)
		profiles = nil
	}
	found := make(map[string]bool, len(profiles))
	for i := range profiles {
		result[profiles[i].UID] = profiles[i].ToInfo()
		found[profiles[i].UID] = true
	}

	var missing []string
	for _, id := range unique {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 || s.authClient == nil {
		return result
	}

	identifiers := make([]auth.UserIdentifier, len(missing))
	for i, id := range missing {
		identifiers[i] = auth.UIDIdentifier{UID: id}
	}
	users, err := s.authClient.GetUsers(ctx, identifiers)
	if err != nil {
		log.Printf("identity: firebase batch lookup failed: %v", err)
		return result
	}
	for _, u := range users.Users {
		result[u.UID] = fromUserRecord(u)
	}
	return result
}

func fromUserRecord(u *auth.UserRecord) models.UserInfo {
	info := models.UserInfo{
		ID:          u.UID,
		Username:    usernameFromEmail(u.Email),
		DisplayName: u.DisplayName,
		Avatar:      u.PhotoURL,
	}
	if info.DisplayName == "" {
		info.DisplayName = "Usuário"
	}
	return info
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "user"
}
