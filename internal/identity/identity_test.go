package identity

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/caiots/vorp-friends/internal/models"
)

type stubUserRepo struct {
	profiles map[string]models.UserProfile
	calls    [][]string
}

func (r *stubUserRepo) Upsert(*models.UserProfile) error { return nil }

func (r *stubUserRepo) GetByUID(uid string) (*models.UserProfile, error) {
	if p, ok := r.profiles[uid]; ok {
		return &p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByUIDs(uids []string) ([]models.UserProfile, error) {
	r.calls = append(r.calls, uids)
	var out []models.UserProfile
	for _, uid := range uids {
		if p, ok := r.profiles[uid]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Search(string, string, int) ([]models.UserProfile, error) { return nil, nil }
func (r *stubUserRepo) UpdateBio(string, string) error                           { return nil }

func TestGetUsersBatchesAndDedupes(t *testing.T) {
	repo := &stubUserRepo{profiles: map[string]models.UserProfile{
		"alice": {UID: "alice", Username: "alice", DisplayName: "Alice"},
	}}
	svc := NewService(repo, nil)

	result := svc.GetUsers(context.Background(), []string{"alice", "alice", "ghost", ""})

	if len(repo.calls) != 1 {
		t.Fatalf("expected a single batch query, got %d", len(repo.calls))
	}
	if len(repo.calls[0]) != 2 {
		t.Errorf("expected deduped ids, got %v", repo.calls[0])
	}

	if got := result["alice"]; got.DisplayName != "Alice" {
		t.Errorf("alice = %+v", got)
	}
	// Unknown ids degrade to a placeholder, never go missing.
	ghost, ok := result["ghost"]
	if !ok {
		t.Fatal("ghost must be present in the result")
	}
	if ghost.DisplayName != "Usuário" || ghost.ID != "ghost" {
		t.Errorf("ghost placeholder = %+v", ghost)
	}
	if _, ok := result[""]; ok {
		t.Error("empty ids must be dropped")
	}
}

func TestGetUserSingle(t *testing.T) {
	repo := &stubUserRepo{profiles: map[string]models.UserProfile{
		"bob": {UID: "bob", Username: "bob", DisplayName: "Bob"},
	}}
	svc := NewService(repo, nil)

	if got := svc.GetUser(context.Background(), "bob"); got.Username != "bob" {
		t.Errorf("bob = %+v", got)
	}
	if got := svc.GetUser(context.Background(), "nobody"); got.Username != "user" {
		t.Errorf("placeholder = %+v", got)
	}
}

func TestUsernameFromEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.com": "alice",
		"not-an-email":      "user",
		"":                  "user",
	}
	for email, want := range cases {
		if got := usernameFromEmail(email); got != want {
			t.Errorf("usernameFromEmail(%q) = %q, want %q", email, got, want)
		}
	}
}
