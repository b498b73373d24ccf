package handlers

import (
	"net/http"
	"testing"

	"github.com/caiots/vorp-friends/internal/models"
)

func newUserHandler() (*UserHandler, *fakeUserRepo) {
	users := newFakeUserRepo()
	users.Upsert(&models.UserProfile{UID: "alice", Username: "alice", DisplayName: "Alice Silva"})
	users.Upsert(&models.UserProfile{UID: "bob", Username: "bob", DisplayName: "Bob Santos"})
	return NewUserHandler(users, nil), users
}

func TestSearchUsersShortQuery(t *testing.T) {
	h, _ := newUserHandler()
	c, rec := newTestContext(http.MethodGet, "/api/users/search?q=a", "", "alice")
	if err := h.SearchUsers(c); err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	body := decodeBody(t, rec)
	if len(body["users"].([]interface{})) != 0 {
		t.Error("short query must return no users")
	}
	if body["message"] != "Digite pelo menos 2 caracteres para pesquisar" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestSearchUsersExcludesSelf(t *testing.T) {
	h, users := newUserHandler()
	users.Upsert(&models.UserProfile{UID: "alice2", Username: "alice2", DisplayName: "Alice Souza"})

	c, rec := newTestContext(http.MethodGet, "/api/users/search?q=alice", "", "alice")
	if err := h.SearchUsers(c); err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	body := decodeBody(t, rec)
	found := body["users"].([]interface{})
	if len(found) != 1 {
		t.Fatalf("expected 1 user, got %d", len(found))
	}
	if found[0].(map[string]interface{})["id"] != "alice2" {
		t.Errorf("unexpected user: %v", found[0])
	}
	if body["total"].(float64) != 1 {
		t.Errorf("total = %v", body["total"])
	}
}

func TestUpdateBio(t *testing.T) {
	h, users := newUserHandler()
	c, rec := newTestContext(http.MethodPost, "/api/user/update-bio", `{"bio":"oi, sou a alice"}`, "alice")
	if err := h.UpdateBio(c); err != nil {
		t.Fatalf("UpdateBio: %v", err)
	}
	body := decodeBody(t, rec)
	if body["ok"] != true || body["bio"] != "oi, sou a alice" {
		t.Errorf("response = %v", body)
	}
	profile, _ := users.GetByUID("alice")
	if profile.Bio != "oi, sou a alice" {
		t.Errorf("stored bio = %q", profile.Bio)
	}
}

func TestUpdateBioUnknownUser(t *testing.T) {
	h, _ := newUserHandler()
	c, rec := newTestContext(http.MethodPost, "/api/user/update-bio", `{"bio":"oi"}`, "stranger")
	if got := httpStatus(h.UpdateBio(c), rec); got != http.StatusNotFound {
		t.Fatalf("unsynced profile: expected 404, got %d", got)
	}
}

func TestSyncProfileDevPath(t *testing.T) {
	h, users := newUserHandler()
	c, rec := newTestContext(http.MethodPost, "/api/auth/sync", `{"username":"carol","displayName":"Carol","avatar":"https://img.test/c.png"}`, "carol")
	if err := h.SyncProfile(c); err != nil {
		t.Fatalf("SyncProfile: %v", err)
	}
	user := decodeBody(t, rec)["user"].(map[string]interface{})
	if user["username"] != "carol" || user["displayName"] != "Carol" {
		t.Errorf("user = %v", user)
	}
	profile, err := users.GetByUID("carol")
	if err != nil {
		t.Fatalf("profile not stored: %v", err)
	}
	if profile.Avatar != "https://img.test/c.png" {
		t.Errorf("avatar = %q", profile.Avatar)
	}
}

func TestSyncProfileDefaults(t *testing.T) {
	h, users := newUserHandler()
	c, _ := newTestContext(http.MethodPost, "/api/auth/sync", `{}`, "dave")
	if err := h.SyncProfile(c); err != nil {
		t.Fatalf("SyncProfile: %v", err)
	}
	profile, _ := users.GetByUID("dave")
	if profile.Username != "user" || profile.DisplayName != "Usuário" {
		t.Errorf("defaults not applied: %+v", profile)
	}
}
