package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bountyhub/bountyhub/pkg/integrations/github"
)

func testUser() *github.User {
	return &github.User{ID: 42, Login: "octocat", Name: "The Octocat"}
}

func TestNewSession(t *testing.T) {
	sess, err := New("gho_token", testUser(), time.Hour)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if sess.ID == "" {
		t.Error("session ID is empty")
	}
	if sess.AccessToken != "gho_token" {
		t.Errorf("AccessToken = %q", sess.AccessToken)
	}
	if sess.IsExpired() {
		t.Error("fresh session reports expired")
	}
}

func TestSessionIsExpired(t *testing.T) {
	sess, err := New("tok", testUser(), -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !sess.IsExpired() {
		t.Error("past-TTL session reports not expired")
	}
}

func TestSessionUserID(t *testing.T) {
	sess := &Session{User: testUser()}
	if got := sess.UserID(); got != "github:42" {
		t.Errorf("UserID() = %q, want github:42", got)
	}

	var nilSess *Session
	if got := nilSess.UserID(); got != "" {
		t.Errorf("nil session UserID() = %q, want empty", got)
	}
}

func TestGenerateIDUnique(t *testing.T) {
	a, err := GenerateID()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateID()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("GenerateID returned duplicate IDs")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, err := New("tok", testUser(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil || got.AccessToken != "tok" {
		t.Errorf("Get() = %+v", got)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	got, err = store.Get(ctx, sess.ID)
	if err != nil || got != nil {
		t.Errorf("Get() after delete = %+v, %v, want nil, nil", got, err)
	}
}

func TestMemoryStoreExpiredSession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := &Session{ID: "stale", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Get(ctx, "stale"); !errors.Is(err, ErrExpired) {
		t.Errorf("Get(stale) error = %v, want ErrExpired", err)
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	fresh, _ := New("tok", testUser(), time.Hour)
	stale := &Session{ID: "stale", ExpiresAt: time.Now().Add(-time.Minute)}
	store.Set(ctx, fresh)
	store.Set(ctx, stale)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}

	store.mu.RLock()
	defer store.mu.RUnlock()
	if _, ok := store.sessions["stale"]; ok {
		t.Error("Cleanup left expired session")
	}
	if _, ok := store.sessions[fresh.ID]; !ok {
		t.Error("Cleanup removed live session")
	}
}

func TestMemoryStateStoreSingleUse(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	state, err := store.Generate(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	ok, err := store.Validate(ctx, state)
	if err != nil || !ok {
		t.Fatalf("Validate() = %v, %v, want true, nil", ok, err)
	}

	// Second validation of the same token must fail.
	ok, err = store.Validate(ctx, state)
	if err != nil || ok {
		t.Errorf("second Validate() = %v, %v, want false, nil", ok, err)
	}
}

func TestMemoryStateStoreExpired(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	state, err := store.Generate(ctx, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := store.Validate(ctx, state)
	if err != nil || ok {
		t.Errorf("Validate(expired) = %v, %v, want false, nil", ok, err)
	}
}

func TestMemoryStateStoreUnknownToken(t *testing.T) {
	store := NewMemoryStateStore()
	ok, err := store.Validate(context.Background(), "never-issued")
	if err != nil || ok {
		t.Errorf("Validate(unknown) = %v, %v, want false, nil", ok, err)
	}
}
