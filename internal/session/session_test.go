package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/chemviz/chemviz/internal/credstore"
	"github.com/chemviz/chemviz/internal/model"
)

func newFileStore(t *testing.T) *credstore.FileStore {
	t.Helper()
	s, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestInitialStateFromStore(t *testing.T) {
	store := newFileStore(t)
	if c := New(store, time.Second); c.Authenticated() {
		t.Fatal("empty store should start Unauthenticated")
	}

	if err := store.Save("acc", "ref"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if c := New(store, time.Second); !c.Authenticated() {
		t.Fatal("store with a token should start Authenticated")
	}
}

func TestLoginSucceededPersistsAndTransitions(t *testing.T) {
	store := newFileStore(t)
	c := New(store, time.Second)

	err := c.LoginSucceeded(model.Credentials{Access: "acc", Refresh: "ref"})
	if err != nil {
		t.Fatalf("LoginSucceeded: %v", err)
	}
	if !c.Authenticated() {
		t.Fatal("should be Authenticated after login")
	}
	if !store.HasSession() || store.AccessToken() != "acc" {
		t.Fatalf("tokens not persisted: %q", store.AccessToken())
	}
}

func TestLogoutClearsTokens(t *testing.T) {
	store := newFileStore(t)
	c := New(store, time.Second)
	if err := c.LoginSucceeded(model.Credentials{Access: "acc", Refresh: "ref"}); err != nil {
		t.Fatalf("LoginSucceeded: %v", err)
	}

	if err := c.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if c.Authenticated() {
		t.Fatal("should be Unauthenticated after Logout")
	}
	if store.HasSession() {
		t.Fatal("tokens should be cleared after Logout")
	}
}

func TestAuthFailureForcesLogoutAfterGrace(t *testing.T) {
	store := newFileStore(t)
	c := New(store, 20*time.Millisecond)
	if err := c.LoginSucceeded(model.Credentials{Access: "acc", Refresh: "ref"}); err != nil {
		t.Fatalf("LoginSucceeded: %v", err)
	}

	done := make(chan struct{})
	if !c.HandleAuthFailure(func() { close(done) }) {
		t.Fatal("HandleAuthFailure should accept the first failure")
	}

	// Within the grace period the session is still live.
	if !c.Authenticated() {
		t.Fatal("logout should not complete before the grace period")
	}
	if !store.HasSession() {
		t.Fatal("tokens should survive until the grace period elapses")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forced logout never completed")
	}
	if c.Authenticated() {
		t.Fatal("should be Unauthenticated after the grace period")
	}
	if store.HasSession() {
		t.Fatal("tokens should be cleared by the forced logout")
	}
}

func TestAuthFailureDeduplicated(t *testing.T) {
	store := newFileStore(t)
	c := New(store, 20*time.Millisecond)
	if err := c.LoginSucceeded(model.Credentials{Access: "acc", Refresh: "ref"}); err != nil {
		t.Fatalf("LoginSucceeded: %v", err)
	}

	calls := make(chan struct{}, 4)
	cb := func() { calls <- struct{}{} }

	if !c.HandleAuthFailure(cb) {
		t.Fatal("first failure should schedule a logout")
	}
	if c.HandleAuthFailure(cb) {
		t.Fatal("second failure while one is pending should be ignored")
	}

	<-calls
	select {
	case <-calls:
		t.Fatal("forced logout ran more than once")
	case <-time.After(100 * time.Millisecond):
	}

	// After logout the controller is Unauthenticated; further failures no-op.
	if c.HandleAuthFailure(cb) {
		t.Fatal("failure while Unauthenticated should be ignored")
	}
}

func TestExplicitLogoutCancelsPendingExpiry(t *testing.T) {
	store := newFileStore(t)
	c := New(store, 20*time.Millisecond)
	if err := c.LoginSucceeded(model.Credentials{Access: "acc", Refresh: "ref"}); err != nil {
		t.Fatalf("LoginSucceeded: %v", err)
	}

	fired := make(chan struct{}, 1)
	c.HandleAuthFailure(func() { fired <- struct{}{} })
	if err := c.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	select {
	case <-fired:
		t.Fatal("expiry callback fired after explicit logout")
	case <-time.After(100 * time.Millisecond):
	}
}
