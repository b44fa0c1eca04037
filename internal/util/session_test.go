package util

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionManagerIssueAndParse(t *testing.T) {
	manager := NewSessionManager("top-secret", 24*time.Hour)

	userID := uuid.New()
	token, expiresAt, err := manager.Issue(userID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token to be non-empty")
	}
	if remaining := time.Until(expiresAt); remaining < 23*time.Hour || remaining > 25*time.Hour {
		t.Fatalf("expected ~1 day expiry, got %v", remaining)
	}

	parsed, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if parsed != userID {
		t.Fatalf("expected user id %s, got %s", userID, parsed)
	}
}

func TestSessionManagerParseExpiredToken(t *testing.T) {
	manager := NewSessionManager("secret", time.Millisecond)
	token, _, err := manager.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	if _, err := manager.Parse(token); err == nil {
		t.Fatalf("expected parse error for expired token")
	}
}

func TestSessionManagerRejectsTamperedToken(t *testing.T) {
	manager := NewSessionManager("secret", time.Hour)
	token, _, err := manager.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := manager.Parse(token + "x"); err == nil {
		t.Fatalf("expected parse error for tampered token")
	}
	if _, err := manager.Parse("not-a-token"); err == nil {
		t.Fatalf("expected parse error for malformed token")
	}
}

func TestSessionManagerRejectsForeignSecret(t *testing.T) {
	token, _, err := NewSessionManager("secret-a", time.Hour).Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := NewSessionManager("secret-b", time.Hour).Parse(token); err == nil {
		t.Fatalf("expected parse error under a different secret")
	}
}
