package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kekec/storefront/internal/util"
)

func newResetServiceForTests(users *memUserRepo, tokens *memResetTokenRepo, mailer *fakeResetMailer) *PasswordResetService {
	return NewPasswordResetService(users, tokens, mailer, "https://shop.example.com", 30*time.Minute)
}

func rawTokenFromURL(t *testing.T, resetURL string) string {
	t.Helper()
	idx := strings.LastIndex(resetURL, "/")
	if idx < 0 || idx == len(resetURL)-1 {
		t.Fatalf("reset URL has no token segment: %q", resetURL)
	}
	return resetURL[idx+1:]
}

func TestRequestPasswordReset(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	tokens := newMemResetTokenRepo()
	mailer := &fakeResetMailer{}
	accounts := newAccountServiceForTests(users)
	svc := newResetServiceForTests(users, tokens, mailer)

	reg, err := accounts.Register(ctx, "Alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	if mailer.sent[0].email != "alice@example.com" || mailer.sent[0].name != "Alice" {
		t.Fatalf("email addressed wrongly: %+v", mailer.sent[0])
	}
	if !strings.HasPrefix(mailer.sent[0].resetURL, "https://shop.example.com/resetpassword/") {
		t.Fatalf("unexpected reset URL %q", mailer.sent[0].resetURL)
	}

	raw := rawTokenFromURL(t, mailer.sent[0].resetURL)
	if !strings.HasSuffix(raw, reg.User.ID.String()) {
		t.Fatalf("raw token should end with the user id, got %q", raw)
	}

	if len(tokens.tokens) != 1 {
		t.Fatalf("expected one stored token, got %d", len(tokens.tokens))
	}
	for _, stored := range tokens.tokens {
		if !bytes.Equal(stored.TokenHash, util.HashResetToken(raw)) {
			t.Fatal("stored hash does not match the mailed token")
		}
		if strings.Contains(string(stored.TokenHash), raw) {
			t.Fatal("raw token must not be stored")
		}
		window := time.Until(stored.ExpiresAt)
		if window < 29*time.Minute || window > 31*time.Minute {
			t.Fatalf("expiry window off: %v", window)
		}
	}
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	svc := newResetServiceForTests(newMemUserRepo(), newMemResetTokenRepo(), &fakeResetMailer{})
	if err := svc.Request(context.Background(), "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRequestPasswordResetMailFailureKeepsToken(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	tokens := newMemResetTokenRepo()
	mailer := &fakeResetMailer{err: errors.New("smtp down")}
	accounts := newAccountServiceForTests(users)
	svc := newResetServiceForTests(users, tokens, mailer)

	if _, err := accounts.Register(ctx, "Alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Request(ctx, "alice@example.com"); !errors.Is(err, ErrEmailSend) {
		t.Fatalf("expected ErrEmailSend, got %v", err)
	}
	if len(tokens.tokens) != 1 {
		t.Fatalf("token row should survive a failed send, got %d rows", len(tokens.tokens))
	}
}

func TestSecondRequestSupersedesFirstToken(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	tokens := newMemResetTokenRepo()
	mailer := &fakeResetMailer{}
	accounts := newAccountServiceForTests(users)
	svc := newResetServiceForTests(users, tokens, mailer)

	if _, err := accounts.Register(ctx, "Alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if err := svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("second request failed: %v", err)
	}

	firstRaw := rawTokenFromURL(t, mailer.sent[0].resetURL)
	secondRaw := rawTokenFromURL(t, mailer.sent[1].resetURL)

	if err := svc.Reset(ctx, firstRaw, "secret2"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("superseded token should be invalid, got %v", err)
	}
	if err := svc.Reset(ctx, secondRaw, "secret2"); err != nil {
		t.Fatalf("live token should reset, got %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	tokens := newMemResetTokenRepo()
	mailer := &fakeResetMailer{}
	accounts := newAccountServiceForTests(users)
	svc := newResetServiceForTests(users, tokens, mailer)

	if _, err := accounts.Register(ctx, "Alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	// Move the clock past issuance + 30 minutes.
	svc.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	raw := rawTokenFromURL(t, mailer.sent[0].resetURL)
	if err := svc.Reset(ctx, raw, "secret2"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken for expired token, got %v", err)
	}
}

func TestResetPasswordConsumesToken(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	tokens := newMemResetTokenRepo()
	mailer := &fakeResetMailer{}
	accounts := newAccountServiceForTests(users)
	svc := newResetServiceForTests(users, tokens, mailer)

	if _, err := accounts.Register(ctx, "Alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	raw := rawTokenFromURL(t, mailer.sent[0].resetURL)
	if err := svc.Reset(ctx, raw, "secret2"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if len(tokens.tokens) != 0 {
		t.Fatalf("redeemed token should be deleted, %d rows remain", len(tokens.tokens))
	}
	if err := svc.Reset(ctx, raw, "secret3"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("redeemed token must not be replayable, got %v", err)
	}
}

func TestResetPasswordRejectsGarbage(t *testing.T) {
	svc := newResetServiceForTests(newMemUserRepo(), newMemResetTokenRepo(), &fakeResetMailer{})

	if err := svc.Reset(context.Background(), "", "secret2"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken for empty token, got %v", err)
	}
	if err := svc.Reset(context.Background(), "deadbeef", "secret2"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken for unknown token, got %v", err)
	}
	if err := svc.Reset(context.Background(), "deadbeef", "short"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for short password, got %v", err)
	}
}

// Full account lifecycle: register, log in, forget the password, reset it
// through the emailed token, and log in again with the new password only.
func TestPasswordResetEndToEnd(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	tokens := newMemResetTokenRepo()
	mailer := &fakeResetMailer{}
	accounts := newAccountServiceForTests(users)
	resets := newResetServiceForTests(users, tokens, mailer)

	if _, err := accounts.Register(ctx, "Alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := accounts.Login(ctx, "alice@example.com", "secret1"); err != nil {
		t.Fatalf("initial login failed: %v", err)
	}

	if err := resets.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	raw := rawTokenFromURL(t, mailer.sent[0].resetURL)
	if err := resets.Reset(ctx, raw, "secret2"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if _, err := accounts.Login(ctx, "alice@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should fail after reset, got %v", err)
	}
	if _, err := accounts.Login(ctx, "alice@example.com", "secret2"); err != nil {
		t.Fatalf("new password should log in, got %v", err)
	}
}
