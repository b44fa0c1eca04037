package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kekec/storefront/internal/repository/ports"
	"github.com/kekec/storefront/internal/util"
)

var (
	ErrInvalidResetToken = errors.New("invalid or expired token")
	ErrEmailSend         = errors.New("email not sent, please try again")
)

// ResetMailSender delivers the reset link to the account owner.
type ResetMailSender interface {
	SendPasswordReset(ctx context.Context, email, name, resetURL string) error
}

// PasswordResetService mints single-use reset tokens and redeems them.
// Only the SHA-256 digest of a token is persisted; redemption rehashes
// the presented token and matches it against unexpired rows.
type PasswordResetService struct {
	users     ports.UserRepository
	tokens    ports.ResetTokenRepository
	mailer    ResetMailSender
	clientURL string
	ttl       time.Duration
	now       func() time.Time
}

func NewPasswordResetService(users ports.UserRepository, tokens ports.ResetTokenRepository, mailer ResetMailSender, clientURL string, ttl time.Duration) *PasswordResetService {
	return &PasswordResetService{
		users:     users,
		tokens:    tokens,
		mailer:    mailer,
		clientURL: strings.TrimRight(strings.TrimSpace(clientURL), "/"),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Request issues a fresh reset token for the account registered under
// email and mails the reset link. Any previous token for the same user is
// superseded before the new one is stored.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: please enter your email", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.tokens.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}

	raw, err := util.GenerateResetToken(user.ID)
	if err != nil {
		return err
	}

	now := s.now()
	if _, err := s.tokens.Create(ctx, user.ID, util.HashResetToken(raw), now.Add(s.ttl)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", s.clientURL, raw)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, resetURL); err != nil {
		// The token row deliberately stays; the user can retry the request.
		log.Printf("password reset mail to %s failed: %v", user.Email, err)
		return ErrEmailSend
	}
	return nil
}

// Reset redeems a raw token from the emailed link. A token that never
// existed, expired, or does not hash to a stored row all fail the same
// way, so the response leaks nothing about which case occurred. A
// redeemed token is deleted and cannot be replayed.
func (s *PasswordResetService) Reset(ctx context.Context, rawToken, newPassword string) error {
	if strings.TrimSpace(rawToken) == "" {
		return ErrInvalidResetToken
	}
	if len(newPassword) < util.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, util.MinPasswordLength)
	}

	token, err := s.tokens.FindLiveByHash(ctx, util.HashResetToken(rawToken), s.now())
	if err != nil {
		if isNotFound(err) {
			return ErrInvalidResetToken
		}
		return err
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		if isNotFound(err) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, salt, err := util.DerivePassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
		return err
	}

	if err := s.tokens.Delete(ctx, token.ID); err != nil {
		// The password is already changed; an expired leftover row is harmless.
		log.Printf("delete redeemed reset token %d: %v", token.ID, err)
	}
	return nil
}
