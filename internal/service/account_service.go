package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kekec/storefront/internal/domain"
	"github.com/kekec/storefront/internal/repository/ports"
	"github.com/kekec/storefront/internal/util"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailAlreadyUsed   = errors.New("user with that email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type ProfileUpdate struct {
	Name  *string
	Photo *string
	Phone *string
	Bio   *string
}

// AccountService owns registration, login, profile access and password
// change. Passwords are hashed here before they reach the repository, so
// the store never sees plaintext.
type AccountService struct {
	users    ports.UserRepository
	sessions *util.SessionManager
}

func NewAccountService(users ports.UserRepository, sessions *util.SessionManager) *AccountService {
	return &AccountService{users: users, sessions: sessions}
}

func (s *AccountService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: please fill in all required fields", ErrValidation)
	}
	if len(password) < util.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, util.MinPasswordLength)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyUsed
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, name, email, hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, err
	}

	return s.issueSession(user)
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: please enter email and password", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(user)
}

// Authenticate resolves a session token to its user. Any failure means
// the caller is unauthenticated; the gate does not distinguish causes.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.sessions.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// IsLoggedIn reports whether the token verifies as a live session. It
// never errors; a bad token is simply "not logged in".
func (s *AccountService) IsLoggedIn(token string) bool {
	_, err := s.sessions.Parse(token)
	return err == nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the supplied fields and keeps the rest. Email is
// never touched, whatever the request carried.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.UpdateProfile(ctx, userID, normalizeField(update.Name), update.Photo, update.Phone, update.Bio)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: please enter old and new password", ErrValidation)
	}
	if len(newPassword) < util.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, util.MinPasswordLength)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	if !util.VerifyPassword(oldPassword, user.PasswordSalt, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, salt, err := util.DerivePassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash, salt)
}

func (s *AccountService) issueSession(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeField(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
