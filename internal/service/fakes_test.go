package service

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kekec/storefront/internal/domain"
)

// memUserRepo is an in-memory UserRepository recording enough call detail
// for assertions while behaving like the real store.
type memUserRepo struct {
	users map[uuid.UUID]*domain.User

	createErr      error
	findByEmailErr error
	findByIDErr    error
	updateErr      error

	lastCreateName  string
	lastCreateEmail string
	lastCreateHash  []byte
	lastCreateSalt  []byte

	passwordWrites []struct {
		id   uuid.UUID
		hash []byte
		salt []byte
	}
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *memUserRepo) Create(ctx context.Context, name, email string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	f.lastCreateName = name
	f.lastCreateEmail = email
	f.lastCreateHash = append([]byte(nil), passwordHash...)
	f.lastCreateSalt = append([]byte(nil), passwordSalt...)
	if f.createErr != nil {
		return nil, f.createErr
	}
	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: append([]byte(nil), passwordHash...),
		PasswordSalt: append([]byte(nil), passwordSalt...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[user.ID] = user
	clone := *user
	return &clone, nil
}

func (f *memUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.findByEmailErr != nil {
		return nil, f.findByEmailErr
	}
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if f.findByIDErr != nil {
		return nil, f.findByIDErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *memUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, name *string, photo *string, phone *string, bio *string) (*domain.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if name != nil {
		user.Name = *name
	}
	if photo != nil {
		user.Photo = photo
	}
	if phone != nil {
		user.Phone = phone
	}
	if bio != nil {
		user.Bio = bio
	}
	user.UpdatedAt = time.Now()
	clone := *user
	return &clone, nil
}

func (f *memUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	f.passwordWrites = append(f.passwordWrites, struct {
		id   uuid.UUID
		hash []byte
		salt []byte
	}{id: id, hash: append([]byte(nil), passwordHash...), salt: append([]byte(nil), passwordSalt...)})
	user, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.PasswordHash = append([]byte(nil), passwordHash...)
	user.PasswordSalt = append([]byte(nil), passwordSalt...)
	return nil
}

type memResetTokenRepo struct {
	tokens map[int64]*domain.ResetToken
	nextID int64

	createErr error
	deleteErr error

	deleteByUserCalls []uuid.UUID
	deleteCalls       []int64
}

func newMemResetTokenRepo() *memResetTokenRepo {
	return &memResetTokenRepo{tokens: make(map[int64]*domain.ResetToken)}
}

func (f *memResetTokenRepo) Create(ctx context.Context, userID uuid.UUID, tokenHash []byte, expiresAt time.Time) (*domain.ResetToken, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	token := &domain.ResetToken{
		ID:        f.nextID,
		UserID:    userID,
		TokenHash: append([]byte(nil), tokenHash...),
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	f.tokens[token.ID] = token
	clone := *token
	return &clone, nil
}

func (f *memResetTokenRepo) FindLiveByHash(ctx context.Context, tokenHash []byte, now time.Time) (*domain.ResetToken, error) {
	for _, token := range f.tokens {
		if bytes.Equal(token.TokenHash, tokenHash) && token.ExpiresAt.After(now) {
			clone := *token
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *memResetTokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	f.deleteByUserCalls = append(f.deleteByUserCalls, userID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for id, token := range f.tokens {
		if token.UserID == userID {
			delete(f.tokens, id)
		}
	}
	return nil
}

func (f *memResetTokenRepo) Delete(ctx context.Context, id int64) error {
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.tokens, id)
	return nil
}

type fakeResetMailer struct {
	sent []struct {
		email    string
		name     string
		resetURL string
	}
	err error
}

func (f *fakeResetMailer) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	f.sent = append(f.sent, struct {
		email    string
		name     string
		resetURL string
	}{email: email, name: name, resetURL: resetURL})
	return f.err
}

type fakeProductRepo struct {
	created []*domain.Product
	err     error
}

func (f *fakeProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	clone := *product
	clone.ID = uuid.New()
	now := time.Now()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	f.created = append(f.created, &clone)
	result := clone
	return &result, nil
}

type fakeStorage struct {
	uploads []struct {
		bucket      string
		objectName  string
		contentType string
		size        int64
	}
	err error
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, struct {
		bucket      string
		objectName  string
		contentType string
		size        int64
	}{bucket: bucket, objectName: objectName, contentType: contentType, size: size})
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + bucket + "/" + objectName, nil
}
