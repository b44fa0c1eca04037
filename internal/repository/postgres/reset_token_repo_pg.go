package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kekec/storefront/internal/domain"
)

type ResetTokenRepository struct {
	db *sqlx.DB
}

func NewResetTokenRepo(db *sqlx.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, userID uuid.UUID, tokenHash []byte, expiresAt time.Time) (*domain.ResetToken, error) {
	const query = `
        INSERT INTO password_reset_token (user_id, token_hash, expires_at)
        VALUES ($1, $2, $3)
        RETURNING id, user_id, token_hash, created_at, expires_at
    `
	row := r.db.QueryRowxContext(ctx, query, userID, tokenHash, expiresAt)
	var token domain.ResetToken
	if err := row.StructScan(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *ResetTokenRepository) FindLiveByHash(ctx context.Context, tokenHash []byte, now time.Time) (*domain.ResetToken, error) {
	const query = `
        SELECT id, user_id, token_hash, created_at, expires_at
        FROM password_reset_token
        WHERE token_hash = $1 AND expires_at > $2
    `
	var token domain.ResetToken
	if err := r.db.GetContext(ctx, &token, query, tokenHash, now); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *ResetTokenRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	const query = `DELETE FROM password_reset_token WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *ResetTokenRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM password_reset_token WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
