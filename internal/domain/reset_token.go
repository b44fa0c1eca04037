package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResetToken holds the hashed form of a password-reset secret. The raw
// secret is only ever present in the email sent to the account owner.
type ResetToken struct {
	ID        int64     `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	TokenHash []byte    `db:"token_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}
