package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kekec/storefront/internal/domain"
)

type ResetTokenRepository interface {
	Create(ctx context.Context, userID uuid.UUID, tokenHash []byte, expiresAt time.Time) (*domain.ResetToken, error)
	FindLiveByHash(ctx context.Context, tokenHash []byte, now time.Time) (*domain.ResetToken, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id int64) error
}
