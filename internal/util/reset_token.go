package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateResetToken builds the raw reset secret handed to the user: 32
// random bytes hex-encoded with the owning user id appended. Only its
// SHA-256 digest is ever stored.
func GenerateResetToken(userID uuid.UUID) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf) + userID.String(), nil
}

func HashResetToken(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}
