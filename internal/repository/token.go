package repository

import (
	"context"
	"time"
)

// ConsumedTokenRepository records which magic-link / reset tokens have
// already been used, keyed by the SHA-256 hash of the raw token.
type ConsumedTokenRepository interface {
	// Consume marks the hash as used. Returns false if it was already
	// consumed; the insert is the atomicity point.
	Consume(ctx context.Context, tokenHash string, expiresAt time.Time) (bool, error)
	// PurgeExpired deletes rows whose token would no longer verify
	// anyway, returning the number removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
