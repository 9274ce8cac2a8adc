package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ConsumedTokenRepository struct {
	pool *pgxpool.Pool
}

func NewConsumedTokenRepository(pool *pgxpool.Pool) *ConsumedTokenRepository {
	return &ConsumedTokenRepository{pool: pool}
}

// Consume inserts the hash; ON CONFLICT DO NOTHING makes the first caller
// win, so a replayed token reports consumed=false.
func (r *ConsumedTokenRepository) Consume(ctx context.Context, tokenHash string, expiresAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO consumed_tokens (token_hash, expires_at) VALUES ($1, $2)
		 ON CONFLICT (token_hash) DO NOTHING`,
		tokenHash, expiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("consume token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ConsumedTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM consumed_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge consumed tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
