package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/emeeran/prompt-saver-web-app/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PromptRepository struct {
	pool *pgxpool.Pool
}

func NewPromptRepository(pool *pgxpool.Pool) *PromptRepository {
	return &PromptRepository{pool: pool}
}

func (r *PromptRepository) Create(ctx context.Context, ownerID int64, title, content string) (*domain.Prompt, error) {
	query := `
		INSERT INTO prompts (title, content, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, title, content, owner_id, created_at, updated_at`

	p, err := scanPrompt(r.pool.QueryRow(ctx, query, title, content, ownerID))
	if err != nil {
		return nil, fmt.Errorf("insert prompt: %w", err)
	}
	return p, nil
}

func (r *PromptRepository) FindByID(ctx context.Context, id int64) (*domain.Prompt, error) {
	query := `SELECT id, title, content, owner_id, created_at, updated_at
		FROM prompts WHERE id = $1`
	return scanPrompt(r.pool.QueryRow(ctx, query, id))
}

func (r *PromptRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Prompt, error) {
	query := `SELECT id, title, content, owner_id, created_at, updated_at
		FROM prompts WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []domain.Prompt
	for rows.Next() {
		var p domain.Prompt
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}
	return prompts, nil
}

func (r *PromptRepository) Update(ctx context.Context, id int64, title, content string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE prompts SET title = $2, content = $3, updated_at = now() WHERE id = $1`,
		id, title, content,
	)
	if err != nil {
		return fmt.Errorf("update prompt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPromptNotFound
	}
	return nil
}

func (r *PromptRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prompts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPromptNotFound
	}
	return nil
}

func scanPrompt(row pgx.Row) (*domain.Prompt, error) {
	var p domain.Prompt
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPromptNotFound
		}
		return nil, err
	}
	return &p, nil
}
