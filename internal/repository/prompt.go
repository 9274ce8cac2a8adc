package repository

import (
	"context"

	"github.com/emeeran/prompt-saver-web-app/internal/domain"
)

type PromptRepository interface {
	Create(ctx context.Context, ownerID int64, title, content string) (*domain.Prompt, error)
	FindByID(ctx context.Context, id int64) (*domain.Prompt, error)
	// ListByOwner returns the owner's prompts newest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Prompt, error)
	Update(ctx context.Context, id int64, title, content string) error
	Delete(ctx context.Context, id int64) error
}
