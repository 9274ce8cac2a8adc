package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/emeeran/prompt-saver-web-app/internal/domain"
	"github.com/emeeran/prompt-saver-web-app/internal/repository"
)

type PromptUsecase struct {
	repo repository.PromptRepository
}

func NewPromptUsecase(repo repository.PromptRepository) *PromptUsecase {
	return &PromptUsecase{repo: repo}
}

func (u *PromptUsecase) Create(ctx context.Context, ownerID int64, title, content string) (*domain.Prompt, error) {
	if err := validatePrompt(title, content); err != nil {
		return nil, err
	}

	prompt, err := u.repo.Create(ctx, ownerID, title, content)
	if err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}
	return prompt, nil
}

func (u *PromptUsecase) List(ctx context.Context, ownerID int64) ([]domain.Prompt, error) {
	prompts, err := u.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return prompts, nil
}

func (u *PromptUsecase) Get(ctx context.Context, id, callerID int64) (*domain.Prompt, error) {
	prompt, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prompt.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	return prompt, nil
}

func (u *PromptUsecase) Update(ctx context.Context, id, callerID int64, title, content string) error {
	if err := validatePrompt(title, content); err != nil {
		return err
	}

	// Ownership is checked before any write; Forbidden never mutates.
	if _, err := u.Get(ctx, id, callerID); err != nil {
		return err
	}
	if err := u.repo.Update(ctx, id, title, content); err != nil {
		return fmt.Errorf("update prompt: %w", err)
	}
	return nil
}

func (u *PromptUsecase) Delete(ctx context.Context, id, callerID int64) error {
	if _, err := u.Get(ctx, id, callerID); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	return nil
}

func validatePrompt(title, content string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return domain.ErrValidation
	}
	if len(title) > domain.TitleMaxLen {
		return domain.ErrValidation
	}
	return nil
}
