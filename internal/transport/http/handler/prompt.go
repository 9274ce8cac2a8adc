package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/emeeran/prompt-saver-web-app/internal/domain"
	"github.com/emeeran/prompt-saver-web-app/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

// promptUsecaser is the subset of PromptUsecase the handler needs.
type promptUsecaser interface {
	Create(ctx context.Context, ownerID int64, title, content string) (*domain.Prompt, error)
	List(ctx context.Context, ownerID int64) ([]domain.Prompt, error)
	Get(ctx context.Context, id, callerID int64) (*domain.Prompt, error)
	Update(ctx context.Context, id, callerID int64, title, content string) error
	Delete(ctx context.Context, id, callerID int64) error
}

type PromptHandler struct {
	prompts promptUsecaser
	logger  *slog.Logger
}

func NewPromptHandler(prompts promptUsecaser, logger *slog.Logger) *PromptHandler {
	return &PromptHandler{prompts: prompts, logger: logger.With("component", "prompt_handler")}
}

type promptForm struct {
	Title   string `form:"title"   json:"title"`
	Content string `form:"content" json:"content"`
}

type promptResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPromptResponse(p *domain.Prompt) promptResponse {
	return promptResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// GET /dashboard
func (h *PromptHandler) Dashboard(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	prompts, err := h.prompts.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list prompts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]promptResponse, 0, len(prompts))
	for i := range prompts {
		out = append(out, toPromptResponse(&prompts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"prompts": out})
}

// POST /prompt/new
func (h *PromptHandler) Create(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var form promptForm
	if err := c.ShouldBind(&form); err != nil {
		flashRedirect(c, msgPromptRequired, "/prompt/new")
		return
	}

	_, err := h.prompts.Create(c.Request.Context(), userID, form.Title, form.Content)
	switch {
	case errors.Is(err, domain.ErrValidation):
		flashRedirect(c, msgPromptRequired, "/prompt/new")
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "create prompt", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	default:
		flashRedirect(c, msgPromptCreated, "/dashboard")
	}
}

// GET /prompt/:id
func (h *PromptHandler) GetByID(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, ok := promptID(c)
	if !ok {
		return
	}

	prompt, err := h.prompts.Get(c.Request.Context(), id, userID)
	switch {
	case errors.Is(err, domain.ErrPromptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgPromptNotFound})
	case errors.Is(err, domain.ErrForbidden):
		flashRedirect(c, msgNoPermission, "/dashboard")
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "get prompt", "prompt_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	default:
		c.JSON(http.StatusOK, toPromptResponse(prompt))
	}
}

// POST /prompt/:id/edit
func (h *PromptHandler) Update(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, ok := promptID(c)
	if !ok {
		return
	}

	var form promptForm
	if err := c.ShouldBind(&form); err != nil {
		flashRedirect(c, msgPromptRequired, "/prompt/"+strconv.FormatInt(id, 10)+"/edit")
		return
	}

	err := h.prompts.Update(c.Request.Context(), id, userID, form.Title, form.Content)
	switch {
	case errors.Is(err, domain.ErrValidation):
		flashRedirect(c, msgPromptRequired, "/prompt/"+strconv.FormatInt(id, 10)+"/edit")
	case errors.Is(err, domain.ErrPromptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgPromptNotFound})
	case errors.Is(err, domain.ErrForbidden):
		flashRedirect(c, msgNoPermission, "/dashboard")
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "update prompt", "prompt_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	default:
		flashRedirect(c, msgPromptUpdated, "/dashboard")
	}
}

// POST /prompt/:id/delete
func (h *PromptHandler) Delete(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, ok := promptID(c)
	if !ok {
		return
	}

	err := h.prompts.Delete(c.Request.Context(), id, userID)
	switch {
	case errors.Is(err, domain.ErrPromptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgPromptNotFound})
	case errors.Is(err, domain.ErrForbidden):
		flashRedirect(c, msgNoPermission, "/dashboard")
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "delete prompt", "prompt_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	default:
		flashRedirect(c, msgPromptDeleted, "/dashboard")
	}
}

func promptID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": msgPromptNotFound})
		return 0, false
	}
	return id, true
}
