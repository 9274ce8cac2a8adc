package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/emeeran/prompt-saver-web-app/internal/domain"
	"github.com/emeeran/prompt-saver-web-app/internal/session"
	"github.com/emeeran/prompt-saver-web-app/internal/token"
	"github.com/emeeran/prompt-saver-web-app/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
	RequestMagicLink(ctx context.Context, email string) error
	VerifyMagicLink(ctx context.Context, rawToken string) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
}

// sessionIssuer is the subset of session.Manager the handler needs.
type sessionIssuer interface {
	Issue(userID int64, remember bool) (value string, maxAge int, err error)
}

type AuthHandler struct {
	auth     authUsecaser
	sessions sessionIssuer
	logger   *slog.Logger
}

func NewAuthHandler(auth authUsecaser, sessions sessionIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		logger:   logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email"    json:"email"    binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	if _, ok := middleware.CurrentUserID(c); ok {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		flashRedirect(c, msgDuplicateUsername, "/register")
	case errors.Is(err, domain.ErrDuplicateEmail):
		flashRedirect(c, msgDuplicateEmail, "/register")
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "register", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	default:
		flashRedirect(c, msgRegistered, "/login")
	}
}

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Remember bool   `form:"remember" json:"remember"`
}

// POST /login?next=<relative-path>
func (h *AuthHandler) Login(c *gin.Context) {
	if _, ok := middleware.CurrentUserID(c); ok {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		flashRedirect(c, msgInvalidCredentials, "/login")
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		flashRedirect(c, msgInvalidCredentials, "/login")
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	default:
		if !h.establishSession(c, user.ID, req.Remember) {
			return
		}
		c.Redirect(http.StatusSeeOther, safeNext(c.Query("next")))
	}
}

// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

type emailRequest struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

// POST /magic-link
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.auth.RequestMagicLink(c.Request.Context(), req.Email)
	switch {
	case errors.Is(err, domain.ErrUnknownEmail):
		flashRedirect(c, msgUnknownEmail, "/login")
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "request magic link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	default:
		flashRedirect(c, msgMagicLinkSent, "/login")
	}
}

// GET /login/verify/:token
// Expired and invalid links get distinct messages.
func (h *AuthHandler) VerifyMagicLink(c *gin.Context) {
	user, err := h.auth.VerifyMagicLink(c.Request.Context(), c.Param("token"))
	switch {
	case errors.Is(err, token.ErrExpired):
		flashRedirect(c, msgLinkExpired, "/login")
	case errors.Is(err, token.ErrInvalid):
		flashRedirect(c, msgLinkInvalid, "/login")
	case errors.Is(err, domain.ErrUnknownEmail):
		flashRedirect(c, msgUnknownEmail, "/login")
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "verify magic link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	default:
		if !h.establishSession(c, user.ID, false) {
			return
		}
		c.Redirect(http.StatusFound, "/dashboard")
	}
}

// POST /forgot-password
// Reveals whether the email exists, matching the reference app.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email)
	switch {
	case errors.Is(err, domain.ErrUnknownEmail):
		flashRedirect(c, msgUnknownEmail, "/forgot-password")
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "request password reset", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	default:
		flashRedirect(c, msgResetSent, "/login")
	}
}

type resetPasswordRequest struct {
	Password string `form:"password" json:"password" binding:"required"`
}

// POST /reset-password/:token
// Any verification failure gets the same generic message.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	switch {
	case errors.Is(err, token.ErrExpired),
		errors.Is(err, token.ErrInvalid),
		errors.Is(err, domain.ErrUnknownEmail):
		flashRedirect(c, msgResetFailed, "/login")
	case err != nil:
		h.logger.ErrorContext(c.Request.Context(), "reset password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	default:
		flashRedirect(c, msgPasswordUpdated, "/login")
	}
}

// establishSession sets the session cookie. Returns false after writing
// a 500 when signing fails.
func (h *AuthHandler) establishSession(c *gin.Context, userID int64, remember bool) bool {
	value, maxAge, err := h.sessions.Issue(userID, remember)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "issue session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, value, maxAge, "/", "", false, true)
	return true
}
