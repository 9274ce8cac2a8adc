package usecase

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/emeeran/prompt-saver-web-app/internal/domain"
	"github.com/emeeran/prompt-saver-web-app/internal/metrics"
	"github.com/emeeran/prompt-saver-web-app/internal/repository"
	"github.com/emeeran/prompt-saver-web-app/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// notifier is the subset of email.Gateway the usecase needs. Defined here
// (point of use) so tests can inject a fake. Delivery is best-effort: the
// gateway logs and counts failures, the usecase does not fail on them.
type notifier interface {
	SendWelcome(ctx context.Context, to, username string) error
	SendMagicLink(ctx context.Context, to, link string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}

type AuthUsecase struct {
	users    repository.UserRepository
	consumed repository.ConsumedTokenRepository
	tokens   *token.Service
	notify   notifier
	baseURL  string
}

func NewAuthUsecase(
	users repository.UserRepository,
	consumed repository.ConsumedTokenRepository,
	tokens *token.Service,
	notify notifier,
	baseURL string,
) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		consumed: consumed,
		tokens:   tokens,
		notify:   notify,
		baseURL:  baseURL,
	}
}

// Register creates a new account. Username is checked before email, so a
// request colliding on both reports the username first.
func (u *AuthUsecase) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if _, err := u.users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, username, email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Best-effort; the gateway already logged any failure.
	_ = u.notify.SendWelcome(ctx, user.Email, user.Username)

	return user, nil
}

// Login checks the password. Unknown username and hash mismatch are
// indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// RequestMagicLink issues a sign-in token for a known email and mails the
// verify link. No token is issued for unknown addresses.
func (u *AuthUsecase) RequestMagicLink(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUnknownEmail
		}
		return fmt.Errorf("find user: %w", err)
	}

	tok := u.tokens.Issue(user.Email, token.PurposeMagicLink)
	metrics.TokensIssuedTotal.WithLabelValues("magic_link").Inc()

	_ = u.notify.SendMagicLink(ctx, user.Email, u.baseURL+"/login/verify/"+tok)
	return nil
}

// VerifyMagicLink consumes a magic-link token and returns the user it
// signs in. A replayed token fails as invalid.
func (u *AuthUsecase) VerifyMagicLink(ctx context.Context, rawToken string) (*domain.User, error) {
	subject, err := u.verifyOnce(ctx, rawToken, token.PurposeMagicLink, token.MagicLinkMaxAge, "magic_link")
	if err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnknownEmail
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// RequestPasswordReset issues a reset token and mails the reset link.
// Like the magic-link flow, unknown emails are reported to the caller.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUnknownEmail
		}
		return fmt.Errorf("find user: %w", err)
	}

	tok := u.tokens.Issue(user.Email, token.PurposePasswordReset)
	metrics.TokensIssuedTotal.WithLabelValues("password_reset").Inc()

	_ = u.notify.SendPasswordReset(ctx, user.Email, u.baseURL+"/reset-password/"+tok)
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
// Existing sessions stay valid.
func (u *AuthUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	subject, err := u.verifyOnce(ctx, rawToken, token.PurposePasswordReset, token.PasswordResetMaxAge, "password_reset")
	if err != nil {
		return err
	}

	user, err := u.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUnknownEmail
		}
		return fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// verifyOnce checks signature and age, then claims the token in the
// consumed ledger so it cannot be replayed until it would have expired.
func (u *AuthUsecase) verifyOnce(ctx context.Context, rawToken string, purpose token.Purpose, maxAge time.Duration, label string) (string, error) {
	subject, err := u.tokens.Verify(rawToken, purpose, maxAge)
	if err != nil {
		result := "invalid"
		if errors.Is(err, token.ErrExpired) {
			result = "expired"
		}
		metrics.TokenVerificationsTotal.WithLabelValues(label, result).Inc()
		return "", err
	}

	tokenHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
	fresh, err := u.consumed.Consume(ctx, tokenHash, time.Now().Add(maxAge))
	if err != nil {
		return "", fmt.Errorf("consume token: %w", err)
	}
	if !fresh {
		metrics.TokenVerificationsTotal.WithLabelValues(label, "replayed").Inc()
		return "", token.ErrInvalid
	}

	metrics.TokenVerificationsTotal.WithLabelValues(label, "ok").Inc()
	return subject, nil
}
