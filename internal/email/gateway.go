package email

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/emeeran/prompt-saver-web-app/internal/metrics"
)

// Gateway renders the fixed transactional templates and hands them to a
// Sender. Delivery is best-effort: every failure is logged and counted,
// and callers are expected not to fail their primary action on it.
type Gateway struct {
	sender Sender
	logger *slog.Logger
}

func NewGateway(sender Sender, logger *slog.Logger) *Gateway {
	return &Gateway{
		sender: sender,
		logger: logger.With("component", "email_gateway"),
	}
}

func (g *Gateway) SendWelcome(ctx context.Context, to, username string) error {
	body := fmt.Sprintf(
		`<h1>Welcome to Prompt Saver, %s!</h1>
<p>Thank you for joining our platform. Start saving your prompts today!</p>`,
		html.EscapeString(username),
	)
	return g.send(ctx, "welcome", to, "Welcome to Prompt Saver!", body)
}

func (g *Gateway) SendMagicLink(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(
		`<p>Click the link below to sign in (expires in 10 minutes):</p><p><a href="%s">%s</a></p>`,
		link, link,
	)
	return g.send(ctx, "magic_link", to, "Your sign-in link", body)
}

func (g *Gateway) SendPasswordReset(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(
		`<p>Click the link below to reset your password (expires in 1 hour):</p><p><a href="%s">%s</a></p>`,
		link, link,
	)
	return g.send(ctx, "password_reset", to, "Reset your password", body)
}

func (g *Gateway) send(ctx context.Context, template, to, subject, body string) error {
	if err := g.sender.Send(ctx, to, subject, body); err != nil {
		g.logger.ErrorContext(ctx, "email delivery failed", "template", template, "error", err)
		metrics.EmailsSentTotal.WithLabelValues(template, "error").Inc()
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues(template, "ok").Inc()
	return nil
}
