package email_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/emeeran/prompt-saver-web-app/internal/email"
)

type fakeSender struct {
	to      string
	subject string
	html    string
	err     error
}

func (s *fakeSender) Send(_ context.Context, to, subject, html string) error {
	s.to, s.subject, s.html = to, subject, html
	return s.err
}

func TestSendWelcome_RendersUsername(t *testing.T) {
	sender := &fakeSender{}
	g := email.NewGateway(sender, slog.Default())

	if err := g.SendWelcome(context.Background(), "alice@example.com", "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.to != "alice@example.com" {
		t.Errorf("to = %q", sender.to)
	}
	if !strings.Contains(sender.html, "alice") {
		t.Errorf("body %q does not mention the username", sender.html)
	}
	if !strings.Contains(sender.subject, "Welcome") {
		t.Errorf("subject = %q", sender.subject)
	}
}

func TestSendWelcome_EscapesUsername(t *testing.T) {
	sender := &fakeSender{}
	g := email.NewGateway(sender, slog.Default())

	if err := g.SendWelcome(context.Background(), "x@example.com", `<script>`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(sender.html, "<script>") {
		t.Error("username not HTML-escaped")
	}
}

func TestSendMagicLink_EmbedsLink(t *testing.T) {
	sender := &fakeSender{}
	g := email.NewGateway(sender, slog.Default())

	link := "http://localhost:8080/login/verify/abc"
	if err := g.SendMagicLink(context.Background(), "alice@example.com", link); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sender.html, link) {
		t.Errorf("body %q does not contain link", sender.html)
	}
}

func TestSendPasswordReset_EmbedsLink(t *testing.T) {
	sender := &fakeSender{}
	g := email.NewGateway(sender, slog.Default())

	link := "http://localhost:8080/reset-password/abc"
	if err := g.SendPasswordReset(context.Background(), "alice@example.com", link); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sender.html, link) {
		t.Errorf("body %q does not contain link", sender.html)
	}
}

func TestSend_TransportError_Surfaces(t *testing.T) {
	sendErr := errors.New("provider down")
	sender := &fakeSender{err: sendErr}
	g := email.NewGateway(sender, slog.Default())

	err := g.SendWelcome(context.Background(), "alice@example.com", "alice")
	if !errors.Is(err, sendErr) {
		t.Errorf("want transport error surfaced, got %v", err)
	}
}
