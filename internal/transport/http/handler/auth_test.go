package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/emeeran/prompt-saver-web-app/internal/domain"
	"github.com/emeeran/prompt-saver-web-app/internal/session"
	"github.com/emeeran/prompt-saver-web-app/internal/token"
	"github.com/emeeran/prompt-saver-web-app/internal/transport/http/handler"
	"github.com/emeeran/prompt-saver-web-app/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSessionKey = "test-session-key-at-least-32-chars!!"

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	register             func(ctx context.Context, username, email, password string) (*domain.User, error)
	login                func(ctx context.Context, username, password string) (*domain.User, error)
	requestMagicLink     func(ctx context.Context, email string) error
	verifyMagicLink      func(ctx context.Context, rawToken string) (*domain.User, error)
	requestPasswordReset func(ctx context.Context, email string) error
	resetPassword        func(ctx context.Context, rawToken, newPassword string) error
}

func (f *fakeAuthUsecase) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	return f.register(ctx, username, email, password)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, username, password string) (*domain.User, error) {
	return f.login(ctx, username, password)
}

func (f *fakeAuthUsecase) RequestMagicLink(ctx context.Context, email string) error {
	return f.requestMagicLink(ctx, email)
}

func (f *fakeAuthUsecase) VerifyMagicLink(ctx context.Context, rawToken string) (*domain.User, error) {
	return f.verifyMagicLink(ctx, rawToken)
}

func (f *fakeAuthUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	return f.requestPasswordReset(ctx, email)
}

func (f *fakeAuthUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	return f.resetPassword(ctx, rawToken, newPassword)
}

func newAuthEngine(uc *fakeAuthUsecase) (*gin.Engine, *session.Manager) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	sessions := session.NewManager([]byte(testSessionKey))
	h := handler.NewAuthHandler(uc, sessions, logger)

	r := gin.New()
	r.Use(middleware.Session(sessions))
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/magic-link", h.RequestMagicLink)
	r.GET("/login/verify/:token", h.VerifyMagicLink)
	r.POST("/forgot-password", h.RequestPasswordReset)
	r.POST("/reset-password/:token", h.ResetPassword)
	r.GET("/logout", h.Logout)
	return r, sessions
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func flashValue(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == handler.FlashCookie {
			v, err := url.QueryUnescape(c.Value)
			if err != nil {
				t.Fatalf("unescape flash cookie: %v", err)
			}
			return v
		}
	}
	return ""
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

// ---- Register ----

func TestRegister_DuplicateUsername_FlashAndRedirect(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _, _, _ string) (*domain.User, error) {
			return nil, domain.ErrDuplicateUsername
		},
	}
	r, _ := newAuthEngine(uc)

	w := postForm(r, "/register", url.Values{
		"username": {"alice"}, "email": {"alice@example.com"}, "password": {"pw123"},
	})

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/register" {
		t.Errorf("Location = %q, want /register", loc)
	}
	if msg := flashValue(t, w); !strings.Contains(msg, "Username already exists") {
		t.Errorf("flash = %q, want duplicate-username message", msg)
	}
}

func TestRegister_Success_RedirectsToLogin(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, username, email, _ string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: username, Email: email}, nil
		},
	}
	r, _ := newAuthEngine(uc)

	w := postForm(r, "/register", url.Values{
		"username": {"alice"}, "email": {"alice@example.com"}, "password": {"pw123"},
	})

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestRegister_InvalidEmail_Returns400(t *testing.T) {
	r, _ := newAuthEngine(&fakeAuthUsecase{})

	w := postForm(r, "/register", url.Values{
		"username": {"alice"}, "email": {"not-an-email"}, "password": {"pw123"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- Login ----

func TestLogin_WrongPassword_NoSessionCookie(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	r, _ := newAuthEngine(uc)

	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if sessionCookie(w) != nil {
		t.Error("session cookie set for failed login")
	}
}

func TestLogin_Success_EstablishesSession(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*domain.User, error) {
			return &domain.User{ID: 42, Username: "alice"}, nil
		},
	}
	r, sessions := newAuthEngine(uc)

	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"pw123"}})

	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	userID, err := sessions.Parse(cookie.Value)
	if err != nil {
		t.Fatalf("session cookie does not parse: %v", err)
	}
	if userID != 42 {
		t.Errorf("session user = %d, want 42", userID)
	}
}

func TestLogin_RememberMe_PersistentCookie(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*domain.User, error) {
			return &domain.User{ID: 42}, nil
		},
	}
	r, _ := newAuthEngine(uc)

	w := postForm(r, "/login", url.Values{
		"username": {"alice"}, "password": {"pw123"}, "remember": {"true"},
	})

	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	if cookie.MaxAge <= 0 {
		t.Errorf("cookie MaxAge = %d, want persistent lifetime", cookie.MaxAge)
	}
}

func TestLogin_ExternalNextTarget_Ignored(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*domain.User, error) {
			return &domain.User{ID: 42}, nil
		},
	}
	r, _ := newAuthEngine(uc)

	for _, next := range []string{
		"https://evil.example/x",
		"//evil.example/x",
		"http://evil.example",
	} {
		w := postForm(r, "/login?next="+url.QueryEscape(next),
			url.Values{"username": {"alice"}, "password": {"pw123"}})
		if loc := w.Header().Get("Location"); loc != "/dashboard" {
			t.Errorf("next=%q: Location = %q, want /dashboard", next, loc)
		}
	}
}

func TestLogin_RelativeNextTarget_Honored(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*domain.User, error) {
			return &domain.User{ID: 42}, nil
		},
	}
	r, _ := newAuthEngine(uc)

	w := postForm(r, "/login?next=%2Fprompt%2Fnew",
		url.Values{"username": {"alice"}, "password": {"pw123"}})

	if loc := w.Header().Get("Location"); loc != "/prompt/new" {
		t.Errorf("Location = %q, want /prompt/new", loc)
	}
}

// ---- Magic link ----

func TestRequestMagicLink_UnknownEmail_Flash(t *testing.T) {
	uc := &fakeAuthUsecase{
		requestMagicLink: func(_ context.Context, _ string) error {
			return domain.ErrUnknownEmail
		},
	}
	r, _ := newAuthEngine(uc)

	w := postForm(r, "/magic-link", url.Values{"email": {"ghost@example.com"}})

	if msg := flashValue(t, w); !strings.Contains(msg, "No account") {
		t.Errorf("flash = %q, want unknown-email message", msg)
	}
}

func TestVerifyMagicLink_ExpiredAndInvalid_DistinctMessages(t *testing.T) {
	byToken := map[string]error{
		"old": token.ErrExpired,
		"bad": token.ErrInvalid,
	}
	uc := &fakeAuthUsecase{
		verifyMagicLink: func(_ context.Context, rawToken string) (*domain.User, error) {
			return nil, byToken[rawToken]
		},
	}
	r, _ := newAuthEngine(uc)

	messages := make(map[string]string)
	for _, tok := range []string{"old", "bad"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/login/verify/"+tok, nil)
		r.ServeHTTP(w, req)

		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Errorf("token %q: Location = %q, want /login", tok, loc)
		}
		messages[tok] = flashValue(t, w)
	}

	if messages["old"] == messages["bad"] {
		t.Errorf("expired and invalid links share the message %q", messages["old"])
	}
}

func TestVerifyMagicLink_Valid_SignsIn(t *testing.T) {
	uc := &fakeAuthUsecase{
		verifyMagicLink: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: 7}, nil
		},
	}
	r, sessions := newAuthEngine(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login/verify/sometoken", nil)
	r.ServeHTTP(w, req)

	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	if userID, err := sessions.Parse(cookie.Value); err != nil || userID != 7 {
		t.Errorf("session user = %d (err %v), want 7", userID, err)
	}
}

// ---- Password reset ----

func TestResetPassword_InvalidToken_GenericMessage(t *testing.T) {
	uc := &fakeAuthUsecase{
		resetPassword: func(_ context.Context, _, _ string) error {
			return token.ErrInvalid
		},
	}
	r, _ := newAuthEngine(uc)

	w := postForm(r, "/reset-password/badtoken", url.Values{"password": {"newpw"}})

	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if msg := flashValue(t, w); !strings.Contains(msg, "no longer valid") {
		t.Errorf("flash = %q, want generic reset-failed message", msg)
	}
}

func TestResetPassword_Success(t *testing.T) {
	var gotToken, gotPassword string
	uc := &fakeAuthUsecase{
		resetPassword: func(_ context.Context, rawToken, newPassword string) error {
			gotToken, gotPassword = rawToken, newPassword
			return nil
		},
	}
	r, _ := newAuthEngine(uc)

	w := postForm(r, "/reset-password/goodtoken", url.Values{"password": {"newpw456"}})

	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if gotToken != "goodtoken" || gotPassword != "newpw456" {
		t.Errorf("reset called with (%q, %q)", gotToken, gotPassword)
	}
}

func TestRequestPasswordReset_InternalError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		requestPasswordReset: func(_ context.Context, _ string) error {
			return errors.New("db down")
		},
	}
	r, _ := newAuthEngine(uc)

	w := postForm(r, "/forgot-password", url.Values{"email": {"alice@example.com"}})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// ---- Logout ----

func TestLogout_ClearsSessionCookie(t *testing.T) {
	r, sessions := newAuthEngine(&fakeAuthUsecase{})

	value, _, err := sessions.Issue(42, false)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: value})
	r.ServeHTTP(w, req)

	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("no session cookie in response")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("session cookie not cleared: value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}
