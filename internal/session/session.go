// Package session mints and parses the signed cookie that carries the
// authenticated user between requests.
package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "ps_session"

var ErrInvalidSession = errors.New("invalid session")

const (
	defaultTTL  = 24 * time.Hour
	rememberTTL = 30 * 24 * time.Hour
)

type Manager struct {
	key []byte
	now func() time.Time
}

func NewManager(key []byte) *Manager {
	return &Manager{key: key, now: time.Now}
}

// Issue signs a session token for the user. With remember set the token
// lives 30 days and maxAge makes the cookie persistent; otherwise the
// cookie is a browser-session cookie backed by a 24h token.
func (m *Manager) Issue(userID int64, remember bool) (value string, maxAge int, err error) {
	ttl := defaultTTL
	if remember {
		ttl = rememberTTL
		maxAge = int(ttl / time.Second)
	}

	now := m.now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	value, err = t.SignedString(m.key)
	if err != nil {
		return "", 0, err
	}
	return value, maxAge, nil
}

// Parse validates the cookie value and returns the user ID it names.
func (m *Manager) Parse(value string) (int64, error) {
	token, err := jwt.Parse(value, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.key, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidSession
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return 0, ErrInvalidSession
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidSession
	}
	return userID, nil
}
