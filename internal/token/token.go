// Package token issues and verifies signed, purpose-salted, time-limited
// tokens. A token carries an email address and its issuance time; validity
// is proven by signature and age alone, nothing is persisted here.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"strings"
	"time"
)

// Purpose salts the signing key so tokens minted for one flow are not
// valid in another, even under the same secret.
type Purpose string

const (
	PurposeMagicLink     Purpose = "email-confirm"
	PurposePasswordReset Purpose = "password-reset-salt"
)

// Validity windows per purpose.
const (
	MagicLinkMaxAge     = 600 * time.Second
	PasswordResetMaxAge = 3600 * time.Second
)

var (
	ErrExpired = errors.New("token has expired")
	ErrInvalid = errors.New("token is invalid")
)

type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(secret []byte) *Service {
	return &Service{secret: secret, now: time.Now}
}

// Issue encodes subject plus the current time and signs the pair under a
// key derived from the process secret and the purpose salt. Deterministic
// except for the embedded timestamp.
func (s *Service) Issue(subject string, purpose Purpose) string {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(s.now().Unix()))

	payload := base64.RawURLEncoding.EncodeToString([]byte(subject)) +
		"." + base64.RawURLEncoding.EncodeToString(ts[:])

	return payload + "." + s.sign(payload, purpose)
}

// Verify checks signature and age and returns the embedded subject.
// Returns ErrInvalid on malformed or tampered tokens and on purpose
// mismatch; ErrExpired strictly when the token is older than maxAge.
func (s *Service) Verify(tok string, purpose Purpose, maxAge time.Duration) (string, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return "", ErrInvalid
	}
	payload := parts[0] + "." + parts[1]

	want := s.sign(payload, purpose)
	if !hmac.Equal([]byte(want), []byte(parts[2])) {
		return "", ErrInvalid
	}

	subject, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalid
	}
	ts, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(ts) != 8 {
		return "", ErrInvalid
	}

	issued := time.Unix(int64(binary.BigEndian.Uint64(ts)), 0)
	if s.now().Sub(issued) > maxAge {
		return "", ErrExpired
	}

	return string(subject), nil
}

func (s *Service) sign(payload string, purpose Purpose) string {
	kdf := hmac.New(sha256.New, s.secret)
	kdf.Write([]byte(purpose))
	key := kdf.Sum(nil)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
