// internal/form/csrf.go
//
// Formguard – Forms subsystem: stateless CSRF tokens.
//
// Context
//   Rendered forms embed a hidden `csrf_token` input.  The HTTP layer
//   verifies it before a submit event ever reaches a Guard, so a forged
//   post is refused outright instead of being validated.  Tokens are
//   stateless and bound to one form:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce|unixMicro|formID) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – issue time, 8 bytes, big-endian.
//   •  HMAC – keyed with the configured secret.  The form ID is signed but
//      not embedded, so a token for "login" never verifies for "signup".
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"
)

const (
	nonceBytes    = 16
	tokenBytes    = nonceBytes + 8 + sha256.Size
	minSecretLen  = 32
	DefaultMaxAge = 2 * time.Hour
	maxClockSkew  = time.Minute
)

var (
	ErrBadToken     = errors.New("csrf token invalid")
	ErrTokenExpired = errors.New("csrf token expired")
)

// Tokens issues and verifies CSRF tokens.  Safe for concurrent use.
type Tokens struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTokens returns a token service.  A secret shorter than 32 bytes is
// replaced with a random one; ephemeral reports whether that happened so
// the caller can warn that tokens will not survive a restart.
func NewTokens(secret []byte, maxAge time.Duration) (t *Tokens, ephemeral bool, err error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if len(secret) < minSecretLen {
		secret = make([]byte, minSecretLen)
		if _, err := rand.Read(secret); err != nil {
			return nil, false, err
		}
		ephemeral = true
	}
	return &Tokens{secret: secret, maxAge: maxAge, now: time.Now}, ephemeral, nil
}

// Issue creates a token for formID.  Call once per render.
func (t *Tokens) Issue(formID string) (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(t.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, t.sign(nonce, ts, formID)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify checks tok against formID.  It returns ErrBadToken for malformed
// or forged tokens and ErrTokenExpired for stale or future-dated ones.
func (t *Tokens) Verify(formID, tok string) error {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return ErrBadToken
	}

	nonce := raw[:nonceBytes]
	tsBytes := raw[nonceBytes : nonceBytes+8]
	sig := raw[nonceBytes+8:]

	if !hmac.Equal(sig, t.sign(nonce, tsBytes, formID)) {
		return ErrBadToken
	}

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	now := t.now()
	if now.Sub(issued) > t.maxAge || issued.Sub(now) > maxClockSkew {
		return ErrTokenExpired
	}
	return nil
}

func (t *Tokens) sign(nonce, ts []byte, formID string) []byte {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write(nonce)
	mac.Write(ts)
	mac.Write([]byte(formID))
	return mac.Sum(nil)
}
