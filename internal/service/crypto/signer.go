// Package crypto implements the signed session token codec. Tokens are
// self-contained: HMAC-SHA256 tag, random salt and JSON payload packed into
// one URL-safe base64 string, so no server-side session state is needed.
package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/testersen/jmsn.link/internal/model"
)

var (
	// ErrTokenMalformed means the token could not be decoded at all.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenInvalid means the signature did not verify or the payload
	// was not a session.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired means the signature verified but the session's
	// expiration is not in the future.
	ErrTokenExpired = errors.New("token expired")
)

const (
	tagSize  = sha256.Size
	saltSize = 32
)

// Signer holds the process-wide symmetric key. It is constructed once at
// startup and never mutated, so concurrent use needs no synchronization.
type Signer struct {
	key []byte
}

// NewSigner derives the signing key from the configured secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signing secret must not be empty")
	}
	return &Signer{key: []byte(secret)}, nil
}

// Sign serializes the session and seals it into a token. A fresh 256-bit
// salt is drawn on every call, so two signings of an identical session
// produce different tokens.
func (s *Signer) Sign(session *model.Session) (string, error) {
	body, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to serialize session: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(salt)
	mac.Write(body)
	tag := mac.Sum(nil)

	token := make([]byte, 0, len(tag)+len(salt)+len(body))
	token = append(token, tag...)
	token = append(token, salt...)
	token = append(token, body...)

	return base64.RawURLEncoding.EncodeToString(token), nil
}

// Verify decodes a token and returns the session it carries. All failure
// modes return an error and callers must treat every one of them uniformly
// as "no session"; the distinct sentinels exist for logging only.
//
// checkExpiry is disabled for the OAuth2 state token, which reuses the
// session encoding as a signed nonce and has no meaningful expiration.
func (s *Signer) Verify(token string, checkExpiry bool) (*model.Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrTokenMalformed
	}
	if len(raw) < tagSize+saltSize {
		return nil, ErrTokenMalformed
	}

	tag, saltAndBody := raw[:tagSize], raw[tagSize:]

	mac := hmac.New(sha256.New, s.key)
	mac.Write(saltAndBody)
	// Constant-time compare; a plain bytes.Equal would leak the length of
	// a valid tag prefix through timing.
	if !hmac.Equal(tag, mac.Sum(nil)) {
		return nil, ErrTokenInvalid
	}

	var session model.Session
	if err := json.Unmarshal(saltAndBody[saltSize:], &session); err != nil {
		return nil, ErrTokenInvalid
	}

	if checkExpiry && session.IsExpired(time.Now()) {
		return nil, ErrTokenExpired
	}

	return &session, nil
}
