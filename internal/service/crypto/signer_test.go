package crypto

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testersen/jmsn.link/internal/model"
)

func TestNewSigner(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewSigner("")
		assert.Error(t, err)
	})

	t.Run("accepts non-empty secret", func(t *testing.T) {
		s, err := NewSigner("test-secret")
		require.NoError(t, err)
		assert.NotNil(t, s)
	})
}

func TestSigner_RoundTrip(t *testing.T) {
	signer, err := NewSigner("test-secret")
	require.NoError(t, err)

	sess := &model.Session{
		Exp:      time.Now().Add(15 * time.Minute).UnixMilli(),
		Sub:      "user-1",
		Email:    "user@example.com",
		Name:     "User",
		Viewer:   true,
		ShortURL: true,
	}

	token, err := signer.Sign(sess)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := signer.Verify(token, true)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestSigner_DistinctTokens(t *testing.T) {
	signer, err := NewSigner("test-secret")
	require.NoError(t, err)

	sess := &model.Session{Exp: time.Now().Add(time.Hour).UnixMilli(), Sub: "user-1"}

	a, err := signer.Sign(sess)
	require.NoError(t, err)
	b, err := signer.Sign(sess)
	require.NoError(t, err)

	// The salt guarantees two signings never collide.
	assert.NotEqual(t, a, b)
}

func TestSigner_Verify(t *testing.T) {
	signer, err := NewSigner("test-secret")
	require.NoError(t, err)

	valid := &model.Session{Exp: time.Now().Add(time.Hour).UnixMilli(), Sub: "user-1"}
	token, err := signer.Sign(valid)
	require.NoError(t, err)

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := signer.Verify("not base64!!", true)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("rejects truncated token", func(t *testing.T) {
		_, err := signer.Verify(base64.RawURLEncoding.EncodeToString([]byte("short")), true)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("rejects tampered payload", func(t *testing.T) {
		raw, decErr := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, decErr)

		// Flip one bit in the JSON body.
		raw[len(raw)-1] ^= 0x01
		_, err := signer.Verify(base64.RawURLEncoding.EncodeToString(raw), true)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("rejects token from another key", func(t *testing.T) {
		other, newErr := NewSigner("other-secret")
		require.NoError(t, newErr)

		_, err := other.Verify(token, true)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("rejects expired session", func(t *testing.T) {
		expired := &model.Session{Exp: time.Now().Add(-time.Minute).UnixMilli(), Sub: "user-1"}
		tok, signErr := signer.Sign(expired)
		require.NoError(t, signErr)

		_, err := signer.Verify(tok, true)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("expiry check can be disabled", func(t *testing.T) {
		expired := &model.Session{Exp: time.Now().Add(-time.Minute).UnixMilli(), Sub: "user-1"}
		tok, signErr := signer.Sign(expired)
		require.NoError(t, signErr)

		got, err := signer.Verify(tok, false)
		require.NoError(t, err)
		assert.Equal(t, "user-1", got.Sub)
	})
}
