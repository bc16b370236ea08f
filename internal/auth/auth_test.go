package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticHash string

func (h staticHash) AdminPasswordHash() string { return string(h) }

func newTestVerifier(t *testing.T) *Verifier {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	return NewVerifier(staticHash(hash), 5, time.Minute, 30*time.Minute)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash, "hash must not be the plaintext")

	v := NewVerifier(staticHash(hash), 5, time.Minute, 30*time.Minute)
	_, err = v.Login("admin123")
	assert.NoError(t, err)
}

func TestVerifier_Login(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		v := newTestVerifier(t)
		_, err := v.Login("letmein")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("success issues a valid token", func(t *testing.T) {
		v := newTestVerifier(t)
		token, err := v.Login("admin123")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.NoError(t, v.Verify(token))
	})

	t.Run("success resets the failure counter", func(t *testing.T) {
		v := newTestVerifier(t)
		for i := 0; i < 4; i++ {
			_, err := v.Login("wrong")
			require.ErrorIs(t, err, ErrInvalidPassword)
		}
		_, err := v.Login("admin123")
		require.NoError(t, err)

		// Four more failures must not trip the lockout.
		for i := 0; i < 4; i++ {
			_, err := v.Login("wrong")
			assert.ErrorIs(t, err, ErrInvalidPassword)
		}
	})
}

func TestVerifier_Lockout(t *testing.T) {
	v := newTestVerifier(t)
	now := time.Now()
	v.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		_, err := v.Login("wrong")
		require.ErrorIs(t, err, ErrInvalidPassword)
	}

	// The gate refuses even the correct password while locked.
	_, err := v.Login("admin123")
	assert.ErrorIs(t, err, ErrLocked)

	// After the lockout window passes the correct password works again.
	now = now.Add(time.Minute + time.Second)
	_, err = v.Login("admin123")
	assert.NoError(t, err)
}

func TestVerifier_Verify(t *testing.T) {
	t.Run("unknown token", func(t *testing.T) {
		v := newTestVerifier(t)
		assert.ErrorIs(t, v.Verify("not-a-token"), ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		v := newTestVerifier(t)
		now := time.Now()
		v.now = func() time.Time { return now }

		token, err := v.Login("admin123")
		require.NoError(t, err)

		now = now.Add(31 * time.Minute)
		assert.ErrorIs(t, v.Verify(token), ErrInvalidToken)
	})

	t.Run("revoked token", func(t *testing.T) {
		v := newTestVerifier(t)
		token, err := v.Login("admin123")
		require.NoError(t, err)

		v.Revoke(token)
		assert.ErrorIs(t, v.Verify(token), ErrInvalidToken)
	})
}
