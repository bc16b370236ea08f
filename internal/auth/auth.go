// Package auth implements the admin gate: bcrypt credential verification
// with an attempt counter and short-lived bearer tokens. The original kiosk
// compared plaintext passwords; this is a deliberate hardening, and real
// deployments must keep it.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidPassword is returned on a credential mismatch.
	ErrInvalidPassword = errors.New("incorrect password")
	// ErrLocked is returned while the gate is locked out after repeated failures.
	ErrLocked = errors.New("too many failed attempts, try again later")
	// ErrInvalidToken is returned for unknown or expired bearer tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// HashProvider returns the currently stored credential hash.
type HashProvider interface {
	AdminPasswordHash() string
}

// Verifier gates the admin surface. Successful logins issue bearer tokens;
// failures count toward a lockout window.
type Verifier struct {
	hashes      HashProvider
	maxAttempts int
	lockout     time.Duration
	tokenTTL    time.Duration

	mu          sync.Mutex
	failures    int
	lockedUntil time.Time
	tokens      map[string]time.Time // token -> expiry
	now         func() time.Time
}

// NewVerifier creates a Verifier reading the credential hash from hashes.
func NewVerifier(hashes HashProvider, maxAttempts int, lockout, tokenTTL time.Duration) *Verifier {
	return &Verifier{
		hashes:      hashes,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		tokenTTL:    tokenTTL,
		tokens:      make(map[string]time.Time),
		now:         time.Now,
	}
}

// Login verifies the password and returns a bearer token on success.
func (v *Verifier) Login(password string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if now.Before(v.lockedUntil) {
		return "", ErrLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(v.hashes.AdminPasswordHash()), []byte(password)) != nil {
		v.failures++
		if v.failures >= v.maxAttempts {
			v.lockedUntil = now.Add(v.lockout)
			v.failures = 0
		}
		return "", ErrInvalidPassword
	}

	v.failures = 0
	token := uuid.NewString()
	v.tokens[token] = now.Add(v.tokenTTL)
	return token, nil
}

// Verify checks a bearer token issued by Login.
func (v *Verifier) Verify(token string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	expiry, ok := v.tokens[token]
	if !ok {
		return ErrInvalidToken
	}
	if v.now().After(expiry) {
		delete(v.tokens, token)
		return ErrInvalidToken
	}
	return nil
}

// Revoke invalidates a token (logout).
func (v *Verifier) Revoke(token string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.tokens, token)
}
