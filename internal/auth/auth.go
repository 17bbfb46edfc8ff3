// Package auth implements session token issuance and validation.
//
// Tokens are opaque UUIDs held in an in-memory store with a fixed TTL.
// Credential verification is a collaborator concern: the Verifier interface
// is the boundary, and StaticVerifier is the env-configured implementation
// used by default.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned by a Verifier when the user/secret pair
// does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier authenticates a user/secret pair and returns the user ID.
type Verifier interface {
	Verify(ctx context.Context, user, secret string) (string, error)
}

// StaticVerifier validates credentials against a fixed user:secret list.
// All configured pairs are checked with constant-time comparison, and every
// pair is always checked so the comparison time does not reveal which user
// (if any) matched.
type StaticVerifier struct {
	secrets map[string]string
}

// NewStaticVerifier parses "user:secret" pairs. Malformed entries are skipped.
func NewStaticVerifier(pairs []string) *StaticVerifier {
	secrets := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		user, secret, ok := strings.Cut(pair, ":")
		if !ok || user == "" || secret == "" {
			continue
		}
		secrets[user] = secret
	}
	return &StaticVerifier{secrets: secrets}
}

// Verify implements Verifier.
func (v *StaticVerifier) Verify(_ context.Context, user, secret string) (string, error) {
	match := 0
	for u, s := range v.secrets {
		ok := subtle.ConstantTimeCompare([]byte(user), []byte(u)) &
			subtle.ConstantTimeCompare([]byte(secret), []byte(s))
		match |= ok
	}
	if match != 1 {
		return "", ErrInvalidCredentials
	}
	return user, nil
}

// Session is an issued bearer token bound to a user.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store holds active sessions in memory. Safe for concurrent use.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore creates a session store issuing tokens valid for ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// Issue creates a new session for userID and returns it.
func (s *Store) Issue(userID string) Session {
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return sess
}

// Validate looks up a token and reports whether it is active.
// Expired sessions are removed on access.
func (s *Store) Validate(token string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return Session{}, false
	}
	if s.now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return Session{}, false
	}
	return sess, true
}

// Revoke deletes a session. Returns false if the token was not active.
func (s *Store) Revoke(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return false
	}
	delete(s.sessions, token)
	return true
}

// PurgeExpired removes expired sessions and returns how many were dropped.
// Intended to be called periodically from a background goroutine.
func (s *Store) PurgeExpired() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
			dropped++
		}
	}
	return dropped
}

// ActiveCount returns the number of live sessions (including any expired
// entries not yet purged).
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
