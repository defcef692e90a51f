package client

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dorsu/alumnitracer/internal/pkg/clientstorage"
)

// TokenStore reads and writes the bearer token in durable client storage.
// Right after login there is a short window where the token has not been
// persisted yet; Await papers over that provisioning race with a bounded
// poll instead of failing or firing an unauthenticated request immediately.
type TokenStore struct {
	store    *clientstorage.Store
	wait     time.Duration
	interval time.Duration
}

// NewTokenStore creates a token store over the durable storage.
func NewTokenStore(store *clientstorage.Store, wait, interval time.Duration) *TokenStore {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	return &TokenStore{store: store, wait: wait, interval: interval}
}

// Current returns the stored token if present and not known-expired.
func (t *TokenStore) Current() (string, bool) {
	raw, ok := t.store.Get(clientstorage.KeyToken)
	if !ok || raw == "" {
		return "", false
	}
	if expired(raw) {
		return "", false
	}
	return raw, true
}

// Await polls storage for a usable token until the provisioning window
// closes or ctx is done. Returns ("", false) when no token appears;
// callers then degrade to an unauthenticated request.
func (t *TokenStore) Await(ctx context.Context) (string, bool) {
	if tok, ok := t.Current(); ok {
		return tok, true
	}
	deadline := time.NewTimer(t.wait)
	defer deadline.Stop()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", false
		case <-deadline.C:
			return "", false
		case <-ticker.C:
			if tok, ok := t.Current(); ok {
				return tok, true
			}
		}
	}
}

// Set persists the token.
func (t *TokenStore) Set(token string) error {
	return t.store.Set(clientstorage.KeyToken, token)
}

// Clear removes the token.
func (t *TokenStore) Clear() error {
	return t.store.Delete(clientstorage.KeyToken)
}

// expired peeks at a JWT's exp claim without verifying the signature;
// verification is the server's job. Opaque tokens pass through as usable.
func expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
