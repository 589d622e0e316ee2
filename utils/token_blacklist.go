package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "jwt:blacklist:"

// TokenBlacklist remembers revoked tokens until they would have expired anyway.
// Redis is preferred so revocations are shared across instances; without it an
// in-memory map serves a single process.
type TokenBlacklist struct {
	rdb *redis.Client

	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewTokenBlacklist creates a blacklist backed by rdb, which may be nil.
func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb, entries: map[string]time.Time{}, now: time.Now}
}

// Revoke stores a token until expiration to support logout semantics.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if b.rdb != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return b.rdb.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
	}
	b.mu.Lock()
	b.pruneLocked()
	b.entries[token] = expiresAt
	b.mu.Unlock()
	return nil
}

// pruneLocked drops entries whose tokens have expired. b.mu must be held.
func (b *TokenBlacklist) pruneLocked() {
	now := b.now()
	for token, expiresAt := range b.entries {
		if now.After(expiresAt) {
			delete(b.entries, token)
		}
	}
}

// IsRevoked checks if a token was revoked before natural expiration.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	if b.rdb != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		n, err := b.rdb.Exists(ctx, blacklistPrefix+token).Result()
		if err != nil {
			// Fail open: a Redis outage must not lock every user out.
			Sugar.Warnf("token blacklist lookup failed: %v", err)
			return false
		}
		return n > 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	expiresAt, ok := b.entries[token]
	if !ok {
		return false
	}
	if b.now().After(expiresAt) {
		delete(b.entries, token)
		return false
	}
	return true
}
