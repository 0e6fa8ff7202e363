package port

import (
	"context"
	"time"
)

// SessionStore keeps short-lived auth state with TTL expiry: failed login
// counters, account locks and revoked token ids.
type SessionStore interface {
	// IncrementFailures bumps the failure counter for username, starting a
	// window of ttl on the first failure, and returns the new count.
	IncrementFailures(ctx context.Context, username string, ttl time.Duration) (int64, error)
	ResetFailures(ctx context.Context, username string) error
	Lock(ctx context.Context, username string, ttl time.Duration) error
	Unlock(ctx context.Context, username string) error
	// LockedFor returns the remaining lock time, 0 when not locked.
	LockedFor(ctx context.Context, username string) (time.Duration, error)
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}
