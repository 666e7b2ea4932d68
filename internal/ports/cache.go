package ports

import (
	"context"
	"time"
)

// TokenStore keeps issued bearer tokens with their owning username.
// Tokens are opaque and expire by TTL; revocation deletes the entry.
type TokenStore interface {
	Put(ctx context.Context, token, username string, ttl time.Duration) error
	// Lookup resolves a token to its username. The boolean reports whether
	// the token was known; an unknown token is not an error.
	Lookup(ctx context.Context, token string) (string, bool, error)
	Revoke(ctx context.Context, token string) error
}

// AdminTokenStore keeps short-lived admin session tokens.
type AdminTokenStore interface {
	Put(ctx context.Context, token string, ttl time.Duration) error
	Validate(ctx context.Context, token string) (bool, error)
}
