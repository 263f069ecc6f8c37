package token

import (
	"context"
	"time"
)

// Denylist records signed-out tokens until they expire on their own.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}
