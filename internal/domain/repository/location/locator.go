package location

import (
	"context"
	"errors"

	"waypoint/internal/domain/model"
)

var (
	ErrUnavailable = errors.New("location unavailable")
	ErrInvalidFix  = errors.New("invalid coordinates")
)

// Locator resolves the current position of a user's device.
type Locator interface {
	Locate(ctx context.Context, userID string) (model.Fix, error)
}

type Reporter interface {
	Report(ctx context.Context, userID string, fix model.Fix) error
}
