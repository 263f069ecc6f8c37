package database

import (
	"context"

	"waypoint/internal/domain/model"
)

// Lister returns a user's waypoints, newest first.
type Lister interface {
	GetByUser(ctx context.Context, userID string) ([]model.Waypoint, error)
}
