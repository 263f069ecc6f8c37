package database

import (
	"context"

	"waypoint/internal/domain/model"
)

type Writer interface {
	Write(ctx context.Context, waypoint *model.Waypoint) error
}
