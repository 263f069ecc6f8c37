package abstraction

import (
	"context"

	"waypoint/internal/domain/dto"
)

type Getter interface {
	GetWaypoint(ctx context.Context, userID, id string) (dto.Card, int, error)
	MediaURL(ctx context.Context, userID, id, kind string) (string, int, error)
}

type Thumbnailer interface {
	Thumbnail(ctx context.Context, userID, id, kind string) ([]byte, int, error)
}
