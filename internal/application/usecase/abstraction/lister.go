package abstraction

import (
	"context"

	"waypoint/internal/domain/dto"
	"waypoint/internal/domain/filter"
	"waypoint/internal/domain/model"
	"waypoint/internal/domain/projection"
)

type Lister interface {
	ListWaypoints(ctx context.Context, userID string, c filter.Criteria, view projection.View) (dto.Listing, int, error)
	Tags(ctx context.Context, userID string) ([]string, int, error)
	MapWaypoints(ctx context.Context, userID string, c filter.Criteria) (dto.MapView, int, error)
	Render(waypoints []model.Waypoint, c filter.Criteria, view projection.View) dto.Listing
}

// Feed streams live snapshots of a user's waypoints.
type Feed interface {
	Subscribe(ctx context.Context, userID string) (<-chan []model.Waypoint, func(), error)
}
