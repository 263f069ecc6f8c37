package abstraction

import "context"

// Deleter removes a waypoint together with its media.
type Deleter interface {
	DeleteWaypoint(ctx context.Context, id string) (int, error)
}
