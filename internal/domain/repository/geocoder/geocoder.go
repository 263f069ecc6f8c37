package geocoder

import "context"

// Geocoder returns a human readable label for a coordinate, or "" when no
// address is known for it.
type Geocoder interface {
	Reverse(ctx context.Context, latitude, longitude float64) (string, error)
}
