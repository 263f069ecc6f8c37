package usecase

import (
	"context"
	"errors"
	"net/http"

	"waypoint/internal/domain/dto"
	"waypoint/internal/domain/filter"
	"waypoint/internal/domain/model"
	"waypoint/internal/domain/projection"
	"waypoint/internal/domain/repository/database"
)

// Lister serves filtered projections of a user's waypoints.
type Lister struct {
	lister  database.Lister
	baseURL string
}

func NewLister(lister database.Lister, baseURL string) *Lister {
	return &Lister{
		lister:  lister,
		baseURL: baseURL,
	}
}

// ListWaypoints applies c to the user's waypoints, newest first, and projects
// the result for view.
func (l *Lister) ListWaypoints(ctx context.Context, userID string, c filter.Criteria,
	view projection.View,
) (dto.Listing, int, error) {
	waypoints, err := l.lister.GetByUser(ctx, userID)
	if err != nil {
		return dto.Listing{}, http.StatusInternalServerError, errors.New("failed to retrieve waypoints")
	}

	return projection.Project(filter.Apply(waypoints, c), view, l.baseURL), http.StatusOK, nil
}

func (l *Lister) Tags(ctx context.Context, userID string) ([]string, int, error) {
	waypoints, err := l.lister.GetByUser(ctx, userID)
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("failed to retrieve waypoints")
	}

	return filter.Tags(waypoints), http.StatusOK, nil
}

func (l *Lister) MapWaypoints(ctx context.Context, userID string, c filter.Criteria) (dto.MapView, int, error) {
	waypoints, err := l.lister.GetByUser(ctx, userID)
	if err != nil {
		return dto.MapView{}, http.StatusInternalServerError, errors.New("failed to retrieve waypoints")
	}

	return projection.Map(filter.Apply(waypoints, c)), http.StatusOK, nil
}

// Snapshot is the unfiltered collection pushed to live subscribers.
func (l *Lister) Snapshot(ctx context.Context, userID string) ([]model.Waypoint, error) {
	return l.lister.GetByUser(ctx, userID)
}

// Render projects a live snapshot the same way ListWaypoints does.
func (l *Lister) Render(waypoints []model.Waypoint, c filter.Criteria, view projection.View) dto.Listing {
	return projection.Project(filter.Apply(waypoints, c), view, l.baseURL)
}
