package database

import (
	"context"
	"errors"

	"waypoint/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type Retriever interface {
	GetByID(ctx context.Context, id string) (*model.Waypoint, error)
}
