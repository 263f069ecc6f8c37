package database

import (
	"context"
	"errors"

	"waypoint/internal/domain/model"
)

var ErrDuplicate = errors.New("already exists")

type UserWriter interface {
	Create(ctx context.Context, user *model.User) error
}

type UserRetriever interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
