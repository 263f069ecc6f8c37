package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	dbRepository "waypoint/internal/domain/repository/database"
	"waypoint/pkg/logger"
)

type WaypointRemover struct {
	db *Database
}

func NewWaypointRemover(db *Database) *WaypointRemover {
	return &WaypointRemover{db: db}
}

func (r *WaypointRemover) RemoveByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.db.QueryTimeout)
	defer cancel()

	res, err := r.db.collection(WaypointCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Error("failed to remove waypoint", "id", id, "err", err)

		return err
	}
	if res.DeletedCount == 0 {
		return dbRepository.ErrNotFound
	}

	return nil
}
