package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"waypoint/internal/domain/model"
	dbRepository "waypoint/internal/domain/repository/database"
	"waypoint/pkg/logger"
)

type WaypointRetriever struct {
	db *Database
}

func NewWaypointRetriever(db *Database) *WaypointRetriever {
	return &WaypointRetriever{db: db}
}

func (r *WaypointRetriever) GetByID(ctx context.Context, id string) (*model.Waypoint, error) {
	ctx, cancel := context.WithTimeout(ctx, r.db.QueryTimeout)
	defer cancel()

	var waypoint model.Waypoint
	err := r.db.collection(WaypointCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&waypoint)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dbRepository.ErrNotFound
		}
		logger.Error("failed to retrieve waypoint by id", "id", id, "err", err)

		return nil, err
	}

	return &waypoint, nil
}
