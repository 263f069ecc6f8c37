package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"waypoint/internal/domain/model"
	"waypoint/pkg/logger"
)

type WaypointLister struct {
	db *Database
}

func NewWaypointLister(db *Database) *WaypointLister {
	return &WaypointLister{db: db}
}

// GetByUser returns every waypoint owned by userID, newest first.
func (l *WaypointLister) GetByUser(ctx context.Context, userID string) ([]model.Waypoint, error) {
	ctx, cancel := context.WithTimeout(ctx, l.db.QueryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := l.db.collection(WaypointCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		logger.Error("failed to retrieve waypoints by user", "user", userID, "err", err)

		return nil, err
	}
	defer cursor.Close(ctx)

	waypoints := []model.Waypoint{}
	if err = cursor.All(ctx, &waypoints); err != nil {
		logger.Error("failed to decode waypoints", "err", err)

		return nil, err
	}

	return waypoints, nil
}
