package database

import (
	"context"

	"waypoint/internal/domain/model"
)

type WaypointWriter struct {
	db *Database
}

func NewWaypointWriter(db *Database) *WaypointWriter {
	return &WaypointWriter{db: db}
}

func (w *WaypointWriter) Write(ctx context.Context, waypoint *model.Waypoint) error {
	if w.db.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.db.WriteTimeout)
		defer cancel()
	}

	_, err := w.db.collection(WaypointCollection).InsertOne(ctx, waypoint)

	return err
}
