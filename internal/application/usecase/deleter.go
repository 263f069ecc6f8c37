package usecase

import (
	"context"
	"errors"
	"net/http"

	"waypoint/internal/domain/repository/broker"
	"waypoint/internal/domain/repository/cache"
	"waypoint/internal/domain/repository/database"
	"waypoint/internal/domain/repository/minio"
	"waypoint/pkg/logger"
)

// Deleter purges a waypoint: its blobs first, then the document.
type Deleter struct {
	dbRetriever  database.Retriever
	dbRemover    database.Remover
	minioRemover minio.Remover
	thumbnails   cache.ThumbnailCache
	publisher    broker.Publisher
}

func NewDeleter(dbRetriever database.Retriever, dbRemover database.Remover, minioRemover minio.Remover,
	thumbnails cache.ThumbnailCache, publisher broker.Publisher,
) *Deleter {
	return &Deleter{
		dbRetriever:  dbRetriever,
		dbRemover:    dbRemover,
		minioRemover: minioRemover,
		thumbnails:   thumbnails,
		publisher:    publisher,
	}
}

func (d *Deleter) DeleteWaypoint(ctx context.Context, id string) (int, error) {
	wp, err := d.dbRetriever.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return http.StatusNotFound, errors.New("waypoint not found")
		}

		return http.StatusInternalServerError, errors.New("failed to retrieve waypoint")
	}

	for _, ref := range wp.Refs() {
		if err := d.minioRemover.Remove(ctx, ref.Bucket, ref.Key); err != nil {
			return http.StatusInternalServerError, errors.New("failed to remove media from storage")
		}
	}

	if err := d.dbRemover.RemoveByID(ctx, id); err != nil {
		return http.StatusInternalServerError, errors.New("failed to remove waypoint from database")
	}

	if d.thumbnails != nil {
		if err := d.thumbnails.Invalidate(ctx, thumbnailKey(id, "back"), thumbnailKey(id, "front")); err != nil {
			logger.Warn("failed to drop cached thumbnails", "id", id, "err", err)
		}
	}

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, wp.UserID); err != nil {
			logger.Warn("failed to publish waypoint change", "user", wp.UserID, "err", err)
		}
	}

	return http.StatusOK, nil
}
