package usecase

import (
	"context"
	"errors"
	"net/http"

	"waypoint/internal/domain/dto"
	"waypoint/internal/domain/model"
	"waypoint/internal/domain/projection"
	"waypoint/internal/domain/repository/database"
	"waypoint/internal/domain/repository/minio"
)

// Getter reads single waypoints and hands out links to their media.
type Getter struct {
	retriever database.Retriever
	resolver  minio.Resolver
	baseURL   string
}

func NewGetter(retriever database.Retriever, resolver minio.Resolver, baseURL string) *Getter {
	return &Getter{
		retriever: retriever,
		resolver:  resolver,
		baseURL:   baseURL,
	}
}

func (g *Getter) GetWaypoint(ctx context.Context, userID, id string) (dto.Card, int, error) {
	wp, status, err := g.owned(ctx, userID, id)
	if err != nil {
		return dto.Card{}, status, err
	}

	return projection.ToCard(wp, g.baseURL), http.StatusOK, nil
}

// MediaURL presigns a short lived download link for one of the waypoint's blobs.
func (g *Getter) MediaURL(ctx context.Context, userID, id, kind string) (string, int, error) {
	wp, status, err := g.owned(ctx, userID, id)
	if err != nil {
		return "", status, err
	}

	ref := wp.Media(kind)
	if ref == nil {
		return "", http.StatusNotFound, errors.New("media not found")
	}

	url, err := g.resolver.PresignedURL(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return "", http.StatusInternalServerError, errors.New("failed to sign media url")
	}

	return url, http.StatusFound, nil
}

// owned hides other users' waypoints behind the same 404 as missing ones.
func (g *Getter) owned(ctx context.Context, userID, id string) (*model.Waypoint, int, error) {
	wp, err := g.retriever.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, http.StatusNotFound, errors.New("waypoint not found")
		}

		return nil, http.StatusInternalServerError, errors.New("failed to retrieve waypoint")
	}

	if wp.UserID != userID {
		return nil, http.StatusNotFound, errors.New("waypoint not found")
	}

	return wp, http.StatusOK, nil
}
