package usecase

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"waypoint/internal/domain/model"
	"waypoint/internal/domain/repository/cache"
	"waypoint/internal/domain/repository/minio"
	"waypoint/pkg/logger"
)

const (
	thumbnailSize    = 300
	thumbnailQuality = 85
)

// Thumbnailer renders and caches square previews of waypoint photos.
type Thumbnailer struct {
	getter  *Getter
	fetcher minio.Fetcher
	cache   cache.ThumbnailCache
	ttl     time.Duration
}

func NewThumbnailer(getter *Getter, fetcher minio.Fetcher, cache cache.ThumbnailCache, ttl time.Duration) *Thumbnailer {
	return &Thumbnailer{
		getter:  getter,
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
	}
}

func thumbnailKey(id, kind string) string {
	return id + "/" + kind
}

func (t *Thumbnailer) Thumbnail(ctx context.Context, userID, id, kind string) ([]byte, int, error) {
	if kind != model.MediaBack && kind != model.MediaFront {
		return nil, http.StatusBadRequest, errors.New("thumbnails exist only for back and front photos")
	}

	wp, status, err := t.getter.owned(ctx, userID, id)
	if err != nil {
		return nil, status, err
	}

	ref := wp.Media(kind)
	if ref == nil {
		return nil, http.StatusNotFound, errors.New("photo not found")
	}

	key := thumbnailKey(id, kind)
	if data, ok, err := t.cache.Get(ctx, key); err != nil {
		logger.Warn("thumbnail cache read failed", "key", key, "err", err)
	} else if ok {
		return data, http.StatusOK, nil
	}

	body, err := t.fetcher.Fetch(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return nil, http.StatusBadGateway, errors.New("failed to read photo from storage")
	}
	defer body.Close()

	data, err := render(body)
	if err != nil {
		logger.Error("failed to render thumbnail", "id", id, "kind", kind, "err", err)

		return nil, http.StatusUnprocessableEntity, errors.New("photo could not be decoded")
	}

	if err := t.cache.Set(ctx, key, data, t.ttl); err != nil {
		logger.Warn("thumbnail cache write failed", "key", key, "err", err)
	}

	return data, http.StatusOK, nil
}

func render(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	thumb := imaging.Thumbnail(img, thumbnailSize, thumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
