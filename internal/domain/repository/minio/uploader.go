package minio

import (
	"context"

	"waypoint/internal/domain/entity"
)

type Uploader interface {
	Upload(ctx context.Context, object entity.Object) (entity.UploadResult, error)
}
