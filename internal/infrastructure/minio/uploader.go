package minio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"waypoint/internal/domain/entity"
	"waypoint/pkg/logger"
)

type Uploader struct {
	minioClient   *minio.Client
	publicAddress string
	cfg           *UploaderConfig
}

func NewUploader(client *Client, config *UploaderConfig) *Uploader {
	return &Uploader{
		minioClient:   client.MinioClient,
		publicAddress: strings.TrimSuffix(client.PublicAddress, "/"),
		cfg:           config,
	}
}

func (u *Uploader) Upload(ctx context.Context, object entity.Object) (entity.UploadResult, error) {
	if object.Body == nil {
		return entity.UploadResult{}, errors.New("read error: empty body")
	}
	if object.Key == "" {
		return entity.UploadResult{}, errors.New("object key is required")
	}

	// a zero timeout leaves large uploads to the SDK's own limits
	if u.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(u.cfg.Timeout)*time.Millisecond)
		defer cancel()
	}

	info, err := u.minioClient.PutObject(ctx, u.cfg.Bucket, object.Key, object.Body, object.Size,
		minio.PutObjectOptions{
			ContentType: object.ContentType,
		})
	if err != nil {
		logger.Error("failed to upload object", "key", object.Key, "err", err)

		return entity.UploadResult{}, fmt.Errorf("upload failed: %w", err)
	}

	if err := u.validateSize(info.Size, object.Size); err != nil {
		if rmErr := u.minioClient.RemoveObject(ctx, u.cfg.Bucket, object.Key, minio.RemoveObjectOptions{}); rmErr != nil {
			logger.Error("failed to remove truncated object", "key", object.Key, "err", rmErr)
		}

		return entity.UploadResult{}, err
	}

	return entity.UploadResult{
		Bucket:   u.cfg.Bucket,
		Key:      object.Key,
		Location: fmt.Sprintf("%s/%s/%s", u.publicAddress, u.cfg.Bucket, object.Key),
		Size:     info.Size,
		Type:     object.ContentType,
	}, nil
}

func (u *Uploader) validateSize(written, expected int64) error {
	if written != expected && expected != -1 {
		return fmt.Errorf("file size mismatch: wrote %d bytes, expected %d", written, expected)
	}

	return nil
}
