package minio

import (
	"context"
	"time"

	"github.com/minio/minio-go/v7"

	"waypoint/pkg/logger"
)

type Remover struct {
	minioClient *minio.Client
	cfg         *RemoverConfig
}

func NewRemover(client *Client, cfg *RemoverConfig) *Remover {
	return &Remover{
		minioClient: client.MinioClient,
		cfg:         cfg,
	}
}

func (r *Remover) Remove(ctx context.Context, bucketName, objectName string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Timeout)*time.Millisecond)
	defer cancel()

	err := r.minioClient.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		logger.Error("failed to remove object", "bucket", bucketName, "key", objectName, "err", err)

		return err
	}

	return nil
}
