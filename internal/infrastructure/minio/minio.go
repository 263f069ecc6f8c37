package minio

import (
	"context"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"waypoint/pkg/logger"
)

type Client struct {
	MinioClient   *minio.Client
	PublicAddress string
}

func New(cfg ClientConfig) (*Client, error) {
	logger.Info("connecting to minio", "endpoint", cfg.Endpoint)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:           credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:          cfg.Secure,
		TrailingHeaders: true,
	})
	if err != nil {
		logger.Error("failed to initialize MinIO client", "err", err)

		return nil, err
	}

	return &Client{
		MinioClient:   client,
		PublicAddress: publicAddress(cfg),
	}, nil
}

// publicAddress returns an absolute base URL for object locations.
func publicAddress(cfg ClientConfig) string {
	scheme := "http://"
	if cfg.Secure {
		scheme = "https://"
	}

	address := strings.TrimSuffix(cfg.PublicAddress, "/")
	if address == "" {
		return scheme + cfg.Endpoint
	}
	if !strings.Contains(address, "://") {
		return scheme + address
	}

	return address
}

// EnsureBucket creates the bucket when it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := c.MinioClient.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return c.MinioClient.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}
