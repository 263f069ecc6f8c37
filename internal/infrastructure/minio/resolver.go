package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// Resolver hands out download references for stored objects.
type Resolver struct {
	minioClient *minio.Client
	cfg         *ResolverConfig
}

func NewResolver(client *Client, cfg *ResolverConfig) *Resolver {
	return &Resolver{
		minioClient: client.MinioClient,
		cfg:         cfg,
	}
}

func (r *Resolver) PresignedURL(ctx context.Context, bucketName, objectName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Timeout)*time.Millisecond)
	defer cancel()

	u, err := r.minioClient.PresignedGetObject(ctx, bucketName, objectName,
		time.Duration(r.cfg.Expiry)*time.Second, url.Values{})
	if err != nil {
		return "", err
	}

	return u.String(), nil
}

// Fetch opens the object for reading. The caller closes the reader.
func (r *Resolver) Fetch(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	obj, err := r.minioClient.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()

		return nil, err
	}

	return obj, nil
}
