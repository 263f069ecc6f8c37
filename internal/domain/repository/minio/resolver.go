package minio

import (
	"context"
	"io"
)

// Resolver turns a stored reference into something a client can download.
type Resolver interface {
	PresignedURL(ctx context.Context, bucketName, objectName string) (string, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
}
