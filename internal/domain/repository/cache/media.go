package cache

import (
	"context"
	"io"

	"waypoint/internal/domain/capture"
)

// MediaCache keeps captured artifacts on local disk until they are uploaded.
type MediaCache interface {
	Store(ctx context.Context, sessionID, name, family string, body io.Reader) (*capture.Artifact, error)
	Open(artifact *capture.Artifact) (io.ReadCloser, error)
	Remove(artifact *capture.Artifact)
	RemoveSession(sessionID string)
}
