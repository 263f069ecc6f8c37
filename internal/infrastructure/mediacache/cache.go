package mediacache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"waypoint/internal/domain/capture"
	"waypoint/pkg/logger"
)

const (
	FamilyImage = "image"
	FamilyAudio = "audio"
)

// Cache stores captured media under dir/<session>/<name> until it is uploaded.
type Cache struct {
	dir          string
	maxPhotoSize int64
	maxAudioSize int64
}

func New(cfg Config) (*Cache, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "waypoint-media")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	return &Cache{
		dir:          dir,
		maxPhotoSize: cfg.MaxPhotoSize,
		maxAudioSize: cfg.MaxAudioSize,
	}, nil
}

func (c *Cache) limit(family string) int64 {
	if family == FamilyAudio {
		return c.maxAudioSize
	}

	return c.maxPhotoSize
}

// Store writes body to disk, then checks its detected type against family.
// Anything that fails validation is removed before returning.
func (c *Cache) Store(ctx context.Context, sessionID, name, family string, body io.Reader) (*capture.Artifact, error) {
	if family != FamilyImage && family != FamilyAudio {
		return nil, fmt.Errorf("unknown media family %q", family)
	}
	if strings.ContainsAny(sessionID, `/\`) || strings.ContainsAny(name, `/\`) {
		return nil, errors.New("invalid media name")
	}

	sessionDir := filepath.Join(c.dir, sessionID)
	if err := os.MkdirAll(sessionDir, 0o750); err != nil {
		return nil, err
	}

	path := filepath.Join(sessionDir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	limit := c.limit(family)
	src := body
	if limit > 0 {
		src = io.LimitReader(body, limit+1)
	}

	size, err := io.Copy(f, readerWithContext{ctx: ctx, r: src})
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		c.removePath(path)

		return nil, err
	}

	if limit > 0 && size > limit {
		c.removePath(path)

		return nil, capture.NewError(capture.KindInvalidMedia,
			fmt.Sprintf("%s is larger than %d bytes", name, limit), nil)
	}
	if size == 0 {
		c.removePath(path)

		return nil, capture.NewError(capture.KindInvalidMedia, name+" is empty", nil)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		c.removePath(path)

		return nil, err
	}

	contentType := mtype.String()
	if !matchesFamily(mtype, family) {
		c.removePath(path)

		return nil, capture.NewError(capture.KindInvalidMedia,
			fmt.Sprintf("%s has type %s, expected %s", name, contentType, family), nil)
	}

	return &capture.Artifact{
		Path:        path,
		ContentType: stripParams(contentType),
		Size:        size,
	}, nil
}

func matchesFamily(mtype *mimetype.MIME, family string) bool {
	switch family {
	case FamilyImage:
		return strings.HasPrefix(mtype.String(), "image/")
	case FamilyAudio:
		// recorders commonly produce mp4 or 3gp containers
		return strings.HasPrefix(mtype.String(), "audio/") || mtype.Is("video/mp4") || mtype.Is("video/3gpp")
	default:
		return false
	}
}

func stripParams(contentType string) string {
	return strings.TrimSpace(strings.Split(contentType, ";")[0])
}

func (c *Cache) Open(artifact *capture.Artifact) (io.ReadCloser, error) {
	if artifact == nil {
		return nil, os.ErrNotExist
	}

	return os.Open(artifact.Path)
}

func (c *Cache) Remove(artifact *capture.Artifact) {
	if artifact == nil {
		return
	}

	c.removePath(artifact.Path)
}

func (c *Cache) RemoveSession(sessionID string) {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) {
		return
	}

	if err := os.RemoveAll(filepath.Join(c.dir, sessionID)); err != nil {
		logger.Warn("failed to remove session media", "session", sessionID, "err", err)
	}
}

func (c *Cache) removePath(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove cached media", "path", path, "err", err)
	}
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	return r.r.Read(p)
}
