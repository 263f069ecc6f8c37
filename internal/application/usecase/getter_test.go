package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"waypoint/internal/domain/model"
	"waypoint/internal/domain/repository/database"
)

func storedWaypoint() *model.Waypoint {
	return &model.Waypoint{
		ID:         "w1",
		UserID:     "alice",
		BackPhoto:  &model.MediaRef{Bucket: "waypoints", Key: "photos/alice/back_1.jpg", URL: "http://minio/back"},
		FrontPhoto: &model.MediaRef{Bucket: "waypoints", Key: "photos/alice/front_1.jpg", URL: "http://minio/front"},
		Audio:      &model.MediaRef{Bucket: "waypoints", Key: "audios/alice/audio_1.m4a", URL: "http://minio/audio"},
		Title:      "Dawn",
		Tags:       []string{"hike"},
		Timestamp:  time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC),
	}
}

func TestGetWaypoint(t *testing.T) {
	t.Parallel()

	retriever := &MockRetriever{}
	retriever.On("GetByID", mock.Anything, "w1").Return(storedWaypoint(), nil)
	retriever.On("GetByID", mock.Anything, "missing").Return(nil, database.ErrNotFound)
	retriever.On("GetByID", mock.Anything, "broken").Return(nil, errors.New("timeout"))
	g := NewGetter(retriever, &MockResolver{}, "http://api")
	ctx := context.Background()

	card, status, err := g.GetWaypoint(ctx, "alice", "w1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Dawn", card.Title)
	assert.Equal(t, "http://api/waypoints/w1/media/audio", card.AudioURL)

	_, status, err = g.GetWaypoint(ctx, "mallory", "w1")
	assert.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)

	_, status, _ = g.GetWaypoint(ctx, "alice", "missing")
	assert.Equal(t, http.StatusNotFound, status)

	_, status, _ = g.GetWaypoint(ctx, "alice", "broken")
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestMediaURL(t *testing.T) {
	t.Parallel()

	wp := storedWaypoint()
	wp.FrontPhoto = nil

	retriever := &MockRetriever{}
	retriever.On("GetByID", mock.Anything, "w1").Return(wp, nil)
	resolver := &MockResolver{}
	resolver.On("PresignedURL", mock.Anything, "waypoints", "audios/alice/audio_1.m4a").Return("http://signed/audio", nil)
	g := NewGetter(retriever, resolver, "http://api")

	url, status, err := g.MediaURL(context.Background(), "alice", "w1", model.MediaAudio)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, status)
	assert.Equal(t, "http://signed/audio", url)

	_, status, err = g.MediaURL(context.Background(), "alice", "w1", model.MediaFront)
	assert.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{G: 200, A: 255})
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	t.Parallel()

	retriever := &MockRetriever{}
	retriever.On("GetByID", mock.Anything, "w1").Return(storedWaypoint(), nil)
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "waypoints", "photos/alice/back_1.jpg").
		Return(io.NopCloser(bytes.NewReader(jpegBytes(t, 1200, 600))), nil).Once()
	fetcher.On("Fetch", mock.Anything, "waypoints", "photos/alice/front_1.jpg").
		Return(io.NopCloser(bytes.NewReader([]byte("not an image"))), nil)

	cache := newMemoryThumbnails()
	th := NewThumbnailer(NewGetter(retriever, &MockResolver{}, "http://api"), fetcher, cache, time.Hour)
	ctx := context.Background()

	data, status, err := th.Thumbnail(ctx, "alice", "w1", model.MediaBack)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	cached, status, err := th.Thumbnail(ctx, "alice", "w1", model.MediaBack)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, data, cached)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)

	_, status, err = th.Thumbnail(ctx, "alice", "w1", model.MediaFront)
	assert.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	_, status, _ = th.Thumbnail(ctx, "alice", "w1", model.MediaAudio)
	assert.Equal(t, http.StatusBadRequest, status)

	_, status, _ = th.Thumbnail(ctx, "mallory", "w1", model.MediaBack)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteWaypoint(t *testing.T) {
	t.Parallel()

	retriever := &MockRetriever{}
	retriever.On("GetByID", mock.Anything, "w1").Return(storedWaypoint(), nil)
	retriever.On("GetByID", mock.Anything, "missing").Return(nil, database.ErrNotFound)
	dbRemover := &MockDBRemover{}
	dbRemover.On("RemoveByID", mock.Anything, "w1").Return(nil)
	remover := &MockRemover{}
	remover.On("Remove", mock.Anything, "waypoints", mock.Anything).Return(nil)
	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, "alice").Return(nil)

	cache := newMemoryThumbnails()
	require.NoError(t, cache.Set(context.Background(), "w1/back", []byte{1}, time.Hour))

	d := NewDeleter(retriever, dbRemover, remover, cache, publisher)

	status, err := d.DeleteWaypoint(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	remover.AssertNumberOfCalls(t, "Remove", 3)
	dbRemover.AssertExpectations(t)
	publisher.AssertExpectations(t)
	_, ok, _ := cache.Get(context.Background(), "w1/back")
	assert.False(t, ok)

	status, err = d.DeleteWaypoint(context.Background(), "missing")
	assert.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteWaypointStorageFailureKeepsDocument(t *testing.T) {
	t.Parallel()

	retriever := &MockRetriever{}
	retriever.On("GetByID", mock.Anything, "w1").Return(storedWaypoint(), nil)
	dbRemover := &MockDBRemover{}
	remover := &MockRemover{}
	remover.On("Remove", mock.Anything, "waypoints", mock.Anything).Return(errors.New("denied"))

	d := NewDeleter(retriever, dbRemover, remover, nil, nil)

	status, err := d.DeleteWaypoint(context.Background(), "w1")
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, status)
	dbRemover.AssertNotCalled(t, "RemoveByID", mock.Anything, mock.Anything)
}
