package usecase

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"waypoint/internal/domain/capture"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/model"
	"waypoint/internal/domain/repository/broker"
	"waypoint/internal/domain/repository/database"
)

type MockLocator struct{ mock.Mock }

func (m *MockLocator) Locate(ctx context.Context, userID string) (model.Fix, error) {
	args := m.Called(ctx, userID)

	return args.Get(0).(model.Fix), args.Error(1)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Reverse(ctx context.Context, latitude, longitude float64) (string, error) {
	args := m.Called(ctx, latitude, longitude)

	return args.String(0), args.Error(1)
}

type MockUploader struct{ mock.Mock }

func (m *MockUploader) Upload(ctx context.Context, object entity.Object) (entity.UploadResult, error) {
	args := m.Called(ctx, object)

	return args.Get(0).(entity.UploadResult), args.Error(1)
}

type MockRemover struct{ mock.Mock }

func (m *MockRemover) Remove(ctx context.Context, bucketName, objectName string) error {
	return m.Called(ctx, bucketName, objectName).Error(0)
}

type MockWriter struct{ mock.Mock }

func (m *MockWriter) Write(ctx context.Context, waypoint *model.Waypoint) error {
	return m.Called(ctx, waypoint).Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, message string) error {
	return m.Called(ctx, message).Error(0)
}

type MockLister struct{ mock.Mock }

func (m *MockLister) GetByUser(ctx context.Context, userID string) ([]model.Waypoint, error) {
	args := m.Called(ctx, userID)

	return args.Get(0).([]model.Waypoint), args.Error(1)
}

type MockRetriever struct{ mock.Mock }

func (m *MockRetriever) GetByID(ctx context.Context, id string) (*model.Waypoint, error) {
	args := m.Called(ctx, id)
	wp, _ := args.Get(0).(*model.Waypoint)

	return wp, args.Error(1)
}

type MockDBRemover struct{ mock.Mock }

func (m *MockDBRemover) RemoveByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// fakeMedia keeps artifacts in memory keyed by path.
type fakeMedia struct {
	mu      sync.Mutex
	files   map[string][]byte
	removed []string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{files: map[string][]byte{}}
}

func (f *fakeMedia) Store(_ context.Context, sessionID, name, family string, body io.Reader) (*capture.Artifact, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, capture.NewError(capture.KindInvalidMedia, name+" is empty", nil)
	}

	contentType := "image/jpeg"
	if family == "audio" {
		contentType = "audio/mp4"
	}

	path := sessionID + "/" + name
	f.mu.Lock()
	f.files[path] = data
	f.mu.Unlock()

	return &capture.Artifact{Path: path, ContentType: contentType, Size: int64(len(data))}, nil
}

func (f *fakeMedia) Open(artifact *capture.Artifact) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.files[artifact.Path]
	if !ok {
		return nil, os.ErrNotExist
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeMedia) Remove(artifact *capture.Artifact) {
	if artifact == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.files, artifact.Path)
	f.removed = append(f.removed, artifact.Path)
}

func (f *fakeMedia) RemoveSession(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for path := range f.files {
		if len(path) > len(sessionID) && path[:len(sessionID)+1] == sessionID+"/" {
			delete(f.files, path)
			f.removed = append(f.removed, path)
		}
	}
}

func (f *fakeMedia) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.files)
}

// fakeReceiver delivers messages pushed through send.
type fakeReceiver struct {
	ch chan broker.Message
}

func newFakeReceiver() *fakeReceiver {
	return &fakeReceiver{ch: make(chan broker.Message, 8)}
}

func (r *fakeReceiver) Messages(ctx context.Context, _ string) (<-chan broker.Message, error) {
	out := make(chan broker.Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-r.ch:
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (r *fakeReceiver) send(body string) {
	r.ch <- &fakeMessage{body: body}
}

type fakeMessage struct {
	body  string
	acked bool
}

func (m *fakeMessage) Body() string { return m.body }
func (m *fakeMessage) Ack() error   { m.acked = true; return nil }
func (m *fakeMessage) Nack() error  { return nil }

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type MockResolver struct{ mock.Mock }

func (m *MockResolver) PresignedURL(ctx context.Context, bucketName, objectName string) (string, error) {
	args := m.Called(ctx, bucketName, objectName)

	return args.String(0), args.Error(1)
}

type MockFetcher struct{ mock.Mock }

func (m *MockFetcher) Fetch(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName)
	rc, _ := args.Get(0).(io.ReadCloser)

	return rc, args.Error(1)
}

type memoryThumbnails struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryThumbnails() *memoryThumbnails {
	return &memoryThumbnails{data: map[string][]byte{}}
}

func (m *memoryThumbnails) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.data[key]

	return d, ok, nil
}

func (m *memoryThumbnails) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = data

	return nil
}

func (m *memoryThumbnails) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.data, k)
	}

	return nil
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]*model.User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return database.ErrDuplicate
		}
	}
	m.users[user.ID] = user

	return nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}

	return nil, database.ErrNotFound
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		return u, nil
	}

	return nil, database.ErrNotFound
}

type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryDenylist() *memoryDenylist {
	return &memoryDenylist{revoked: map[string]time.Time{}}
}

func (d *memoryDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.revoked[tokenID] = until

	return nil
}

func (d *memoryDenylist) Revoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.revoked[tokenID]

	return ok, nil
}
