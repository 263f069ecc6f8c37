package usecase

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"waypoint/internal/domain/capture"
	"waypoint/internal/domain/dto"
	"waypoint/internal/domain/filter"
	"waypoint/internal/domain/repository/cache"
	"waypoint/internal/domain/repository/database"
	"waypoint/pkg/logger"
	"waypoint/pkg/observable"
)

var (
	ErrSessionNotFound = errors.New("capture session not found")
	ErrSessionBusy     = errors.New("capture session is busy")
)

const (
	familyImage = "image"
	familyAudio = "audio"
)

// Capturer owns every live capture session and is the only code that mutates
// them. Each session is guarded by its own lock; a request that finds the lock
// taken fails with ErrSessionBusy instead of queueing behind the pipeline.
type Capturer struct {
	mu       sync.RWMutex
	sessions map[string]*captureEntry

	media     cache.MediaCache
	sequencer *Sequencer
	lister    database.Lister
	ttl       time.Duration
	now       func() time.Time
	newID     func() string
}

type captureEntry struct {
	mu      sync.Mutex
	session *capture.Session
	state   *observable.Value[capture.State]

	viewMu sync.RWMutex
	view   dto.SessionView
}

func NewCapturer(media cache.MediaCache, sequencer *Sequencer, lister database.Lister, ttl time.Duration) *Capturer {
	return &Capturer{
		sessions:  map[string]*captureEntry{},
		media:     media,
		sequencer: sequencer,
		lister:    lister,
		ttl:       ttl,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (c *Capturer) Start(ctx context.Context, userID string, perms dto.Permissions) (dto.SessionView, error) {
	if missing := missingPermissions(perms); len(missing) > 0 {
		return dto.SessionView{}, capture.NewError(capture.KindPermissionDenied,
			strings.Join(missing, ", ")+" access is required", nil)
	}

	session := capture.NewSession(c.newID(), userID, c.now())
	session.AvailableTags = c.knownTags(ctx, userID)
	if err := session.Start(); err != nil {
		return dto.SessionView{}, err
	}

	entry := &captureEntry{
		session: session,
		state:   observable.New(session.State()),
	}
	entry.refresh(c.now())

	c.mu.Lock()
	c.sessions[session.ID] = entry
	c.mu.Unlock()

	logger.Debug("capture session started", "session", session.ID, "user", userID)

	return entry.snapshot(), nil
}

func missingPermissions(perms dto.Permissions) []string {
	var missing []string
	if !perms.Camera {
		missing = append(missing, "camera")
	}
	if !perms.Microphone {
		missing = append(missing, "microphone")
	}
	if !perms.Location {
		missing = append(missing, "location")
	}

	return missing
}

func (c *Capturer) knownTags(ctx context.Context, userID string) []string {
	if c.lister == nil {
		return []string{}
	}

	waypoints, err := c.lister.GetByUser(ctx, userID)
	if err != nil {
		logger.Warn("failed to load tag suggestions", "user", userID, "err", err)

		return []string{}
	}

	return filter.Tags(waypoints)
}

// Get returns the last published view; it never waits for a running pipeline.
func (c *Capturer) Get(userID, id string) (dto.SessionView, error) {
	entry, err := c.entry(userID, id)
	if err != nil {
		return dto.SessionView{}, err
	}

	return entry.snapshot(), nil
}

// Subscribe streams state changes, starting with the current state. The
// channel closes when the session is discarded or cancel is called.
func (c *Capturer) Subscribe(userID, id string) (<-chan capture.State, func(), error) {
	entry, err := c.entry(userID, id)
	if err != nil {
		return nil, nil, err
	}

	ch, cancel := entry.state.Subscribe()

	return ch, cancel, nil
}

func (c *Capturer) SubmitBackPhoto(ctx context.Context, userID, id string, body io.Reader) (dto.SessionView, error) {
	return c.submitPhoto(ctx, userID, id, "back", body, capture.StageCapturingBackPhoto,
		(*capture.Session).RecordBackPhoto)
}

func (c *Capturer) SubmitFrontPhoto(ctx context.Context, userID, id string, body io.Reader) (dto.SessionView, error) {
	return c.submitPhoto(ctx, userID, id, "front", body, capture.StageCapturingFrontPhoto,
		(*capture.Session).RecordFrontPhoto)
}

func (c *Capturer) submitPhoto(ctx context.Context, userID, id, name string, body io.Reader,
	stage capture.Stage, record func(*capture.Session, *capture.Artifact) error,
) (dto.SessionView, error) {
	return c.mutate(userID, id, func(s *capture.Session) error {
		if err := s.Expect(stage); err != nil {
			return err
		}

		photo, err := c.media.Store(ctx, s.ID, name, familyImage, body)
		if err != nil {
			return err
		}

		if err := record(s, photo); err != nil {
			c.media.Remove(photo)

			return err
		}

		return nil
	})
}

// CancelPhoto aborts a photo step; the session returns to Idle with every
// field cleared and the reason kept in its state.
func (c *Capturer) CancelPhoto(userID, id string) (dto.SessionView, error) {
	return c.mutate(userID, id, func(s *capture.Session) error {
		stage := s.State().Stage
		if stage != capture.StageCapturingBackPhoto && stage != capture.StageCapturingFrontPhoto {
			return capture.NewError(capture.KindInvalidTransition, "no photo is being captured", nil)
		}

		held, err := s.Cancel(capture.KindCaptureCancelled.String())
		if err != nil {
			return err
		}
		c.release(held)

		return nil
	})
}

// Restart begins a new capture on a session that was cancelled back to Idle.
func (c *Capturer) Restart(userID, id string) (dto.SessionView, error) {
	return c.mutate(userID, id, (*capture.Session).Start)
}

func (c *Capturer) StartRecording(userID, id string) (dto.SessionView, error) {
	return c.mutate(userID, id, func(s *capture.Session) error {
		return s.StartRecording(c.now())
	})
}

func (c *Capturer) SetTitle(userID, id, title string) (dto.SessionView, error) {
	return c.mutate(userID, id, func(s *capture.Session) error {
		s.SetTitle(title)

		return nil
	})
}

func (c *Capturer) AddTag(userID, id, tag string) (dto.SessionView, error) {
	return c.mutate(userID, id, func(s *capture.Session) error {
		s.AddTag(tag)

		return nil
	})
}

func (c *Capturer) RemoveTag(userID, id, tag string) (dto.SessionView, error) {
	return c.mutate(userID, id, func(s *capture.Session) error {
		s.RemoveTag(tag)

		return nil
	})
}

// StopRecording stores the audio and runs the upload pipeline in the calling
// request. An empty body still advances; the pipeline then reports the
// missing recording. A pipeline failure is reported through the returned
// view, not as an error.
func (c *Capturer) StopRecording(ctx context.Context, userID, id string, body io.Reader) (dto.SessionView, error) {
	return c.run(ctx, userID, id, func(entry *captureEntry) error {
		s := entry.session
		if err := s.Expect(capture.StageRecordingAudio); err != nil {
			return err
		}

		audio, err := c.storeAudio(ctx, s.ID, body)
		if err != nil {
			return err
		}

		if err := s.StopRecording(audio, c.now()); err != nil {
			c.media.Remove(audio)

			return err
		}
		entry.refresh(c.now())

		return nil
	})
}

func (c *Capturer) storeAudio(ctx context.Context, sessionID string, body io.Reader) (*capture.Artifact, error) {
	if body == nil {
		return nil, nil
	}

	br := bufio.NewReader(body)
	if _, err := br.Peek(1); errors.Is(err, io.EOF) {
		return nil, nil
	}

	return c.media.Store(ctx, sessionID, "audio", familyAudio, br)
}

// Retry re-runs location, upload and save for a failed session.
func (c *Capturer) Retry(ctx context.Context, userID, id string) (dto.SessionView, error) {
	return c.run(ctx, userID, id, func(entry *captureEntry) error {
		if err := entry.session.BeginRetry(); err != nil {
			return err
		}
		entry.refresh(c.now())

		return nil
	})
}

func (c *Capturer) run(ctx context.Context, userID, id string, prepare func(*captureEntry) error) (dto.SessionView, error) {
	entry, err := c.lock(userID, id)
	if err != nil {
		return dto.SessionView{}, err
	}
	defer entry.mu.Unlock()

	entry.session.TouchedAt = c.now()
	if err := prepare(entry); err != nil {
		entry.refresh(c.now())

		return entry.snapshot(), err
	}

	runErr := c.sequencer.Run(ctx, entry.session, func(capture.State) {
		entry.refresh(c.now())
	})
	entry.refresh(c.now())
	view := entry.snapshot()

	if runErr != nil && capture.KindOf(runErr) == capture.KindInvalidTransition {
		return view, runErr
	}

	if entry.session.State().Stage == capture.StageSuccess {
		c.discard(entry)
	}

	return view, nil
}

// Cancel resets the session, removes its cached media and discards it.
func (c *Capturer) Cancel(userID, id string) (dto.SessionView, error) {
	entry, err := c.lock(userID, id)
	if err != nil {
		return dto.SessionView{}, err
	}
	defer entry.mu.Unlock()

	held, err := entry.session.Reset()
	if err != nil {
		return entry.snapshot(), err
	}
	c.release(held)
	entry.refresh(c.now())
	c.discard(entry)

	return entry.snapshot(), nil
}

// Sweep drops sessions untouched for longer than the configured TTL. Busy
// sessions are skipped. It returns how many sessions were dropped.
func (c *Capturer) Sweep(now time.Time) int {
	c.mu.RLock()
	entries := make([]*captureEntry, 0, len(c.sessions))
	for _, entry := range c.sessions {
		entries = append(entries, entry)
	}
	c.mu.RUnlock()

	dropped := 0
	for _, entry := range entries {
		if !entry.mu.TryLock() {
			continue
		}

		if now.Sub(entry.session.TouchedAt) > c.ttl {
			if _, err := entry.session.Reset(); err == nil {
				entry.refresh(now)
			}
			c.discard(entry)
			dropped++
		}
		entry.mu.Unlock()
	}

	if dropped > 0 {
		logger.Info("expired capture sessions removed", "count", dropped)
	}

	return dropped
}

// Close discards every session and its cached media.
func (c *Capturer) Close() {
	c.mu.Lock()
	entries := c.sessions
	c.sessions = map[string]*captureEntry{}
	c.mu.Unlock()

	for id, entry := range entries {
		c.media.RemoveSession(id)
		entry.state.Close()
	}
}

func (c *Capturer) mutate(userID, id string, fn func(*capture.Session) error) (dto.SessionView, error) {
	entry, err := c.lock(userID, id)
	if err != nil {
		return dto.SessionView{}, err
	}
	defer entry.mu.Unlock()

	entry.session.TouchedAt = c.now()
	err = fn(entry.session)
	entry.refresh(c.now())

	return entry.snapshot(), err
}

func (c *Capturer) entry(userID, id string) (*captureEntry, error) {
	c.mu.RLock()
	entry, ok := c.sessions[id]
	c.mu.RUnlock()

	if !ok || entry.session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	return entry, nil
}

func (c *Capturer) lock(userID, id string) (*captureEntry, error) {
	entry, err := c.entry(userID, id)
	if err != nil {
		return nil, err
	}

	if !entry.mu.TryLock() {
		return nil, ErrSessionBusy
	}

	// the session may have been discarded while we waited for the map
	c.mu.RLock()
	_, ok := c.sessions[id]
	c.mu.RUnlock()
	if !ok {
		entry.mu.Unlock()

		return nil, ErrSessionNotFound
	}

	return entry, nil
}

func (c *Capturer) release(artifacts []*capture.Artifact) {
	for _, a := range artifacts {
		c.media.Remove(a)
	}
}

// discard must be called with entry.mu held.
func (c *Capturer) discard(entry *captureEntry) {
	c.mu.Lock()
	delete(c.sessions, entry.session.ID)
	c.mu.Unlock()

	c.media.RemoveSession(entry.session.ID)
	entry.state.Close()
}

// refresh publishes the session's state and view; the caller holds entry.mu.
func (e *captureEntry) refresh(now time.Time) {
	view := viewOf(e.session, now)

	e.viewMu.Lock()
	e.view = view
	e.viewMu.Unlock()

	e.state.Set(e.session.State())
}

func (e *captureEntry) snapshot() dto.SessionView {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	return e.view
}

func viewOf(s *capture.Session, now time.Time) dto.SessionView {
	st := s.State()

	return dto.SessionView{
		ID:                  s.ID,
		Stage:               st.Stage.String(),
		Progress:            st.Progress,
		Message:             st.Message,
		WaypointID:          st.WaypointID,
		HasBackPhoto:        s.BackPhoto != nil,
		HasFrontPhoto:       s.FrontPhoto != nil,
		HasAudio:            s.Audio != nil,
		Recording:           s.Recording(),
		RecordingDurationMs: s.Elapsed(now).Milliseconds(),
		Title:               s.Title,
		Tags:                append([]string{}, s.Tags...),
		AvailableTags:       s.UnselectedTags(),
	}
}
