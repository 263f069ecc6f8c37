package handler

import (
	"context"
	"io"

	"github.com/labstack/echo/v4"

	"waypoint/internal/domain/capture"
	"waypoint/internal/domain/dto"
	"waypoint/internal/domain/model"
	"waypoint/internal/presentation"
)

func withUser(userID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(presentation.UserKey, userID)

			return next(c)
		}
	}
}

// stubCapturer answers every call with view and err and records its inputs.
type stubCapturer struct {
	view   dto.SessionView
	err    error
	states chan capture.State

	user  string
	id    string
	body  string
	tag   string
	title string
	perms dto.Permissions
}

func (s *stubCapturer) record(userID, id string) (dto.SessionView, error) {
	s.user, s.id = userID, id

	return s.view, s.err
}

func (s *stubCapturer) Start(_ context.Context, userID string, perms dto.Permissions) (dto.SessionView, error) {
	s.perms = perms

	return s.record(userID, "")
}

func (s *stubCapturer) Get(userID, id string) (dto.SessionView, error) { return s.record(userID, id) }

func (s *stubCapturer) Subscribe(userID, id string) (<-chan capture.State, func(), error) {
	s.user, s.id = userID, id
	if s.err != nil {
		return nil, nil, s.err
	}

	return s.states, func() {}, nil
}

func (s *stubCapturer) readBody(body io.Reader) {
	b, _ := io.ReadAll(body)
	s.body = string(b)
}

func (s *stubCapturer) SubmitBackPhoto(_ context.Context, userID, id string, body io.Reader) (dto.SessionView, error) {
	s.readBody(body)

	return s.record(userID, id)
}

func (s *stubCapturer) SubmitFrontPhoto(_ context.Context, userID, id string, body io.Reader) (dto.SessionView, error) {
	s.readBody(body)

	return s.record(userID, id)
}

func (s *stubCapturer) CancelPhoto(userID, id string) (dto.SessionView, error) {
	return s.record(userID, id)
}

func (s *stubCapturer) Restart(userID, id string) (dto.SessionView, error) {
	return s.record(userID, id)
}

func (s *stubCapturer) StartRecording(userID, id string) (dto.SessionView, error) {
	return s.record(userID, id)
}

func (s *stubCapturer) SetTitle(userID, id, title string) (dto.SessionView, error) {
	s.title = title

	return s.record(userID, id)
}

func (s *stubCapturer) AddTag(userID, id, tag string) (dto.SessionView, error) {
	s.tag = tag

	return s.record(userID, id)
}

func (s *stubCapturer) RemoveTag(userID, id, tag string) (dto.SessionView, error) {
	s.tag = tag

	return s.record(userID, id)
}

func (s *stubCapturer) StopRecording(_ context.Context, userID, id string, body io.Reader) (dto.SessionView, error) {
	s.readBody(body)

	return s.record(userID, id)
}

func (s *stubCapturer) Retry(_ context.Context, userID, id string) (dto.SessionView, error) {
	return s.record(userID, id)
}

func (s *stubCapturer) Cancel(userID, id string) (dto.SessionView, error) {
	return s.record(userID, id)
}

// waypointStore is an in-memory database.Lister.
type waypointStore []model.Waypoint

func (w waypointStore) GetByUser(_ context.Context, userID string) ([]model.Waypoint, error) {
	out := []model.Waypoint{}
	for _, wp := range w {
		if wp.UserID == userID {
			out = append(out, wp)
		}
	}

	return out, nil
}

type stubFeed struct {
	snapshots chan []model.Waypoint
}

func (f *stubFeed) Subscribe(context.Context, string) (<-chan []model.Waypoint, func(), error) {
	return f.snapshots, func() {}, nil
}

type stubGetter struct {
	card   dto.Card
	url    string
	status int
	err    error
}

func (g *stubGetter) GetWaypoint(context.Context, string, string) (dto.Card, int, error) {
	return g.card, g.status, g.err
}

func (g *stubGetter) MediaURL(context.Context, string, string, string) (string, int, error) {
	return g.url, g.status, g.err
}

type stubThumbnailer struct {
	data   []byte
	status int
	err    error
}

func (t *stubThumbnailer) Thumbnail(context.Context, string, string, string) ([]byte, int, error) {
	return t.data, t.status, t.err
}
