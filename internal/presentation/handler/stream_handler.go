package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"waypoint/internal/application/usecase/abstraction"
	"waypoint/internal/domain/capture"
	"waypoint/internal/domain/dto"
	"waypoint/internal/domain/projection"
	"waypoint/internal/presentation"
	"waypoint/pkg/logger"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type StreamHandler struct {
	capturer abstraction.Capturer
	feed     abstraction.Feed
	lister   abstraction.Lister
}

func NewStreamHandler(capturer abstraction.Capturer, feed abstraction.Feed, lister abstraction.Lister) *StreamHandler {
	return &StreamHandler{
		capturer: capturer,
		feed:     feed,
		lister:   lister,
	}
}

// HandleCaptureEvents handles GET /captures/:id/events. Each message is a
// StateEvent; the socket closes normally once the session is discarded.
func (h *StreamHandler) HandleCaptureEvents(c echo.Context) error {
	states, cancel, err := h.capturer.Subscribe(currentUser(c), c.Param(presentation.IDParam))
	if err != nil {
		return captureFailure(c, err)
	}
	defer cancel()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	closed := watchClose(conn)
	for {
		select {
		case <-closed:
			return nil
		case st, ok := <-states:
			if !ok {
				closeNormally(conn)

				return nil
			}
			if err := writeJSON(conn, eventOf(st)); err != nil {
				return nil
			}
		}
	}
}

// HandleLive handles GET /waypoints/live. The query takes the same filters and
// view as GET /waypoints; every change to the user's waypoints pushes a full listing.
func (h *StreamHandler) HandleLive(c echo.Context) error {
	criteria, err := parseCriteria(c)
	if err != nil {
		return reason(c, http.StatusBadRequest, err.Error())
	}
	view, err := projection.ParseView(c.QueryParam("view"))
	if err != nil {
		return reason(c, http.StatusBadRequest, err.Error())
	}

	snapshots, cancel, err := h.feed.Subscribe(c.Request().Context(), currentUser(c))
	if err != nil {
		return reason(c, http.StatusInternalServerError, "failed to load waypoints")
	}
	defer cancel()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	closed := watchClose(conn)
	for {
		select {
		case <-closed:
			return nil
		case waypoints, ok := <-snapshots:
			if !ok {
				closeNormally(conn)

				return nil
			}
			if err := writeJSON(conn, h.lister.Render(waypoints, criteria, view)); err != nil {
				return nil
			}
		}
	}
}

func eventOf(st capture.State) dto.StateEvent {
	return dto.StateEvent{
		Stage:      st.Stage.String(),
		Progress:   st.Progress,
		Message:    st.Message,
		WaypointID: st.WaypointID,
	}
}

// watchClose drains client frames so control messages are handled, and
// closes the returned channel once the peer goes away.
func watchClose(conn *websocket.Conn) <-chan struct{} {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	return closed
}

func writeJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(v); err != nil {
		logger.Warn("websocket write failed", "error", err)

		return err
	}

	return nil
}

func closeNormally(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
