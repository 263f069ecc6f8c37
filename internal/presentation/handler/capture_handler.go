package handler

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"waypoint/internal/application/usecase/abstraction"
	"waypoint/internal/domain/dto"
	"waypoint/internal/presentation"
)

type CaptureHandler struct {
	capturer abstraction.Capturer
}

func NewCaptureHandler(capturer abstraction.Capturer) *CaptureHandler {
	return &CaptureHandler{
		capturer: capturer,
	}
}

type titleRequest struct {
	Title string `json:"title"`
}

type tagRequest struct {
	Tag string `json:"tag"`
}

func respond(c echo.Context, status int, view dto.SessionView, err error) error {
	if err != nil {
		return captureFailure(c, err)
	}

	return c.JSON(status, view)
}

// HandleStart handles POST /captures requests.
func (h *CaptureHandler) HandleStart(c echo.Context) error {
	var perms dto.Permissions
	if err := c.Bind(&perms); err != nil {
		return reason(c, http.StatusBadRequest, "invalid request body")
	}

	view, err := h.capturer.Start(c.Request().Context(), currentUser(c), perms)

	return respond(c, http.StatusCreated, view, err)
}

// HandleGet handles GET /captures/:id requests.
func (h *CaptureHandler) HandleGet(c echo.Context) error {
	view, err := h.capturer.Get(currentUser(c), c.Param(presentation.IDParam))

	return respond(c, http.StatusOK, view, err)
}

// HandleBackPhoto handles PUT /captures/:id/photos/back requests with the raw image as body.
func (h *CaptureHandler) HandleBackPhoto(c echo.Context) error {
	return h.handleUpload(c, h.capturer.SubmitBackPhoto)
}

// HandleFrontPhoto handles PUT /captures/:id/photos/front requests with the raw image as body.
func (h *CaptureHandler) HandleFrontPhoto(c echo.Context) error {
	return h.handleUpload(c, h.capturer.SubmitFrontPhoto)
}

// HandleAudio handles PUT /captures/:id/audio requests. It stops the
// recording and runs the save pipeline, answering with the final view.
func (h *CaptureHandler) HandleAudio(c echo.Context) error {
	return h.handleUpload(c, h.capturer.StopRecording)
}

func (h *CaptureHandler) handleUpload(c echo.Context, submit func(ctx context.Context, userID, id string, body io.Reader) (dto.SessionView, error)) error {
	body := c.Request().Body
	defer body.Close()

	view, err := submit(c.Request().Context(), currentUser(c), c.Param(presentation.IDParam), body)

	return respond(c, http.StatusOK, view, err)
}

// HandleCancelPhoto handles POST /captures/:id/photos/cancel requests.
func (h *CaptureHandler) HandleCancelPhoto(c echo.Context) error {
	view, err := h.capturer.CancelPhoto(currentUser(c), c.Param(presentation.IDParam))

	return respond(c, http.StatusOK, view, err)
}

// HandleRestart handles POST /captures/:id/restart requests.
func (h *CaptureHandler) HandleRestart(c echo.Context) error {
	view, err := h.capturer.Restart(currentUser(c), c.Param(presentation.IDParam))

	return respond(c, http.StatusOK, view, err)
}

// HandleStartRecording handles POST /captures/:id/recording requests.
func (h *CaptureHandler) HandleStartRecording(c echo.Context) error {
	view, err := h.capturer.StartRecording(currentUser(c), c.Param(presentation.IDParam))

	return respond(c, http.StatusOK, view, err)
}

// HandleTitle handles PUT /captures/:id/title requests.
func (h *CaptureHandler) HandleTitle(c echo.Context) error {
	var req titleRequest
	if err := c.Bind(&req); err != nil {
		return reason(c, http.StatusBadRequest, "invalid request body")
	}

	view, err := h.capturer.SetTitle(currentUser(c), c.Param(presentation.IDParam), req.Title)

	return respond(c, http.StatusOK, view, err)
}

// HandleAddTag handles POST /captures/:id/tags requests.
func (h *CaptureHandler) HandleAddTag(c echo.Context) error {
	var req tagRequest
	if err := c.Bind(&req); err != nil {
		return reason(c, http.StatusBadRequest, "invalid request body")
	}

	view, err := h.capturer.AddTag(currentUser(c), c.Param(presentation.IDParam), req.Tag)

	return respond(c, http.StatusOK, view, err)
}

// HandleRemoveTag handles DELETE /captures/:id/tags/:tag requests.
func (h *CaptureHandler) HandleRemoveTag(c echo.Context) error {
	tag, err := url.PathUnescape(c.Param(presentation.TagParam))
	if err != nil {
		return reason(c, http.StatusBadRequest, "invalid tag")
	}

	view, err := h.capturer.RemoveTag(currentUser(c), c.Param(presentation.IDParam), tag)

	return respond(c, http.StatusOK, view, err)
}

// HandleRetry handles POST /captures/:id/retry requests.
func (h *CaptureHandler) HandleRetry(c echo.Context) error {
	view, err := h.capturer.Retry(c.Request().Context(), currentUser(c), c.Param(presentation.IDParam))

	return respond(c, http.StatusOK, view, err)
}

// HandleCancel handles DELETE /captures/:id requests.
func (h *CaptureHandler) HandleCancel(c echo.Context) error {
	view, err := h.capturer.Cancel(currentUser(c), c.Param(presentation.IDParam))

	return respond(c, http.StatusOK, view, err)
}
