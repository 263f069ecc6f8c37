package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/labstack/echo/v4"

	"waypoint/internal/application/usecase"
	"waypoint/internal/domain/capture"
	"waypoint/internal/domain/filter"
	"waypoint/internal/presentation"
)

type errorBody struct {
	Error string `json:"error"`
}

func reason(c echo.Context, status int, msg string) error {
	c.Response().Header().Set(presentation.ReasonTag, msg)

	return c.NoContent(status)
}

// captureFailure answers with both the X-Reason header and a JSON body so the
// client can show the message to the user.
func captureFailure(c echo.Context, err error) error {
	status := captureStatus(err)
	msg := err.Error()
	var cErr *capture.Error
	if errors.As(err, &cErr) {
		msg = cErr.Reason
	}

	c.Response().Header().Set(presentation.ReasonTag, msg)

	return c.JSON(status, errorBody{Error: msg})
}

func captureStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrSessionBusy):
		return http.StatusConflict
	}

	switch capture.KindOf(err) {
	case capture.KindPermissionDenied:
		return http.StatusForbidden
	case capture.KindInvalidTransition, capture.KindNothingToRetry, capture.KindCaptureCancelled:
		return http.StatusConflict
	case capture.KindInvalidMedia, capture.KindMissingArtifact:
		return http.StatusUnprocessableEntity
	case capture.KindLocationFailure, capture.KindUploadFailure, capture.KindSaveFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func currentUser(c echo.Context) string {
	userID, _ := c.Get(presentation.UserKey).(string)

	return userID
}

// parseCriteria reads q, date (YYYY-MM-DD), tz (IANA name) and tags (comma
// separated) from the query string.
func parseCriteria(c echo.Context) (filter.Criteria, error) {
	criteria := filter.Criteria{Search: c.QueryParam("q")}

	if raw := c.QueryParam("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				criteria.Tags = append(criteria.Tags, t)
			}
		}
	}

	if raw := c.QueryParam("date"); raw != "" {
		loc := time.UTC
		if tz := c.QueryParam("tz"); tz != "" {
			l, err := time.LoadLocation(tz)
			if err != nil {
				return filter.Criteria{}, fmt.Errorf("invalid 'tz' %q", tz)
			}
			loc = l
		}

		day, err := time.ParseInLocation(time.DateOnly, raw, loc)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("invalid 'date' %q", raw)
		}
		criteria.Date = &day
	}

	return criteria, nil
}
