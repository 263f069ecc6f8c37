package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"waypoint/internal/domain/model"
	"waypoint/internal/domain/repository/location"
)

type LocationHandler struct {
	reporter location.Reporter
}

func NewLocationHandler(reporter location.Reporter) *LocationHandler {
	return &LocationHandler{
		reporter: reporter,
	}
}

// HandleReport handles POST /location requests carrying the device's latest fix.
func (h *LocationHandler) HandleReport(c echo.Context) error {
	var fix model.Fix
	if err := c.Bind(&fix); err != nil {
		return reason(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.reporter.Report(c.Request().Context(), currentUser(c), fix); err != nil {
		if errors.Is(err, location.ErrInvalidFix) {
			return reason(c, http.StatusBadRequest, err.Error())
		}

		return reason(c, http.StatusInternalServerError, "failed to store location")
	}

	return c.NoContent(http.StatusAccepted)
}
