package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"waypoint/internal/application/usecase/abstraction"
	"waypoint/internal/domain/projection"
	"waypoint/internal/presentation"
)

type WaypointHandler struct {
	lister      abstraction.Lister
	getter      abstraction.Getter
	thumbnailer abstraction.Thumbnailer
}

func NewWaypointHandler(lister abstraction.Lister, getter abstraction.Getter,
	thumbnailer abstraction.Thumbnailer,
) *WaypointHandler {
	return &WaypointHandler{
		lister:      lister,
		getter:      getter,
		thumbnailer: thumbnailer,
	}
}

// HandleList handles GET /waypoints requests.
func (h *WaypointHandler) HandleList(c echo.Context) error {
	criteria, err := parseCriteria(c)
	if err != nil {
		return reason(c, http.StatusBadRequest, err.Error())
	}

	view, err := projection.ParseView(c.QueryParam("view"))
	if err != nil {
		return reason(c, http.StatusBadRequest, err.Error())
	}

	listing, status, err := h.lister.ListWaypoints(c.Request().Context(), currentUser(c), criteria, view)
	if err != nil {
		return reason(c, status, err.Error())
	}

	return c.JSON(http.StatusOK, listing)
}

// HandleTags handles GET /waypoints/tags requests.
func (h *WaypointHandler) HandleTags(c echo.Context) error {
	tags, status, err := h.lister.Tags(c.Request().Context(), currentUser(c))
	if err != nil {
		return reason(c, status, err.Error())
	}

	return c.JSON(http.StatusOK, tags)
}

// HandleMap handles GET /waypoints/map requests.
func (h *WaypointHandler) HandleMap(c echo.Context) error {
	criteria, err := parseCriteria(c)
	if err != nil {
		return reason(c, http.StatusBadRequest, err.Error())
	}

	mapView, status, err := h.lister.MapWaypoints(c.Request().Context(), currentUser(c), criteria)
	if err != nil {
		return reason(c, status, err.Error())
	}

	return c.JSON(http.StatusOK, mapView)
}

// HandleGet handles GET /waypoints/:id requests.
func (h *WaypointHandler) HandleGet(c echo.Context) error {
	card, status, err := h.getter.GetWaypoint(c.Request().Context(), currentUser(c), c.Param(presentation.IDParam))
	if err != nil {
		return reason(c, status, err.Error())
	}

	return c.JSON(http.StatusOK, card)
}

// HandleMedia handles GET /waypoints/:id/media/:kind by redirecting to a presigned URL.
func (h *WaypointHandler) HandleMedia(c echo.Context) error {
	url, status, err := h.getter.MediaURL(c.Request().Context(), currentUser(c),
		c.Param(presentation.IDParam), c.Param(presentation.KindParam))
	if err != nil {
		return reason(c, status, err.Error())
	}

	return c.Redirect(status, url)
}

// HandleThumbnail handles GET /waypoints/:id/thumbnail/:kind requests.
func (h *WaypointHandler) HandleThumbnail(c echo.Context) error {
	data, status, err := h.thumbnailer.Thumbnail(c.Request().Context(), currentUser(c),
		c.Param(presentation.IDParam), c.Param(presentation.KindParam))
	if err != nil {
		return reason(c, status, err.Error())
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=3600")

	return c.Blob(http.StatusOK, "image/jpeg", data)
}
