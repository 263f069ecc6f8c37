package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waypoint/internal/application/usecase"
	"waypoint/internal/domain/dto"
	"waypoint/internal/presentation"
)

func sampleWaypoints() waypointStore {
	return waypointStore{
		{
			ID: "w2", UserID: "alice", Title: "Harbor", LocationName: "Pier 39, San Francisco",
			Latitude: 37.80, Longitude: -122.40, Tags: []string{"sea"},
			Timestamp: time.Date(2024, 5, 2, 1, 30, 0, 0, time.UTC),
		},
		{
			ID: "w1", UserID: "alice", Title: "Summit", LocationName: "Mount Tam",
			Latitude: 37.92, Longitude: -122.59, Tags: []string{"hike"},
			Timestamp: time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC),
		},
		{ID: "w9", UserID: "bob", Title: "Harbor too", Timestamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func waypointServer(getter *stubGetter, thumbs *stubThumbnailer) *echo.Echo {
	h := NewWaypointHandler(usecase.NewLister(sampleWaypoints(), "http://localhost:8080"), getter, thumbs)
	e := echo.New()
	g := e.Group("/waypoints", withUser("alice"))
	g.GET("", h.HandleList)
	g.GET("/tags", h.HandleTags)
	g.GET("/map", h.HandleMap)
	g.GET("/:id", h.HandleGet)
	g.GET("/:id/media/:kind", h.HandleMedia)
	g.GET("/:id/thumbnail/:kind", h.HandleThumbnail)

	return e
}

func TestHandleList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedView   string
		expectedIDs    []string
	}{
		{name: "all as cards", query: "", expectedStatus: http.StatusOK, expectedView: "cards", expectedIDs: []string{"w2", "w1"}},
		{name: "search", query: "?q=harb", expectedStatus: http.StatusOK, expectedView: "cards", expectedIDs: []string{"w2"}},
		{name: "tags", query: "?tags=hike,%20other", expectedStatus: http.StatusOK, expectedView: "cards", expectedIDs: []string{"w1"}},
		{name: "utc day", query: "?date=2024-05-02", expectedStatus: http.StatusOK, expectedView: "cards", expectedIDs: []string{"w2"}},
		{name: "local day", query: "?date=2024-05-01&tz=America/Los_Angeles", expectedStatus: http.StatusOK, expectedView: "cards", expectedIDs: []string{"w2", "w1"}},
		{name: "list view", query: "?view=list", expectedStatus: http.StatusOK, expectedView: "list", expectedIDs: []string{"w2", "w1"}},
		{name: "grid view", query: "?view=grid", expectedStatus: http.StatusOK, expectedView: "grid", expectedIDs: []string{"w2", "w1"}},
		{name: "bad view", query: "?view=table", expectedStatus: http.StatusBadRequest},
		{name: "bad date", query: "?date=05/01/2024", expectedStatus: http.StatusBadRequest},
		{name: "bad tz", query: "?date=2024-05-01&tz=Nowhere/City", expectedStatus: http.StatusBadRequest},
	}

	e := waypointServer(&stubGetter{}, &stubThumbnailer{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/waypoints"+tt.query, http.NoBody))

			require.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.NotEmpty(t, rec.Header().Get(presentation.ReasonTag))

				return
			}

			var listing dto.Listing
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
			assert.Equal(t, tt.expectedView, listing.View)
			assert.Equal(t, len(tt.expectedIDs), listing.Total)

			ids := []string{}
			for _, c := range listing.Cards {
				ids = append(ids, c.ID)
			}
			for _, r := range listing.List {
				ids = append(ids, r.ID)
			}
			for _, g := range listing.Grid {
				ids = append(ids, g.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestHandleTagsAndMap(t *testing.T) {
	t.Parallel()

	e := waypointServer(&stubGetter{}, &stubThumbnailer{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/waypoints/tags", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var tags []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	assert.Equal(t, []string{"hike", "sea"}, tags)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/waypoints/map?tags=sea", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var mapView dto.MapView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mapView))
	require.Len(t, mapView.Markers, 1)
	assert.Equal(t, "w2", mapView.Markers[0].ID)
	assert.InDelta(t, 37.80, mapView.Camera.Latitude, 1e-9)
}

func TestHandleGetAndMedia(t *testing.T) {
	t.Parallel()

	getter := &stubGetter{card: dto.Card{ID: "w1", Title: "Summit"}, url: "https://minio/presigned", status: http.StatusFound}
	e := waypointServer(getter, &stubThumbnailer{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/waypoints/w1", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var card dto.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "Summit", card.Title)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/waypoints/w1/media/audio", http.NoBody))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://minio/presigned", rec.Header().Get(echo.HeaderLocation))
}

func TestHandleGetNotFound(t *testing.T) {
	t.Parallel()

	e := waypointServer(&stubGetter{status: http.StatusNotFound, err: errors.New("waypoint not found")}, &stubThumbnailer{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/waypoints/w9", http.NoBody))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "waypoint not found", rec.Header().Get(presentation.ReasonTag))
}

func TestHandleThumbnail(t *testing.T) {
	t.Parallel()

	e := waypointServer(&stubGetter{}, &stubThumbnailer{data: []byte{0xff, 0xd8, 0xff}, status: http.StatusOK})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/waypoints/w1/thumbnail/back", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, rec.Body.Bytes())

	e = waypointServer(&stubGetter{}, &stubThumbnailer{status: http.StatusBadRequest, err: errors.New("no thumbnail for audio")})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/waypoints/w1/thumbnail/audio", http.NoBody))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no thumbnail for audio", rec.Header().Get(presentation.ReasonTag))
}
