package projection

import (
	"waypoint/internal/domain/dto"
	"waypoint/internal/domain/model"
)

const (
	DefaultLatitude  = 37.4220
	DefaultLongitude = -122.0840

	singleZoom = 15
	manyZoom   = 10
)

// Map places one marker per waypoint and centers the camera on their mean position.
func Map(waypoints []model.Waypoint) dto.MapView {
	view := dto.MapView{
		Markers: make([]dto.Marker, 0, len(waypoints)),
		Camera:  dto.Camera{Latitude: DefaultLatitude, Longitude: DefaultLongitude, Zoom: manyZoom},
	}
	if len(waypoints) == 0 {
		return view
	}

	var lat, lon float64
	for i := range waypoints {
		wp := &waypoints[i]
		lat += wp.Latitude
		lon += wp.Longitude
		view.Markers = append(view.Markers, dto.Marker{
			ID:           wp.ID,
			Title:        wp.Title,
			LocationName: wp.LocationName,
			Latitude:     wp.Latitude,
			Longitude:    wp.Longitude,
		})
	}

	n := float64(len(waypoints))
	view.Camera.Latitude = lat / n
	view.Camera.Longitude = lon / n
	if len(waypoints) == 1 {
		view.Camera.Zoom = singleZoom
	}

	return view
}
