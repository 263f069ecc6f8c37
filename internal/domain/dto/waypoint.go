package dto

import "time"

// Card is the full projection used by the cards view and the detail screen.
type Card struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	LocationName  string    `json:"location_name"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	BackPhotoURL  string    `json:"back_photo_url,omitempty"`
	FrontPhotoURL string    `json:"front_photo_url,omitempty"`
	AudioURL      string    `json:"audio_url,omitempty"`
	Tags          []string  `json:"tags"`
	Timestamp     time.Time `json:"timestamp"`
}

type GridTile struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type ListRow struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LocationName string    `json:"location_name"`
	Timestamp    time.Time `json:"timestamp"`
}

type Marker struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	LocationName string  `json:"location_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type Camera struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
}

type MapView struct {
	Markers []Marker `json:"markers"`
	Camera  Camera   `json:"camera"`
}

// Listing is the response of a filtered list request. Exactly one of the
// view slices is populated, matching View.
type Listing struct {
	View  string     `json:"view"`
	Total int        `json:"total"`
	Cards []Card     `json:"cards,omitempty"`
	Grid  []GridTile `json:"grid,omitempty"`
	List  []ListRow  `json:"list,omitempty"`
}
