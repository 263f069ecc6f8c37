package model

import "time"

// Fix is a device reported position.
type Fix struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"`
	ReportedAt time.Time `json:"reported_at"`
}
