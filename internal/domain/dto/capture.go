package dto

type Permissions struct {
	Camera     bool `json:"camera"`
	Microphone bool `json:"microphone"`
	Location   bool `json:"location"`
}

type SessionView struct {
	ID                  string   `json:"id"`
	Stage               string   `json:"stage"`
	Progress            string   `json:"progress,omitempty"`
	Message             string   `json:"message,omitempty"`
	WaypointID          string   `json:"waypoint_id,omitempty"`
	HasBackPhoto        bool     `json:"has_back_photo"`
	HasFrontPhoto       bool     `json:"has_front_photo"`
	HasAudio            bool     `json:"has_audio"`
	Recording           bool     `json:"recording"`
	RecordingDurationMs int64    `json:"recording_duration_ms"`
	Title               string   `json:"title"`
	Tags                []string `json:"tags"`
	AvailableTags       []string `json:"available_tags"`
}

type StateEvent struct {
	Stage      string `json:"stage"`
	Progress   string `json:"progress,omitempty"`
	Message    string `json:"message,omitempty"`
	WaypointID string `json:"waypoint_id,omitempty"`
}
