package capture

type Stage int

const (
	StageIdle Stage = iota
	StageCapturingBackPhoto
	StageCapturingFrontPhoto
	StageRecordingAudio
	StageProcessingLocation
	StageUploadingData
	StageSuccess
	StageError
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageCapturingBackPhoto:
		return "capturing_back_photo"
	case StageCapturingFrontPhoto:
		return "capturing_front_photo"
	case StageRecordingAudio:
		return "recording_audio"
	case StageProcessingLocation:
		return "processing_location"
	case StageUploadingData:
		return "uploading_data"
	case StageSuccess:
		return "success"
	case StageError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the variant observed by clients. Progress is only set while
// uploading, Message only on error and WaypointID only on success.
type State struct {
	Stage      Stage
	Progress   string
	Message    string
	WaypointID string
}

func Idle() State                { return State{Stage: StageIdle} }
func CapturingBackPhoto() State  { return State{Stage: StageCapturingBackPhoto} }
func CapturingFrontPhoto() State { return State{Stage: StageCapturingFrontPhoto} }
func RecordingAudio() State      { return State{Stage: StageRecordingAudio} }
func ProcessingLocation() State  { return State{Stage: StageProcessingLocation} }
func UploadingData(progress string) State {
	return State{Stage: StageUploadingData, Progress: progress}
}
func Succeeded(waypointID string) State { return State{Stage: StageSuccess, WaypointID: waypointID} }
func Failed(message string) State       { return State{Stage: StageError, Message: message} }

// Cancelled is Idle carrying the reason a capture step was aborted.
func Cancelled(reason string) State { return State{Stage: StageIdle, Message: reason} }

func (s State) Terminal() bool {
	return s.Stage == StageSuccess
}

var transitions = map[Stage][]Stage{
	StageIdle:                {StageCapturingBackPhoto},
	StageCapturingBackPhoto:  {StageCapturingFrontPhoto, StageIdle},
	StageCapturingFrontPhoto: {StageRecordingAudio, StageIdle},
	StageRecordingAudio:      {StageProcessingLocation, StageIdle},
	StageProcessingLocation:  {StageUploadingData, StageError, StageIdle},
	StageUploadingData:       {StageUploadingData, StageSuccess, StageError, StageIdle},
	StageError:               {StageProcessingLocation, StageIdle},
	StageSuccess:             {},
}

// CanTransition reports whether the machine may move from one stage to another.
// Error is only entered from ProcessingLocation or UploadingData.
func CanTransition(from, to Stage) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}
