package capture

import (
	"fmt"
	"strings"
	"time"
)

// Artifact is a captured media file held locally until upload.
type Artifact struct {
	Path        string
	ContentType string
	Size        int64
}

// Session is the transient state behind one waypoint creation. It is not safe
// for concurrent use; its owner serializes access.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	TouchedAt time.Time

	state State

	BackPhoto  *Artifact
	FrontPhoto *Artifact
	Audio      *Artifact

	recording          bool
	recordingStartedAt time.Time
	RecordingDuration  time.Duration

	Title         string
	Tags          []string
	AvailableTags []string
}

func NewSession(id, userID string, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		TouchedAt: now,
		state:     Idle(),
		Tags:      []string{},
	}
}

func (s *Session) State() State {
	return s.state
}

// Transition moves the session to next, enforcing the transition table.
func (s *Session) Transition(next State) error {
	if !CanTransition(s.state.Stage, next.Stage) {
		return NewError(KindInvalidTransition,
			fmt.Sprintf("cannot move from %s to %s", s.state.Stage, next.Stage), nil)
	}
	s.state = next

	return nil
}

func (s *Session) Start() error {
	return s.Transition(CapturingBackPhoto())
}

func (s *Session) RecordBackPhoto(photo *Artifact) error {
	if s.state.Stage != StageCapturingBackPhoto {
		return s.unexpected(StageCapturingBackPhoto)
	}
	if photo == nil {
		return NewError(KindMissingArtifact, "back photo was not captured", nil)
	}
	s.BackPhoto = photo

	return s.Transition(CapturingFrontPhoto())
}

func (s *Session) RecordFrontPhoto(photo *Artifact) error {
	if s.state.Stage != StageCapturingFrontPhoto {
		return s.unexpected(StageCapturingFrontPhoto)
	}
	if s.BackPhoto == nil {
		return NewError(KindMissingArtifact, "back photo is missing", nil)
	}
	if photo == nil {
		return NewError(KindMissingArtifact, "front photo was not captured", nil)
	}
	s.FrontPhoto = photo

	return s.Transition(RecordingAudio())
}

func (s *Session) StartRecording(now time.Time) error {
	if s.state.Stage != StageRecordingAudio {
		return s.unexpected(StageRecordingAudio)
	}
	s.recording = true
	s.recordingStartedAt = now
	s.RecordingDuration = 0

	return nil
}

func (s *Session) Recording() bool {
	return s.recording
}

// Elapsed is the recording duration, live while recording.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.recording {
		return now.Sub(s.recordingStartedAt)
	}

	return s.RecordingDuration
}

// StopRecording stores the audio and enters ProcessingLocation. A nil audio
// still advances so that the pipeline reports the missing artifact as an error.
func (s *Session) StopRecording(audio *Artifact, now time.Time) error {
	if s.state.Stage != StageRecordingAudio {
		return s.unexpected(StageRecordingAudio)
	}
	if s.recording {
		s.RecordingDuration = now.Sub(s.recordingStartedAt)
		s.recording = false
	}
	s.Audio = audio

	return s.Transition(ProcessingLocation())
}

// MissingArtifact describes the first artifact the upload stage cannot find.
func (s *Session) MissingArtifact() string {
	switch {
	case s.BackPhoto == nil:
		return "back photo is missing"
	case s.FrontPhoto == nil:
		return "front photo is missing"
	case s.Audio == nil:
		return "audio recording is missing"
	default:
		return ""
	}
}

func (s *Session) CanRetry() bool {
	return s.state.Stage == StageError && s.MissingArtifact() == ""
}

// BeginRetry re-enters ProcessingLocation from Error.
func (s *Session) BeginRetry() error {
	if s.state.Stage != StageError {
		return s.unexpected(StageError)
	}
	if !s.CanRetry() {
		return NewError(KindNothingToRetry, "nothing to retry", nil)
	}

	return s.Transition(ProcessingLocation())
}

func (s *Session) Progress(label string) error {
	return s.Transition(UploadingData(label))
}

func (s *Session) Succeed(waypointID string) error {
	if s.state.Stage != StageUploadingData {
		return s.unexpected(StageUploadingData)
	}

	return s.Transition(Succeeded(waypointID))
}

func (s *Session) Fail(message string) error {
	return s.Transition(Failed(message))
}

func (s *Session) SetTitle(title string) {
	s.Title = title
}

// AddTag appends a trimmed tag unless it is blank or already selected,
// ignoring case. It reports whether the tag was added.
func (s *Session) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || s.hasTag(tag) {
		return false
	}
	s.Tags = append(s.Tags, tag)

	return true
}

func (s *Session) RemoveTag(tag string) bool {
	for i, t := range s.Tags {
		if strings.EqualFold(t, strings.TrimSpace(tag)) {
			s.Tags = append(s.Tags[:i], s.Tags[i+1:]...)

			return true
		}
	}

	return false
}

// UnselectedTags are the suggestions not yet picked.
func (s *Session) UnselectedTags() []string {
	out := make([]string, 0, len(s.AvailableTags))
	for _, t := range s.AvailableTags {
		if !s.hasTag(t) {
			out = append(out, t)
		}
	}

	return out
}

// Reset cancels the session back to Idle and returns the artifacts the caller
// must delete. Success is terminal and cannot be reset.
func (s *Session) Reset() ([]*Artifact, error) {
	if s.state.Terminal() {
		return nil, NewError(KindInvalidTransition, "session already finished", nil)
	}

	held := s.Artifacts()

	s.state = Idle()
	s.BackPhoto = nil
	s.FrontPhoto = nil
	s.Audio = nil
	s.recording = false
	s.recordingStartedAt = time.Time{}
	s.RecordingDuration = 0
	s.Title = ""
	s.Tags = []string{}

	return held, nil
}

// Cancel is Reset for an aborted capture step; the Idle state keeps reason.
func (s *Session) Cancel(reason string) ([]*Artifact, error) {
	held, err := s.Reset()
	if err != nil {
		return nil, err
	}
	s.state = Cancelled(reason)

	return held, nil
}

func (s *Session) Artifacts() []*Artifact {
	out := make([]*Artifact, 0, 3)
	for _, a := range []*Artifact{s.BackPhoto, s.FrontPhoto, s.Audio} {
		if a != nil {
			out = append(out, a)
		}
	}

	return out
}

func (s *Session) hasTag(tag string) bool {
	for _, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}

	return false
}

// Expect fails with an invalid transition error unless the session is at stage.
func (s *Session) Expect(stage Stage) error {
	if s.state.Stage != stage {
		return s.unexpected(stage)
	}

	return nil
}

func (s *Session) unexpected(want Stage) error {
	return NewError(KindInvalidTransition,
		fmt.Sprintf("session is %s, expected %s", s.state.Stage, want), nil)
}
