package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"waypoint/internal/domain/capture"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/model"
	locationRepository "waypoint/internal/domain/repository/location"
)

type sequencerDeps struct {
	locator   *MockLocator
	geocoder  *MockGeocoder
	media     *fakeMedia
	uploader  *MockUploader
	remover   *MockRemover
	writer    *MockWriter
	publisher *MockPublisher
}

func newTestSequencer() (*Sequencer, *sequencerDeps) {
	d := &sequencerDeps{
		locator:   &MockLocator{},
		geocoder:  &MockGeocoder{},
		media:     newFakeMedia(),
		uploader:  &MockUploader{},
		remover:   &MockRemover{},
		writer:    &MockWriter{},
		publisher: &MockPublisher{},
	}

	s := NewSequencer(d.locator, d.geocoder, d.media, d.uploader, d.remover, d.writer, d.publisher)
	s.now = func() time.Time { return fixedNow }
	s.newID = func() string { return "wp-1" }

	return s, d
}

// readySession returns a session in ProcessingLocation holding all three artifacts.
func readySession(t *testing.T, media *fakeMedia) *capture.Session {
	t.Helper()
	ctx := context.Background()

	s := capture.NewSession("s1", "alice", fixedNow)
	require.NoError(t, s.Start())

	back, err := media.Store(ctx, "s1", "back", "image", strings.NewReader("back-bytes"))
	require.NoError(t, err)
	require.NoError(t, s.RecordBackPhoto(back))

	front, err := media.Store(ctx, "s1", "front", "image", strings.NewReader("front-bytes"))
	require.NoError(t, err)
	require.NoError(t, s.RecordFrontPhoto(front))

	audio, err := media.Store(ctx, "s1", "audio", "audio", strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	require.NoError(t, s.StartRecording(fixedNow))
	require.NoError(t, s.StopRecording(audio, fixedNow.Add(4*time.Second)))

	s.SetTitle("Lunch spot")
	s.AddTag("food")

	return s
}

func uploadResult(key string) entity.UploadResult {
	return entity.UploadResult{Bucket: "waypoints", Key: key, Location: "http://minio/waypoints/" + key, Size: 10, Type: "image/jpeg"}
}

func keyHasPrefix(prefix string) any {
	return mock.MatchedBy(func(o entity.Object) bool { return strings.HasPrefix(o.Key, prefix) })
}

func collect(states *[]capture.State) func(capture.State) {
	return func(s capture.State) { *states = append(*states, s) }
}

func TestSequencerHappyPath(t *testing.T) {
	t.Parallel()
	seq, d := newTestSequencer()
	session := readySession(t, d.media)

	d.locator.On("Locate", mock.Anything, "alice").Return(model.Fix{Latitude: 37.422, Longitude: -122.084}, nil)
	d.geocoder.On("Reverse", mock.Anything, 37.422, -122.084).Return("Googleplex", nil)

	ms := fixedNow.UnixMilli()
	backKey := "photos/alice/back_" + strconv.FormatInt(ms, 10) + ".jpg"
	frontKey := "photos/alice/front_" + strconv.FormatInt(ms, 10) + ".jpg"
	audioKey := "audios/alice/audio_" + strconv.FormatInt(ms, 10) + ".m4a"
	d.uploader.On("Upload", mock.Anything, mock.MatchedBy(func(o entity.Object) bool { return o.Key == backKey })).Return(uploadResult(backKey), nil).Once()
	d.uploader.On("Upload", mock.Anything, mock.MatchedBy(func(o entity.Object) bool { return o.Key == frontKey })).Return(uploadResult(frontKey), nil).Once()
	d.uploader.On("Upload", mock.Anything, mock.MatchedBy(func(o entity.Object) bool { return o.Key == audioKey })).Return(uploadResult(audioKey), nil).Once()

	var saved *model.Waypoint
	d.writer.On("Write", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.Waypoint)
	}).Return(nil)
	d.publisher.On("Publish", mock.Anything, "alice").Return(nil)

	var states []capture.State
	require.NoError(t, seq.Run(context.Background(), session, collect(&states)))

	assert.Equal(t, []capture.State{
		capture.UploadingData(ProgressBackPhoto),
		capture.UploadingData(ProgressFrontPhoto),
		capture.UploadingData(ProgressAudio),
		capture.UploadingData(ProgressSaving),
		capture.Succeeded("wp-1"),
	}, states)

	require.NotNil(t, saved)
	assert.Equal(t, "wp-1", saved.ID)
	assert.Equal(t, "Googleplex", saved.LocationName)
	assert.Equal(t, "Lunch spot", saved.Title)
	assert.Equal(t, []string{"food"}, saved.Tags)
	assert.Equal(t, backKey, saved.BackPhoto.Key)
	assert.Equal(t, audioKey, saved.Audio.Key)
	assert.Equal(t, fixedNow, saved.Timestamp)

	d.remover.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
	d.publisher.AssertExpectations(t)
}

func TestSequencerFallbackLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		label  string
		err    error
		expect string
	}{
		{"geocoder error", "", errors.New("offline"), "48.8584, 2.2945"},
		{"empty address", "", nil, "48.8584, 2.2945"},
		{"address", "Eiffel Tower", nil, "Eiffel Tower"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seq, d := newTestSequencer()
			session := readySession(t, d.media)
			session.SetTitle("  ")

			d.locator.On("Locate", mock.Anything, "alice").Return(model.Fix{Latitude: 48.85837, Longitude: 2.294481}, nil)
			d.geocoder.On("Reverse", mock.Anything, mock.Anything, mock.Anything).Return(tt.label, tt.err)
			d.uploader.On("Upload", mock.Anything, mock.Anything).Return(uploadResult("k"), nil)

			var saved *model.Waypoint
			d.writer.On("Write", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
				saved = args.Get(1).(*model.Waypoint)
			}).Return(nil)
			d.publisher.On("Publish", mock.Anything, "alice").Return(errors.New("broker down"))

			require.NoError(t, seq.Run(context.Background(), session, func(capture.State) {}))
			assert.Equal(t, tt.expect, saved.LocationName)
			assert.Equal(t, model.DefaultTitle, saved.Title)
			assert.Equal(t, capture.StageSuccess, session.State().Stage)
		})
	}
}

func TestFallbackLabelFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.0000, 0.0000", FallbackLabel(0, 0))
	assert.Equal(t, "-33.8568, 151.2153", FallbackLabel(-33.85678, 151.21529))
}

func TestSequencerLocationFailure(t *testing.T) {
	t.Parallel()
	seq, d := newTestSequencer()
	session := readySession(t, d.media)

	d.locator.On("Locate", mock.Anything, "alice").Return(model.Fix{}, locationRepository.ErrUnavailable)

	var states []capture.State
	err := seq.Run(context.Background(), session, collect(&states))

	assert.Equal(t, capture.KindLocationFailure, capture.KindOf(err))
	assert.ErrorIs(t, err, locationRepository.ErrUnavailable)
	assert.Equal(t, []capture.State{capture.Failed("unable to determine location")}, states)
	d.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	assert.True(t, session.CanRetry())
}

func TestSequencerCompensatesUploadedBlobs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		failAt      string
		wantRemoved []string
		message     string
	}{
		{"back photo fails", "photos/alice/back_", nil, "back photo upload failed"},
		{"front photo fails", "photos/alice/front_", []string{"back"}, "front photo upload failed"},
		{"audio fails", "audios/alice/audio_", []string{"back", "front"}, "audio upload failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seq, d := newTestSequencer()
			session := readySession(t, d.media)

			d.locator.On("Locate", mock.Anything, "alice").Return(model.Fix{Latitude: 1, Longitude: 2}, nil)
			d.geocoder.On("Reverse", mock.Anything, 1.0, 2.0).Return("Somewhere", nil)
			d.uploader.On("Upload", mock.Anything, keyHasPrefix(tt.failAt)).Return(entity.UploadResult{}, errors.New("network down"))
			for _, kind := range []string{"back", "front"} {
				d.uploader.On("Upload", mock.Anything, keyHasPrefix("photos/alice/"+kind+"_")).
					Return(uploadResult(kind), nil).Maybe()
			}
			d.remover.On("Remove", mock.Anything, "waypoints", mock.Anything).Return(errors.New("also down"))

			var states []capture.State
			err := seq.Run(context.Background(), session, collect(&states))

			assert.Equal(t, capture.KindUploadFailure, capture.KindOf(err))
			assert.Equal(t, capture.Failed(tt.message), states[len(states)-1])

			removed := []string{}
			for _, call := range d.remover.Calls {
				removed = append(removed, call.Arguments.String(2))
			}
			if tt.wantRemoved == nil {
				assert.Empty(t, removed)
			} else {
				assert.Equal(t, tt.wantRemoved, removed)
			}
			d.writer.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
			d.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func TestSequencerSaveFailureRemovesAllBlobs(t *testing.T) {
	t.Parallel()
	seq, d := newTestSequencer()
	session := readySession(t, d.media)

	d.locator.On("Locate", mock.Anything, "alice").Return(model.Fix{Latitude: 1, Longitude: 2}, nil)
	d.geocoder.On("Reverse", mock.Anything, 1.0, 2.0).Return("Somewhere", nil)
	d.uploader.On("Upload", mock.Anything, keyHasPrefix("photos/alice/back_")).Return(uploadResult("back"), nil)
	d.uploader.On("Upload", mock.Anything, keyHasPrefix("photos/alice/front_")).Return(uploadResult("front"), nil)
	d.uploader.On("Upload", mock.Anything, keyHasPrefix("audios/alice/audio_")).Return(uploadResult("audio"), nil)
	d.writer.On("Write", mock.Anything, mock.Anything).Return(errors.New("write conflict"))
	d.remover.On("Remove", mock.Anything, "waypoints", mock.Anything).Return(nil)

	err := seq.Run(context.Background(), session, func(capture.State) {})

	assert.Equal(t, capture.KindSaveFailure, capture.KindOf(err))
	assert.Equal(t, capture.Failed("could not save waypoint"), session.State())
	d.remover.AssertNumberOfCalls(t, "Remove", 3)
	d.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSequencerMissingAudio(t *testing.T) {
	t.Parallel()
	seq, d := newTestSequencer()

	session := capture.NewSession("s1", "alice", fixedNow)
	require.NoError(t, session.Start())
	back, _ := d.media.Store(context.Background(), "s1", "back", "image", strings.NewReader("b"))
	front, _ := d.media.Store(context.Background(), "s1", "front", "image", strings.NewReader("f"))
	require.NoError(t, session.RecordBackPhoto(back))
	require.NoError(t, session.RecordFrontPhoto(front))
	require.NoError(t, session.StopRecording(nil, fixedNow))

	err := seq.Run(context.Background(), session, func(capture.State) {})

	assert.Equal(t, capture.KindMissingArtifact, capture.KindOf(err))
	assert.Equal(t, capture.Failed("audio recording is missing"), session.State())
	d.locator.AssertNotCalled(t, "Locate", mock.Anything, mock.Anything)
	assert.False(t, session.CanRetry())
}

func TestSequencerRequiresProcessingLocation(t *testing.T) {
	t.Parallel()
	seq, _ := newTestSequencer()

	err := seq.Run(context.Background(), capture.NewSession("s1", "alice", fixedNow), func(capture.State) {})
	assert.Equal(t, capture.KindInvalidTransition, capture.KindOf(err))
}
