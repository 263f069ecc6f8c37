package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"waypoint/internal/domain/capture"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/model"
	"waypoint/internal/domain/repository/broker"
	"waypoint/internal/domain/repository/cache"
	"waypoint/internal/domain/repository/database"
	"waypoint/internal/domain/repository/geocoder"
	"waypoint/internal/domain/repository/location"
	"waypoint/internal/domain/repository/minio"
	"waypoint/pkg/logger"
	"waypoint/pkg/utils"
)

const (
	ProgressBackPhoto  = "Uploading back photo"
	ProgressFrontPhoto = "Uploading front photo"
	ProgressAudio      = "Uploading audio"
	ProgressSaving     = "Saving waypoint"
)

// Sequencer turns a finished capture into a stored waypoint: locate, label,
// upload the three blobs, then write the document. Any failing step removes
// the blobs already uploaded in that attempt.
type Sequencer struct {
	locator   location.Locator
	geocoder  geocoder.Geocoder
	media     cache.MediaCache
	uploader  minio.Uploader
	remover   minio.Remover
	writer    database.Writer
	publisher broker.Publisher
	now       func() time.Time
	newID     func() string
}

func NewSequencer(locator location.Locator, geocoder geocoder.Geocoder, media cache.MediaCache,
	uploader minio.Uploader, remover minio.Remover, writer database.Writer, publisher broker.Publisher,
) *Sequencer {
	return &Sequencer{
		locator:   locator,
		geocoder:  geocoder,
		media:     media,
		uploader:  uploader,
		remover:   remover,
		writer:    writer,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// FallbackLabel is used when no address is known for a coordinate.
func FallbackLabel(latitude, longitude float64) string {
	return fmt.Sprintf("%.4f, %.4f", latitude, longitude)
}

type step struct {
	progress string
	name     string
	kind     string
	folder   string
	artifact *capture.Artifact
}

// Run expects the session in ProcessingLocation and leaves it in Success or
// Error. report observes every state the session passes through.
func (s *Sequencer) Run(ctx context.Context, session *capture.Session, report func(capture.State)) error {
	if session.State().Stage != capture.StageProcessingLocation {
		return capture.NewError(capture.KindInvalidTransition,
			"upload requires "+capture.StageProcessingLocation.String(), nil)
	}

	if missing := session.MissingArtifact(); missing != "" {
		return s.fail(session, report, capture.NewError(capture.KindMissingArtifact, missing, nil))
	}

	fix, err := s.locator.Locate(ctx, session.UserID)
	if err != nil {
		return s.fail(session, report, capture.NewError(capture.KindLocationFailure, "unable to determine location", err))
	}

	label := s.label(ctx, fix.Latitude, fix.Longitude)

	stamp := s.now()
	steps := []step{
		{ProgressBackPhoto, "back photo", model.MediaBack, "photos", session.BackPhoto},
		{ProgressFrontPhoto, "front photo", model.MediaFront, "photos", session.FrontPhoto},
		{ProgressAudio, "audio", model.MediaAudio, "audios", session.Audio},
	}

	uploaded := make([]entity.UploadResult, 0, len(steps))
	refs := make(map[string]*model.MediaRef, len(steps))

	for _, st := range steps {
		if err := s.advance(session, report, st.progress); err != nil {
			s.compensate(ctx, uploaded)

			return err
		}

		result, err := s.upload(ctx, session.UserID, st, stamp)
		if err != nil {
			s.compensate(ctx, uploaded)

			return s.fail(session, report, capture.NewError(capture.KindUploadFailure,
				st.name+" upload failed", err))
		}

		uploaded = append(uploaded, result)
		refs[st.kind] = &model.MediaRef{
			Bucket:      result.Bucket,
			Key:         result.Key,
			URL:         result.Location,
			ContentType: result.Type,
			Size:        result.Size,
		}
	}

	if err := s.advance(session, report, ProgressSaving); err != nil {
		s.compensate(ctx, uploaded)

		return err
	}

	title := strings.TrimSpace(session.Title)
	if title == "" {
		title = model.DefaultTitle
	}

	waypoint := &model.Waypoint{
		ID:           s.newID(),
		UserID:       session.UserID,
		BackPhoto:    refs[model.MediaBack],
		FrontPhoto:   refs[model.MediaFront],
		Audio:        refs[model.MediaAudio],
		Latitude:     fix.Latitude,
		Longitude:    fix.Longitude,
		LocationName: label,
		Title:        title,
		Tags:         append([]string{}, session.Tags...),
		Timestamp:    stamp.UTC(),
	}

	if err := s.writer.Write(ctx, waypoint); err != nil {
		s.compensate(ctx, uploaded)

		return s.fail(session, report, capture.NewError(capture.KindSaveFailure, "could not save waypoint", err))
	}

	if err := session.Succeed(waypoint.ID); err != nil {
		return err
	}
	report(session.State())

	if err := s.publisher.Publish(ctx, session.UserID); err != nil {
		logger.Warn("failed to publish waypoint change", "user", session.UserID, "err", err)
	}

	logger.Info("waypoint saved", "id", waypoint.ID, "user", session.UserID)

	return nil
}

func (s *Sequencer) label(ctx context.Context, latitude, longitude float64) string {
	name, err := s.geocoder.Reverse(ctx, latitude, longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed", "err", err)
	}
	if err != nil || strings.TrimSpace(name) == "" {
		return FallbackLabel(latitude, longitude)
	}

	return name
}

func (s *Sequencer) upload(ctx context.Context, userID string, st step, stamp time.Time) (entity.UploadResult, error) {
	body, err := s.media.Open(st.artifact)
	if err != nil {
		return entity.UploadResult{}, err
	}
	defer body.Close()

	key := fmt.Sprintf("%s/%s/%s_%d%s", st.folder, userID, st.kind, stamp.UnixMilli(),
		utils.ExtensionFor(st.artifact.ContentType))

	return s.uploader.Upload(ctx, entity.Object{
		Key:         key,
		ContentType: st.artifact.ContentType,
		Size:        st.artifact.Size,
		Body:        body,
	})
}

func (s *Sequencer) advance(session *capture.Session, report func(capture.State), progress string) error {
	if err := session.Progress(progress); err != nil {
		return err
	}
	report(session.State())

	return nil
}

func (s *Sequencer) fail(session *capture.Session, report func(capture.State), cause *capture.Error) error {
	if err := session.Fail(cause.Reason); err != nil {
		return err
	}
	report(session.State())

	logger.Warn("waypoint pipeline failed", "session", session.ID, "kind", cause.Kind.String(), "err", cause)

	return cause
}

// compensate removes blobs uploaded earlier in a failed attempt. Errors are
// logged only; the attempt has already failed.
func (s *Sequencer) compensate(ctx context.Context, uploaded []entity.UploadResult) {
	ctx = context.WithoutCancel(ctx)
	for _, result := range uploaded {
		if err := s.remover.Remove(ctx, result.Bucket, result.Key); err != nil {
			logger.Error("failed to remove orphaned blob", "bucket", result.Bucket, "key", result.Key, "err", err)
		}
	}
}
