package abstraction

import (
	"context"
	"io"

	"waypoint/internal/domain/capture"
	"waypoint/internal/domain/dto"
)

// Capturer drives capture sessions on behalf of their owners.
type Capturer interface {
	Start(ctx context.Context, userID string, perms dto.Permissions) (dto.SessionView, error)
	Get(userID, id string) (dto.SessionView, error)
	Subscribe(userID, id string) (<-chan capture.State, func(), error)
	SubmitBackPhoto(ctx context.Context, userID, id string, body io.Reader) (dto.SessionView, error)
	SubmitFrontPhoto(ctx context.Context, userID, id string, body io.Reader) (dto.SessionView, error)
	CancelPhoto(userID, id string) (dto.SessionView, error)
	Restart(userID, id string) (dto.SessionView, error)
	StartRecording(userID, id string) (dto.SessionView, error)
	SetTitle(userID, id, title string) (dto.SessionView, error)
	AddTag(userID, id, tag string) (dto.SessionView, error)
	RemoveTag(userID, id, tag string) (dto.SessionView, error)
	StopRecording(ctx context.Context, userID, id string, body io.Reader) (dto.SessionView, error)
	Retry(ctx context.Context, userID, id string) (dto.SessionView, error)
	Cancel(userID, id string) (dto.SessionView, error)
}
