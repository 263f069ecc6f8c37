package abstraction

import (
	"context"

	"waypoint/internal/domain/dto"
	"waypoint/internal/domain/model"
)

type Authenticator interface {
	SignUp(ctx context.Context, creds dto.Credentials) (dto.Session, int, error)
	SignIn(ctx context.Context, creds dto.Credentials) (dto.Session, int, error)
	SignOut(ctx context.Context, token string) (int, error)
	Profile(ctx context.Context, userID string) (*model.User, int, error)
}

// TokenVerifier resolves a bearer token to the signed in user's id.
type TokenVerifier interface {
	CurrentUser(ctx context.Context, token string) (string, error)
}
