package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"waypoint/internal/application/usecase/abstraction"
	"waypoint/internal/domain/dto"
	"waypoint/internal/presentation"
)

type AuthHandler struct {
	authenticator abstraction.Authenticator
}

func NewAuthHandler(authenticator abstraction.Authenticator) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
	}
}

// HandleSignUp handles POST /auth/signup requests.
func (h *AuthHandler) HandleSignUp(c echo.Context) error {
	return h.handleCredentials(c, h.authenticator.SignUp, http.StatusCreated)
}

// HandleSignIn handles POST /auth/signin requests.
func (h *AuthHandler) HandleSignIn(c echo.Context) error {
	return h.handleCredentials(c, h.authenticator.SignIn, http.StatusOK)
}

func (h *AuthHandler) handleCredentials(c echo.Context,
	fn func(ctx context.Context, creds dto.Credentials) (dto.Session, int, error), okStatus int,
) error {
	var creds dto.Credentials
	if err := c.Bind(&creds); err != nil {
		return reason(c, http.StatusBadRequest, "invalid request body")
	}

	session, status, err := fn(c.Request().Context(), creds)
	if err != nil {
		return reason(c, status, err.Error())
	}

	return c.JSON(okStatus, session)
}

// HandleSignOut handles POST /auth/signout requests. Nostr callers have no
// token to revoke.
func (h *AuthHandler) HandleSignOut(c echo.Context) error {
	token, _ := c.Get(presentation.TokenKey).(string)
	if token == "" {
		return c.NoContent(http.StatusNoContent)
	}

	status, err := h.authenticator.SignOut(c.Request().Context(), token)
	if err != nil {
		return reason(c, status, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleMe handles GET /auth/me requests.
func (h *AuthHandler) HandleMe(c echo.Context) error {
	user, status, err := h.authenticator.Profile(c.Request().Context(), currentUser(c))
	if err != nil {
		return reason(c, status, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}
