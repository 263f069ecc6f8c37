package middleware

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nbd-wtf/go-nostr"

	"waypoint/internal/application/usecase/abstraction"
	"waypoint/internal/presentation"
)

// Auth resolves the caller from either "Bearer <jwt>" or "Nostr <base64
// event>". WebSocket clients that cannot set headers may pass the bearer token
// as the access_token query parameter.
func Auth(verifier abstraction.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			authHeader := ctx.Request().Header.Get(presentation.AuthKey)
			if authHeader == "" {
				if tok := ctx.QueryParam("access_token"); tok != "" {
					authHeader = "Bearer " + tok
				}
			}

			userID, token, err := authenticate(ctx, verifier, authHeader)
			if err != nil {
				ctx.Response().Header().Set(presentation.ReasonTag, err.Error())

				return ctx.NoContent(http.StatusUnauthorized)
			}

			ctx.Set(presentation.UserKey, userID)
			ctx.Set(presentation.TokenKey, token)

			return next(ctx)
		}
	}
}

func authenticate(ctx echo.Context, verifier abstraction.TokenVerifier, authHeader string) (string, string, error) {
	switch {
	case authHeader == "":
		return "", "", errors.New("missing Authorization header")

	case strings.HasPrefix(authHeader, "Bearer "):
		token := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := verifier.CurrentUser(ctx.Request().Context(), token)
		if err != nil {
			return "", "", errors.New("invalid token")
		}

		return userID, token, nil

	case strings.HasPrefix(authHeader, "Nostr "):
		event, err := decodeEvent(authHeader)
		if err != nil {
			return "", "", err
		}
		if err := validateEvent(event, actionFor(ctx.Request().Method)); err != nil {
			return "", "", err
		}

		return event.PubKey, "", nil

	default:
		return "", "", errors.New("unsupported Authorization scheme")
	}
}

// actionFor maps an HTTP method to the `t` tag a Nostr auth event must carry.
func actionFor(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "get"
	case http.MethodDelete:
		return "delete"
	default:
		return "upload"
	}
}

func decodeEvent(authHeader string) (*nostr.Event, error) {
	eventBase64 := strings.TrimPrefix(authHeader, "Nostr ")
	eventBytes, err := base64.StdEncoding.DecodeString(eventBase64)
	if err != nil {
		return nil, fmt.Errorf("decode base64 event failed: %s", err.Error())
	}

	event := &nostr.Event{}
	if err = json.Unmarshal(eventBytes, event); err != nil {
		return nil, fmt.Errorf("json decode failed: %s", err.Error())
	}

	return event, nil
}

func validateEvent(event *nostr.Event, action string) error {
	if ok, err := event.CheckSignature(); !ok || err != nil {
		return errors.New("invalid signature")
	}
	if event.Kind != presentation.NostrKind {
		return errors.New("invalid kind")
	}
	if event.CreatedAt.Time().Unix() > time.Now().Add(1*time.Minute).Unix() {
		return errors.New("invalid created_at")
	}

	expiration := getTagValue(event, presentation.ExpTag)
	if expiration == "" {
		return errors.New("empty expiration tag")
	}

	t := getTagValue(event, presentation.TTag)
	if t == "" {
		return errors.New("empty t tag")
	}
	if t != action {
		return errors.New("invalid action")
	}

	expirationTime, err := strconv.ParseInt(expiration, 10, 64)
	if err != nil || expirationTime < time.Now().Unix() {
		return errors.New("invalid expiration")
	}

	return nil
}

func getTagValue(event *nostr.Event, tagName string) string {
	tag := event.Tags.Find(tagName)
	if len(tag) > 1 {
		return tag[1]
	}

	return ""
}
