package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"waypoint/internal/domain/dto"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/model"
	"waypoint/internal/domain/repository/database"
	"waypoint/internal/domain/repository/token"
	"waypoint/pkg/logger"
)

const minPasswordLength = 8

var ErrInvalidToken = errors.New("token invalid")

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator registers users and issues bearer tokens for them.
type Authenticator struct {
	secret    []byte
	ttl       time.Duration
	writer    database.UserWriter
	retriever database.UserRetriever
	denylist  token.Denylist
	now       func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration, writer database.UserWriter,
	retriever database.UserRetriever, denylist token.Denylist,
) *Authenticator {
	return &Authenticator{
		secret:    []byte(secret),
		ttl:       ttl,
		writer:    writer,
		retriever: retriever,
		denylist:  denylist,
		now:       time.Now,
	}
}

func (a *Authenticator) SignUp(ctx context.Context, creds dto.Credentials) (dto.Session, int, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return dto.Session{}, http.StatusBadRequest, errors.New("a valid email is required")
	}
	if len(creds.Password) < minPasswordLength {
		return dto.Session{}, http.StatusBadRequest, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.Session{}, http.StatusInternalServerError, errors.New("failed to hash password")
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    a.now().UTC(),
	}

	if err := a.writer.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return dto.Session{}, http.StatusConflict, errors.New("email is already registered")
		}
		logger.Error("failed to create user", "err", err)

		return dto.Session{}, http.StatusInternalServerError, errors.New("failed to create user")
	}

	return a.issue(user)
}

func (a *Authenticator) SignIn(ctx context.Context, creds dto.Credentials) (dto.Session, int, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	user, err := a.retriever.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return dto.Session{}, http.StatusUnauthorized, errors.New("invalid credentials")
		}

		return dto.Session{}, http.StatusInternalServerError, errors.New("failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return dto.Session{}, http.StatusUnauthorized, errors.New("invalid credentials")
	}

	return a.issue(user)
}

// SignOut deny-lists the token until it would have expired.
func (a *Authenticator) SignOut(ctx context.Context, tokenString string) (int, error) {
	claims, err := a.parse(tokenString)
	if err != nil {
		return http.StatusUnauthorized, err
	}

	if err := a.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return http.StatusInternalServerError, errors.New("failed to revoke token")
	}

	return http.StatusOK, nil
}

// CurrentUser validates tokenString and returns the signed in user's id.
func (a *Authenticator) CurrentUser(ctx context.Context, tokenString string) (string, error) {
	claims, err := a.parse(tokenString)
	if err != nil {
		return "", err
	}

	revoked, err := a.denylist.Revoked(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

func (a *Authenticator) Profile(ctx context.Context, userID string) (*model.User, int, error) {
	user, err := a.retriever.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, http.StatusNotFound, errors.New("user not found")
		}

		return nil, http.StatusInternalServerError, errors.New("failed to look up user")
	}

	return user, http.StatusOK, nil
}

func (a *Authenticator) issue(user *model.User) (dto.Session, int, error) {
	tok, err := a.sign(user)
	if err != nil {
		return dto.Session{}, http.StatusInternalServerError, errors.New("failed to sign token")
	}

	return dto.Session{
		Token:     tok.Value,
		ExpiresAt: tok.ExpiresAt.Unix(),
		UserID:    user.ID,
		Email:     user.Email,
	}, http.StatusOK, nil
}

func (a *Authenticator) sign(user *model.User) (entity.Token, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	id := uuid.NewString()

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return entity.Token{}, err
	}

	return entity.Token{Value: signed, ID: id, ExpiresAt: expires}, nil
}

func (a *Authenticator) parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
