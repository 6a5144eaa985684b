package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/odin-book/backend/internal/auth"
	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func runProtected(t *testing.T, mw echo.MiddlewareFunc, header string) (primitive.ObjectID, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen primitive.ObjectID
	err := mw(func(c echo.Context) error {
		id, err := UserID(c)
		seen = id
		return err
	})(c)
	return seen, err
}

func TestJWTAuthMiddleware(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", 2*time.Hour)
	revocations := auth.NewMemoryRevocationStore()
	logger, _ := logtest.NewNullLogger()
	mw := JWTAuthMiddleware(issuer, revocations, logger)

	user := &models.User{ID: primitive.NewObjectID(), Username: "alice"}
	token, claims, err := issuer.Issue(user)
	require.NoError(t, err)

	id, err := runProtected(t, mw, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = runProtected(t, mw, "")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)

	_, err = runProtected(t, mw, "Token "+token)
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)

	_, err = runProtected(t, mw, "Bearer garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, revocations.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	_, err = runProtected(t, mw, "Bearer "+token)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)
}

type brokenRevocations struct{}

func (brokenRevocations) Revoke(context.Context, string, time.Time) error { return nil }

func (brokenRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestJWTAuthMiddlewareRevocationLookupFails(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", 2*time.Hour)
	logger, hook := logtest.NewNullLogger()
	mw := JWTAuthMiddleware(issuer, brokenRevocations{}, logger)

	token, _, err := issuer.Issue(&models.User{ID: primitive.NewObjectID(), Username: "alice"})
	require.NoError(t, err)

	_, err = runProtected(t, mw, "Bearer "+token)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "failed to check token revocation", entry.Message)
}
