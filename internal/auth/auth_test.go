package auth

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: "alice"}
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("secret", 12*time.Hour)
	user := testUser()

	token, issued, err := issuer.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, issued.ID, claims.ID)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTTLIsClamped(t *testing.T) {
	assert.Equal(t, MinTokenTTL, NewTokenIssuer("s", time.Minute).TTL())
	assert.Equal(t, MaxTokenTTL, NewTokenIssuer("s", 72*time.Hour).TTL())
	assert.Equal(t, 4*time.Hour, NewTokenIssuer("s", 4*time.Hour).TTL())
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret", 2*time.Hour)
	other := NewTokenIssuer("other-secret", 2*time.Hour)

	token, _, err := other.Issue(testUser())
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	issuer.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	expired, _, err := issuer.Issue(testUser())
	require.NoError(t, err)
	_, err = issuer.Parse(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// already expired tokens are not worth remembering
	require.NoError(t, store.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Passw0rd")
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "Passw0rd")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}
