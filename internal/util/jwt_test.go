package util

import (
	"quiz_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-for-tests"
	refreshSecret = "refresh-secret-for-tests"
)

func testUser() *model.User {
	return &model.User{
		Record: model.Record{ID: model.NewID()},
		Username: "alice",
		Email:    "alice@example.com",
		Role:     model.RoleAdmin,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	user := testUser()

	token, err := GenerateAccessToken(user, accessSecret, time.Minute)
	require.NoError(t, err)

	claims, err := ParseTyped(token, accessSecret, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(testUser(), accessSecret, time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "another-secret")
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := GenerateAccessToken(testUser(), accessSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, accessSecret)
	assert.Error(t, err)
}

func TestParseTypedRejectsRefreshAsAccess(t *testing.T) {
	token, err := GenerateRefreshToken(testUser(), accessSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseTyped(token, accessSecret, TokenTypeAccess)
	assert.Error(t, err)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	user := testUser()

	first, err := GenerateRefreshToken(user, refreshSecret, time.Hour)
	require.NoError(t, err)
	second, err := GenerateRefreshToken(user, refreshSecret, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
