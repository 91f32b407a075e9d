package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID()
	token, err := GenerateAccessToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.Hex(), claims.ID)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestVerifyAccessTokenRejectsRefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateRefreshToken(primitive.NewObjectID())
	require.NoError(t, err)

	_, err = VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := VerifyAccessToken("not-a-token")
	assert.Error(t, err)
}

func TestVerifyAccessTokenRejectsWrongKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := GenerateAccessToken(primitive.NewObjectID())
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second-secret")
	_, err = VerifyAccessToken(token)
	assert.Error(t, err)
}
