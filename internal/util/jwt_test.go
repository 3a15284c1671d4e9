package util

import (
	"fordrax_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		Name:  "Ana",
		Email: "ana@example.com",
		Role:  model.OrgAdmin,
	}
	user.ID = 42

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.OrgAdmin, claims.Role)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestParseJWTWrongSecret(t *testing.T) {
	user := &model.User{Email: "ana@example.com", Role: model.Employee}
	user.ID = 1

	token, err := GenerateJWT(user, "secret-a", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret-b")
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestParseJWTExpired(t *testing.T) {
	user := &model.User{Email: "ana@example.com", Role: model.Employee}
	user.ID = 1

	token, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	assert.Nil(t, claims)
	assert.Error(t, err)
}
