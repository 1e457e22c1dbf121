package auth_test

import (
	"testing"
	"time"

	"college-erp/internal/auth"
	"college-erp/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateAccessToken(testSecret, 42, "registrar", users.RoleAdmissionOfficer, users.AccessEdit, 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateAccessToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "registrar", claims.Username)
	assert.Equal(t, users.RoleAdmissionOfficer, claims.RoleName)
	assert.Equal(t, users.AccessEdit, claims.AccessType)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := auth.GenerateAccessToken(testSecret, 1, "u", users.RoleAdministrator, users.AccessEdit, -time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateAccessToken(testSecret, token)
	assert.Error(t, err)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := auth.GenerateAccessToken("secret-a", 1, "u", users.RoleAdministrator, users.AccessEdit, time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateAccessToken("secret-b", token)
	assert.Error(t, err)
}

func TestTokenFunctionsRejectEmptySecret(t *testing.T) {
	// The secret comes from config; nothing falls back to the
	// environment.
	t.Setenv("JWT_SECRET", "env-only-secret")

	_, err := auth.GenerateAccessToken("", 1, "u", users.RoleAdministrator, users.AccessEdit, time.Minute)
	assert.Error(t, err)

	token, err := auth.GenerateAccessToken("env-only-secret", 1, "u", users.RoleAdministrator, users.AccessEdit, time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateAccessToken("", token)
	assert.Error(t, err)
}

func TestGenerateRefreshTokenDistinct(t *testing.T) {
	a, err := auth.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := auth.GenerateRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
