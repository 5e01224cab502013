// internal/auth/session_test.go
package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndAuthenticateJWT(t *testing.T) {
	require.NoError(t, Init())

	memberID := uuid.New().String()
	token, err := CreateJWT(memberID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	sub, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, memberID, sub)
}

func TestAuthenticateJWTRejectsTampered(t *testing.T) {
	require.NoError(t, Init())

	token, err := CreateJWT(uuid.New().String())
	require.NoError(t, err)

	_, err = AuthenticateJWT(token + "x")
	assert.Error(t, err)

	_, err = AuthenticateJWT("not.a.jwt")
	assert.Error(t, err)
}

func TestAuthenticateJWTRejectsForeignKey(t *testing.T) {
	require.NoError(t, Init())
	token, err := CreateJWT(uuid.New().String())
	require.NoError(t, err)

	// Re-Init rotates the key pair; old tokens must no longer verify.
	require.NoError(t, Init())
	_, err = AuthenticateJWT(token)
	assert.Error(t, err)
}

func TestParseTokenExpireTime(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "24h")
	require.NoError(t, Init())
	assert.Equal(t, 86400, tokenExpireSec)

	t.Setenv("TOKEN_EXPIRE_TIME", "never")
	require.NoError(t, Init())
	assert.Equal(t, 0, tokenExpireSec)

	t.Setenv("TOKEN_EXPIRE_TIME", "soon")
	assert.Error(t, Init())
}
