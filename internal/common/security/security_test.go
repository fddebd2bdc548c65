package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateToken_Claims(t *testing.T) {
	InitJWT([]byte("test-secret"), time.Hour)

	tokenString, err := GenerateToken("ana", "owner")
	require.NoError(t, err)

	token, err := TokenAuth.Decode(tokenString)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)

	username, err := GetUsernameFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "ana", username)

	role, err := GetRoleFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "owner", role)
}

func TestGetClaims_Missing(t *testing.T) {
	_, err := GetUsernameFromClaims(map[string]interface{}{"role": "member"})
	assert.Error(t, err)
	_, err = GetRoleFromClaims(map[string]interface{}{"username": "ana"})
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
