package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenService() TokenService {
	return TokenService{
		Secret:     []byte("test-secret"),
		Issuer:     "courseaca-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	tokens := testTokenService()
	hash, err := tokens.HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, tokens.VerifyPassword("s3cret", hash))
	assert.False(t, tokens.VerifyPassword("wrong", hash))
}

func TestResolveIdentity(t *testing.T) {
	tokens := testTokenService()
	access, _, err := tokens.CreateAccessToken("user-1", RoleTeacher)
	require.NoError(t, err)

	identity, err := tokens.ResolveIdentity(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, RoleTeacher, identity.Role)
}

func TestResolveIdentityRejectsRefreshToken(t *testing.T) {
	tokens := testTokenService()
	refresh, err := tokens.CreateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = tokens.ResolveIdentity(refresh)
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestResolveIdentityRejectsGarbage(t *testing.T) {
	tokens := testTokenService()
	_, err := tokens.ResolveIdentity("not-a-token")
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestResolveIdentityRejectsWrongSecret(t *testing.T) {
	tokens := testTokenService()
	other := testTokenService()
	other.Secret = []byte("different-secret")

	access, _, err := other.CreateAccessToken("user-1", RoleAdmin)
	require.NoError(t, err)

	_, err = tokens.ResolveIdentity(access)
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" teacher ")
	assert.True(t, ok)
	assert.Equal(t, RoleTeacher, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}
