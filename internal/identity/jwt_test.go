package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
)

func TestService_RoundTrip(t *testing.T) {
	svc := NewService("test-key", "udonmap", "udonmap-api")

	token, err := svc.IssueToken(id.UserID("uid-1"), "taro@example.com", "Taro", false, time.Hour)
	require.NoError(t, err)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID("uid-1"), user.ID)
	assert.Equal(t, "taro@example.com", user.Email)
	assert.False(t, user.Moderator)
}

func TestService_AdminClaim(t *testing.T) {
	svc := NewService("test-key", "udonmap", "udonmap-api")

	token, err := svc.IssueToken(id.UserID("mod-1"), "mod@example.com", "Mod", true, time.Hour)
	require.NoError(t, err)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, user.Moderator)
}

func TestService_RejectsExpired(t *testing.T) {
	svc := NewService("test-key", "udonmap", "udonmap-api")

	token, err := svc.IssueToken(id.UserID("uid-1"), "", "", false, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestService_RejectsWrongKey(t *testing.T) {
	issuer := NewService("key-a", "udonmap", "udonmap-api")
	verifier := NewService("key-b", "udonmap", "udonmap-api")

	token, err := issuer.IssueToken(id.UserID("uid-1"), "", "", false, time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
