package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyhub/bountyhub-backend/internal/models"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
}

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	tm := newTestTokenManager()
	user := &models.User{ID: uuid.New()}

	pair, _, _, err := tm.GeneratePair(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	userID, isAdmin, err := tm.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.False(t, isAdmin)
}

func TestTokenManager_AdminClaim(t *testing.T) {
	tm := newTestTokenManager()
	admin := &models.User{ID: uuid.New(), IsAdmin: true}

	pair, _, _, err := tm.GeneratePair(admin)
	require.NoError(t, err)

	_, isAdmin, err := tm.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.True(t, isAdmin)
}

func TestTokenManager_RefreshRoundTrip(t *testing.T) {
	tm := newTestTokenManager()
	user := &models.User{ID: uuid.New()}

	pair, _, refreshExp, err := tm.GeneratePair(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(720*time.Hour), refreshExp, time.Minute)

	claims, err := tm.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RefreshTokensUnique(t *testing.T) {
	tm := newTestTokenManager()
	user := &models.User{ID: uuid.New()}

	first, _, _, err := tm.GeneratePair(user)
	require.NoError(t, err)
	second, _, _, err := tm.GeneratePair(user)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestTokenManager_RejectsCrossTokens(t *testing.T) {
	tm := newTestTokenManager()
	user := &models.User{ID: uuid.New()}

	pair, _, _, err := tm.GeneratePair(user)
	require.NoError(t, err)

	// Refresh токен подписан другим секретом и не проходит как access.
	_, _, err = tm.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)

	_, err = tm.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestTokenManager_ExpiredAccess(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", -time.Minute, time.Hour)
	user := &models.User{ID: uuid.New()}

	pair, _, _, err := tm.GeneratePair(user)
	require.NoError(t, err)

	_, _, err = tm.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}
