package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultJWTConfig(t *testing.T) {
	config := DefaultJWTConfig()
	assert.Equal(t, 15*time.Minute, config.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, config.RefreshTokenExpiry)
	assert.Equal(t, "journey", config.Issuer)
}

func TestNewJWTManager(t *testing.T) {
	t.Run("creates with custom config", func(t *testing.T) {
		config := &JWTConfig{
			Secret:             "test-secret-key-that-is-long-enough",
			AccessTokenExpiry:  30 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
			Issuer:             "custom-issuer",
		}
		manager := NewJWTManager(config)
		assert.NotNil(t, manager)
		assert.Equal(t, 30*time.Minute, manager.GetAccessTokenExpiry())
		assert.Equal(t, 24*time.Hour, manager.GetRefreshTokenExpiry())
	})

	t.Run("creates with nil config uses defaults", func(t *testing.T) {
		manager := NewJWTManager(nil)
		assert.NotNil(t, manager)
		assert.Equal(t, 15*time.Minute, manager.GetAccessTokenExpiry())
	})
}

func TestJWTManager_GenerateAccessToken(t *testing.T) {
	config := &JWTConfig{
		Secret:            "test-secret-key-that-is-long-enough",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "test",
	}
	manager := NewJWTManager(config)

	userID := uuid.New()
	token, expiresAt, err := manager.GenerateAccessToken(userID, "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
}

func TestJWTManager_ValidateAccessToken(t *testing.T) {
	config := &JWTConfig{
		Secret:            "test-secret-key-that-is-long-enough",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "test",
	}
	manager := NewJWTManager(config)

	userID := uuid.New()
	email := "test@example.com"

	t.Run("valid token", func(t *testing.T) {
		token, _, err := manager.GenerateAccessToken(userID, email)
		require.NoError(t, err)

		claims, err := manager.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, email, claims.Email)
		assert.Equal(t, "test", claims.Issuer)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := manager.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := manager.GenerateAccessToken(userID, email)
		require.NoError(t, err)

		other := NewJWTManager(&JWTConfig{
			Secret:            "a-completely-different-secret-key",
			AccessTokenExpiry: 15 * time.Minute,
		})
		_, err = other.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTManager(&JWTConfig{
			Secret:            config.Secret,
			AccessTokenExpiry: -time.Minute,
		})
		token, _, err := expired.GenerateAccessToken(userID, email)
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestJWTManager_ValidateToken(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{
		Secret:            "test-secret-key-that-is-long-enough",
		AccessTokenExpiry: 15 * time.Minute,
	})

	userID := uuid.New()
	token, _, err := manager.GenerateAccessToken(userID, "mw@example.com")
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "mw@example.com", claims.Email)
}

func TestJWTManager_RefreshTokens(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{
		Secret:             "test-secret-key-that-is-long-enough",
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	})

	raw, hash, expiresAt, err := manager.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, raw, hash)
	assert.True(t, expiresAt.After(time.Now().Add(6*24*time.Hour)))

	// Hashing the raw token must reproduce the stored hash
	assert.Equal(t, hash, manager.HashRefreshToken(raw))
}

func TestRefreshToken_Validity(t *testing.T) {
	now := time.Now()

	t.Run("valid", func(t *testing.T) {
		token := &RefreshToken{ExpiresAt: now.Add(time.Hour)}
		assert.True(t, token.IsValid())
	})

	t.Run("expired", func(t *testing.T) {
		token := &RefreshToken{ExpiresAt: now.Add(-time.Hour)}
		assert.True(t, token.IsExpired())
		assert.False(t, token.IsValid())
	})

	t.Run("revoked", func(t *testing.T) {
		revokedAt := now.Add(-time.Minute)
		token := &RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}
		assert.True(t, token.IsRevoked())
		assert.False(t, token.IsValid())
	})
}
