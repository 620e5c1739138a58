package auth

import "errors"

// Auth module errors.
var (
	// Token errors
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrRevokedToken       = errors.New("token has been revoked")
	ErrTokenNotFound      = errors.New("refresh token not found")
	ErrInvalidTokenClaims = errors.New("invalid token claims")

	// OAuth errors
	ErrInvalidOAuthProvider = errors.New("invalid OAuth provider")
	ErrInvalidOAuthCode     = errors.New("invalid OAuth code")
	ErrInvalidOAuthState    = errors.New("invalid OAuth state")
	ErrOAuthFailed          = errors.New("OAuth authentication failed")
)
