package user

import "errors"

// User module errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeleted     = errors.New("account has been deleted")
	ErrOAuthOnlyAccount   = errors.New("account uses social login")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
)
