// Package oauth implements the social login providers (Kakao, Naver)
// behind a common interface, so the user service can run the same
// authorize/callback flow regardless of which provider the client
// picked.
package oauth

import (
	"context"

	"golang.org/x/oauth2"
)

// Provider is the contract a social login backend has to satisfy.
type Provider interface {
	// Name is the provider key used in routes, e.g. "kakao".
	Name() string

	// GetAuthURL builds the authorization URL with the CSRF state.
	GetAuthURL(state string) string

	// Exchange trades the callback's authorization code for tokens.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// GetUserInfo fetches the provider's profile for the token.
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)
}

// UserInfo is the provider-agnostic profile the user service links
// accounts with. ID is the provider's own user ID, not ours.
type UserInfo struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// Config is the per-provider client credential set from app config.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}
