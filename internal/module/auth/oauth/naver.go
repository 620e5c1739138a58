package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const naverUserAPI = "https://openapi.naver.com/v1/nid/me"

// naverEndpoint is Naver's OAuth 2.0 endpoint.
// x/oauth2 does not ship one, so it is defined here.
var naverEndpoint = oauth2.Endpoint{
	AuthURL:  "https://nid.naver.com/oauth2.0/authorize",
	TokenURL: "https://nid.naver.com/oauth2.0/token",
}

// NaverProvider implements OAuth for Naver.
type NaverProvider struct {
	config *oauth2.Config
}

// NewNaverProvider creates a new Naver OAuth provider.
func NewNaverProvider(cfg *Config) *NaverProvider {
	return &NaverProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     naverEndpoint,
		},
	}
}

// Name returns the provider name.
func (p *NaverProvider) Name() string {
	return "naver"
}

// GetAuthURL returns the OAuth authorization URL.
func (p *NaverProvider) GetAuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange exchanges the authorization code for tokens.
func (p *NaverProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return token, nil
}

// GetUserInfo fetches user information from Naver.
func (p *NaverProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	client := p.config.Client(ctx, token)

	resp, err := client.Get(naverUserAPI)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver api error: %s", resp.Status)
	}

	var body struct {
		ResultCode string `json:"resultcode"`
		Message    string `json:"message"`
		Response   struct {
			ID           string `json:"id"`
			Nickname     string `json:"nickname"`
			Name         string `json:"name"`
			Email        string `json:"email"`
			ProfileImage string `json:"profile_image"`
		} `json:"response"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}

	if body.ResultCode != "00" {
		return nil, fmt.Errorf("naver api error: %s", body.Message)
	}

	name := body.Response.Nickname
	if name == "" {
		name = body.Response.Name
	}

	return &UserInfo{
		ID:        body.Response.ID,
		Email:     body.Response.Email,
		Name:      name,
		AvatarURL: body.Response.ProfileImage,
	}, nil
}
