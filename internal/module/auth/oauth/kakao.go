package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/kakao"
)

const kakaoUserAPI = "https://kapi.kakao.com/v2/user/me"

// KakaoProvider implements OAuth for Kakao.
type KakaoProvider struct {
	config *oauth2.Config
}

// NewKakaoProvider creates a new Kakao OAuth provider.
func NewKakaoProvider(cfg *Config) *KakaoProvider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"profile_nickname", "profile_image", "account_email"}
	}

	return &KakaoProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     kakao.Endpoint,
		},
	}
}

// Name returns the provider name.
func (p *KakaoProvider) Name() string {
	return "kakao"
}

// GetAuthURL returns the OAuth authorization URL.
func (p *KakaoProvider) GetAuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange exchanges the authorization code for tokens.
func (p *KakaoProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return token, nil
}

// GetUserInfo fetches user information from Kakao.
func (p *KakaoProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	client := p.config.Client(ctx, token)

	resp, err := client.Get(kakaoUserAPI)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao api error: %s", resp.Status)
	}

	var user struct {
		ID           int64 `json:"id"`
		KakaoAccount struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname        string `json:"nickname"`
				ProfileImageURL string `json:"profile_image_url"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}

	return &UserInfo{
		ID:        strconv.FormatInt(user.ID, 10),
		Email:     user.KakaoAccount.Email,
		Name:      user.KakaoAccount.Profile.Nickname,
		AvatarURL: user.KakaoAccount.Profile.ProfileImageURL,
	}, nil
}
