package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/journey-app/server/internal/module/auth"
	"github.com/journey-app/server/internal/module/auth/oauth"
	"github.com/journey-app/server/internal/shared/metrics"
	"github.com/journey-app/server/internal/utils/random"
)

// ImageStore abstracts profile image storage.
type ImageStore interface {
	Upload(ctx context.Context, keyPrefix string, filename string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// Service handles accounts and authentication.
type Service struct {
	repo      Repository
	tokens    auth.RefreshTokenRepository
	jwt       *auth.JWTManager
	providers *oauth.Registry
	states    auth.StateStore
	images    ImageStore
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewService creates a new user service.
func NewService(
	repo Repository,
	tokens auth.RefreshTokenRepository,
	jwt *auth.JWTManager,
	providers *oauth.Registry,
	states auth.StateStore,
	images ImageStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		jwt:       jwt,
		providers: providers,
		states:    states,
		images:    images,
		metrics:   m,
		logger:    logger,
	}
}

// Register creates a new account with an email and password.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)

	u := &User{
		ID:           uuid.New(),
		Email:        email,
		Nickname:     req.Nickname,
		PasswordHash: &hashStr,
		Status:       StatusActive,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("email", u.Email))
	s.recordAuth("register", "email")
	return u, nil
}

// Login authenticates with an email and password and issues a token pair.
func (s *Service) Login(ctx context.Context, req *LoginRequest, userAgent, ip string) (*User, *auth.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if !u.CanLogin() {
		return nil, nil, ErrAccountDeleted
	}
	if u.PasswordHash == nil {
		return nil, nil, ErrOAuthOnlyAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
		s.recordAuth("login_failed", "email")
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, u, userAgent, ip)
	if err != nil {
		return nil, nil, err
	}
	s.recordAuth("login", "email")
	return u, pair, nil
}

// OAuthLogin finds or creates the account matching the provider identity
// and issues a token pair. Accounts are matched by email, falling back to
// a synthetic provider address when the provider withholds the real one.
func (s *Service) OAuthLogin(ctx context.Context, provider string, info *oauth.UserInfo, userAgent, ip string) (*User, *auth.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		email = fmt.Sprintf("%s@%s.com", info.ID, provider)
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		nickname := info.Name
		if nickname == "" {
			nickname = strings.SplitN(email, "@", 2)[0]
		}
		u = &User{
			ID:              uuid.New(),
			Email:           email,
			Nickname:        nickname,
			Provider:        &provider,
			OAuthID:         &info.ID,
			ProfileImageURL: info.AvatarURL,
			Status:          StatusActive,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, nil, fmt.Errorf("create oauth user: %w", err)
		}
		s.logger.Info("oauth user created",
			zap.String("user_id", u.ID.String()),
			zap.String("provider", provider))
		s.recordAuth("register", provider)
	} else if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	} else if !u.CanLogin() {
		return nil, nil, ErrAccountDeleted
	}

	pair, err := s.issueTokens(ctx, u, userAgent, ip)
	if err != nil {
		return nil, nil, err
	}
	s.recordAuth("login", provider)
	return u, pair, nil
}

// BeginOAuth generates a state value, stores it, and returns the provider
// authorization URL.
func (s *Service) BeginOAuth(ctx context.Context, providerName string) (string, error) {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return "", err
	}
	state, err := random.Base64URL(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := s.states.Set(ctx, state, providerName); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}
	return provider.GetAuthURL(state), nil
}

// CompleteOAuth validates the state, exchanges the code, and signs the
// user in.
func (s *Service) CompleteOAuth(ctx context.Context, providerName, code, state, userAgent, ip string) (*User, *auth.TokenPair, error) {
	stored, err := s.states.Get(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	if stored != providerName {
		return nil, nil, auth.ErrInvalidOAuthState
	}
	_ = s.states.Delete(ctx, state)

	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, nil, err
	}
	token, err := provider.Exchange(ctx, code)
	if err != nil {
		s.recordAuth("oauth_exchange_failed", providerName)
		return nil, nil, auth.ErrInvalidOAuthCode
	}
	info, err := provider.GetUserInfo(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", auth.ErrOAuthFailed, err)
	}
	return s.OAuthLogin(ctx, providerName, info, userAgent, ip)
}

// Refresh rotates a refresh token and issues a new token pair.
func (s *Service) Refresh(ctx context.Context, rawToken, userAgent, ip string) (*auth.TokenPair, error) {
	record, err := s.tokens.GetByHash(ctx, s.jwt.HashRefreshToken(rawToken))
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if !record.IsValid() {
		return nil, ErrInvalidRefresh
	}

	u, err := s.repo.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, err
	}
	if !u.CanLogin() {
		return nil, ErrAccountDeleted
	}

	if err := s.tokens.Revoke(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	return s.issueTokens(ctx, u, userAgent, ip)
}

// Logout revokes the presented refresh token.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	record, err := s.tokens.GetByHash(ctx, s.jwt.HashRefreshToken(rawToken))
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return nil
		}
		return fmt.Errorf("get refresh token: %w", err)
	}
	if err := s.tokens.Revoke(ctx, record.ID); err != nil && !errors.Is(err, auth.ErrTokenNotFound) {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// GetUser returns the user by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies partial profile updates.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Nickname != nil {
		u.Nickname = *req.Nickname
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// UpdateAvatar uploads a new profile image, replacing the previous one.
func (s *Service) UpdateAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Upload(ctx, "avatars", filename, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	old := u.ProfileImageURL
	u.ProfileImageURL = url
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if old != "" {
		if err := s.images.Delete(ctx, old); err != nil {
			s.logger.Warn("delete old avatar failed",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}
	return u, nil
}

// DeleteAccount soft deletes the account and revokes all its refresh
// tokens.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.Warn("revoke tokens on delete failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
	s.logger.Info("account deleted", zap.String("user_id", userID.String()))
	return nil
}

func (s *Service) issueTokens(ctx context.Context, u *User, userAgent, ip string) (*auth.TokenPair, error) {
	access, accessExp, err := s.jwt.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	raw, hash, refreshExp, err := s.jwt.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	record := &auth.RefreshToken{
		ID:        uuid.New(),
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: refreshExp,
		UserAgent: userAgent,
		IPAddress: ip,
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &auth.TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
		ExpiresAt:    accessExp,
	}, nil
}

func (s *Service) recordAuth(event, provider string) {
	if s.metrics != nil {
		s.metrics.RecordAuthEvent(event, provider)
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "duplicated key")
}
