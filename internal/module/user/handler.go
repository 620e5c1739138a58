package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/journey-app/server/internal/module/auth"
	"github.com/journey-app/server/internal/module/auth/oauth"
	"github.com/journey-app/server/internal/shared/middleware"
	"github.com/journey-app/server/internal/shared/response"
)

// Handler handles HTTP requests for accounts and authentication.
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the public auth routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.GET("/:provider/authorize", h.OAuthAuthorize)
		authGroup.GET("/:provider/callback", h.OAuthCallback)
	}
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/auth/logout", h.Logout)

	users := r.Group("/users")
	{
		users.GET("/me", h.Me)
		users.PATCH("/me", h.UpdateProfile)
		users.POST("/me/avatar", h.UpdateAvatar)
		users.DELETE("/me", h.DeleteAccount)
	}
}

// Register handles email registration.
//
//	@Summary		Register new user
//	@Description	Create a new account with email, nickname, and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration request"
//	@Success		201		{object}	UserResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Router			/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u.ToResponse())
}

// Login handles email login.
//
//	@Summary		Login with email and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login request"
//	@Success		200		{object}	AuthResponse
//	@Failure		401		{object}	response.ErrorResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, tokens, err := h.service.Login(c.Request.Context(), &req, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{User: u.ToResponse(), Tokens: tokens})
}

// OAuthAuthorize starts the OAuth flow for a provider.
//
//	@Summary		Get OAuth authorization URL
//	@Tags			Auth
//	@Produce		json
//	@Param			provider	path		string	true	"Provider name (kakao, naver)"
//	@Success		200			{object}	AuthorizeResponse
//	@Failure		400			{object}	response.ErrorResponse
//	@Router			/auth/{provider}/authorize [get]
func (h *Handler) OAuthAuthorize(c *gin.Context) {
	url, err := h.service.BeginOAuth(c.Request.Context(), c.Param("provider"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthorizeResponse{AuthorizationURL: url})
}

// OAuthCallback completes the OAuth flow.
//
//	@Summary		OAuth callback
//	@Description	Exchange the authorization code for tokens and sign in
//	@Tags			Auth
//	@Produce		json
//	@Param			provider	path		string	true	"Provider name (kakao, naver)"
//	@Param			code		query		string	true	"Authorization code"
//	@Param			state		query		string	true	"State parameter"
//	@Success		200			{object}	AuthResponse
//	@Failure		401			{object}	response.ErrorResponse
//	@Router			/auth/{provider}/callback [get]
func (h *Handler) OAuthCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		response.BadRequest(c, "code and state are required")
		return
	}

	u, tokens, err := h.service.CompleteOAuth(
		c.Request.Context(), c.Param("provider"), code, state,
		c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{User: u.ToResponse(), Tokens: tokens})
}

// Refresh rotates a refresh token.
//
//	@Summary		Refresh access token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest	true	"Refresh request"
//	@Success		200		{object}	auth.TokenPair
//	@Failure		401		{object}	response.ErrorResponse
//	@Router			/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Logout revokes a refresh token.
//
//	@Summary		Logout
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	LogoutRequest	true	"Logout request"
//	@Success		204
//	@Security		BearerAuth
//	@Router			/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
//
//	@Summary		Get current user
//	@Tags			User
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Security		BearerAuth
//	@Router			/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	u, err := h.service.GetUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToResponse())
}

// UpdateProfile applies partial profile updates.
//
//	@Summary		Update profile
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Param			request	body		UpdateProfileRequest	true	"Profile update"
//	@Success		200		{object}	UserResponse
//	@Security		BearerAuth
//	@Router			/users/me [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToResponse())
}

// UpdateAvatar uploads a new profile image.
//
//	@Summary		Upload profile image
//	@Tags			User
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image	formData	file	true	"Profile image"
//	@Success		200		{object}	UserResponse
//	@Security		BearerAuth
//	@Router			/users/me/avatar [post]
func (h *Handler) UpdateAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return
	}
	defer file.Close()

	u, err := h.service.UpdateAvatar(
		c.Request.Context(), middleware.GetUserID(c),
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToResponse())
}

// DeleteAccount soft deletes the authenticated user's account.
//
//	@Summary		Delete account
//	@Tags			User
//	@Success		204
//	@Security		BearerAuth
//	@Router			/users/me [delete]
func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.service.DeleteAccount(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleError maps user module errors to HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrUserNotFound, Status: http.StatusNotFound, Code: "USER_NOT_FOUND"},
		{Err: ErrEmailTaken, Status: http.StatusConflict, Code: "EMAIL_TAKEN"},
		{Err: ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS"},
		{Err: ErrAccountDeleted, Status: http.StatusForbidden, Code: "ACCOUNT_DELETED"},
		{Err: ErrOAuthOnlyAccount, Status: http.StatusConflict, Code: "OAUTH_ONLY_ACCOUNT"},
		{Err: ErrInvalidRefresh, Status: http.StatusUnauthorized, Code: "INVALID_REFRESH_TOKEN"},
		{Err: auth.ErrInvalidOAuthProvider, Status: http.StatusBadRequest, Code: "INVALID_PROVIDER"},
		{Err: oauth.ErrProviderNotFound, Status: http.StatusBadRequest, Code: "INVALID_PROVIDER"},
		{Err: auth.ErrInvalidOAuthState, Status: http.StatusUnauthorized, Code: "INVALID_STATE"},
		{Err: auth.ErrInvalidOAuthCode, Status: http.StatusUnauthorized, Code: "INVALID_CODE"},
		{Err: auth.ErrOAuthFailed, Status: http.StatusBadGateway, Code: "OAUTH_FAILED"},
	})
}
