package challenge

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/journey-app/server/internal/module/ownership"
	"github.com/journey-app/server/internal/shared/middleware"
	"github.com/journey-app/server/internal/shared/response"
	"github.com/journey-app/server/internal/utils/pagination"
)

// Handler handles HTTP requests for challenges.
type Handler struct {
	service *Service
}

// NewHandler creates a new challenge handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers challenge routes. All routes require
// authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	challenges := r.Group("/challenges")
	{
		challenges.POST("", h.CreateChallenge)
		challenges.GET("", h.ListChallenges)
		challenges.GET("/:id", h.GetChallenge)
		challenges.PATCH("/:id", h.UpdateChallenge)
		challenges.DELETE("/:id", h.DeleteChallenge)
		challenges.PATCH("/:id/status", h.UpdateStatus)

		challenges.GET("/:id/my-status", h.MyStatus)
		challenges.PUT("/:id/my-status", h.SetMyStatus)
		challenges.GET("/:id/achievements", h.ListAchievements)
	}
}

// CreateChallenge creates a challenge.
//
//	@Summary		Create challenge
//	@Tags			Challenge
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateChallengeRequest	true	"Challenge"
//	@Success		201		{object}	ChallengeResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/challenges [post]
func (h *Handler) CreateChallenge(c *gin.Context) {
	var req CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ch, err := h.service.CreateChallenge(c.Request.Context(), h.principal(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ch.ToResponse())
}

// ListChallenges lists challenges visible to the caller.
//
//	@Summary		List challenges
//	@Description	Optional status filter (LIVE, SUCCESS, FAIL); unknown values are ignored
//	@Tags			Challenge
//	@Produce		json
//	@Param			status		query		string	false	"Status filter"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	ListChallengesResponse
//	@Security		BearerAuth
//	@Router			/challenges [get]
func (h *Handler) ListChallenges(c *gin.Context) {
	pg := pagination.New()
	if err := c.ShouldBindQuery(pg); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	challenges, total, err := h.service.ListChallenges(c.Request.Context(), h.principal(c), c.Query("status"), pg)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := ListChallengesResponse{Challenges: make([]*ChallengeResponse, 0, len(challenges)), Total: total}
	for _, ch := range challenges {
		resp.Challenges = append(resp.Challenges, ch.ToResponse())
	}
	c.JSON(http.StatusOK, resp)
}

// GetChallenge returns a single challenge.
//
//	@Summary		Get challenge
//	@Tags			Challenge
//	@Produce		json
//	@Param			id	path		string	true	"Challenge ID"
//	@Success		200	{object}	ChallengeResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/challenges/{id} [get]
func (h *Handler) GetChallenge(c *gin.Context) {
	id, ok := h.challengeID(c)
	if !ok {
		return
	}
	ch, err := h.service.GetChallenge(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch.ToResponse())
}

// UpdateChallenge applies partial updates.
//
//	@Summary		Update challenge
//	@Tags			Challenge
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Challenge ID"
//	@Param			request	body		UpdateChallengeRequest	true	"Updates"
//	@Success		200		{object}	ChallengeResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/challenges/{id} [patch]
func (h *Handler) UpdateChallenge(c *gin.Context) {
	id, ok := h.challengeID(c)
	if !ok {
		return
	}
	var req UpdateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ch, err := h.service.UpdateChallenge(c.Request.Context(), h.principal(c), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch.ToResponse())
}

// UpdateStatus overwrites the challenge status.
//
//	@Summary		Update challenge status
//	@Description	Overwrites the status; any valid status may replace any other
//	@Tags			Challenge
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Challenge ID"
//	@Param			request	body		UpdateStatusRequest	true	"New status"
//	@Success		200		{object}	ChallengeResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/challenges/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := h.challengeID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ch, err := h.service.UpdateStatus(c.Request.Context(), h.principal(c), id, req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch.ToResponse())
}

// DeleteChallenge removes a challenge.
//
//	@Summary		Delete challenge
//	@Tags			Challenge
//	@Param			id	path	string	true	"Challenge ID"
//	@Success		204
//	@Failure		403	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/challenges/{id} [delete]
func (h *Handler) DeleteChallenge(c *gin.Context) {
	id, ok := h.challengeID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteChallenge(c.Request.Context(), h.principal(c), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MyStatus returns the caller's personal result.
//
//	@Summary		Get my challenge result
//	@Tags			Challenge
//	@Produce		json
//	@Param			id	path		string	true	"Challenge ID"
//	@Success		200	{object}	UserStatusResponse
//	@Security		BearerAuth
//	@Router			/challenges/{id}/my-status [get]
func (h *Handler) MyStatus(c *gin.Context) {
	id, ok := h.challengeID(c)
	if !ok {
		return
	}
	record, err := h.service.MyStatus(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record.ToResponse())
}

// SetMyStatus records the caller's personal result.
//
//	@Summary		Set my challenge result
//	@Tags			Challenge
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Challenge ID"
//	@Param			request	body		SetMyStatusRequest	true	"Result"
//	@Success		200		{object}	UserStatusResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/challenges/{id}/my-status [put]
func (h *Handler) SetMyStatus(c *gin.Context) {
	id, ok := h.challengeID(c)
	if !ok {
		return
	}
	var req SetMyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	record, err := h.service.SetMyStatus(c.Request.Context(), h.principal(c), id, req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record.ToResponse())
}

// ListAchievements lists all participant results on a challenge.
//
//	@Summary		List challenge results
//	@Tags			Challenge
//	@Produce		json
//	@Param			id	path		string	true	"Challenge ID"
//	@Success		200	{array}		UserStatusResponse
//	@Security		BearerAuth
//	@Router			/challenges/{id}/achievements [get]
func (h *Handler) ListAchievements(c *gin.Context) {
	id, ok := h.challengeID(c)
	if !ok {
		return
	}
	records, err := h.service.ListAchievements(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]*UserStatusResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, record.ToResponse())
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) principal(c *gin.Context) ownership.Principal {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return ownership.Anonymous()
	}
	return ownership.NewPrincipal(userID)
}

func (h *Handler) challengeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid challenge id")
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps challenge module errors to HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrChallengeNotFound, Status: http.StatusNotFound, Code: "CHALLENGE_NOT_FOUND"},
		{Err: ErrPlanNotFound, Status: http.StatusNotFound, Code: "PLAN_NOT_FOUND"},
	})
}
