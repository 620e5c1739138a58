package crew

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/journey-app/server/internal/shared/middleware"
	"github.com/journey-app/server/internal/shared/response"
	"github.com/journey-app/server/internal/utils/pagination"
)

// Handler handles HTTP requests for crews and memberships.
type Handler struct {
	service *Service
}

// NewHandler creates a new crew handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers crew routes. All routes require authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	crews := r.Group("/crews")
	{
		crews.POST("", h.CreateCrew)
		crews.GET("", h.ListCrews)
		crews.GET("/me", h.MyCrews)
		crews.GET("/:id", h.GetCrew)
		crews.PATCH("/:id", h.UpdateCrew)
		crews.DELETE("/:id", h.DeleteCrew)

		// Membership ledger
		crews.POST("/:id/join", h.Join)
		crews.POST("/:id/requests", h.RequestJoin)
		crews.POST("/:id/members/:user_id/approve", h.Approve)
		crews.POST("/:id/members/:user_id/reject", h.Reject)
		crews.DELETE("/:id/members/me", h.Leave)
		crews.GET("/:id/members", h.ListMembers)
		crews.GET("/:id/membership", h.MyMembership)
	}
}

// CreateCrew handles crew creation.
//
//	@Summary		Create crew
//	@Description	Create a new crew; the caller becomes its CREATOR
//	@Tags			Crew
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateCrewRequest	true	"Create crew request"
//	@Success		201		{object}	CrewResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Router			/crews [post]
func (h *Handler) CreateCrew(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		response.Unauthorized(c, "")
		return
	}

	var req CreateCrewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	crew, err := h.service.CreateCrew(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, crew.ToResponse(nil))
}

// ListCrews handles the paginated crew listing.
//
//	@Summary	List crews
//	@Tags		Crew
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page		query		int	false	"Page"
//	@Param		page_size	query		int	false	"Page size"
//	@Success	200			{object}	ListCrewsResponse
//	@Router		/crews [get]
func (h *Handler) ListCrews(c *gin.Context) {
	p := pagination.New()
	if err := c.ShouldBindQuery(p); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	crews, total, err := h.service.ListCrews(c.Request.Context(), p.Limit(), p.Offset())
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := ListCrewsResponse{Crews: make([]*CrewResponse, 0, len(crews)), Total: total}
	for _, crew := range crews {
		resp.Crews = append(resp.Crews, crew.ToResponse(nil))
	}
	c.JSON(http.StatusOK, resp)
}

// MyCrews lists the caller's crews.
//
//	@Summary	List my crews
//	@Tags		Crew
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	CrewResponse
//	@Router		/crews/me [get]
func (h *Handler) MyCrews(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		response.Unauthorized(c, "")
		return
	}

	crews, err := h.service.MyCrews(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	result := make([]*CrewResponse, 0, len(crews))
	for _, crew := range crews {
		result = append(result, crew.ToResponse(nil))
	}
	c.JSON(http.StatusOK, result)
}

// GetCrew returns a single crew, with the caller's membership if any.
//
//	@Summary	Get crew
//	@Tags		Crew
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Crew ID"
//	@Success	200	{object}	CrewResponse
//	@Failure	404	{object}	response.ErrorResponse
//	@Router		/crews/{id} [get]
func (h *Handler) GetCrew(c *gin.Context) {
	crewID, ok := h.crewID(c)
	if !ok {
		return
	}

	crew, err := h.service.GetCrew(c.Request.Context(), crewID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	var my *Membership
	if userID := middleware.GetUserID(c); userID != uuid.Nil {
		if m, err := h.service.GetMembership(c.Request.Context(), userID, crewID); err == nil {
			my = m
		}
	}

	c.JSON(http.StatusOK, crew.ToResponse(my))
}

// UpdateCrew updates crew attributes. CREATOR only.
//
//	@Summary	Update crew
//	@Tags		Crew
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"Crew ID"
//	@Param		request	body		UpdateCrewRequest	true	"Update crew request"
//	@Success	200		{object}	CrewResponse
//	@Failure	403		{object}	response.ErrorResponse
//	@Router		/crews/{id} [patch]
func (h *Handler) UpdateCrew(c *gin.Context) {
	userID := middleware.GetUserID(c)
	crewID, ok := h.crewID(c)
	if !ok {
		return
	}

	var req UpdateCrewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	crew, err := h.service.UpdateCrew(c.Request.Context(), userID, crewID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, crew.ToResponse(nil))
}

// DeleteCrew deletes a crew. CREATOR only.
//
//	@Summary	Delete crew
//	@Tags		Crew
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Crew ID"
//	@Success	204
//	@Failure	403	{object}	response.ErrorResponse
//	@Router		/crews/{id} [delete]
func (h *Handler) DeleteCrew(c *gin.Context) {
	userID := middleware.GetUserID(c)
	crewID, ok := h.crewID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCrew(c.Request.Context(), userID, crewID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Join handles a self-service join.
//
//	@Summary		Join crew
//	@Description	Join directly as an ACCEPTED member; the first accepted member becomes CREATOR
//	@Tags			Crew
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Crew ID"
//	@Success		200	{object}	MembershipResponse
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Router			/crews/{id}/join [post]
func (h *Handler) Join(c *gin.Context) {
	userID := middleware.GetUserID(c)
	crewID, ok := h.crewID(c)
	if !ok {
		return
	}

	membership, err := h.service.Join(c.Request.Context(), userID, userID, crewID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership.ToResponse())
}

// RequestJoin files a PENDING join request.
//
//	@Summary	Request to join crew
//	@Tags		Crew
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Crew ID"
//	@Success	201	{object}	MembershipResponse
//	@Failure	409	{object}	response.ErrorResponse
//	@Router		/crews/{id}/requests [post]
func (h *Handler) RequestJoin(c *gin.Context) {
	userID := middleware.GetUserID(c)
	crewID, ok := h.crewID(c)
	if !ok {
		return
	}

	membership, err := h.service.RequestJoin(c.Request.Context(), userID, crewID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, membership.ToResponse())
}

// Approve accepts a pending join request. CREATOR only.
//
//	@Summary	Approve join request
//	@Tags		Crew
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Crew ID"
//	@Param		user_id	path		string	true	"Target user ID"
//	@Success	200		{object}	MembershipResponse
//	@Failure	403		{object}	response.ErrorResponse
//	@Failure	409		{object}	response.ErrorResponse
//	@Router		/crews/{id}/members/{user_id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	actorID := middleware.GetUserID(c)
	crewID, ok := h.crewID(c)
	if !ok {
		return
	}
	targetID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	membership, err := h.service.Join(c.Request.Context(), actorID, targetID, crewID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership.ToResponse())
}

// Reject rejects a pending join request. CREATOR only.
//
//	@Summary	Reject join request
//	@Tags		Crew
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Crew ID"
//	@Param		user_id	path		string	true	"Target user ID"
//	@Success	200		{object}	MembershipResponse
//	@Failure	403		{object}	response.ErrorResponse
//	@Failure	404		{object}	response.ErrorResponse
//	@Failure	409		{object}	response.ErrorResponse
//	@Router		/crews/{id}/members/{user_id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	actorID := middleware.GetUserID(c)
	crewID, ok := h.crewID(c)
	if !ok {
		return
	}
	targetID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	membership, err := h.service.Reject(c.Request.Context(), actorID, targetID, crewID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership.ToResponse())
}

// Leave removes the caller's membership.
//
//	@Summary	Leave crew
//	@Tags		Crew
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Crew ID"
//	@Success	204
//	@Failure	404	{object}	response.ErrorResponse
//	@Router		/crews/{id}/members/me [delete]
func (h *Handler) Leave(c *gin.Context) {
	userID := middleware.GetUserID(c)
	crewID, ok := h.crewID(c)
	if !ok {
		return
	}

	if err := h.service.Leave(c.Request.Context(), userID, crewID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMembers lists ACCEPTED members in join order.
//
//	@Summary	List crew members
//	@Tags		Crew
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Crew ID"
//	@Success	200	{array}	MembershipResponse
//	@Router		/crews/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	crewID, ok := h.crewID(c)
	if !ok {
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), crewID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	result := make([]*MembershipResponse, 0, len(members))
	for _, m := range members {
		result = append(result, m.ToResponse())
	}
	c.JSON(http.StatusOK, result)
}

// MyMembership returns the caller's membership, any status.
//
//	@Summary	Get my membership
//	@Tags		Crew
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Crew ID"
//	@Success	200	{object}	MembershipResponse
//	@Failure	404	{object}	response.ErrorResponse
//	@Router		/crews/{id}/membership [get]
func (h *Handler) MyMembership(c *gin.Context) {
	userID := middleware.GetUserID(c)
	crewID, ok := h.crewID(c)
	if !ok {
		return
	}

	membership, err := h.service.GetMembership(c.Request.Context(), userID, crewID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership.ToResponse())
}

// crewID parses the crew ID path parameter.
func (h *Handler) crewID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid crew id")
		return uuid.Nil, false
	}
	return id, true
}

// pathUserID parses the user_id path parameter.
func (h *Handler) pathUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps crew module errors to HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrCrewNotFound, Status: http.StatusNotFound, Code: "CREW_NOT_FOUND"},
		{Err: ErrCrewNameTaken, Status: http.StatusConflict, Code: "CREW_NAME_TAKEN"},
		{Err: ErrMembershipNotFound, Status: http.StatusNotFound, Code: "MEMBERSHIP_NOT_FOUND"},
		{Err: ErrMembershipExists, Status: http.StatusConflict, Code: "MEMBERSHIP_EXISTS"},
		{Err: ErrAlreadyMember, Status: http.StatusConflict, Code: "ALREADY_MEMBER"},
		{Err: ErrJoinRejected, Status: http.StatusForbidden, Code: "JOIN_REJECTED"},
		{Err: ErrNotPending, Status: http.StatusConflict, Code: "NOT_PENDING"},
		{Err: ErrCreatorOnly, Status: http.StatusForbidden, Code: "CREATOR_ONLY"},
	})
}
