package retrospect

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/journey-app/server/internal/module/ownership"
	"github.com/journey-app/server/internal/shared/middleware"
	"github.com/journey-app/server/internal/shared/response"
	"github.com/journey-app/server/internal/utils/pagination"
)

// Handler handles HTTP requests for retrospects and weekly analyses.
type Handler struct {
	service *Service
}

// NewHandler creates a new retrospect handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers read routes. These accept anonymous access;
// anonymous callers see public retrospects only.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	retrospects := r.Group("/retrospects")
	{
		retrospects.GET("", h.ListRetrospects)
		retrospects.GET("/:id", h.GetRetrospect)
	}
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	retrospects := r.Group("/retrospects")
	{
		retrospects.POST("", h.CreateRetrospect)
		retrospects.PATCH("/:id", h.UpdateRetrospect)
		retrospects.DELETE("/:id", h.DeleteRetrospect)
	}

	analyses := r.Group("/weekly-analyses")
	{
		analyses.POST("", h.GenerateAnalysis)
		analyses.GET("", h.ListAnalyses)
		analyses.GET("/:id", h.GetAnalysis)
	}
}

// CreateRetrospect writes a retrospect.
//
//	@Summary		Create retrospect
//	@Tags			Retrospect
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateRetrospectRequest	true	"Retrospect"
//	@Success		201		{object}	RetrospectResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/retrospects [post]
func (h *Handler) CreateRetrospect(c *gin.Context) {
	var req CreateRetrospectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	retro, err := h.service.CreateRetrospect(c.Request.Context(), h.principal(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, retro.ToResponse())
}

// ListRetrospects lists retrospects visible to the caller.
//
//	@Summary		List retrospects
//	@Tags			Retrospect
//	@Produce		json
//	@Param			challenge_id	query		string	false	"Filter by challenge"
//	@Param			page			query		int		false	"Page number"
//	@Param			page_size		query		int		false	"Page size"
//	@Success		200				{object}	ListRetrospectsResponse
//	@Router			/retrospects [get]
func (h *Handler) ListRetrospects(c *gin.Context) {
	pg := pagination.New()
	if err := c.ShouldBindQuery(pg); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var challengeID *uuid.UUID
	if raw := c.Query("challenge_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid challenge_id")
			return
		}
		challengeID = &id
	}

	retros, total, err := h.service.ListRetrospects(c.Request.Context(), h.principal(c), challengeID, pg)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := ListRetrospectsResponse{Retrospects: make([]*RetrospectResponse, 0, len(retros)), Total: total}
	for _, retro := range retros {
		resp.Retrospects = append(resp.Retrospects, retro.ToResponse())
	}
	c.JSON(http.StatusOK, resp)
}

// GetRetrospect returns a single retrospect.
//
//	@Summary		Get retrospect
//	@Tags			Retrospect
//	@Produce		json
//	@Param			id	path		string	true	"Retrospect ID"
//	@Success		200	{object}	RetrospectResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/retrospects/{id} [get]
func (h *Handler) GetRetrospect(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	retro, err := h.service.GetRetrospect(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, retro.ToResponse())
}

// UpdateRetrospect applies partial updates.
//
//	@Summary		Update retrospect
//	@Tags			Retrospect
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Retrospect ID"
//	@Param			request	body		UpdateRetrospectRequest	true	"Updates"
//	@Success		200		{object}	RetrospectResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/retrospects/{id} [patch]
func (h *Handler) UpdateRetrospect(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateRetrospectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	retro, err := h.service.UpdateRetrospect(c.Request.Context(), h.principal(c), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, retro.ToResponse())
}

// DeleteRetrospect removes a retrospect.
//
//	@Summary		Delete retrospect
//	@Tags			Retrospect
//	@Param			id	path	string	true	"Retrospect ID"
//	@Success		204
//	@Failure		403	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/retrospects/{id} [delete]
func (h *Handler) DeleteRetrospect(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteRetrospect(c.Request.Context(), h.principal(c), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateAnalysis runs a weekly analysis.
//
//	@Summary		Generate weekly analysis
//	@Description	Summarizes the owner's retrospects in the period via the LLM
//	@Tags			Retrospect
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GenerateAnalysisRequest	true	"Analysis period"
//	@Success		201		{object}	AnalysisResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/weekly-analyses [post]
func (h *Handler) GenerateAnalysis(c *gin.Context) {
	var req GenerateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	analysis, err := h.service.GenerateWeeklyAnalysis(c.Request.Context(), h.principal(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, analysis.ToResponse())
}

// ListAnalyses lists weekly analyses visible to the caller.
//
//	@Summary		List weekly analyses
//	@Tags			Retrospect
//	@Produce		json
//	@Param			page		query		int	false	"Page number"
//	@Param			page_size	query		int	false	"Page size"
//	@Success		200			{object}	ListAnalysesResponse
//	@Security		BearerAuth
//	@Router			/weekly-analyses [get]
func (h *Handler) ListAnalyses(c *gin.Context) {
	pg := pagination.New()
	if err := c.ShouldBindQuery(pg); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	analyses, total, err := h.service.ListAnalyses(c.Request.Context(), h.principal(c), pg)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := ListAnalysesResponse{Analyses: make([]*AnalysisResponse, 0, len(analyses)), Total: total}
	for _, analysis := range analyses {
		resp.Analyses = append(resp.Analyses, analysis.ToResponse())
	}
	c.JSON(http.StatusOK, resp)
}

// GetAnalysis returns a single weekly analysis.
//
//	@Summary		Get weekly analysis
//	@Tags			Retrospect
//	@Produce		json
//	@Param			id	path		string	true	"Analysis ID"
//	@Success		200	{object}	AnalysisResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/weekly-analyses/{id} [get]
func (h *Handler) GetAnalysis(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	analysis, err := h.service.GetAnalysis(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis.ToResponse())
}

func (h *Handler) principal(c *gin.Context) ownership.Principal {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return ownership.Anonymous()
	}
	return ownership.NewPrincipal(userID)
}

func (h *Handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps retrospect module errors to HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrRetrospectNotFound, Status: http.StatusNotFound, Code: "RETROSPECT_NOT_FOUND"},
		{Err: ErrAnalysisNotFound, Status: http.StatusNotFound, Code: "ANALYSIS_NOT_FOUND"},
		{Err: ErrNoRetrospects, Status: http.StatusNotFound, Code: "NO_RETROSPECTS"},
	})
}
