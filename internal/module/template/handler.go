package template

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/journey-app/server/internal/module/ownership"
	"github.com/journey-app/server/internal/shared/middleware"
	"github.com/journey-app/server/internal/shared/response"
	"github.com/journey-app/server/internal/utils/pagination"
)

// Handler handles HTTP requests for templates.
type Handler struct {
	service *Service
}

// NewHandler creates a new template handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers read routes. These accept anonymous access;
// anonymous callers see shared templates only.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		templates.GET("", h.ListTemplates)
		templates.GET("/:id", h.GetTemplate)
	}
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		templates.POST("", h.CreateTemplate)
		templates.PATCH("/:id", h.UpdateTemplate)
		templates.DELETE("/:id", h.DeleteTemplate)
	}
}

// CreateTemplate creates a template.
//
//	@Summary		Create template
//	@Tags			Template
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateTemplateRequest	true	"Template"
//	@Success		201		{object}	TemplateResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/templates [post]
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	t, err := h.service.CreateTemplate(c.Request.Context(), h.principal(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t.ToResponse())
}

// ListTemplates lists templates visible to the caller.
//
//	@Summary		List templates
//	@Tags			Template
//	@Produce		json
//	@Param			page		query		int	false	"Page number"
//	@Param			page_size	query		int	false	"Page size"
//	@Success		200			{object}	ListTemplatesResponse
//	@Router			/templates [get]
func (h *Handler) ListTemplates(c *gin.Context) {
	pg := pagination.New()
	if err := c.ShouldBindQuery(pg); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	templates, total, err := h.service.ListTemplates(c.Request.Context(), h.principal(c), pg)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := ListTemplatesResponse{Templates: make([]*TemplateResponse, 0, len(templates)), Total: total}
	for _, t := range templates {
		resp.Templates = append(resp.Templates, t.ToResponse())
	}
	c.JSON(http.StatusOK, resp)
}

// GetTemplate returns a single template.
//
//	@Summary		Get template
//	@Tags			Template
//	@Produce		json
//	@Param			id	path		string	true	"Template ID"
//	@Success		200	{object}	TemplateResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/templates/{id} [get]
func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}
	t, err := h.service.GetTemplate(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, t.ToResponse())
}

// UpdateTemplate applies partial updates.
//
//	@Summary		Update template
//	@Tags			Template
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Template ID"
//	@Param			request	body		UpdateTemplateRequest	true	"Updates"
//	@Success		200		{object}	TemplateResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/templates/{id} [patch]
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}
	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	t, err := h.service.UpdateTemplate(c.Request.Context(), h.principal(c), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, t.ToResponse())
}

// DeleteTemplate removes a template.
//
//	@Summary		Delete template
//	@Tags			Template
//	@Param			id	path	string	true	"Template ID"
//	@Success		204
//	@Failure		403	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/templates/{id} [delete]
func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteTemplate(c.Request.Context(), h.principal(c), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) principal(c *gin.Context) ownership.Principal {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return ownership.Anonymous()
	}
	return ownership.NewPrincipal(userID)
}

func (h *Handler) templateID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps template module errors to HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrTemplateNotFound, Status: http.StatusNotFound, Code: "TEMPLATE_NOT_FOUND"},
	})
}
