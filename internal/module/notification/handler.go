package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/journey-app/server/internal/shared/middleware"
	"github.com/journey-app/server/internal/shared/response"
	"github.com/journey-app/server/internal/utils/pagination"
)

// Handler handles HTTP requests for the notification inbox.
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers notification routes. All routes require
// authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.POST("/read-all", h.MarkAllRead)
	}
}

// ListNotifications lists the caller's notifications.
//
//	@Summary		List notifications
//	@Description	List the caller's notifications, newest first
//	@Tags			Notification
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Param			unread		query		bool	false	"Only unread notifications"
//	@Success		200			{object}	ListNotificationsResponse
//	@Router			/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		response.Unauthorized(c, "")
		return
	}

	p := pagination.New()
	if err := c.ShouldBindQuery(p); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	unreadOnly := c.Query("unread") == "true"

	ns, total, unread, err := h.service.ListMine(c.Request.Context(), userID, unreadOnly, p)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := ListNotificationsResponse{
		Notifications: make([]*NotificationResponse, 0, len(ns)),
		Total:         total,
		UnreadCount:   unread,
	}
	for _, n := range ns {
		resp.Notifications = append(resp.Notifications, n.ToResponse())
	}
	c.JSON(http.StatusOK, resp)
}

// MarkRead marks one notification as read.
//
//	@Summary	Mark notification read
//	@Tags		Notification
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Notification ID"
//	@Success	204
//	@Failure	404	{object}	response.ErrorResponse
//	@Router		/notifications/{id}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		response.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification ID")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead marks every unread notification of the caller as read.
//
//	@Summary	Mark all notifications read
//	@Tags		Notification
//	@Security	BearerAuth
//	@Success	204
//	@Router		/notifications/read-all [post]
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		response.Unauthorized(c, "")
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleError maps notification module errors to HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrNotificationNotFound, Status: http.StatusNotFound, Code: "NOTIFICATION_NOT_FOUND"},
	})
}
