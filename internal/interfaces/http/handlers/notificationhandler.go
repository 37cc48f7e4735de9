package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tgnotify/internal/application/notification/dto"
	"tgnotify/internal/shared/constants"
	"tgnotify/internal/shared/errors"
	"tgnotify/internal/shared/logger"
	"tgnotify/internal/shared/utils"
)

// maxBodyBytes bounds a submission body; the message itself is capped at 10000 characters.
const maxBodyBytes = 64 << 10

type NotificationHandler struct {
	service notificationService
	logger  logger.Interface
}

func NewNotificationHandler(service notificationService, logger logger.Interface) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger,
	}
}

// Notify godoc
// @Summary Send a notification
// @Description Validate a submission and forward it to the configured Telegram chat
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body dto.SubmissionRequest true "Submission"
// @Success 200 {object} utils.APIResponse{data=dto.NotifyResponse} "Notification sent"
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 429 {object} utils.APIResponse "Client rate limit exceeded"
// @Failure 503 {object} utils.APIResponse "Global rate limit exceeded or Telegram unavailable"
// @Router /api/notify [post]
func (h *NotificationHandler) Notify(c *gin.Context) {
	var req dto.SubmissionRequest
	if !h.bind(c, &req) {
		return
	}
	h.send(c, req)
}

// BugReport godoc
// @Summary Report a bug
// @Description Same as /api/notify with kind fixed to bug_report
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body dto.SubmissionRequest true "Bug report"
// @Success 200 {object} utils.APIResponse{data=dto.NotifyResponse} "Bug report sent"
// @Router /api/bug-report [post]
func (h *NotificationHandler) BugReport(c *gin.Context) {
	var req dto.SubmissionRequest
	if !h.bind(c, &req) {
		return
	}
	req.Kind = "bug_report"
	h.send(c, req)
}

// ListDeliveries godoc
// @Summary List recent deliveries
// @Security Bearer
// @Tags admin
// @Produce json
// @Param limit query int false "Maximum rows (default 50, max 500)"
// @Success 200 {object} utils.APIResponse{data=dto.DeliveryListResponse}
// @Router /admin/deliveries [get]
func (h *NotificationHandler) ListDeliveries(c *gin.Context) {
	limit, err := utils.ParseLimit(c, "limit", constants.DefaultDeliveryLimit, constants.MaxDeliveryLimit)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.RecentDeliveries(c.Request.Context(), limit)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *NotificationHandler) bind(c *gin.Context, req *dto.SubmissionRequest) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warnw("invalid request body for notification", "error", err)
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("Invalid request body", err.Error()))
		return false
	}
	return true
}

func (h *NotificationHandler) send(c *gin.Context, req dto.SubmissionRequest) {
	clientIP := c.GetString(constants.ContextKeyClientKey)
	if clientIP == "" {
		clientIP = c.ClientIP()
	}

	result, err := h.service.Notify(c.Request.Context(), dto.NotifyCommand{
		Submission: req,
		ClientIP:   clientIP,
	})
	if err != nil {
		if errors.IsThrottled(err) {
			h.logger.Infow("notification throttled", "client", clientIP, "kind", req.Kind)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Notification sent", result)
}
