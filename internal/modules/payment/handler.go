package payment

import (
	"net/http"

	"studiobook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/payments/webhook", h.Webhook)
}

// Webhook receives provider callback events. Always answers 200 when the
// payload parses; per-event outcomes are reported in the body so the provider
// only retries the events that actually failed.
func (h *Handler) Webhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid webhook payload")
		return
	}

	resp := h.service.ProcessWebhook(c.Request.Context(), req)
	response.Success(c, http.StatusOK, resp)
}
