package handlers

import (
	"net/http"

	"inkwell/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GatewaySignatureHeader carries the signed timestamp + HMAC for webhook
// callbacks.
const GatewaySignatureHeader = "Gateway-Signature"

// WebhookHandler receives gateway payment callbacks. No user session: the
// request authenticates by signature alone.
type WebhookHandler struct {
	engine *payment.Engine
	logger *zap.Logger
}

func NewWebhookHandler(engine *payment.Engine, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{engine: engine, logger: logger}
}

// HandleGatewayWebhook handles POST /api/payments/webhook.
func (h *WebhookHandler) HandleGatewayWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	b, err := h.engine.HandleWebhook(c.Request.Context(), payload, c.GetHeader(GatewaySignatureHeader))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "status": b.Status})
}
