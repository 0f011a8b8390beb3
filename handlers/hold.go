package handlers

import (
	"net/http"

	"inkwell/middleware"
	"inkwell/models"
	"inkwell/services/hold"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HoldHandler exposes the slot-hold protocol: acquire before pay.
type HoldHandler struct {
	manager hold.Manager
	logger  *zap.Logger
}

func NewHoldHandler(manager hold.Manager, logger *zap.Logger) *HoldHandler {
	return &HoldHandler{manager: manager, logger: logger}
}

type holdRequest struct {
	SlotKey models.SlotKey `json:"slotKey" binding:"required"`
}

// AcquireHold handles POST /api/slots/hold.
func (h *HoldHandler) AcquireHold(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	granted, err := h.manager.Acquire(c.Request.Context(), req.SlotKey, middleware.CheckoutSession(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"granted":   true,
		"expiresAt": granted.ExpiresAt,
	})
}

// ReleaseHold handles DELETE /api/slots/hold. Idempotent.
func (h *HoldHandler) ReleaseHold(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.manager.Release(c.Request.Context(), req.SlotKey, middleware.CheckoutSession(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": true})
}

// RenewHold handles PUT /api/slots/hold/renew.
func (h *HoldHandler) RenewHold(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	renewed, err := h.manager.Renew(c.Request.Context(), req.SlotKey, middleware.CheckoutSession(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"granted":   true,
		"expiresAt": renewed.ExpiresAt,
	})
}
