package handlers

import (
	"net/http"
	"time"

	"inkwell/config"
	"inkwell/middleware"
	"inkwell/models"
	"inkwell/services/booking"
	"inkwell/services/payment"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle and the session-side payment
// confirmation paths.
type BookingHandler struct {
	service booking.Service
	engine  *payment.Engine
	logger  *zap.Logger
}

func NewBookingHandler(service booking.Service, engine *payment.Engine, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, engine: engine, logger: logger}
}

// CreateBooking handles POST /api/bookings: converts the caller's slot hold
// into a reservation_pending booking.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input struct {
		SlotKey   models.SlotKey `json:"slotKey" binding:"required"`
		ServiceID string         `json:"serviceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.service.CreateFromHold(c.Request.Context(), input.SlotKey,
		middleware.CheckoutSession(c), middleware.SubjectID(c), input.ServiceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The poll bounds tell the client when to stop re-fetching and fall
	// back to manual confirmation. The order ref is what the gateway
	// echoes back on both confirmation paths.
	c.JSON(http.StatusCreated, gin.H{
		"bookingId": b.ID,
		"status":    b.Status,
		"orderRef":  models.BuildOrderRef(b.ID, uuid.NewString()[:8]),
		"poll": gin.H{
			"intervalSeconds": config.AppConfig.PollIntervalSeconds,
			"maxAttempts":     config.AppConfig.PollMaxAttempts,
		},
	})
}

// GetBooking handles GET /api/bookings/:id, the poll target while a
// reservation awaits payment.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.authorized(c, b) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ConfirmPaymentReturn handles PATCH /api/bookings/:id/confirm-payment, the
// client-redirect confirmation path. It races the gateway webhook; both
// converge on the same outcome.
func (h *BookingHandler) ConfirmPaymentReturn(c *gin.Context) {
	var input struct {
		OrderRef   string  `json:"orderRef" binding:"required"`
		PaymentRef string  `json:"paymentRef"`
		StatusCode string  `json:"statusCode"`
		Amount     float64 `json:"amount"`
		Currency   string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	bookingID, err := models.ParseOrderRef(input.OrderRef)
	if err != nil || bookingID != c.Param("id") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order ref does not match booking"})
		return
	}

	ev := models.PaymentEvent{
		OrderRef:   input.OrderRef,
		PaymentRef: input.PaymentRef,
		StatusCode: input.StatusCode,
		Amount:     input.Amount,
		Currency:   input.Currency,
	}
	b, err := h.engine.HandleClientReturn(c.Request.Context(), middleware.SubjectID(c), ev)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ManualConfirm handles PATCH /api/bookings/:id/confirm, the operator
// override for when neither automated path resolved the booking.
func (h *BookingHandler) ManualConfirm(c *gin.Context) {
	var input struct {
		PaymentRef string `json:"paymentRef"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.engine.ManualConfirm(c.Request.Context(), c.Param("id"),
		input.PaymentRef, middleware.SubjectID(c), middleware.Role(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// CancelBooking handles PATCH /api/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.authorized(c, b) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), b.ID, input.Reason, middleware.SubjectID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": cancelled})
}

// CompleteBooking handles PATCH /api/bookings/:id/complete. Provider only,
// and only after the booking's start time.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	var input struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if middleware.Role(c) != "provider" || b.ProviderID != middleware.SubjectID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the booked provider may complete"})
		return
	}

	completed, err := h.service.Complete(c.Request.Context(), b.ID, input.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": completed})
}

// ListProviderBookings handles GET /api/bookings/provider/:providerId, the
// calendar read that broadcaster events refresh against.
func (h *BookingHandler) ListProviderBookings(c *gin.Context) {
	providerType := models.ProviderType(c.DefaultQuery("type", string(models.ProviderTypeStudio)))
	if !providerType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider type"})
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp"})
		return
	}

	bookings, err := h.service.ListForProvider(c.Request.Context(), c.Param("providerId"), providerType, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// authorized reports whether the caller is a party to the booking.
func (h *BookingHandler) authorized(c *gin.Context, b *models.Booking) bool {
	subject := middleware.SubjectID(c)
	return subject == b.ClientID || subject == b.ProviderID
}
