package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups every endpoint the router registers.
type HandlerBundle struct {
	// Slot hold endpoints.
	AcquireHold gin.HandlerFunc
	ReleaseHold gin.HandlerFunc
	RenewHold   gin.HandlerFunc

	// Booking endpoints.
	CreateBooking        gin.HandlerFunc
	GetBooking           gin.HandlerFunc
	ConfirmPaymentReturn gin.HandlerFunc
	ManualConfirm        gin.HandlerFunc
	CancelBooking        gin.HandlerFunc
	CompleteBooking      gin.HandlerFunc
	ListProviderBookings gin.HandlerFunc

	// Gateway webhook.
	GatewayWebhook gin.HandlerFunc

	// Realtime calendar stream.
	StreamCalendar gin.HandlerFunc
}
