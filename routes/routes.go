package routes

import (
	"net/http"
	"time"

	"inkwell/handlers"
	"inkwell/middleware"
	"inkwell/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSlotRoutes registers the hold protocol endpoints.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	slots := r.Group("/api/slots")
	{
		slots.Use(middleware.SessionAuthMiddleware())
		slots.POST("/hold", hb.AcquireHold)
		slots.DELETE("/hold", hb.ReleaseHold)
		slots.PUT("/hold/renew", hb.RenewHold)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookings := r.Group("/api/bookings")
	{
		bookings.Use(middleware.SessionAuthMiddleware())
		bookings.POST("", hb.CreateBooking)
		bookings.GET("/:id", hb.GetBooking)
		bookings.PATCH("/:id/confirm-payment", hb.ConfirmPaymentReturn)
		bookings.PATCH("/:id/confirm", hb.ManualConfirm)
		bookings.PATCH("/:id/cancel", hb.CancelBooking)
		bookings.PATCH("/:id/complete", hb.CompleteBooking)
		bookings.GET("/provider/:providerId", hb.ListProviderBookings)
	}
}

// RegisterPaymentRoutes registers the gateway webhook. No session auth: the
// callback authenticates by signature.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/payments/webhook", hb.GatewayWebhook)
}

// RegisterCalendarRoutes registers the realtime calendar stream.
func RegisterCalendarRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	calendar := r.Group("/api/calendar")
	{
		calendar.Use(middleware.SessionAuthMiddleware())
		calendar.GET("/:providerType/:providerId/events", hb.StreamCalendar)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Session-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterSlotRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterCalendarRoutes(r, hb)
}
