// File: inkwell/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/config"
	"inkwell/cron"
	"inkwell/database"
	bookingRepo "inkwell/database/repository/booking"
	"inkwell/handlers"
	"inkwell/middleware"
	"inkwell/mq"
	"inkwell/realtime"
	"inkwell/routes"
	"inkwell/services/booking"
	"inkwell/services/hold"
	"inkwell/services/notification"
	"inkwell/services/payment"
	"inkwell/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitHoldClient()
	utils.InitEventClient()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	bookings := bookingRepo.NewMongoBookingRepo()

	// Realtime fanout across instances rides Redis pub/sub.
	hub := realtime.NewHub(utils.GetEventClient(), logger)

	// The notification collaborator consumes from RabbitMQ; without a
	// broker configured, notices are logged only.
	var publisher *mq.Publisher
	if config.AppConfig.AMQPURL != "" {
		var err error
		publisher, err = mq.NewPublisher(config.AppConfig.AMQPURL, config.AppConfig.AMQPExchange)
		if err != nil {
			logger.Sugar().Warnf("main: rabbitmq unavailable, notifications will be log-only: %v", err)
		}
	}
	notifier := &notification.DefaultNotificationService{
		Publisher: publisher,
		Logger:    logger,
	}

	holdManager := &hold.DefaultManager{
		Store:    hold.NewRedisStore(utils.GetHoldClient()),
		Bookings: bookings,
		Hub:      hub,
		Logger:   logger,
		TTL:      config.HoldTTL(),
	}

	bookingService := &booking.DefaultBookingService{
		Repo:      bookings,
		Holds:     holdManager,
		Hub:       hub,
		Notifier:  notifier,
		Catalog:   booking.DefaultCatalog(),
		Logger:    logger,
		Timeout:   config.ReservationTimeout(),
		Scheduler: cron.NewExpiryScheduler(),
	}

	reconciler := &payment.Engine{
		Bookings:      bookingService,
		Logger:        logger,
		WebhookSecret: config.AppConfig.GatewayWebhookSecret,
		Tolerance:     time.Duration(config.AppConfig.GatewayToleranceSeconds) * time.Second,
		ManualGrace:   time.Duration(config.AppConfig.ManualGraceHours) * time.Hour,
	}

	// Background expiry worker: abandoned checkouts free their slots even
	// with no client polling.
	cron.InitExpiryWorker(bookingService)

	holdHandler := handlers.NewHoldHandler(holdManager, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, reconciler, logger)
	webhookHandler := handlers.NewWebhookHandler(reconciler, logger)
	eventsHandler := handlers.NewEventsHandler(hub, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		AcquireHold: holdHandler.AcquireHold,
		ReleaseHold: holdHandler.ReleaseHold,
		RenewHold:   holdHandler.RenewHold,

		CreateBooking:        bookingHandler.CreateBooking,
		GetBooking:           bookingHandler.GetBooking,
		ConfirmPaymentReturn: bookingHandler.ConfirmPaymentReturn,
		ManualConfirm:        bookingHandler.ManualConfirm,
		CancelBooking:        bookingHandler.CancelBooking,
		CompleteBooking:      bookingHandler.CompleteBooking,
		ListProviderBookings: bookingHandler.ListProviderBookings,

		GatewayWebhook: webhookHandler.HandleGatewayWebhook,

		StreamCalendar: eventsHandler.StreamCalendar,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetHoldClient(), utils.GetEventClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn("main: failed to close rabbitmq publisher", zap.Error(err))
		}
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
