package notification

import (
	"context"
	"time"

	"inkwell/models"
	"inkwell/mq"

	"go.uber.org/zap"
)

// DefaultNotificationService publishes booking notices to a RabbitMQ topic
// exchange; the notification collaborator consumes them and handles
// email/push delivery. With no publisher configured (local dev) notices are
// only logged.
type DefaultNotificationService struct {
	Publisher *mq.Publisher
	Logger    *zap.Logger
}

type bookingNotice struct {
	BookingID  string               `json:"bookingId"`
	ClientID   string               `json:"clientId"`
	ProviderID string               `json:"providerId"`
	Status     models.BookingStatus `json:"status"`
	Reason     string               `json:"reason,omitempty"`
	Start      time.Time            `json:"start"`
	End        time.Time            `json:"end"`
	Price      float64              `json:"price"`
	Currency   string               `json:"currency"`
}

func (s *DefaultNotificationService) BookingConfirmed(ctx context.Context, b *models.Booking) {
	s.publish(ctx, "booking.confirmed", b)
}

func (s *DefaultNotificationService) BookingCancelled(ctx context.Context, b *models.Booking) {
	s.publish(ctx, "booking.cancelled", b)
}

func (s *DefaultNotificationService) BookingCompleted(ctx context.Context, b *models.Booking) {
	s.publish(ctx, "booking.completed", b)
}

func (s *DefaultNotificationService) publish(ctx context.Context, key string, b *models.Booking) {
	notice := bookingNotice{
		BookingID:  b.ID,
		ClientID:   b.ClientID,
		ProviderID: b.ProviderID,
		Status:     b.Status,
		Reason:     b.Reason,
		Start:      b.Start,
		End:        b.End,
		Price:      b.Price,
		Currency:   b.Currency,
	}

	if s.Publisher == nil {
		s.Logger.Info("notification (no publisher configured)",
			zap.String("key", key), zap.String("booking", b.ID))
		return
	}
	if err := s.Publisher.PublishJSON(ctx, key, notice); err != nil {
		s.Logger.Warn("failed to publish booking notice",
			zap.String("key", key), zap.String("booking", b.ID), zap.Error(err))
	}
}
