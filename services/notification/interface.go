package notification

import (
	"context"

	"inkwell/models"
)

// Service delivers booking lifecycle notices to the downstream
// email/push collaborator. All methods are fire-and-forget: a delivery
// failure must never roll back a booking state change.
type Service interface {
	BookingConfirmed(ctx context.Context, b *models.Booking)
	BookingCancelled(ctx context.Context, b *models.Booking)
	BookingCompleted(ctx context.Context, b *models.Booking)
}
