package repository

import (
	"context"
	"time"

	"inkwell/models"
)

// BookingRepository persists bookings. Status transitions are conditional
// writes: they match the expected current status in the update filter so a
// lost race shows up as updated=false instead of a silent overwrite.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// FindOverlapping returns bookings for the slot's provider whose
	// [start, end) interval overlaps the key's and whose status is in the
	// given set.
	FindOverlapping(ctx context.Context, key models.SlotKey, statuses []models.BookingStatus) ([]models.Booking, error)

	// ConfirmIfPending transitions reservation_pending -> confirmed and
	// writes the payment ref in a single conditional update. Returns false
	// when the booking was not pending (already settled or cancelled).
	ConfirmIfPending(ctx context.Context, id, paymentRef string, at time.Time) (bool, error)

	// CancelIf transitions to cancelled when the current status is in from.
	CancelIf(ctx context.Context, id string, from []models.BookingStatus, reason, actor string, at time.Time) (bool, error)

	// CompleteIfConfirmed transitions confirmed -> completed.
	CompleteIfConfirmed(ctx context.Context, id, notes string, at time.Time) (bool, error)

	// FindExpiredPending returns reservation_pending bookings created
	// before the cutoff.
	FindExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Booking, error)

	// ListForProvider returns the provider's bookings within [from, to).
	ListForProvider(ctx context.Context, providerID string, providerType models.ProviderType, from, to time.Time) ([]models.Booking, error)
}
