package booking

import (
	"context"
	"time"

	"inkwell/models"
)

// Service is the booking lifecycle state machine: the single source of
// truth for whether a slot is actually booked.
//
//	(start) --CreateFromHold--> reservation_pending
//	reservation_pending --ConfirmPayment(success)--> confirmed
//	reservation_pending --ConfirmPayment(failure)/timeout--> cancelled
//	confirmed --Complete--> completed
//	confirmed --Cancel--> cancelled
type Service interface {
	// CreateFromHold converts a live hold owned by sessionID into a
	// reservation_pending booking. The hold is not released: it keeps
	// protecting the slot until payment resolves or the reservation
	// times out.
	CreateFromHold(ctx context.Context, key models.SlotKey, sessionID, clientID, serviceID string) (*models.Booking, error)

	// ConfirmPayment settles the booking. Idempotent on paymentRef
	// equality; a differing ref on an already-confirmed booking is a
	// PaymentRefConflict.
	ConfirmPayment(ctx context.Context, bookingID, paymentRef string) (*models.Booking, error)

	// Cancel is allowed from reservation_pending or confirmed and records
	// the reason and acting party.
	Cancel(ctx context.Context, bookingID, reason, actor string) (*models.Booking, error)

	// Complete is allowed from confirmed, and only once the booking's
	// start time has passed.
	Complete(ctx context.Context, bookingID, notes string) (*models.Booking, error)

	// Get is the client polling read path.
	Get(ctx context.Context, bookingID string) (*models.Booking, error)

	// ListForProvider returns a provider's calendar within [from, to).
	ListForProvider(ctx context.Context, providerID string, providerType models.ProviderType, from, to time.Time) ([]models.Booking, error)

	// ExpireStale cancels every reservation_pending booking older than the
	// timeout window and frees its slot. Returns how many were expired.
	ExpireStale(ctx context.Context) (int, error)
}

// ExpiryScheduler schedules the one-shot expiry check for a new
// reservation. Implemented by the asynq task client; nil-safe in the
// service so tests and single-process setups can rely on the sweep alone.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID string, after time.Duration) error
}
