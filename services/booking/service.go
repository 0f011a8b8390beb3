package booking

import (
	"context"
	"fmt"
	"time"

	"inkwell/database/repository"
	"inkwell/models"
	"inkwell/realtime"
	"inkwell/services/hold"
	"inkwell/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements Service over the booking repository,
// the slot hold manager, and the event broadcaster.
type DefaultBookingService struct {
	Repo     repository.BookingRepository
	Holds    hold.Manager
	Hub      *realtime.Hub
	Notifier notification.Service
	Catalog  Catalog
	Logger   *zap.Logger

	// Timeout is the reservation_pending expiry window.
	Timeout   time.Duration
	Scheduler ExpiryScheduler

	// now is swappable for tests.
	now func() time.Time
}

func (s *DefaultBookingService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *DefaultBookingService) CreateFromHold(ctx context.Context, key models.SlotKey, sessionID, clientID, serviceID string) (*models.Booking, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	owner, err := s.Holds.Owner(ctx, key)
	if err != nil {
		return nil, err
	}
	if owner == "" || owner != sessionID {
		return nil, hold.NewHoldNotOwnedError(fmt.Sprintf("no live hold on slot %s for this session", key.Canonical()))
	}

	// Holds are keyed on the exact interval, so a hold on 14:00-15:00 says
	// nothing about a hold on 14:30-15:30. Re-check the bookings store for
	// any overlapping claim before inserting.
	if err := s.checkOverlap(ctx, key, ""); err != nil {
		return nil, err
	}

	svc, ok := s.Catalog.Lookup(serviceID)
	if !ok {
		return nil, NewUnknownServiceError(fmt.Sprintf("unknown service %q", serviceID))
	}

	now := s.clock()
	b := &models.Booking{
		ID:           uuid.New().String(),
		ClientID:     clientID,
		ProviderID:   key.ProviderID,
		ProviderType: key.ProviderType,
		ServiceID:    serviceID,
		Start:        key.Start,
		End:          key.End,
		Price:        svc.Price,
		Currency:     svc.Currency,
		Status:       models.StatusReservationPending,
		HoldSession:  sessionID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, err
	}

	// The hold stays in place: it keeps protecting the slot until payment
	// resolves or the reservation times out.
	if s.Scheduler != nil {
		if err := s.Scheduler.ScheduleExpiry(ctx, b.ID, s.Timeout); err != nil {
			s.Logger.Warn("failed to schedule reservation expiry; sweep will catch it",
				zap.String("booking", b.ID), zap.Error(err))
		}
	}

	s.Logger.Info("reservation created",
		zap.String("booking", b.ID), zap.String("slot", key.Canonical()), zap.String("client", clientID))
	s.Hub.Publish(ctx, models.NewBookingStatusEvent(b))
	return b, nil
}

func (s *DefaultBookingService) ConfirmPayment(ctx context.Context, bookingID, paymentRef string) (*models.Booking, error) {
	if paymentRef == "" {
		return nil, fmt.Errorf("missing payment ref for booking %s", bookingID)
	}

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, NewNotFoundError(err.Error())
	}

	switch b.Status {
	case models.StatusConfirmed, models.StatusCompleted:
		if b.PaymentRef == paymentRef {
			// Duplicate delivery: same outcome as the first call, no side
			// effects.
			return b, nil
		}
		s.Logger.Error("conflicting payment confirmation rejected",
			zap.String("booking", b.ID),
			zap.String("settledRef", b.PaymentRef),
			zap.String("incomingRef", paymentRef))
		return nil, NewPaymentRefConflictError(fmt.Sprintf("booking %s already settled with a different payment ref", b.ID))
	case models.StatusCancelled:
		return nil, NewInvalidTransitionError(fmt.Sprintf("booking %s is cancelled and cannot be confirmed", b.ID))
	}

	// Two overlapping reservations can slip past the create-time check if
	// they were inserted concurrently; only one may settle. The loser stays
	// reservation_pending and the sweep expires it.
	overlapping, err := s.Repo.FindOverlapping(ctx, b.SlotKey(), []models.BookingStatus{
		models.StatusConfirmed, models.StatusCompleted,
	})
	if err != nil {
		return nil, err
	}
	for i := range overlapping {
		if overlapping[i].ID != b.ID {
			s.Logger.Error("refusing to confirm booking over a settled overlap",
				zap.String("booking", b.ID), zap.String("settled", overlapping[i].ID))
			return nil, hold.NewAlreadyBookedError(fmt.Sprintf("slot %s was booked by another reservation", b.SlotKey().Canonical()))
		}
	}

	updated, err := s.Repo.ConfirmIfPending(ctx, bookingID, paymentRef, s.clock())
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost the race to another confirmation path; re-read and apply
		// the same idempotency rules against whatever won.
		return s.ConfirmPayment(ctx, bookingID, paymentRef)
	}

	b, err = s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.releaseHold(ctx, b)
	s.Logger.Info("booking confirmed",
		zap.String("booking", b.ID), zap.String("paymentRef", paymentRef))
	s.Hub.Publish(ctx, models.NewBookingStatusEvent(b))
	s.Notifier.BookingConfirmed(ctx, b)
	return b, nil
}

func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, reason, actor string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, NewNotFoundError(err.Error())
	}
	if b.Status != models.StatusReservationPending && b.Status != models.StatusConfirmed {
		return nil, NewInvalidTransitionError(fmt.Sprintf("booking %s cannot be cancelled from %s", b.ID, b.Status))
	}

	updated, err := s.Repo.CancelIf(ctx, bookingID,
		[]models.BookingStatus{models.StatusReservationPending, models.StatusConfirmed},
		reason, actor, s.clock())
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, NewInvalidTransitionError(fmt.Sprintf("booking %s changed state during cancel", b.ID))
	}

	b, err = s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.releaseHold(ctx, b)
	s.Logger.Info("booking cancelled",
		zap.String("booking", b.ID), zap.String("reason", reason), zap.String("actor", actor))
	s.Hub.Publish(ctx, models.NewBookingStatusEvent(b))
	s.Notifier.BookingCancelled(ctx, b)
	return b, nil
}

func (s *DefaultBookingService) Complete(ctx context.Context, bookingID, notes string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, NewNotFoundError(err.Error())
	}
	if b.Status != models.StatusConfirmed {
		return nil, NewInvalidTransitionError(fmt.Sprintf("booking %s cannot be completed from %s", b.ID, b.Status))
	}
	if s.clock().Before(b.Start) {
		return nil, NewTooEarlyError(fmt.Sprintf("booking %s has not started yet", b.ID))
	}

	updated, err := s.Repo.CompleteIfConfirmed(ctx, bookingID, notes, s.clock())
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, NewInvalidTransitionError(fmt.Sprintf("booking %s changed state during complete", b.ID))
	}

	b, err = s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking completed", zap.String("booking", b.ID))
	s.Hub.Publish(ctx, models.NewBookingStatusEvent(b))
	s.Notifier.BookingCompleted(ctx, b)
	return b, nil
}

func (s *DefaultBookingService) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, NewNotFoundError(err.Error())
	}
	return b, nil
}

func (s *DefaultBookingService) ListForProvider(ctx context.Context, providerID string, providerType models.ProviderType, from, to time.Time) ([]models.Booking, error) {
	return s.Repo.ListForProvider(ctx, providerID, providerType, from, to)
}

// ExpireStale runs even when no client is polling; without it an abandoned
// checkout would occupy its slot forever.
func (s *DefaultBookingService) ExpireStale(ctx context.Context) (int, error) {
	cutoff := s.clock().Add(-s.Timeout)
	stale, err := s.Repo.FindExpiredPending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		b := stale[i]
		updated, err := s.Repo.CancelIf(ctx, b.ID,
			[]models.BookingStatus{models.StatusReservationPending},
			"reservation expired", "system", s.clock())
		if err != nil {
			s.Logger.Warn("failed to expire reservation", zap.String("booking", b.ID), zap.Error(err))
			continue
		}
		if !updated {
			// Confirmed or cancelled since the scan; leave it alone.
			continue
		}
		b.Status = models.StatusCancelled
		b.Reason = "reservation expired"
		s.releaseHold(ctx, &b)
		s.Hub.Publish(ctx, models.NewBookingStatusEvent(&b))
		s.Notifier.BookingCancelled(ctx, &b)
		expired++
	}
	if expired > 0 {
		s.Logger.Info("expired stale reservations", zap.Int("count", expired))
	}
	return expired, nil
}

// checkOverlap fails when any booking other than excludeID claims an
// interval overlapping the key. Settled bookings deny as AlreadyBooked, a
// pending one as AlreadyHeld.
func (s *DefaultBookingService) checkOverlap(ctx context.Context, key models.SlotKey, excludeID string) error {
	overlapping, err := s.Repo.FindOverlapping(ctx, key, []models.BookingStatus{
		models.StatusConfirmed, models.StatusCompleted, models.StatusReservationPending,
	})
	if err != nil {
		return fmt.Errorf("failed to check booked overlap: %w", err)
	}
	pending := false
	for i := range overlapping {
		if overlapping[i].ID == excludeID {
			continue
		}
		if overlapping[i].Status != models.StatusReservationPending {
			return hold.NewAlreadyBookedError(fmt.Sprintf("slot %s overlaps an existing booking", key.Canonical()))
		}
		pending = true
	}
	if pending {
		return hold.NewAlreadyHeldError(fmt.Sprintf("slot %s overlaps a reservation awaiting payment", key.Canonical()))
	}
	return nil
}

func (s *DefaultBookingService) releaseHold(ctx context.Context, b *models.Booking) {
	if b.HoldSession == "" {
		return
	}
	if err := s.Holds.Release(ctx, b.SlotKey(), b.HoldSession); err != nil {
		s.Logger.Warn("failed to release hold after transition",
			zap.String("booking", b.ID), zap.Error(err))
	}
}
