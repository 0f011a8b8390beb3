package hold

import (
	"context"
	"fmt"
	"time"

	"inkwell/database/repository"
	"inkwell/models"
	"inkwell/realtime"
	"inkwell/utils"

	"go.uber.org/zap"
)

// DefaultManager implements Manager on top of a Store, denying holds that
// collide with settled bookings and broadcasting hold state to calendar
// viewers.
type DefaultManager struct {
	Store    Store
	Bookings repository.BookingRepository
	Hub      *realtime.Hub
	Logger   *zap.Logger
	TTL      time.Duration
}

func storeKey(key models.SlotKey) string {
	return utils.HoldKeyPrefix + key.Canonical()
}

func (m *DefaultManager) Acquire(ctx context.Context, key models.SlotKey, sessionID string) (*models.SlotHold, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, fmt.Errorf("missing session id")
	}

	// A booking on the slot trumps any hold. Settled bookings deny as
	// AlreadyBooked; a reservation_pending one is someone else's checkout
	// still awaiting payment, so it denies as AlreadyHeld even if that
	// session's hold TTL has lapsed.
	overlapping, err := m.Bookings.FindOverlapping(ctx, key, []models.BookingStatus{
		models.StatusConfirmed, models.StatusCompleted, models.StatusReservationPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check booked overlap: %w", err)
	}
	for i := range overlapping {
		if overlapping[i].Status != models.StatusReservationPending {
			return nil, NewAlreadyBookedError(fmt.Sprintf("slot %s is already booked", key.Canonical()))
		}
	}
	if len(overlapping) > 0 {
		return nil, NewAlreadyHeldError(fmt.Sprintf("slot %s has a reservation awaiting payment", key.Canonical()))
	}

	ok, err := m.Store.Acquire(ctx, storeKey(key), sessionID, m.TTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewAlreadyHeldError(fmt.Sprintf("slot %s is held by another session", key.Canonical()))
	}

	m.Logger.Debug("hold granted",
		zap.String("slot", key.Canonical()), zap.String("session", sessionID))
	m.Hub.Publish(ctx, models.NewSlotHeldEvent(key))

	return &models.SlotHold{Key: key, HolderSessionID: sessionID, ExpiresAt: time.Now().Add(m.TTL)}, nil
}

func (m *DefaultManager) Release(ctx context.Context, key models.SlotKey, sessionID string) error {
	released, err := m.Store.Release(ctx, storeKey(key), sessionID)
	if err != nil {
		return err
	}
	if released {
		m.Logger.Debug("hold released",
			zap.String("slot", key.Canonical()), zap.String("session", sessionID))
		m.Hub.Publish(ctx, models.NewSlotReleasedEvent(key))
	}
	return nil
}

func (m *DefaultManager) Renew(ctx context.Context, key models.SlotKey, sessionID string) (*models.SlotHold, error) {
	ok, err := m.Store.Renew(ctx, storeKey(key), sessionID, m.TTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewHoldNotOwnedError(fmt.Sprintf("slot %s is not held by this session", key.Canonical()))
	}
	return &models.SlotHold{Key: key, HolderSessionID: sessionID, ExpiresAt: time.Now().Add(m.TTL)}, nil
}

func (m *DefaultManager) Owner(ctx context.Context, key models.SlotKey) (string, error) {
	return m.Store.Owner(ctx, storeKey(key))
}
