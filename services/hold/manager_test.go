package hold

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"inkwell/models"
	"inkwell/realtime"

	"go.uber.org/zap"
)

// stubBookingRepo returns canned overlap results; the hold manager only
// touches FindOverlapping.
type stubBookingRepo struct {
	overlapping []models.Booking
}

func (s *stubBookingRepo) Create(context.Context, *models.Booking) error { return nil }
func (s *stubBookingRepo) GetByID(context.Context, string) (*models.Booking, error) {
	return nil, errors.New("not implemented")
}
func (s *stubBookingRepo) FindOverlapping(_ context.Context, _ models.SlotKey, statuses []models.BookingStatus) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range s.overlapping {
		for _, st := range statuses {
			if b.Status == st {
				out = append(out, b)
			}
		}
	}
	return out, nil
}
func (s *stubBookingRepo) ConfirmIfPending(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}
func (s *stubBookingRepo) CancelIf(context.Context, string, []models.BookingStatus, string, string, time.Time) (bool, error) {
	return false, nil
}
func (s *stubBookingRepo) CompleteIfConfirmed(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}
func (s *stubBookingRepo) FindExpiredPending(context.Context, time.Time) ([]models.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) ListForProvider(context.Context, string, models.ProviderType, time.Time, time.Time) ([]models.Booking, error) {
	return nil, nil
}

func slotAt(hour int) models.SlotKey {
	start := time.Date(2025, 6, 1, hour, 0, 0, 0, time.UTC)
	return models.SlotKey{
		ProviderID:   "studio-1",
		ProviderType: models.ProviderTypeStudio,
		Start:        start,
		End:          start.Add(time.Hour),
	}
}

func newTestManager(repo *stubBookingRepo) (*DefaultManager, *MemoryStore) {
	store := NewMemoryStore()
	return &DefaultManager{
		Store:    store,
		Bookings: repo,
		Hub:      realtime.NewHub(nil, zap.NewNop()),
		Logger:   zap.NewNop(),
		TTL:      5 * time.Minute,
	}, store
}

func TestAcquireDeniesSecondSession(t *testing.T) {
	m, _ := newTestManager(&stubBookingRepo{})
	ctx := context.Background()
	key := slotAt(14)

	if _, err := m.Acquire(ctx, key, "sess-a"); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	_, err := m.Acquire(ctx, key, "sess-b")
	var holdErr *HoldError
	if !errors.As(err, &holdErr) || holdErr.Code != CodeAlreadyHeld {
		t.Fatalf("expected AlreadyHeld, got %v", err)
	}

	// Same session re-acquire extends rather than conflicts.
	if _, err := m.Acquire(ctx, key, "sess-a"); err != nil {
		t.Errorf("re-acquire by owner failed: %v", err)
	}

	// A different slot is unaffected.
	if _, err := m.Acquire(ctx, slotAt(16), "sess-b"); err != nil {
		t.Errorf("other slot should be free: %v", err)
	}
}

func TestAcquireExactlyOneWinnerUnderContention(t *testing.T) {
	m, _ := newTestManager(&stubBookingRepo{})
	ctx := context.Background()
	key := slotAt(14)

	const sessions = 32
	var wg sync.WaitGroup
	wins := make(chan string, sessions)

	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sid := string(rune('a' + n%26)) + string(rune('0'+n/26))
			if _, err := m.Acquire(ctx, key, "sess-"+sid); err == nil {
				wins <- sid
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %d: %v", len(winners), winners)
	}
}

func TestExpiredHoldDoesNotBlockAcquire(t *testing.T) {
	m, store := newTestManager(&stubBookingRepo{})
	ctx := context.Background()
	key := slotAt(14)

	if _, err := m.Acquire(ctx, key, "sess-a"); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	// Jump past the TTL.
	base := time.Now()
	store.SetNow(func() time.Time { return base.Add(6 * time.Minute) })

	if _, err := m.Acquire(ctx, key, "sess-b"); err != nil {
		t.Fatalf("expired hold should not block a new acquire: %v", err)
	}
}

func TestAcquireDeniedWhenBooked(t *testing.T) {
	key := slotAt(14)
	repo := &stubBookingRepo{overlapping: []models.Booking{{
		ID: "b1", ProviderID: key.ProviderID, ProviderType: key.ProviderType,
		Start: key.Start, End: key.End, Status: models.StatusConfirmed,
	}}}
	m, _ := newTestManager(repo)

	_, err := m.Acquire(context.Background(), key, "sess-a")
	var holdErr *HoldError
	if !errors.As(err, &holdErr) || holdErr.Code != CodeAlreadyBooked {
		t.Fatalf("expected AlreadyBooked, got %v", err)
	}
}

func TestAcquireDeniedWhilePendingReservation(t *testing.T) {
	key := slotAt(14)
	repo := &stubBookingRepo{overlapping: []models.Booking{{
		ID: "b1", ProviderID: key.ProviderID, ProviderType: key.ProviderType,
		Start: key.Start, End: key.End, Status: models.StatusReservationPending,
	}}}
	m, _ := newTestManager(repo)

	_, err := m.Acquire(context.Background(), key, "sess-b")
	var holdErr *HoldError
	if !errors.As(err, &holdErr) || holdErr.Code != CodeAlreadyHeld {
		t.Fatalf("expected AlreadyHeld while reservation pending, got %v", err)
	}
}

func TestReleaseIsIdempotentAndOwnerChecked(t *testing.T) {
	m, _ := newTestManager(&stubBookingRepo{})
	ctx := context.Background()
	key := slotAt(14)

	// Releasing a hold that never existed is a no-op.
	if err := m.Release(ctx, key, "sess-a"); err != nil {
		t.Fatalf("release of missing hold errored: %v", err)
	}

	if _, err := m.Acquire(ctx, key, "sess-a"); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	// A stranger's release leaves the hold in place.
	if err := m.Release(ctx, key, "sess-b"); err != nil {
		t.Fatalf("foreign release errored: %v", err)
	}
	if owner, _ := m.Owner(ctx, key); owner != "sess-a" {
		t.Fatalf("hold lost to foreign release, owner=%q", owner)
	}

	if err := m.Release(ctx, key, "sess-a"); err != nil {
		t.Fatalf("owner release errored: %v", err)
	}
	if owner, _ := m.Owner(ctx, key); owner != "" {
		t.Fatalf("hold not released, owner=%q", owner)
	}
}

func TestRenewRequiresOwnership(t *testing.T) {
	m, _ := newTestManager(&stubBookingRepo{})
	ctx := context.Background()
	key := slotAt(14)

	if _, err := m.Acquire(ctx, key, "sess-a"); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if _, err := m.Renew(ctx, key, "sess-a"); err != nil {
		t.Errorf("owner renew failed: %v", err)
	}

	_, err := m.Renew(ctx, key, "sess-b")
	var holdErr *HoldError
	if !errors.As(err, &holdErr) || holdErr.Code != CodeHoldNotOwned {
		t.Fatalf("expected HoldNotOwned, got %v", err)
	}
}
