package payment

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"inkwell/config"
	"inkwell/models"
	bookingsvc "inkwell/services/booking"

	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// fakeBookings implements booking.Service with the same idempotency and
// conflict rules as the real state machine, recording transitions.
type fakeBookings struct {
	bookings map[string]*models.Booking
	confirms int
	cancels  int
}

func newFakeBookings(bs ...*models.Booking) *fakeBookings {
	f := &fakeBookings{bookings: make(map[string]*models.Booking)}
	for _, b := range bs {
		f.bookings[b.ID] = b
	}
	return f
}

func (f *fakeBookings) CreateFromHold(context.Context, models.SlotKey, string, string, string) (*models.Booking, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBookings) ConfirmPayment(_ context.Context, id, ref string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingsvc.NewNotFoundError("no such booking")
	}
	switch b.Status {
	case models.StatusConfirmed, models.StatusCompleted:
		if b.PaymentRef == ref {
			return b, nil
		}
		return nil, bookingsvc.NewPaymentRefConflictError("already settled with a different ref")
	case models.StatusCancelled:
		return nil, bookingsvc.NewInvalidTransitionError("cancelled")
	}
	b.Status = models.StatusConfirmed
	b.PaymentRef = ref
	f.confirms++
	return b, nil
}

func (f *fakeBookings) Cancel(_ context.Context, id, reason, actor string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingsvc.NewNotFoundError("no such booking")
	}
	b.Status = models.StatusCancelled
	b.Reason = reason
	b.CancelledBy = actor
	f.cancels++
	return b, nil
}

func (f *fakeBookings) Complete(context.Context, string, string) (*models.Booking, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBookings) Get(_ context.Context, id string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingsvc.NewNotFoundError("no such booking")
	}
	return b, nil
}

func (f *fakeBookings) ListForProvider(context.Context, string, models.ProviderType, time.Time, time.Time) ([]models.Booking, error) {
	return nil, nil
}

func (f *fakeBookings) ExpireStale(context.Context) (int, error) {
	return 0, nil
}

func pendingBooking(id string) *models.Booking {
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:           id,
		ClientID:     "client-1",
		ProviderID:   "artist-1",
		ProviderType: models.ProviderTypeArtist,
		ServiceID:    "tattoo-session",
		Start:        start,
		End:          start.Add(time.Hour),
		Price:        180,
		Currency:     "USD",
		Status:       models.StatusReservationPending,
		CreatedAt:    time.Now().Add(-time.Minute),
	}
}

func newEngine(f *fakeBookings, secret string) *Engine {
	return &Engine{
		Bookings:      f,
		Logger:        zap.NewNop(),
		WebhookSecret: secret,
		Tolerance:     5 * time.Minute,
		ManualGrace:   24 * time.Hour,
	}
}

func successEvent(b *models.Booking, payRef string) models.PaymentEvent {
	return models.PaymentEvent{
		OrderRef:   models.BuildOrderRef(b.ID, "n1"),
		PaymentRef: payRef,
		StatusCode: models.GatewayStatusSuccess,
		Amount:     b.Price,
		Currency:   b.Currency,
	}
}

func signedHeader(payload []byte, secret string, at time.Time) string {
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	b := pendingBooking("b1")
	f := newFakeBookings(b)
	e := newEngine(f, "whsec_test")

	payload, _ := json.Marshal(successEvent(b, "pay-1"))

	_, err := e.HandleWebhook(context.Background(), payload, signedHeader(payload, "wrong-secret", time.Now()))
	var payErr *PaymentError
	if !errors.As(err, &payErr) || payErr.Code != CodeInvalidSignature {
		t.Fatalf("expected InvalidSignature, got %v", err)
	}
	if b.Status != models.StatusReservationPending {
		t.Fatalf("booking transitioned on a forged callback: %s", b.Status)
	}

	// Stale timestamp outside tolerance is also rejected.
	_, err = e.HandleWebhook(context.Background(), payload, signedHeader(payload, "whsec_test", time.Now().Add(-time.Hour)))
	if !errors.As(err, &payErr) || payErr.Code != CodeInvalidSignature {
		t.Fatalf("expected InvalidSignature for stale timestamp, got %v", err)
	}
}

func TestWebhookConfirmsOnValidSignature(t *testing.T) {
	b := pendingBooking("b1")
	f := newFakeBookings(b)
	e := newEngine(f, "whsec_test")

	payload, _ := json.Marshal(successEvent(b, "pay-1"))
	got, err := e.HandleWebhook(context.Background(), payload, signedHeader(payload, "whsec_test", time.Now()))
	if err != nil {
		t.Fatalf("webhook failed: %v", err)
	}
	if got.Status != models.StatusConfirmed || got.PaymentRef != "pay-1" {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestWebhookUnsignedAcceptedWithoutSecret(t *testing.T) {
	b := pendingBooking("b1")
	f := newFakeBookings(b)
	e := newEngine(f, "")

	payload, _ := json.Marshal(successEvent(b, "pay-1"))
	got, err := e.HandleWebhook(context.Background(), payload, "")
	if err != nil {
		t.Fatalf("unsigned sandbox webhook failed: %v", err)
	}
	if got.Status != models.StatusConfirmed {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestWebhookUnsignedRejectedInProduction(t *testing.T) {
	prevEnv := config.AppConfig.Env
	config.AppConfig.Env = "production"
	defer func() { config.AppConfig.Env = prevEnv }()

	b := pendingBooking("b1")
	f := newFakeBookings(b)
	e := newEngine(f, "")

	payload, _ := json.Marshal(successEvent(b, "pay-1"))
	_, err := e.HandleWebhook(context.Background(), payload, "")
	var payErr *PaymentError
	if !errors.As(err, &payErr) || payErr.Code != CodeInvalidSignature {
		t.Fatalf("expected InvalidSignature without a secret in production, got %v", err)
	}
	if b.Status != models.StatusReservationPending {
		t.Fatalf("booking confirmed from an unauthenticated callback: %s", b.Status)
	}
}

func TestAmountMismatchKeepsBookingPending(t *testing.T) {
	b := pendingBooking("b1")
	f := newFakeBookings(b)
	e := newEngine(f, "")

	ev := successEvent(b, "pay-1")
	ev.Amount = 20
	payload, _ := json.Marshal(ev)

	_, err := e.HandleWebhook(context.Background(), payload, "")
	var payErr *PaymentError
	if !errors.As(err, &payErr) || payErr.Code != CodeAmountMismatch {
		t.Fatalf("expected AmountMismatch, got %v", err)
	}
	if b.Status != models.StatusReservationPending {
		t.Fatalf("booking confirmed despite amount mismatch: %s", b.Status)
	}

	// Currency mismatch is treated the same way; case differences are not.
	ev = successEvent(b, "pay-1")
	ev.Currency = "EUR"
	if _, err := e.HandleClientReturn(context.Background(), "client-1", ev); !errors.As(err, &payErr) || payErr.Code != CodeAmountMismatch {
		t.Fatalf("expected AmountMismatch for currency, got %v", err)
	}
	ev.Currency = "usd"
	if _, err := e.HandleClientReturn(context.Background(), "client-1", ev); err != nil {
		t.Fatalf("case-insensitive currency match failed: %v", err)
	}
}

func TestMalformedOrderRef(t *testing.T) {
	f := newFakeBookings()
	e := newEngine(f, "")

	for _, ref := range []string{"", "b1", "booking_", "booking_b1", "order_b1_n1"} {
		_, err := e.HandleClientReturn(context.Background(), "client-1", models.PaymentEvent{
			OrderRef:   ref,
			StatusCode: models.GatewayStatusSuccess,
		})
		var payErr *PaymentError
		if !errors.As(err, &payErr) || payErr.Code != CodeMalformedOrderRef {
			t.Errorf("ref %q: expected MalformedOrderRef, got %v", ref, err)
		}
	}
}

func TestUnresolvedOutcomeIsNoOp(t *testing.T) {
	b := pendingBooking("b1")
	f := newFakeBookings(b)
	e := newEngine(f, "")

	for _, code := range []string{models.GatewayStatusPending, ""} {
		ev := successEvent(b, "pay-1")
		ev.StatusCode = code
		got, err := e.HandleClientReturn(context.Background(), "client-1", ev)
		if err != nil {
			t.Fatalf("code %q: unexpected error %v", code, err)
		}
		if got.Status != models.StatusReservationPending {
			t.Fatalf("code %q: booking left pending state: %s", code, got.Status)
		}
	}
	if f.confirms != 0 || f.cancels != 0 {
		t.Fatalf("unresolved outcome caused transitions: confirms=%d cancels=%d", f.confirms, f.cancels)
	}
}

func TestFailedOutcomeCancels(t *testing.T) {
	b := pendingBooking("b1")
	f := newFakeBookings(b)
	e := newEngine(f, "")

	ev := successEvent(b, "pay-1")
	ev.StatusCode = "5"
	got, err := e.HandleClientReturn(context.Background(), "client-1", ev)
	if err != nil {
		t.Fatalf("failed outcome errored: %v", err)
	}
	if got.Status != models.StatusCancelled || got.Reason != "payment failed" || got.CancelledBy != "gateway" {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestClientReturnChecksOwnership(t *testing.T) {
	b := pendingBooking("b1")
	f := newFakeBookings(b)
	e := newEngine(f, "")

	_, err := e.HandleClientReturn(context.Background(), "client-2", successEvent(b, "pay-1"))
	var payErr *PaymentError
	if !errors.As(err, &payErr) || payErr.Code != CodeNotAuthorized {
		t.Fatalf("expected NotAuthorized, got %v", err)
	}
	if b.Status != models.StatusReservationPending {
		t.Fatalf("booking transitioned for the wrong client: %s", b.Status)
	}
}

func TestWebhookAndRedirectConverge(t *testing.T) {
	b := pendingBooking("b1")
	f := newFakeBookings(b)
	e := newEngine(f, "")

	ev := successEvent(b, "pay-1")
	if _, err := e.HandleClientReturn(context.Background(), "client-1", ev); err != nil {
		t.Fatalf("redirect path failed: %v", err)
	}

	// The webhook lands second with the same payment ref: same outcome, no
	// duplicate transition.
	payload, _ := json.Marshal(ev)
	got, err := e.HandleWebhook(context.Background(), payload, "")
	if err != nil {
		t.Fatalf("late webhook failed: %v", err)
	}
	if got.Status != models.StatusConfirmed || f.confirms != 1 {
		t.Fatalf("paths did not converge: status=%s confirms=%d", got.Status, f.confirms)
	}
}

func TestManualConfirmAuthorization(t *testing.T) {
	ctx := context.Background()

	t.Run("provider confirms anytime", func(t *testing.T) {
		b := pendingBooking("b1")
		e := newEngine(newFakeBookings(b), "")
		got, err := e.ManualConfirm(ctx, "b1", "pay-manual", "artist-1", "provider")
		if err != nil {
			t.Fatalf("provider override failed: %v", err)
		}
		if got.Status != models.StatusConfirmed || got.PaymentRef != "pay-manual" {
			t.Fatalf("unexpected state: %+v", got)
		}
	})

	t.Run("wrong provider denied", func(t *testing.T) {
		b := pendingBooking("b1")
		e := newEngine(newFakeBookings(b), "")
		_, err := e.ManualConfirm(ctx, "b1", "", "artist-2", "provider")
		var payErr *PaymentError
		if !errors.As(err, &payErr) || payErr.Code != CodeNotAuthorized {
			t.Fatalf("expected NotAuthorized, got %v", err)
		}
	})

	t.Run("client denied within grace period", func(t *testing.T) {
		b := pendingBooking("b1")
		e := newEngine(newFakeBookings(b), "")
		_, err := e.ManualConfirm(ctx, "b1", "", "client-1", "client")
		var payErr *PaymentError
		if !errors.As(err, &payErr) || payErr.Code != CodeNotAuthorized {
			t.Fatalf("expected NotAuthorized within grace, got %v", err)
		}
	})

	t.Run("client allowed after grace period", func(t *testing.T) {
		b := pendingBooking("b1")
		e := newEngine(newFakeBookings(b), "")
		e.now = func() time.Time { return b.CreatedAt.Add(25 * time.Hour) }
		got, err := e.ManualConfirm(ctx, "b1", "", "client-1", "client")
		if err != nil {
			t.Fatalf("client override after grace failed: %v", err)
		}
		if got.Status != models.StatusConfirmed || got.PaymentRef == "" {
			t.Fatalf("expected confirmation with minted ref: %+v", got)
		}
	})
}
