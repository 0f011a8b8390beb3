package realtime

import (
	"context"
	"testing"
	"time"

	"inkwell/models"

	"go.uber.org/zap"
)

func testSlot() models.SlotKey {
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	return models.SlotKey{
		ProviderID:   "artist-1",
		ProviderType: models.ProviderTypeArtist,
		Start:        start,
		End:          start.Add(time.Hour),
	}
}

func TestPublishReachesRoomSubscribersOnly(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	key := testSlot()

	ch, cancel := h.Subscribe(key.Room())
	defer cancel()
	otherCh, otherCancel := h.Subscribe("studio:studio-9")
	defer otherCancel()

	h.Publish(context.Background(), models.NewSlotHeldEvent(key))

	select {
	case ev := <-ch:
		if ev.Kind != models.EventSlotHeld {
			t.Fatalf("unexpected kind %q", ev.Kind)
		}
		if ev.Slot == nil || ev.Slot.Key.ProviderID != key.ProviderID {
			t.Fatalf("unexpected payload: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}

	select {
	case ev := <-otherCh:
		t.Fatalf("event leaked into another room: %+v", ev)
	default:
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	key := testSlot()

	ch, cancel := h.Subscribe(key.Room())
	defer cancel()

	// Overfill the buffer; Publish must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			h.Publish(context.Background(), models.NewSlotReleasedEvent(key))
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	if got := len(ch); got != subscriberBuffer {
		t.Fatalf("expected a full buffer of %d events, got %d", subscriberBuffer, got)
	}
}

func TestCancelClosesChannelAndIsIdempotent(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	key := testSlot()

	ch, cancel := h.Subscribe(key.Room())
	cancel()
	cancel()

	if _, open := <-ch; open {
		t.Fatal("channel still open after cancel")
	}

	// Publishing after cancel must not panic on the closed channel.
	h.Publish(context.Background(), models.NewSlotReleasedEvent(key))
}
