package models

import (
	"encoding/json"
	"testing"
	"time"
)

func testSlotKey() SlotKey {
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	return SlotKey{
		ProviderID:   "studio-1",
		ProviderType: ProviderTypeStudio,
		Start:        start,
		End:          start.Add(time.Hour),
	}
}

func TestDecodeEventRoundTrip(t *testing.T) {
	ev := NewSlotHeldEvent(testSlotKey())
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Kind != EventSlotHeld {
		t.Errorf("wrong kind: %s", decoded.Kind)
	}
	if decoded.Room != "studio:studio-1" {
		t.Errorf("wrong room: %s", decoded.Room)
	}
	if decoded.Slot == nil || decoded.Slot.Key.ProviderID != "studio-1" {
		t.Errorf("slot payload lost: %+v", decoded.Slot)
	}
}

func TestDecodeEventRejectsUnknownKind(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{"kind":"slot-repainted","room":"studio:1"}`)); err == nil {
		t.Error("expected unknown-kind error")
	}
}

func TestDecodeEventRejectsMissingPayload(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{"kind":"booking-status-changed","room":"studio:1"}`)); err == nil {
		t.Error("expected missing-payload error")
	}
}

func TestSlotKeyValidate(t *testing.T) {
	key := testSlotKey()
	if err := key.Validate(); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}

	bad := key
	bad.End = bad.Start
	if err := bad.Validate(); err == nil {
		t.Error("expected error for empty interval")
	}

	bad = key
	bad.ProviderType = "venue"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown provider type")
	}
}
