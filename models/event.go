package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind discriminates the closed set of realtime calendar events. The
// set is decoded once at the transport edge; downstream code switches on
// the kind rather than matching event-name strings.
type EventKind string

const (
	EventSlotHeld      EventKind = "slot-held"
	EventSlotReleased  EventKind = "slot-released"
	EventBookingStatus EventKind = "booking-status-changed"
)

// Event is the envelope pushed to calendar subscribers. Exactly one of the
// payload fields is set, according to Kind.
type Event struct {
	Kind    EventKind            `json:"kind"`
	Room    string               `json:"room"`
	At      time.Time            `json:"at"`
	Slot    *SlotEventPayload    `json:"slot,omitempty"`
	Booking *BookingEventPayload `json:"booking,omitempty"`
}

// SlotEventPayload carries the slot a hold event refers to.
type SlotEventPayload struct {
	Key SlotKey `json:"key"`
}

// BookingEventPayload carries the booking a status-change event refers to.
type BookingEventPayload struct {
	BookingID string        `json:"bookingId"`
	Status    BookingStatus `json:"status"`
}

// NewSlotHeldEvent builds a slot-held event for the slot's calendar room.
func NewSlotHeldEvent(key SlotKey) Event {
	return Event{Kind: EventSlotHeld, Room: key.Room(), At: time.Now(), Slot: &SlotEventPayload{Key: key}}
}

// NewSlotReleasedEvent builds a slot-released event for the slot's calendar room.
func NewSlotReleasedEvent(key SlotKey) Event {
	return Event{Kind: EventSlotReleased, Room: key.Room(), At: time.Now(), Slot: &SlotEventPayload{Key: key}}
}

// NewBookingStatusEvent builds a booking-status-changed event.
func NewBookingStatusEvent(b *Booking) Event {
	return Event{
		Kind:    EventBookingStatus,
		Room:    b.SlotKey().Room(),
		At:      time.Now(),
		Booking: &BookingEventPayload{BookingID: b.ID, Status: b.Status},
	}
}

// DecodeEvent parses a wire event and rejects kinds outside the closed set.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	switch ev.Kind {
	case EventSlotHeld, EventSlotReleased:
		if ev.Slot == nil {
			return Event{}, fmt.Errorf("event %s missing slot payload", ev.Kind)
		}
	case EventBookingStatus:
		if ev.Booking == nil {
			return Event{}, fmt.Errorf("event %s missing booking payload", ev.Kind)
		}
	default:
		return Event{}, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return ev, nil
}
