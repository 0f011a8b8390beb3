package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusReservationPending BookingStatus = "reservation_pending"
	StatusConfirmed          BookingStatus = "confirmed"
	StatusCompleted          BookingStatus = "completed"
	StatusCancelled          BookingStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Booking is the durable record of a reserved slot. Bookings are never
// deleted; they only move to a terminal status, so the collection doubles
// as the audit trail.
type Booking struct {
	ID           string        `bson:"id" json:"id"`
	ClientID     string        `bson:"client_id" json:"clientId"`
	ProviderID   string        `bson:"provider_id" json:"providerId"`
	ProviderType ProviderType  `bson:"provider_type" json:"providerType"`
	ServiceID    string        `bson:"service_id" json:"serviceId"`
	Start        time.Time     `bson:"start" json:"start"`
	End          time.Time     `bson:"end" json:"end"`
	Price        float64       `bson:"price" json:"price"`
	Currency     string        `bson:"currency" json:"currency"`
	Status       BookingStatus `bson:"status" json:"status"`
	// PaymentRef is set exactly once, at the transition into confirmed,
	// and is immutable afterwards.
	PaymentRef string `bson:"payment_ref,omitempty" json:"paymentRef,omitempty"`
	// HoldSession is the checkout session that held the slot when the
	// reservation was created; it lets the engine release the hold once
	// payment resolves or the reservation times out.
	HoldSession string    `bson:"hold_session,omitempty" json:"-"`
	Reason      string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CancelledBy string    `bson:"cancelled_by,omitempty" json:"cancelledBy,omitempty"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// SlotKey derives the lock key this booking occupies.
func (b *Booking) SlotKey() SlotKey {
	return SlotKey{
		ProviderID:   b.ProviderID,
		ProviderType: b.ProviderType,
		Start:        b.Start,
		End:          b.End,
	}
}
