package models

import "time"

// SlotHold is a transient claim on a slot while one actor is mid-checkout.
// It lives only in the hold store (Redis) and is destroyed on release,
// expiry, or consumption by a booking. At most one live hold may exist per
// SlotKey at any instant.
type SlotHold struct {
	Key             SlotKey   `json:"key"`
	HolderSessionID string    `json:"holderSessionId"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// Live reports whether the hold is still in effect at the given instant.
func (h SlotHold) Live(now time.Time) bool {
	return now.Before(h.ExpiresAt)
}
