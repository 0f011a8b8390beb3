package models

import (
	"fmt"
	"strings"
	"time"
)

// Gateway status codes as observed on the wire. Absence of a code is not a
// failure; it means the outcome is unknown and the client should keep
// polling.
const (
	GatewayStatusSuccess = "2"
	GatewayStatusPending = "0"
)

// PaymentOutcome is the engine's reading of a gateway status code.
type PaymentOutcome int

const (
	OutcomeUnknown PaymentOutcome = iota
	OutcomePending
	OutcomeSuccess
	OutcomeFailed
)

// PaymentEvent is an external payment notification, arriving either via the
// gateway webhook or echoed back through the client redirect.
type PaymentEvent struct {
	OrderRef   string    `json:"orderRef"`
	PaymentRef string    `json:"paymentRef"`
	StatusCode string    `json:"statusCode"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Outcome maps the raw status code onto the closed outcome set.
func (e PaymentEvent) Outcome() PaymentOutcome {
	switch e.StatusCode {
	case GatewayStatusSuccess:
		return OutcomeSuccess
	case GatewayStatusPending:
		return OutcomePending
	case "":
		return OutcomeUnknown
	default:
		return OutcomeFailed
	}
}

const orderRefPrefix = "booking_"

// BuildOrderRef formats the gateway order reference for a booking.
func BuildOrderRef(bookingID, nonce string) string {
	return fmt.Sprintf("%s%s_%s", orderRefPrefix, bookingID, nonce)
}

// ParseOrderRef extracts the booking ID from a gateway order reference of
// the form "booking_<bookingId>_<nonce>". Booking IDs are UUIDs and may
// themselves contain no underscores, so the nonce is everything after the
// last separator.
func ParseOrderRef(ref string) (bookingID string, err error) {
	if !strings.HasPrefix(ref, orderRefPrefix) {
		return "", fmt.Errorf("malformed order ref %q", ref)
	}
	rest := ref[len(orderRefPrefix):]
	i := strings.LastIndex(rest, "_")
	if i <= 0 || i == len(rest)-1 {
		return "", fmt.Errorf("malformed order ref %q", ref)
	}
	return rest[:i], nil
}
