package hold

import "fmt"

// Error codes for hold acquisition and ownership failures. These are
// conflict errors: never retried automatically, surfaced to the user as
// "slot no longer available".
const (
	CodeAlreadyHeld   = "alreadyHeld"
	CodeAlreadyBooked = "alreadyBooked"
	CodeHoldNotOwned  = "holdNotOwned"
)

type HoldError struct {
	Code    string
	Message string
}

func (e *HoldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAlreadyHeldError(msg string) error {
	return &HoldError{Code: CodeAlreadyHeld, Message: msg}
}

func NewAlreadyBookedError(msg string) error {
	return &HoldError{Code: CodeAlreadyBooked, Message: msg}
}

func NewHoldNotOwnedError(msg string) error {
	return &HoldError{Code: CodeHoldNotOwned, Message: msg}
}
