package booking

import "fmt"

const (
	CodeNotFound           = "notFound"
	CodeUnknownService     = "unknownService"
	CodePaymentRefConflict = "paymentRefConflict"
	CodeTooEarly           = "tooEarly"
	CodeInvalidTransition  = "invalidTransition"
)

type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFoundError(msg string) error {
	return &BookingError{Code: CodeNotFound, Message: msg}
}

func NewUnknownServiceError(msg string) error {
	return &BookingError{Code: CodeUnknownService, Message: msg}
}

// NewPaymentRefConflictError marks a confirmation that disagrees with the
// ref already settled on the booking. Never retried, never overwritten.
func NewPaymentRefConflictError(msg string) error {
	return &BookingError{Code: CodePaymentRefConflict, Message: msg}
}

func NewTooEarlyError(msg string) error {
	return &BookingError{Code: CodeTooEarly, Message: msg}
}

func NewInvalidTransitionError(msg string) error {
	return &BookingError{Code: CodeInvalidTransition, Message: msg}
}
