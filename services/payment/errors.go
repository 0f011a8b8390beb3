package payment

import "fmt"

const (
	CodeAmountMismatch    = "amountMismatch"
	CodeMalformedOrderRef = "malformedOrderRef"
	CodeInvalidSignature  = "invalidSignature"
	CodeNotAuthorized     = "notAuthorized"
)

type PaymentError struct {
	Code    string
	Message string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAmountMismatchError marks a notification whose amount or currency does
// not match the booking's recorded price. The booking stays
// reservation_pending; the incident is logged, never silently confirmed.
func NewAmountMismatchError(msg string) error {
	return &PaymentError{Code: CodeAmountMismatch, Message: msg}
}

func NewMalformedOrderRefError(msg string) error {
	return &PaymentError{Code: CodeMalformedOrderRef, Message: msg}
}

func NewInvalidSignatureError(msg string) error {
	return &PaymentError{Code: CodeInvalidSignature, Message: msg}
}

func NewNotAuthorizedError(msg string) error {
	return &PaymentError{Code: CodeNotAuthorized, Message: msg}
}
