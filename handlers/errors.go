package handlers

import (
	"errors"
	"net/http"

	"inkwell/services/booking"
	"inkwell/services/hold"
	"inkwell/services/payment"
	"inkwell/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps engine errors onto HTTP statuses. Conflict codes
// are never retried by clients; the UI shows "slot no longer available" or
// "this booking was already settled differently".
func respondServiceError(c *gin.Context, err error) {
	var holdErr *hold.HoldError
	if errors.As(err, &holdErr) {
		switch holdErr.Code {
		case hold.CodeAlreadyHeld, hold.CodeAlreadyBooked, hold.CodeHoldNotOwned:
			c.JSON(http.StatusConflict, gin.H{"error": holdErr.Message, "code": holdErr.Code})
			return
		}
	}

	var bookErr *booking.BookingError
	if errors.As(err, &bookErr) {
		switch bookErr.Code {
		case booking.CodeNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": bookErr.Message, "code": bookErr.Code})
		case booking.CodeUnknownService:
			c.JSON(http.StatusBadRequest, gin.H{"error": bookErr.Message, "code": bookErr.Code})
		case booking.CodePaymentRefConflict, booking.CodeInvalidTransition, booking.CodeTooEarly:
			c.JSON(http.StatusConflict, gin.H{"error": bookErr.Message, "code": bookErr.Code})
		default:
			utils.JSONError(c, http.StatusInternalServerError, "booking operation failed", bookErr.Message)
		}
		return
	}

	var payErr *payment.PaymentError
	if errors.As(err, &payErr) {
		switch payErr.Code {
		case payment.CodeInvalidSignature:
			c.JSON(http.StatusUnauthorized, gin.H{"error": payErr.Message, "code": payErr.Code})
		case payment.CodeNotAuthorized:
			c.JSON(http.StatusForbidden, gin.H{"error": payErr.Message, "code": payErr.Code})
		case payment.CodeMalformedOrderRef:
			c.JSON(http.StatusBadRequest, gin.H{"error": payErr.Message, "code": payErr.Code})
		case payment.CodeAmountMismatch:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": payErr.Message, "code": payErr.Code})
		default:
			utils.JSONError(c, http.StatusInternalServerError, "payment operation failed", payErr.Message)
		}
		return
	}

	utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
}
