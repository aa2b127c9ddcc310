package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/repository"
	"carpool/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidPayoutID),
		errors.Is(err, service.ErrInvalidSeatCount),
		errors.Is(err, service.ErrInvalidSeatsTotal),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidDeparture),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrPayoutMethodNotAllowed),
		errors.Is(err, service.ErrPayoutBelowMinimum),
		errors.Is(err, service.ErrOriginNotServiceable),
		errors.Is(err, service.ErrRefundsDisabled):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidPayoutTransition),
		errors.Is(err, service.ErrRideNotPublished),
		errors.Is(err, service.ErrRideNotUpcoming),
		errors.Is(err, service.ErrCancellationDeadlinePassed),
		errors.Is(err, service.ErrCashBookingHasNoPayment),
		errors.Is(err, service.ErrSeatsUnavailable),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrTooManyActiveBookings):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrActorNotAllowed):
		return http.StatusForbidden

	// Payment gateway errors
	case errors.Is(err, service.ErrGatewayDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrGatewayUnavailable):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
