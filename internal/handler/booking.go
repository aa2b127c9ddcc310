package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
	refunds        *service.RefundCoordinator
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService, refunds *service.RefundCoordinator) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		refunds:        refunds,
	}
}

// CreateBookingRequest is the HTTP request body for requesting seats.
type CreateBookingRequest struct {
	RideID        string `json:"ride_id"`
	RiderID       string `json:"rider_id"`
	Seats         int    `json:"seats"`
	PaymentMethod string `json:"payment_method,omitempty"` // CASH, STRIPE, RAZORPAY
}

// BookingActorRequest is the HTTP request body for actor-initiated booking
// transitions.
type BookingActorRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason,omitempty"`
}

// PaymentWebhookRequest is the HTTP request body the gateway posts back on
// payment completion.
type PaymentWebhookRequest struct {
	BookingID string `json:"booking_id"`
	Proof     string `json:"proof"`
}

// BookingResponse is the HTTP response for booking data.
type BookingResponse struct {
	ID               string `json:"id"`
	RideID           string `json:"ride_id"`
	RiderID          string `json:"rider_id"`
	DriverID         string `json:"driver_id"`
	Seats            int    `json:"seats"`
	PricePerSeat     int64  `json:"price_per_seat"`
	Subtotal         int64  `json:"subtotal"`
	CommissionAmount int64  `json:"commission_amount"`
	TotalAmount      int64  `json:"total_amount"`
	Status           string `json:"status"`
	PaymentMethod    string `json:"payment_method"`
	PaymentStatus    string `json:"payment_status"`
	PaymentRef       string `json:"payment_ref,omitempty"`
	HoldExpiresAt    string `json:"hold_expires_at,omitempty"`
	CancelledAt      string `json:"cancelled_at,omitempty"`
	CancelReason     string `json:"cancel_reason,omitempty"`
}

// BookingEventResponse is one entry of a booking's audit trail.
type BookingEventResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ActorID   string            `json:"actor_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt string            `json:"created_at"`
}

func toBookingResponse(booking *domain.Booking) BookingResponse {
	response := BookingResponse{
		ID:               booking.ID,
		RideID:           booking.RideID,
		RiderID:          booking.RiderID,
		DriverID:         booking.DriverID,
		Seats:            booking.SeatsRequested,
		PricePerSeat:     booking.PricePerSeat,
		Subtotal:         booking.Subtotal,
		CommissionAmount: booking.CommissionAmount,
		TotalAmount:      booking.TotalAmount,
		Status:           string(booking.Status),
		PaymentMethod:    string(booking.PaymentMethod),
		PaymentStatus:    string(booking.PaymentStatus),
		PaymentRef:       booking.PaymentRef,
	}

	if !booking.HoldExpiresAt.IsZero() {
		response.HoldExpiresAt = booking.HoldExpiresAt.Format(time.RFC3339)
	}
	if !booking.CancelledAt.IsZero() {
		response.CancelledAt = booking.CancelledAt.Format(time.RFC3339)
		response.CancelReason = booking.CancelReason
	}

	return response
}

// CreateBooking handles POST /v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	method, err := service.ValidatePaymentMethod(req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), service.CreateBookingRequest{
		RideID:        req.RideID,
		RiderID:       req.RiderID,
		Seats:         req.Seats,
		PaymentMethod: method,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// AcceptBooking handles POST /v1/bookings/:id/accept
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	var req BookingActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.Accept(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// CompleteBooking handles POST /v1/bookings/:id/complete
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	booking, err := h.bookingService.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// RejectBooking handles POST /v1/bookings/:id/reject
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	var req BookingActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.Reject(c.Request.Context(), c.Param("id"), req.ActorID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// StartPayment handles POST /v1/bookings/:id/pay
func (h *BookingHandler) StartPayment(c *gin.Context) {
	var req BookingActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.StartPayment(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// PaymentWebhook handles POST /v1/payments/webhook
func (h *BookingHandler) PaymentWebhook(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.ConfirmPayment(c.Request.Context(), req.BookingID, req.Proof)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// CancelBooking handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req BookingActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.Cancel(c.Request.Context(), c.Param("id"), req.ActorID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// RefundBooking handles POST /v1/bookings/:id/refund
func (h *BookingHandler) RefundBooking(c *gin.Context) {
	var req BookingActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.refunds.Refund(c.Request.Context(), c.Param("id"), req.ActorID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// GetBookingEvents handles GET /v1/bookings/:id/events
func (h *BookingHandler) GetBookingEvents(c *gin.Context) {
	events, err := h.bookingService.Events(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingEventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, BookingEventResponse{
			ID:        event.ID,
			Name:      event.Name,
			ActorID:   event.ActorID,
			Metadata:  event.Metadata,
			CreatedAt: event.CreatedAt.Format(time.RFC3339),
		})
	}

	respondJSON(c, http.StatusOK, response)
}
