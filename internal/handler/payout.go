package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// PayoutHandler handles HTTP requests for driver payouts.
type PayoutHandler struct {
	payoutService *service.PayoutService
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(payoutService *service.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// CreatePayoutRequest is the HTTP request body for requesting a payout.
type CreatePayoutRequest struct {
	DriverID string `json:"driver_id"`
	Amount   int64  `json:"amount"` // minor units
	Method   string `json:"method"` // e.g. BANK_TRANSFER, UPI
}

// PayoutActorRequest is the HTTP request body for payout transitions.
type PayoutActorRequest struct {
	ActorID   string `json:"actor_id"`
	Reference string `json:"reference,omitempty"`
}

// PayoutResponse is the HTTP response for payout data.
type PayoutResponse struct {
	ID              string `json:"id"`
	DriverID        string `json:"driver_id"`
	Amount          int64  `json:"amount"`
	Method          string `json:"method"`
	Status          string `json:"status"`
	PayoutReference string `json:"payout_reference,omitempty"`
	RequestedAt     string `json:"requested_at"`
	ProcessedAt     string `json:"processed_at,omitempty"`
}

func toPayoutResponse(payout *domain.PayoutRequest) PayoutResponse {
	response := PayoutResponse{
		ID:              payout.ID,
		DriverID:        payout.DriverID,
		Amount:          payout.Amount,
		Method:          payout.Method,
		Status:          string(payout.Status),
		PayoutReference: payout.PayoutReference,
		RequestedAt:     payout.RequestedAt.Format(time.RFC3339),
	}
	if !payout.ProcessedAt.IsZero() {
		response.ProcessedAt = payout.ProcessedAt.Format(time.RFC3339)
	}

	return response
}

// CreatePayout handles POST /v1/payouts
func (h *PayoutHandler) CreatePayout(c *gin.Context) {
	var req CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payout, err := h.payoutService.Request(c.Request.Context(), req.DriverID, req.Amount, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPayoutResponse(payout))
}

// ApprovePayout handles POST /v1/payouts/:id/approve
func (h *PayoutHandler) ApprovePayout(c *gin.Context) {
	h.transition(c, h.payoutService.Approve)
}

// ProcessPayout handles POST /v1/payouts/:id/process
func (h *PayoutHandler) ProcessPayout(c *gin.Context) {
	h.transition(c, h.payoutService.MarkProcessing)
}

// RejectPayout handles POST /v1/payouts/:id/reject
func (h *PayoutHandler) RejectPayout(c *gin.Context) {
	h.transition(c, h.payoutService.Reject)
}

// CancelPayout handles POST /v1/payouts/:id/cancel
func (h *PayoutHandler) CancelPayout(c *gin.Context) {
	h.transition(c, h.payoutService.Cancel)
}

// MarkPayoutPaid handles POST /v1/payouts/:id/paid
func (h *PayoutHandler) MarkPayoutPaid(c *gin.Context) {
	var req PayoutActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payout, err := h.payoutService.MarkPaid(c.Request.Context(), c.Param("id"), req.ActorID, req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPayoutResponse(payout))
}

// GetPayout handles GET /v1/payouts/:id
func (h *PayoutHandler) GetPayout(c *gin.Context) {
	payout, err := h.payoutService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPayoutResponse(payout))
}

// ListDriverPayouts handles GET /v1/drivers/:id/payouts
func (h *PayoutHandler) ListDriverPayouts(c *gin.Context) {
	payouts, err := h.payoutService.ListByDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PayoutResponse, 0, len(payouts))
	for _, payout := range payouts {
		response = append(response, toPayoutResponse(payout))
	}

	respondJSON(c, http.StatusOK, response)
}

func (h *PayoutHandler) transition(c *gin.Context, fn func(ctx context.Context, payoutID, actorID string) (*domain.PayoutRequest, error)) {
	var req PayoutActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payout, err := fn(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPayoutResponse(payout))
}
