package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// WalletHandler handles HTTP requests for driver wallets.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// AdjustmentRequest is the HTTP request body for a manual wallet adjustment.
type AdjustmentRequest struct {
	Amount      int64  `json:"amount"`    // minor units, strictly positive
	Direction   string `json:"direction"` // CREDIT or DEBIT
	Description string `json:"description,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

// WalletResponse is the HTTP response for wallet data.
type WalletResponse struct {
	ID                string `json:"id"`
	DriverID          string `json:"driver_id"`
	Balance           int64  `json:"balance"`
	LifetimeEarned    int64  `json:"lifetime_earned"`
	LifetimeWithdrawn int64  `json:"lifetime_withdrawn"`
}

// WalletTransactionResponse is one ledger row in a statement.
type WalletTransactionResponse struct {
	ID          string `json:"id"`
	BookingID   string `json:"booking_id,omitempty"`
	Type        string `json:"type"`
	Direction   string `json:"direction"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
	Reference   string `json:"reference,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// StatementResponse is the HTTP response for a wallet statement.
type StatementResponse struct {
	Wallet       WalletResponse              `json:"wallet"`
	Transactions []WalletTransactionResponse `json:"transactions"`
}

func toWalletResponse(wallet *domain.DriverWallet) WalletResponse {
	return WalletResponse{
		ID:                wallet.ID,
		DriverID:          wallet.DriverID,
		Balance:           wallet.Balance,
		LifetimeEarned:    wallet.LifetimeEarned,
		LifetimeWithdrawn: wallet.LifetimeWithdrawn,
	}
}

// GetStatement handles GET /v1/drivers/:id/wallet
func (h *WalletHandler) GetStatement(c *gin.Context) {
	wallet, txs, err := h.walletService.Statement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := StatementResponse{
		Wallet:       toWalletResponse(wallet),
		Transactions: make([]WalletTransactionResponse, 0, len(txs)),
	}
	for _, tx := range txs {
		response.Transactions = append(response.Transactions, WalletTransactionResponse{
			ID:          tx.ID,
			BookingID:   tx.BookingID,
			Type:        string(tx.Type),
			Direction:   string(tx.Direction),
			Amount:      tx.Amount,
			Description: tx.Description,
			Reference:   tx.Reference,
			CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// Adjust handles POST /v1/drivers/:id/wallet/adjustments
func (h *WalletHandler) Adjust(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	entry := service.LedgerEntry{
		DriverID:    c.Param("id"),
		Amount:      req.Amount,
		Type:        domain.WalletTxAdjustment,
		Description: req.Description,
		Reference:   req.Reference,
	}

	var (
		tx  *domain.WalletTransaction
		err error
	)
	switch domain.WalletTransactionDirection(req.Direction) {
	case domain.WalletTxCredit:
		tx, err = h.walletService.Credit(c.Request.Context(), entry)
	case domain.WalletTxDebit:
		tx, err = h.walletService.Debit(c.Request.Context(), entry)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "direction must be CREDIT or DEBIT"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, WalletTransactionResponse{
		ID:          tx.ID,
		BookingID:   tx.BookingID,
		Type:        string(tx.Type),
		Direction:   string(tx.Direction),
		Amount:      tx.Amount,
		Description: tx.Description,
		Reference:   tx.Reference,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	})
}
