package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
	"carpool/internal/service"
)

// UserHandler handles HTTP requests for rider and driver registration.
type UserHandler struct {
	riderRepo     repository.RiderRepository
	driverRepo    repository.DriverProfileRepository
	walletService *service.WalletService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(riderRepo repository.RiderRepository, driverRepo repository.DriverProfileRepository, walletService *service.WalletService) *UserHandler {
	return &UserHandler{
		riderRepo:     riderRepo,
		driverRepo:    driverRepo,
		walletService: walletService,
	}
}

// RegisterRequest is the HTTP request body for registration.
type RegisterRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UserResponse is the HTTP response for rider data.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
	WalletID string `json:"wallet_id,omitempty"`
}

// RegisterRider handles POST /v1/riders/register
func (h *UserHandler) RegisterRider(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	rider := &domain.Rider{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
	}

	if err := h.riderRepo.Create(c.Request.Context(), rider); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, UserResponse{ID: rider.ID, Name: rider.Name, Phone: rider.Phone})
}

// RegisterDriver handles POST /v1/drivers/register. A wallet is opened for
// the driver as part of registration.
func (h *UserHandler) RegisterDriver(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	driver := &domain.DriverProfile{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Status:    domain.DriverProfileActive,
		CreatedAt: time.Now(),
	}

	if err := h.driverRepo.Create(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	wallet, err := h.walletService.CreateWallet(c.Request.Context(), driver.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, DriverResponse{
		ID:       driver.ID,
		Name:     driver.Name,
		Phone:    driver.Phone,
		Status:   string(driver.Status),
		WalletID: wallet.ID,
	})
}

// GetRider handles GET /v1/riders/:id
func (h *UserHandler) GetRider(c *gin.Context) {
	rider, err := h.riderRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, UserResponse{ID: rider.ID, Name: rider.Name, Phone: rider.Phone})
}

// GetDriver handles GET /v1/drivers/:id
func (h *UserHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, DriverResponse{
		ID:     driver.ID,
		Name:   driver.Name,
		Phone:  driver.Phone,
		Status: string(driver.Status),
	})
}
