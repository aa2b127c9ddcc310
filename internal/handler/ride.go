package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	DriverID       string  `json:"driver_id"`
	CityID         string  `json:"city_id"`
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
	SeatsTotal     int     `json:"seats_total"`
	PricePerSeat   int64   `json:"price_per_seat"` // minor units
	DepartureAt    string  `json:"departure_at"`   // RFC 3339
}

// RideActorRequest is the HTTP request body for driver-initiated ride
// transitions.
type RideActorRequest struct {
	DriverID string `json:"driver_id"`
	Reason   string `json:"reason,omitempty"`
}

// RideResponse is the HTTP response for ride data.
type RideResponse struct {
	ID             string  `json:"id"`
	DriverID       string  `json:"driver_id"`
	CityID         string  `json:"city_id,omitempty"`
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
	SeatsTotal     int     `json:"seats_total"`
	SeatsAvailable int     `json:"seats_available"`
	PricePerSeat   int64   `json:"price_per_seat"`
	Status         string  `json:"status"`
	DepartureAt    string  `json:"departure_at"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:             ride.ID,
		DriverID:       ride.DriverID,
		CityID:         ride.CityID,
		OriginLat:      ride.Origin.Lat,
		OriginLng:      ride.Origin.Lng,
		DestinationLat: ride.Destination.Lat,
		DestinationLng: ride.Destination.Lng,
		SeatsTotal:     ride.SeatsTotal,
		SeatsAvailable: ride.SeatsAvailable,
		PricePerSeat:   ride.PricePerSeat,
		Status:         string(ride.Status),
		DepartureAt:    ride.DepartureAt.Format(time.RFC3339),
	}
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	departureAt, err := time.Parse(time.RFC3339, req.DepartureAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "departure_at must be RFC 3339"})
		return
	}

	ride, err := h.rideService.Create(c.Request.Context(), service.CreateRideRequest{
		DriverID:     req.DriverID,
		CityID:       req.CityID,
		Origin:       domain.Point{Lat: req.OriginLat, Lng: req.OriginLng},
		Destination:  domain.Point{Lat: req.DestinationLat, Lng: req.DestinationLng},
		SeatsTotal:   req.SeatsTotal,
		PricePerSeat: req.PricePerSeat,
		DepartureAt:  departureAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// PublishRide handles POST /v1/rides/:id/publish
func (h *RideHandler) PublishRide(c *gin.Context) {
	var req RideActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.Publish(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req RideActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.Cancel(c.Request.Context(), c.Param("id"), req.DriverID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	var req RideActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.Complete(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// ListDriverRides handles GET /v1/drivers/:id/rides
func (h *RideHandler) ListDriverRides(c *gin.Context) {
	rides, err := h.rideService.ListByDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		response = append(response, toRideResponse(ride))
	}

	respondJSON(c, http.StatusOK, response)
}
