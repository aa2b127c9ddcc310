package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// CityHandler handles HTTP requests for city serviceability.
type CityHandler struct {
	geoService *service.GeoService
}

// NewCityHandler creates a new CityHandler.
func NewCityHandler(geoService *service.GeoService) *CityHandler {
	return &CityHandler{geoService: geoService}
}

// ServiceabilityResponse is the HTTP response for a serviceability probe.
type ServiceabilityResponse struct {
	CityID      string `json:"city_id"`
	Serviceable bool   `json:"serviceable"`
}

// CheckServiceability handles GET /v1/cities/:id/serviceability?lat=&lng=
func (h *CityHandler) CheckServiceability(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat must be a decimal degree"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lng must be a decimal degree"})
		return
	}

	cityID := c.Param("id")
	ok, err := h.geoService.ServiceableForCity(c.Request.Context(), domain.Point{Lat: lat, Lng: lng}, cityID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ServiceabilityResponse{CityID: cityID, Serviceable: ok})
}
