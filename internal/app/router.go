package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carpool/internal/handler"
	"carpool/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler    *handler.RideHandler
	BookingHandler *handler.BookingHandler
	WalletHandler  *handler.WalletHandler
	PayoutHandler  *handler.PayoutHandler
	UserHandler    *handler.UserHandler
	CityHandler    *handler.CityHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Rider routes.
		riders := v1.Group("/riders")
		{
			riders.POST("/register", deps.UserHandler.RegisterRider)
			riders.GET("/:id", deps.UserHandler.GetRider)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.UserHandler.RegisterDriver)
			drivers.GET("/:id", deps.UserHandler.GetDriver)
			drivers.GET("/:id/rides", deps.RideHandler.ListDriverRides)
			drivers.GET("/:id/wallet", deps.WalletHandler.GetStatement)
			drivers.POST("/:id/wallet/adjustments", deps.WalletHandler.Adjust)
			drivers.GET("/:id/payouts", deps.PayoutHandler.ListDriverPayouts)
		}

		// City routes.
		cities := v1.Group("/cities")
		{
			cities.GET("/:id/serviceability", deps.CityHandler.CheckServiceability)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/publish", deps.RideHandler.PublishRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/complete", deps.RideHandler.CompleteRide)
		}

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.CreateBooking)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
			bookings.GET("/:id/events", deps.BookingHandler.GetBookingEvents)
			bookings.POST("/:id/accept", deps.BookingHandler.AcceptBooking)
			bookings.POST("/:id/reject", deps.BookingHandler.RejectBooking)
			bookings.POST("/:id/pay", deps.BookingHandler.StartPayment)
			bookings.POST("/:id/cancel", deps.BookingHandler.CancelBooking)
			bookings.POST("/:id/complete", deps.BookingHandler.CompleteBooking)
			bookings.POST("/:id/refund", deps.BookingHandler.RefundBooking)
		}

		// Payment gateway callbacks.
		payments := v1.Group("/payments")
		{
			payments.POST("/webhook", deps.BookingHandler.PaymentWebhook)
		}

		// Payout routes.
		payouts := v1.Group("/payouts")
		{
			payouts.POST("", deps.PayoutHandler.CreatePayout)
			payouts.GET("/:id", deps.PayoutHandler.GetPayout)
			payouts.POST("/:id/approve", deps.PayoutHandler.ApprovePayout)
			payouts.POST("/:id/process", deps.PayoutHandler.ProcessPayout)
			payouts.POST("/:id/paid", deps.PayoutHandler.MarkPayoutPaid)
			payouts.POST("/:id/reject", deps.PayoutHandler.RejectPayout)
			payouts.POST("/:id/cancel", deps.PayoutHandler.CancelPayout)
		}
	}

	return router
}
