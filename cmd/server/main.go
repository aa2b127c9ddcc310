package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carpool/internal/app"
	"carpool/internal/config"
	"carpool/internal/handler"
	internalRedis "carpool/internal/redis"
	"carpool/internal/repository/postgres"
	"carpool/internal/service"
	"carpool/internal/worker"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, expiryWorker := wireServer(db, redisClient, nrApp, cfg)

	// Seat holds expire in the background for the lifetime of the process.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go expiryWorker.Run(workerCtx)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// background expiry worker.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *worker.ExpiryWorker) {
	// Initialize Redis stores.
	holdStore := internalRedis.NewHoldStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	uow := postgres.NewUnitOfWork(db)
	riderRepo := postgres.NewRiderRepository(db)
	driverRepo := postgres.NewDriverProfileRepository(db)
	cityRepo := postgres.NewCityRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	eventRepo := postgres.NewBookingEventRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	walletTxRepo := postgres.NewWalletTransactionRepository(db)
	payoutRepo := postgres.NewPayoutRepository(db)

	// Initialize services.
	policy := config.NewStaticPolicyProvider(cfg.Policy)
	notifier := service.NewNotificationService()
	gateway := service.NewMockGateway()
	geoService := service.NewGeoService(cityRepo, cacheStore, policy)
	seatInventory := service.NewSeatInventory(rideRepo)
	walletService := service.NewWalletService(uow, walletRepo, walletTxRepo, policy)
	bookingService := service.NewBookingService(uow, bookingRepo, eventRepo, rideRepo, seatInventory, gateway, holdStore, notifier, policy)
	rideService := service.NewRideService(uow, rideRepo, bookingRepo, driverRepo, bookingService, geoService, gateway, notifier)
	payoutService := service.NewPayoutService(uow, payoutRepo, notifier, policy)
	refundCoordinator := service.NewRefundCoordinator(uow, bookingRepo, gateway, notifier, policy)

	// Initialize handlers.
	userHandler := handler.NewUserHandler(riderRepo, driverRepo, walletService)
	rideHandler := handler.NewRideHandler(rideService)
	bookingHandler := handler.NewBookingHandler(bookingService, refundCoordinator)
	walletHandler := handler.NewWalletHandler(walletService)
	payoutHandler := handler.NewPayoutHandler(payoutService)
	cityHandler := handler.NewCityHandler(geoService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:    rideHandler,
		BookingHandler: bookingHandler,
		WalletHandler:  walletHandler,
		PayoutHandler:  payoutHandler,
		UserHandler:    userHandler,
		CityHandler:    cityHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	expiryWorker := worker.NewExpiryWorker(bookingService, bookingRepo, holdStore, lockStore)

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, expiryWorker
}
