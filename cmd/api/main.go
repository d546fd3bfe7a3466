package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daliah-backend/config"
	"daliah-backend/internal/delivery/http/middleware"
	v1 "daliah-backend/internal/delivery/http/v1"
	"daliah-backend/internal/infrastructure/cache"
	"daliah-backend/internal/repository/postgres"
	"daliah-backend/internal/usecase"
	"daliah-backend/pkg/logger"
	"daliah-backend/pkg/storage"
	"daliah-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Initialize Database
	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	// Initialize Repositories
	profileRepo := postgres.NewProfileRepository(pgxPool)
	inventoryRepo := postgres.NewInventoryRepository(pgxPool)
	orderRepo := postgres.NewOrderRepository(pgxPool)
	escrowRepo := postgres.NewEscrowRepository(pgxPool)
	disputeRepo := postgres.NewDisputeRepository(pgxPool)
	ledgerRepo := postgres.NewLedgerRepository(pgxPool)
	txManager := postgres.NewTransactionManager(pgxPool)

	// Initialize Cache (In-Memory)
	// Default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	// Set up Router
	mux := http.NewServeMux()

	// --- Modules Initialization ---

	// Registry Module (profiles, catalogue, harvests)
	registryUC := usecase.NewRegistryUsecase(profileRepo, inventoryRepo, memCache, cfg.CacheHarvestTTL, cfg.TokenExpiry)
	registryHandler := v1.NewRegistryHandler(registryUC)

	// --- Storage Module (R2) ---
	r2Storage, err := storage.NewR2Storage(
		context.Background(),
		cfg.R2AccountID,
		cfg.R2AccessKeyID,
		cfg.R2AccessKeySecret,
		cfg.R2BucketName,
		cfg.R2PublicURL,
		cfg.R2UploadTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
	}
	uploadHandler := v1.NewUploadHandler(r2Storage, cfg.MaxUploadSizeMB)

	// Order Module (escrow lifecycle)
	orderUC := usecase.NewOrderUsecase(orderRepo, escrowRepo, inventoryRepo, ledgerRepo, txManager, cfg.MarketplaceFee, cfg.TreasuryAddress)
	orderHandler := v1.NewOrderHandler(orderUC)

	// Carrier Module (logistics leg)
	carrierUC := usecase.NewCarrierUsecase(orderRepo, profileRepo, txManager)
	carrierHandler := v1.NewCarrierHandler(carrierUC)

	// Dispute Module (damage reports)
	disputeUC := usecase.NewDisputeUsecase(disputeRepo, orderRepo, txManager)
	disputeHandler := v1.NewDisputeHandler(disputeUC)

	// Wallet Module (ledger balances, escrow allowances)
	walletUC := usecase.NewWalletUsecase(ledgerRepo)
	walletHandler := v1.NewWalletHandler(walletUC)

	// Registry (Public + Protected)
	mux.HandleFunc("POST /api/v1/register/{role}", registryHandler.Register)
	mux.Handle("POST /api/v1/catalogue", middleware.AuthMiddleware(http.HandlerFunc(registryHandler.RegisterCatalogueProduct)))
	mux.HandleFunc("GET /api/v1/catalogue", registryHandler.ListCatalogue)
	mux.Handle("POST /api/v1/harvests", middleware.AuthMiddleware(http.HandlerFunc(registryHandler.RegisterHarvest)))
	mux.HandleFunc("GET /api/v1/harvests", registryHandler.ListHarvests)
	mux.HandleFunc("GET /api/v1/harvests/{id}", registryHandler.GetHarvest)
	mux.HandleFunc("GET /api/v1/harvests/{id}/price", orderHandler.Quote)

	// Orders (Protected)
	mux.Handle("POST /api/v1/orders", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.PlaceOrder)))
	mux.Handle("GET /api/v1/orders", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.ListOrders)))
	mux.Handle("GET /api/v1/orders/{id}", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetOrder)))
	mux.Handle("GET /api/v1/orders/{id}/events", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetOrderEvents)))
	mux.Handle("GET /api/v1/orders/{id}/payment", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.GetPaymentDetails)))
	mux.Handle("PATCH /api/v1/orders/{id}/acceptance", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.ChangeAcceptance)))
	mux.Handle("POST /api/v1/orders/{id}/complete", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.MarkCompleted)))
	mux.Handle("POST /api/v1/orders/{id}/withdraw", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.Withdraw)))
	mux.Handle("POST /api/v1/orders/{id}/cancel", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.CancelOrder)))
	mux.Handle("POST /api/v1/orders/{id}/refund/request", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.RequestRefund)))
	mux.Handle("POST /api/v1/orders/{id}/refund/approve", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.ApproveRefund)))
	mux.Handle("POST /api/v1/orders/{id}/refund/withdraw", middleware.AuthMiddleware(http.HandlerFunc(orderHandler.WithdrawRefund)))

	// Carrier Logistics (Protected)
	mux.Handle("POST /api/v1/orders/{id}/carrier/invite", middleware.AuthMiddleware(http.HandlerFunc(carrierHandler.Invite)))
	mux.Handle("POST /api/v1/orders/{id}/carrier/accept", middleware.AuthMiddleware(http.HandlerFunc(carrierHandler.Accept)))
	mux.Handle("POST /api/v1/orders/{id}/carrier/temperature", middleware.AuthMiddleware(http.HandlerFunc(carrierHandler.LogTemperature)))
	mux.Handle("POST /api/v1/orders/{id}/carrier/pickup", middleware.AuthMiddleware(http.HandlerFunc(carrierHandler.RecordPickup)))
	mux.Handle("POST /api/v1/orders/{id}/carrier/delivery", middleware.AuthMiddleware(http.HandlerFunc(carrierHandler.RecordDelivery)))

	// Disputes (Protected)
	mux.Handle("POST /api/v1/orders/{id}/damages", middleware.AuthMiddleware(http.HandlerFunc(disputeHandler.ReportDamage)))
	mux.Handle("GET /api/v1/orders/{id}/damages", middleware.AuthMiddleware(http.HandlerFunc(disputeHandler.GetDamages)))

	// Wallet (Protected)
	mux.Handle("GET /api/v1/wallet/balance", middleware.AuthMiddleware(http.HandlerFunc(walletHandler.GetBalance)))
	mux.Handle("POST /api/v1/wallet/approve", middleware.AuthMiddleware(http.HandlerFunc(walletHandler.Approve)))

	// Uploads
	mux.Handle("POST /api/v1/upload", middleware.AuthMiddleware(http.HandlerFunc(uploadHandler.UploadProof)))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Initialize Rate Limiter with lifecycle management
	// 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		50,            // requests per second
		100,           // burst
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// Apply CORS (with config injection), Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart("daliah-backend", cfg.Port)

	// Wait for interrupt signal via channel
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	logger.ServiceStop("daliah-backend")
}
