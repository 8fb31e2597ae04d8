package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/clients"
	"storefront/internal/delivery"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting Storefront...")
	logger.Infof("Backend target: %s", cfg.BackendURL)

	store, closeStore := openStateStore(cfg, logger)
	defer closeStore()

	// --- Dependency Injection ---
	session := usecase.NewSessionUseCase(store, logger)
	backend := clients.NewBackendClient(cfg.BackendURL, cfg.BackendTimeout, session, logger)
	logger.Info("Backend client initialized.")

	pricing := usecase.Pricing{
		FreeDeliveryThreshold: cfg.FreeDeliveryThresholdAmount(),
		FlatDeliveryFee:       cfg.DeliveryFeeAmount(),
	}
	cartUseCase := usecase.NewCartUseCase(store, logger)
	menuUseCase := usecase.NewMenuUseCase(backend, cartUseCase, logger)
	checkoutUseCase := usecase.NewCheckoutUseCase(cartUseCase, session, backend, backend, pricing, logger)
	accountUseCase := usecase.NewAccountUseCase(session, backend, backend, backend, logger)
	orderUseCase := usecase.NewOrderUseCase(session, backend, logger)
	adminUseCase := usecase.NewAdminUseCase(session, backend, logger)
	logger.Info("Use cases initialized.")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	delivery.RegisterHealth(router)
	delivery.NewMenuHandler(menuUseCase, logger).RegisterRoutes(router)
	delivery.NewCartHandler(cartUseCase, menuUseCase, pricing, logger).RegisterRoutes(router)
	delivery.NewCheckoutHandler(checkoutUseCase, logger).RegisterRoutes(router)
	delivery.NewAccountHandler(accountUseCase, session, logger).RegisterRoutes(router)
	delivery.NewOrderHandler(orderUseCase, session, logger).RegisterRoutes(router)
	delivery.NewAdminHandler(adminUseCase, session, logger).RegisterRoutes(router)
	logger.Info("Routes registered.")

	httpServer := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: router,
	}

	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	logger.Info("gRPC health and reflection services registered")

	go func() {
		logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatalf("Failed to serve gRPC: %v", err)
		}
		logger.Info("gRPC server stopped serving.")
	}()

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start HTTP server on port %s: %v", cfg.HTTPPort, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Warn("Shutdown signal received...")

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server forced to shut down: %v", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Storefront shut down gracefully.")
}

// openStateStore returns the configured store and a func that releases it.
func openStateStore(cfg *config.Config, logger *logrus.Logger) (domain.StateStore, func()) {
	if cfg.StateBackend != config.StateBackendPostgres {
		logger.Info("Using in-memory state store.")
		return repository.NewMemoryStateStore(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("Database connection established.")

	store := repository.NewPostgresStateStore(database, cfg.StateNamespace, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatalf("Failed to prepare state table: %v", err)
	}

	return store, func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}
}
