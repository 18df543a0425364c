package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodlens/catalog/config"
	"github.com/foodlens/catalog/internal/app"
	httpDelivery "github.com/foodlens/catalog/internal/delivery/http"
	"github.com/foodlens/catalog/internal/logger"
	"github.com/foodlens/catalog/internal/usecase"
	"go.uber.org/zap"
)

const (
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

func main() {
	// .env is optional; real environment variables win
	if err := config.LoadEnvFile(); err != nil {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(logger.ForEnvironment(cfg.Server.Environment, cfg.Logging.Level, cfg.Logging.Format))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting FoodLens catalog v1.0.0",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := app.NewCatalog(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not initialize catalog", zap.Error(err))
	}
	defer catalog.Close()

	// Initialize usecase layer
	productService := usecase.NewProductService(catalog, appLogger)
	categoryService := usecase.NewCategoryService(catalog, cfg.Search.CategoryLimit, appLogger)
	sessions := usecase.NewSessionStore(catalog, usecase.SessionConfig{
		DebounceWindow: cfg.Search.Debounce,
	}, cfg.Search.SessionTTL, appLogger)

	sweeperDone := make(chan struct{})
	go func() {
		sessions.Run(ctx, sessionSweepInterval)
		close(sweeperDone)
	}()

	handler := httpDelivery.NewHandler(productService, categoryService, sessions, appLogger)
	router := httpDelivery.SetupRouter(cfg, handler, appLogger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	<-sweeperDone
}
