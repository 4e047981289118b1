// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/config"
	"github.com/your-org/storefront-client/internal/infrastructure/api"
	"github.com/your-org/storefront-client/internal/infrastructure/storage"
	"github.com/your-org/storefront-client/internal/interfaces/http"
	"github.com/your-org/storefront-client/internal/pkg/logger"
	"github.com/your-org/storefront-client/internal/storefront"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"storage":     cfg.Storage.Provider,
		"upstream":    cfg.API.BaseURL,
	}).Infof("Starting %s", cfg.App.Name)

	store, closeStore, err := storage.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open client storage")
	}
	defer closeStore()

	client := api.NewFromConfig(cfg, store, log)
	app := storefront.New(cfg, store, client, log)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), cfg.API.Timeout+5*time.Second)
	err = app.Bootstrap(bootCtx)
	cancelBoot()
	if err != nil {
		log.WithError(err).Fatal("Failed to restore client state")
	}

	server := http.NewServer(cfg, app, store, log)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("Server shutdown completed")
}
