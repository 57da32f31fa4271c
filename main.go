package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reaperofpower/vnstat-dashboard/cmd/server"
	"github.com/reaperofpower/vnstat-dashboard/internal/config"
	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
	"github.com/reaperofpower/vnstat-dashboard/internal/services/health"
	"github.com/reaperofpower/vnstat-dashboard/internal/services/ingest"
	"github.com/reaperofpower/vnstat-dashboard/internal/timezone"
)

func main() {
	// Initialize structured logging first
	logger.InitDefault()
	log := logger.Default().WithComponent("main")

	log.Info("🚀 Starting vnStat Dashboard")

	// Initialize application state
	config.GlobalAppState = &config.AppState{
		ServerStatus: make(map[string]*models.ServerStatus),
		StartTime:    time.Now(),
		SampleChan:   make(chan config.IncomingSample, 1000),
	}
	appState := config.GlobalAppState

	// Load configuration
	if err := appState.LoadConfig(); err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log.Info("✅ Configuration loaded")

	// Resolve display timezone
	appState.Location = timezone.ResolveOrUTC(timezone.FromEnv(appState.Config.Display.Timezone))
	log.Info("✅ Display timezone resolved", "timezone", appState.Location.String())

	// Initialize storage
	if err := appState.InitStorage(); err != nil {
		log.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	log.Info("✅ Application state initialized")

	// Start background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ingest.StartProcessor(ctx, appState)
	log.Info("✅ Sample processor started")

	ingest.StartRetentionWorker(ctx, appState, time.Hour)
	log.Info("✅ Retention worker started", "retention", appState.Config.Storage.Retention)

	health.StartProber(ctx, appState)
	log.Info("✅ Agent prober started", "enabled", appState.Config.Probe.Enabled)

	// Setup graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Start server
	srv := server.SetupFiberApp(appState)
	go func() {
		addr := fmt.Sprintf("%s:%d", appState.Config.Server.Host, appState.Config.Server.Port)
		log.Info("🌐 Server starting", "address", addr)
		if err := srv.Listen(addr); err != nil {
			log.Error("Server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	<-c
	log.Info("🛑 Shutdown signal received")

	// Cancel context to stop workers
	cancel()

	// Shutdown server gracefully
	log.Info("⏳ Shutting down server")
	if err := srv.Shutdown(); err != nil {
		log.Error("Server shutdown error", "error", err)
	}

	// Close storage backend
	if appState.Storage != nil {
		if err := appState.Storage.Close(); err != nil {
			log.Error("Storage close error", "error", err)
		} else {
			log.Info("✅ Storage closed")
		}
	}

	// Close sample channel
	if appState.SampleChan != nil {
		close(appState.SampleChan)
		log.Info("✅ Sample channel closed")
	}

	log.Info("👋 vnStat Dashboard stopped")
}
