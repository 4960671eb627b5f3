package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"orl-assistant/internal/bootstrap"
	"orl-assistant/internal/config"
	"orl-assistant/internal/pkg/logger"
	"orl-assistant/internal/server"
	"orl-assistant/internal/tracer"
)

// Standalone companion server, for deployments that do not ship the CLI.
func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction(), false)
	defer sysLogger.Sync()

	// 2. Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLogger)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	if container.Session.InitFromStorage(ctx) {
		sysLogger.Info("MAIN", "Resumed stored session", nil)
	}

	// 4. Run Server
	if err := server.New(cfg, container).Run(ctx); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
