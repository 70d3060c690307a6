package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"gym-statistics/internal/bootstrap"
	"gym-statistics/internal/config"
	"gym-statistics/internal/server"
	"gym-statistics/internal/service"
	"gym-statistics/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	shutdownTracer := tracer.Init(cfg.Tracing, "gym-statistics-dashboard")
	defer func() { _ = shutdownTracer(context.Background()) }()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewDashboardContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to bootstrap dashboard: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Start Background Services
	if _, err := container.DashboardService.Refresh(ctx, service.TriggerManual); err != nil {
		log.Printf("Initial load failed, serving empty until the next refresh: %v", err)
	}

	go container.WebSocketHub.Run(ctx)
	go container.DashboardService.Run(ctx, cfg.Dashboard.RefreshInterval)

	if container.Watcher != nil {
		go container.Watcher.Run(ctx)
	}
	if err := container.SubscribeChanges(ctx); err != nil {
		log.Printf("Change notifications disabled: %v", err)
	}

	// 4. Run Server
	srv := server.NewDashboard(cfg, container)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Dashboard server stopped: %v", err)
	}
}
