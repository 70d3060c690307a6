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
	"gym-statistics/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	shutdownTracer := tracer.Init(cfg.Tracing, "gym-statistics-bot")
	defer func() { _ = shutdownTracer(context.Background()) }()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewBotContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to bootstrap bot: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Start Background Services
	if err := container.ChangeForwarder.Consume(ctx); err != nil {
		log.Printf("Change forwarder not started: %v", err)
	}

	// 4. Run Server
	srv := server.NewBot(cfg, container)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Bot server stopped: %v", err)
	}
}
