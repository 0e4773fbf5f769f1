package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ktfth/roleta-online/internal/api"
	"github.com/ktfth/roleta-online/internal/config"
	"github.com/ktfth/roleta-online/internal/handlers"
	"github.com/ktfth/roleta-online/internal/registry"
	"github.com/ktfth/roleta-online/internal/signaling"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	// Room registry is the single shared state; everything else holds a
	// reference to it.
	reg := registry.New(logger)
	relay := signaling.NewRelay(reg, logger)
	h := handlers.NewHandler(reg, relay, logger)

	// Idle room reaper
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	reaper := registry.NewReaper(reg, cfg.ReaperInterval, cfg.RoomTTL, logger)
	go reaper.Run(reaperCtx)

	// Create router
	router := api.NewRouter(logger, h, cfg.AllowedOrigins)

	// Create server. No write timeout: websocket connections stay open for
	// the life of a room.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting roleta-online signaling server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")
	stopReaper()

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
