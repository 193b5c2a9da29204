package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"carenow-backend/internal/app"
	"carenow-backend/internal/config"
	"carenow-backend/pkg/logger"
)

func main() {
	boot := logger.New(logger.Config{})

	// 1. Load Env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		boot.Warn().Err(err).Msg(".env could not be read")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Wire storage, Firebase and services
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer application.Close()

	// 3. Run Server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: application.Router,

		// request contexts end on shutdown so tracking streams close
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
