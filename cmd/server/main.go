package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"docvault/internal/config"
	"docvault/internal/server"
	"docvault/pkg/logger"
)

func main() {
	// Configuration comes from the environment, on top of an optional TOML file
	cfg, err := config.Load(os.Getenv("DOCVAULT_CONFIG"))
	if err != nil {
		l := logger.New(os.Stderr, "", "")
		l.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.Init(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server error")
		srv.Close()
		os.Exit(1)
	}
}
