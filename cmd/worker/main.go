package main

import (
	"context"
	"os/signal"
	"resa/config"
	"resa/di"
	"resa/shared/logger"
	"syscall"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := di.InitializeMessagingWorker()

	log.Info().Msg("Starting up messaging worker.")

	worker.Start(ctx)

	log.Info().Msg("Messaging worker stopped.")
}
