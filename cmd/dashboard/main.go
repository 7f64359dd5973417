package main

import (
	"context"
	"os/signal"
	"resa/config"
	"resa/infras/redis"
	"resa/internal/dashboard/feed"
	"resa/internal/dashboard/mutator"
	"resa/internal/dashboard/notify"
	"resa/internal/dashboard/remote"
	"resa/internal/dashboard/session"
	"resa/internal/dashboard/view"
	"resa/shared/constant"
	"resa/shared/logger"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

const snapshotInterval = 30 * time.Second

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api, err := buildClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to authenticate against the reservation API")
	}

	notifier := notify.Gated(notify.NewLogNotifier(), notify.Permission(cfg.Dashboard.AlertPermission))
	channel := feed.NewRedisChannel(redis.New(cfg), cfg.Feed.Channel)

	dash := session.New(api, channel, notifier, feed.Config{
		AckTimeout:     time.Duration(cfg.Feed.AckTimeoutSeconds) * time.Second,
		ReconnectDelay: time.Duration(cfg.Feed.ReconnectDelaySecs) * time.Second,
	}, mutator.Config{
		MaxAttempts:  cfg.Sync.MaxWriteAttempts,
		RetryBackoff: time.Duration(cfg.Sync.RetryBackoffMillis) * time.Millisecond,
		VerifyDelay:  time.Duration(cfg.Sync.VerifyDelaySeconds) * time.Second,
	})
	defer dash.Close()

	if err := dash.Open(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to open dashboard session")
	}

	log.Info().Int("reservations", len(dash.Reservations(view.Query{}))).
		Msg("Dashboard session opened.")

	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down dashboard session.")
			return
		case <-ticker.C:
			pending := dash.Reservations(view.Query{Status: constant.StatusPending})
			log.Info().
				Stringer("feed", dash.FeedState()).
				Int("total", len(dash.Reservations(view.Query{}))).
				Int("pending", len(pending)).
				Msg("Dashboard snapshot.")
		}
	}
}

func buildClient(ctx context.Context, cfg *config.Config) (*remote.Client, error) {
	if cfg.Dashboard.Token != "" {
		return remote.New(cfg.Dashboard.APIBaseURL, cfg.Dashboard.Token), nil
	}

	return remote.Login(ctx, cfg.Dashboard.APIBaseURL, cfg.Dashboard.Email, cfg.Dashboard.Password)
}
