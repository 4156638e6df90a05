package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"studiobook/internal/config"
	"studiobook/internal/database"
	"studiobook/internal/logging"
	"studiobook/internal/metrics"
	"studiobook/internal/notification"
	"studiobook/internal/repository"
	"studiobook/internal/sweeper"
)

// One-shot sweep for cron or manual runs. The api binary schedules the same
// sweep in-process.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.AppEnv)

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is empty")
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	metrics.Register()

	bookingRepo := repository.NewBookingRepository(db)
	sw := sweeper.New(bookingRepo, notification.NewLogSender(log), log, sweeper.DefaultRetryPolicy(cfg.SweeperMaxAttempts))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := sw.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("sweep failed")
	}
	log.Info().Int("expired", n).Msg("sweep done")
}
