// Command cleanup removes raw search and quiz-attempt events older than the
// configured retention period. Persisted quiz results and progress records
// are kept. It is intended to be invoked by an external cron job.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/event"
	"github.com/heartmarshall/kiddict-backend/internal/app"
	"github.com/heartmarshall/kiddict-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	events := event.New(pool)

	threshold := time.Now().AddDate(0, 0, -cfg.Tracker.RetentionDays)

	var deleted int64
	err = txm.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = events.DeleteBefore(ctx, threshold)
		return err
	})
	if err != nil {
		logger.Error("event cleanup failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		os.Exit(1)
	}

	logger.Info("event cleanup completed",
		slog.Int64("deleted", deleted),
		slog.Time("threshold", threshold),
	)
}
