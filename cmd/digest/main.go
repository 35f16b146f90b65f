// Command digest emails every parent a summary of their children's
// activity over the given window. It is the one-shot counterpart of the
// server's scheduled digest job, for deployments that disable the
// in-process scheduler.
//
// Usage:
//
//	digest --since=168h
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/mail"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/event"
	progressrepo "github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/progress"
	wordlistrepo "github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/wordlist"
	"github.com/heartmarshall/kiddict-backend/internal/app"
	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/service/progress"
)

func main() {
	since := flag.Duration("since", 7*24*time.Hour, "activity window to summarize")
	flag.Parse()

	if *since <= 0 {
		fmt.Fprintln(os.Stderr, "Usage: digest --since=168h")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	mailer, err := mail.NewSender(ctx, cfg.Mail, logger)
	if err != nil {
		logger.Error("init mail sender", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := progress.NewService(logger, progressrepo.New(pool), event.New(pool), wordlistrepo.New(pool), mailer)

	sent, err := svc.SendDigests(ctx, time.Now().Add(-*since))
	if err != nil {
		logger.Error("send digests", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("digests sent", slog.Int("count", sent), slog.Duration("since", *since))
}
