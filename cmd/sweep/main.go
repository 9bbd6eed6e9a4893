package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/muzz-discovery/internal/app"
	"github.com/oggyb/muzz-discovery/internal/config"
	"github.com/oggyb/muzz-discovery/internal/db"
	"github.com/oggyb/muzz-discovery/internal/logger"
	"github.com/oggyb/muzz-discovery/internal/retention"
)

func main() {
	loop := flag.Bool("loop", false, "keep sweeping on an interval instead of exiting after one pass")
	interval := flag.Duration("interval", time.Hour, "time between sweeps with -loop")
	flag.Parse()

	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	sweeper := retention.NewSweeper(app.New(database, nil, log), *interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*loop {
		if _, err := sweeper.SweepOnce(ctx); err != nil {
			log.Error("sweep failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("sweeper stopped", "err", err)
		os.Exit(1)
	}
}
