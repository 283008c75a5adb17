package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/huynhanx03/servicequeue/internal/app"
	"github.com/huynhanx03/servicequeue/pkg/logger"
	"github.com/huynhanx03/servicequeue/pkg/settings"
)

func main() {
	configPath := flag.String("config", "", "path to the config file (yaml, json or toml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := settings.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("build service queue", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Error("service queue stopped", zap.Error(err))
		return err
	}
	log.Info("service queue stopped")
	return nil
}
