package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spending/internal/amqp"
	"spending/internal/backend"
	"spending/internal/cache"
	"spending/internal/cli"
	"spending/internal/log"
	"spending/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)

	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required to run the ledger worker")
		os.Exit(1)
	}

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	ledger, err := backend.Open(ctx, backend.FromAppConfig(cfg), logger)
	if err != nil {
		logger.Error("Failed to initialize ledger", log.FieldError, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ledgerWorker := worker.NewLedgerWorker(ledger, logger)

	caches := cache.NewManager(logger)
	caches.Register(ledgerWorker.SeenEvents())
	caches.StartCleanup(time.Hour)
	defer caches.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.Consume(gctx, ledgerWorker.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	logger.Info("Ledger worker started", "queue", cfg.AMQPQueue, "sheets", cfg.SheetsEnabled())
	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
