package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spending/internal/amqp"
	"spending/internal/cli"
	"spending/internal/core"
	apphttp "spending/internal/http"
	"spending/internal/log"
	"spending/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	table, err := core.NewCurrencyTable(cfg.DefaultCurrency)
	if err != nil {
		logger.Error("Invalid currency configuration", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := cli.OpenRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err)
		os.Exit(1)
	}
	defer repo.Close()

	if _, err := services.SeedChildren(ctx, repo, cfg.SeedChildren, logger); err != nil {
		logger.Error("Failed to seed children", log.FieldError, err)
		os.Exit(1)
	}

	// Left nil when events are off: a typed nil would defeat the nil check
	// in the expense service.
	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Expense events disabled: broker unreachable", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Publishing expense events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	summaries := services.NewSummaryService(repo, table, logger)
	expenses := services.NewExpenseService(repo, table, publisher, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Expenses:           expenses,
		Summaries:          summaries,
		Store:              repo,
		Currencies:         table,
		Logger:             logger,
		AdminPIN:           cfg.AdminPIN,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting spending server",
			"port", cfg.Port,
			"database", repo.Dialect(),
			"default_currency", table.DefaultCode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
