package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/core"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentApp)

	res := cli.InitStorage(context.Background(), logger, cfg)
	bridge := ledger.NewBridge(res.Store, cfg.StorageKey, logger)

	policy, err := cli.PolicyFromConfig(cfg)
	if err != nil {
		logger.Error("Invalid ledger policy", "error", err)
		os.Exit(1)
	}

	opts := []ledger.Option{ledger.WithPolicy(policy), ledger.WithLogger(logger)}

	// Change events are optional; the API keeps working without a broker.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger change events disabled", "error", err)
			amqpClient = nil
		} else {
			opts = append(opts, ledger.WithNotifier(amqpClient))
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	store := ledger.Open(context.Background(), bridge, opts...)

	formatter, err := core.NewFormatter(cfg.Locale, cfg.Currency)
	if err != nil {
		logger.Error("Invalid display settings", "error", err)
		os.Exit(1)
	}

	srvOpts := []apphttp.Option{
		apphttp.WithLogger(logger),
		apphttp.WithFormatter(formatter),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
	}
	if exporter := cli.InitSheetsExporter(context.Background(), logger, cfg); exporter != nil {
		srvOpts = append(srvOpts, apphttp.WithSheetsExporter(exporter))
	}
	srv := apphttp.NewServer(":"+cfg.Port, store, srvOpts...)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func() {
		_ = store.Close()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expense tracker server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
