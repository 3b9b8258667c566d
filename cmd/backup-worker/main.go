package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
	"expensetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentWorker)

	logger.Info("Starting backup worker", "dir", cfg.BackupDir, "keep", cfg.BackupKeep)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the backup worker")
		os.Exit(1)
	}

	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is private to this process, backups will only hold the default ledger")
	}

	res := cli.InitStorage(context.Background(), logger, cfg)
	bridge := ledger.NewBridge(res.Store, cfg.StorageKey, logger)
	exporter := cli.InitSheetsExporter(context.Background(), logger, cfg)

	w, err := worker.NewBackupWorker(bridge, cfg.BackupDir, cfg.BackupKeep, exporter)
	if err != nil {
		logger.Error("Failed to initialize backup worker", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
	})

	// Catch up on anything changed while the worker was down.
	if err := w.StartupBackup(ctx); err != nil {
		logger.Error("Startup backup failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeWithRetry(gctx, w.HandleLedgerChanged)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Backup worker stopped")
}
