package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgettracker/internal/amqp"
	"budgettracker/internal/cli"
	"budgettracker/internal/config"
	applog "budgettracker/internal/log"
	"budgettracker/internal/sheets"
	gsheet "budgettracker/internal/sheets/google"
	"budgettracker/internal/sheets/memory"
	"budgettracker/internal/worker"
)

const statusInterval = time.Minute

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the ledger worker")
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("ledger-worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("ledger-worker stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	logger.Info("Starting ledger-worker",
		applog.FieldOperation, applog.OpStartup,
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	mirror, local, err := newMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connect AMQP: %w", err)
	}
	defer func() {
		logger.WithComponent(applog.ComponentAMQP).Info("Closing AMQP connection",
			applog.FieldOperation, applog.OpShutdown)
		client.Close()
	}()

	w := worker.NewMirrorWorker(mirror)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, client)
	})
	if local != nil {
		g.Go(func() error {
			ticker := time.NewTicker(statusInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					logger.Info("Memory mirror status", "rows", len(local.List()))
				}
			}
		})
	}
	return g.Wait()
}

// newMirror picks Google Sheets when a spreadsheet is configured and an
// in-memory mirror otherwise. The memory mirror is returned separately so
// its size can be reported.
func newMirror(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.TransactionMirror, *memory.Mirror, error) {
	logger = logger.WithComponent(applog.ComponentSheets)
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled, mirroring to memory")
		m := memory.New()
		return m, m, nil
	}

	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init Google Sheets mirror: %w", err)
	}
	logger.Info("Mirroring ledger to Google Sheets",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)
	return client, nil, nil
}
