package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgettracker/internal/amqp"
	"budgettracker/internal/cache"
	"budgettracker/internal/cli"
	"budgettracker/internal/config"
	apphttp "budgettracker/internal/http"
	applog "budgettracker/internal/log"
	"budgettracker/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("budgettracker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("budgettracker stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	logger.Info("Starting budgettracker",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"db", cfg.SQLiteDBPath,
		"amqp_enabled", cfg.AMQPEnabled())

	store := cli.InitStore(logger, cfg.SQLiteDBPath)

	summaries := cache.NewLRUCache[services.Summary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	caches := cache.NewManager()
	caches.Register(summaries)
	caches.StartCleanup(cfg.SummaryCacheTTL)
	defer caches.Stop()
	logger.WithComponent(applog.ComponentCache).Info("Summary cache enabled",
		"size", cfg.SummaryCacheSize,
		"ttl", cfg.SummaryCacheTTL)

	opts := []services.Option{
		services.WithSummaryCache(summaries),
		services.WithBackupDir(cfg.BackupDir),
	}
	if cfg.AMQPEnabled() {
		amqpLogger := logger.WithComponent(applog.ComponentAMQP)
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			amqpLogger.Warn("AMQP unavailable, ledger events disabled", "error", err)
		} else {
			opts = append(opts, services.WithPublisher(client))
			amqpLogger.Info("Publishing ledger events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledger := services.NewLedgerService(store, opts...)
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.WithComponent(applog.ComponentLedger).Error("Failed to close ledger", "error", err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, ledger, logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Stopping HTTP server", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
