package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reorgScope/internal/config"
	"reorgScope/internal/storage/postgres"
)

func runPersist(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPersist(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Analyze first so an unreadable log leaves nothing behind in the database.
	analysis, err := analyze(ctx, cfg.Config, args[0], logger)
	if err != nil {
		return err
	}

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	run, err := store.BeginRun(ctx, cfg.Chain, args[0], cfg.BatchSize)
	if err != nil {
		return err
	}
	defer run.Rollback(ctx)

	logger.Info("persist start",
		zap.String("run_id", run.ID().String()),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("chain", cfg.Chain),
		zap.Int("batch_size", cfg.BatchSize),
	)

	if err := writeAnalysis(ctx, run, analysis); err != nil {
		return err
	}
	if err := run.Commit(ctx, len(analysis.Results), len(analysis.Summary)); err != nil {
		return err
	}

	logger.Info("persist complete",
		zap.String("run_id", run.ID().String()),
		zap.Int("reorgs", len(analysis.Results)),
		zap.Int("validators", len(analysis.Summary)),
	)
	return nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
