package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reorgScope/internal/attribution"
	"reorgScope/internal/config"
	"reorgScope/internal/storage"
)

func runExport(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadExport(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.SummaryOut == "" {
		return fmt.Errorf("summary output path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analysis, err := analyze(ctx, cfg.Config, args[0], logger)
	if err != nil {
		return err
	}

	if err := writeAnalysis(ctx, storage.NewJsonlStorage(cfg.Out, cfg.SummaryOut), analysis); err != nil {
		return err
	}

	logger.Info("export complete",
		zap.String("out", cfg.Out),
		zap.String("summary_out", cfg.SummaryOut),
		zap.Int("reorgs", len(analysis.Results)),
		zap.Int("validators", len(analysis.Summary)),
	)
	return nil
}

func writeAnalysis(ctx context.Context, sink storage.Storage, analysis attribution.Analysis) error {
	if err := sink.PutResults(ctx, analysis.Results); err != nil {
		return fmt.Errorf("store results: %w", err)
	}
	if err := sink.PutSummaries(ctx, analysis.Summary); err != nil {
		return fmt.Errorf("store summaries: %w", err)
	}
	return nil
}
