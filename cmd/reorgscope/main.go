package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"reorgScope/internal/attribution"
	"reorgScope/internal/chain"
	"reorgScope/internal/config"
	"reorgScope/internal/metrics"
	"reorgScope/internal/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "reorgscope <logfile>",
		Short:        "Attribute chain reorgs in a node log to validators",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runAnalyze,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("strict", false, "fail on reorg/import lines with malformed numbers instead of skipping them")
	root.PersistentFlags().String("rpc", "", "optional RPC URL used to resolve tips the log never imported")
	root.PersistentFlags().Int("rpc-max-retries", 3, "maximum retry attempts per header lookup")
	root.PersistentFlags().Duration("rpc-retry-backoff", 500*time.Millisecond, "initial retry backoff")
	root.PersistentFlags().String("metrics-file", "", "write prometheus textfile metrics to this path")

	root.AddCommand(&cobra.Command{
		Use:   "analyze <logfile>",
		Short: "Print per-reorg attribution and the validator summary",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	})

	exportCmd := &cobra.Command{
		Use:   "export <logfile>",
		Short: "Write attribution results and validator summaries as JSONL",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().String("out", "./data/reorgs.jsonl", "output attribution JSONL")
	exportCmd.Flags().String("summary-out", "./data/validators.jsonl", "output validator summary JSONL")
	root.AddCommand(exportCmd)

	persistCmd := &cobra.Command{
		Use:   "persist <logfile>",
		Short: "Store the analysis of a log in Postgres",
		Args:  cobra.ExactArgs(1),
		RunE:  runPersist,
	}
	persistCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	persistCmd.Flags().Int("batch-size", 500, "batch size for DB writes")
	persistCmd.Flags().String("chain", "bsc", "chain label stored with the run")
	root.AddCommand(persistCmd)

	return root
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analysis, err := analyze(ctx, cfg, args[0], logger)
	if err != nil {
		return err
	}

	return report.Write(cmd.OutOrStdout(), analysis.Results, analysis.Summary)
}

// analyze runs the full extraction and attribution over path, with the RPC
// fallback wired in when configured.
func analyze(ctx context.Context, cfg config.Config, path string, logger *zap.Logger) (attribution.Analysis, error) {
	logger.Info("analyze start",
		zap.String("input", path),
		zap.Bool("strict", cfg.Strict),
		zap.Bool("rpc_enabled", cfg.RPCURL != ""),
	)

	analyzerCfg := attribution.Config{Strict: cfg.Strict}
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return attribution.Analysis{}, fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()

		analyzerCfg.Fallback = chain.NewMinerResolver(chain.ResolverConfig{
			MaxRetries:   cfg.RPCMaxRetries,
			RetryBackoff: cfg.RPCRetryBackoff,
		}, chainClient, logger)
	}

	analysis, err := attribution.NewAnalyzer(analyzerCfg, logger).AnalyzeFile(ctx, path)
	if err != nil {
		return attribution.Analysis{}, err
	}

	recorder := metrics.NewRecorder()
	recorder.ObserveAnalysis(analysis)
	if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
		return attribution.Analysis{}, err
	}

	return analysis, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
