package attribution

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"reorgScope/internal/extract"
	"reorgScope/internal/model"
)

// Config controls one analysis run.
type Config struct {
	Strict   bool
	Fallback MinerResolver
}

// Analysis is the full outcome of one run. Nothing is kept between runs.
type Analysis struct {
	Blocks      int
	Reorgs      []model.ReorgEvent
	Results     []model.AttributionResult
	Summary     []model.ValidatorSummary
	Stats       extract.Stats
	Resolutions ResolutionCounts
}

// Analyzer extracts records from a node log and attributes its reorgs.
type Analyzer struct {
	cfg    Config
	logger *zap.Logger
}

func NewAnalyzer(cfg Config, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// AnalyzeFile runs the analysis over the log at path.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (Analysis, error) {
	file, err := os.Open(path)
	if err != nil {
		return Analysis{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	return a.Analyze(ctx, file)
}

// Analyze runs the analysis over a line stream. Import and reorg records are
// collected in a single pass; attribution runs once the stream is exhausted,
// so a reorg may cite a block imported later in the log.
func (a *Analyzer) Analyze(ctx context.Context, r io.Reader) (Analysis, error) {
	index := NewIndex()
	reorgs := make([]model.ReorgEvent, 0)

	ext := extract.Extractor{Strict: a.cfg.Strict, Logger: a.logger}
	stats, err := ext.Scan(r, func(rec extract.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch rec.Kind {
		case extract.KindBlock:
			index.Add(rec.Block)
		case extract.KindReorg:
			reorgs = append(reorgs, rec.Reorg)
		}
		return nil
	})
	if err != nil {
		return Analysis{}, err
	}

	a.logger.Info("extract complete",
		zap.Int("lines", stats.Lines),
		zap.Int("imports", stats.Imports),
		zap.Int("reorgs", stats.Reorgs),
		zap.Int("skipped", stats.Skipped),
		zap.Int("malformed", stats.Malformed),
	)

	results, resolutions, err := Attribute(ctx, reorgs, index, a.cfg.Fallback)
	if err != nil {
		return Analysis{}, fmt.Errorf("attribute reorgs: %w", err)
	}
	summary := Summarize(results)

	a.logger.Info("analyze complete",
		zap.Int("blocks", index.Len()),
		zap.Int("reorgs", len(results)),
		zap.Int("validators", len(summary)),
		zap.Int("unknown", resolutions[ResolvedUnknown]),
	)

	return Analysis{
		Blocks:      index.Len(),
		Reorgs:      reorgs,
		Results:     results,
		Summary:     summary,
		Stats:       stats,
		Resolutions: resolutions,
	}, nil
}
