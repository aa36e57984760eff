package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"reorgScope/internal/model"
)

// JsonlStorage writes attribution results and validator summaries to two
// JSONL files. Each Put call replaces the previous content of its file.
type JsonlStorage struct {
	resultsPath string
	summaryPath string
}

func NewJsonlStorage(resultsPath, summaryPath string) *JsonlStorage {
	return &JsonlStorage{resultsPath: resultsPath, summaryPath: summaryPath}
}

// PutResults writes one JSON line per attribution result, in reorg order.
func (s *JsonlStorage) PutResults(_ context.Context, results []model.AttributionResult) error {
	items := make([]interface{}, 0, len(results))
	for _, res := range results {
		items = append(items, res)
	}
	return writeJSONL(s.resultsPath, items)
}

// PutSummaries writes one JSON line per validator, in presentation order.
func (s *JsonlStorage) PutSummaries(_ context.Context, summaries []model.ValidatorSummary) error {
	items := make([]interface{}, 0, len(summaries))
	for _, sum := range summaries {
		items = append(items, sum)
	}
	return writeJSONL(s.summaryPath, items)
}

func writeJSONL(path string, items []interface{}) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
