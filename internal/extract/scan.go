package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const (
	initialBufSize = 64 * 1024
	maxLineSize    = 10 * 1024 * 1024
)

// Stats counts what a scan saw.
type Stats struct {
	Lines     int `json:"lines"`
	Imports   int `json:"imports"`
	Reorgs    int `json:"reorgs"`
	Skipped   int `json:"skipped"`
	Malformed int `json:"malformed"`
}

// Scan reads r line by line and hands every classified record to fn in file
// order. Unmatched lines and lines longer than 10 MiB are skipped. Malformed
// lines are skipped unless the extractor is strict, in which case the scan
// stops with a *LineError.
func (e Extractor) Scan(r io.Reader, fn func(Record) error) (Stats, error) {
	var stats Stats
	logger := e.logger()

	reader := bufio.NewReaderSize(r, initialBufSize)
	for {
		line, tooLong, err := readLine(reader, maxLineSize)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return stats, fmt.Errorf("read input: %w", err)
		}
		stats.Lines++

		if tooLong {
			stats.Skipped++
			logger.Debug("oversized line", zap.Int("line", stats.Lines))
			continue
		}

		rec, err := e.ParseLine(string(line))
		if err != nil {
			if errors.Is(err, ErrMalformedLine) && !e.Strict {
				stats.Malformed++
				logger.Debug("malformed line", zap.Int("line", stats.Lines), zap.Error(err))
				continue
			}
			return stats, &LineError{Line: stats.Lines, Err: err}
		}

		switch rec.Kind {
		case KindBlock:
			stats.Imports++
		case KindReorg:
			stats.Reorgs++
		default:
			stats.Skipped++
			continue
		}

		if err := fn(rec); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// readLine returns the next line without its terminator. A line longer than
// max is drained and reported as tooLong with no content. io.EOF is returned
// only when no bytes remain.
func readLine(reader *bufio.Reader, max int) ([]byte, bool, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, isPrefix, err := reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && (len(line) > 0 || tooLong) {
				return line, tooLong, nil
			}
			return nil, false, err
		}
		if !tooLong {
			if len(line)+len(chunk) > max {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			return line, tooLong, nil
		}
	}
}
