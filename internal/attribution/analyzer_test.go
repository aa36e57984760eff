package attribution

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"reorgScope/internal/extract"
	"reorgScope/internal/model"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node.log")
	content := strings.Join(lines, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestAnalyzeSingleValidator(t *testing.T) {
	path := writeLog(t,
		`t=2024-05-01T10:00:00+0000 lvl=info msg="Imported new chain segment" number=100 hash=0xAA miner=0xM1`,
		`t=2024-05-01T10:00:01+0000 lvl=info msg="Chain reorg detected" number=101 hash=0xBB drop=1 dropfrom=0xAA add=1 addfrom=0xAA`,
	)

	got, err := NewAnalyzer(Config{}, nil).AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(got.Results) != 1 {
		t.Fatalf("result count mismatch: %d", len(got.Results))
	}
	res := got.Results[0]
	if res.DroppedMiner != "0xM1" || res.AddedMiner != "0xM1" || res.ResponsibleValidator != "0xM1" {
		t.Fatalf("attribution mismatch: %+v", res)
	}

	want := []model.ValidatorSummary{{Validator: "0xM1", Count: 1, BlockNumbers: []uint64{101}}}
	if !reflect.DeepEqual(got.Summary, want) {
		t.Fatalf("summary mismatch: %+v != %+v", got.Summary, want)
	}
}

func TestAnalyzeUnknownHashes(t *testing.T) {
	path := writeLog(t,
		`t=2024-05-01T10:00:01+0000 lvl=info msg="Chain reorg detected" number=555 hash=0x01 drop=2 dropfrom=0x02 add=3 addfrom=0x03`,
	)

	got, err := NewAnalyzer(Config{}, nil).AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	res := got.Results[0]
	if res.DroppedMiner != model.UnknownMiner || res.AddedMiner != model.UnknownMiner {
		t.Fatalf("expected unknown miners: %+v", res)
	}
	want := []model.ValidatorSummary{{Validator: model.UnknownMiner, Count: 1, BlockNumbers: []uint64{555}}}
	if !reflect.DeepEqual(got.Summary, want) {
		t.Fatalf("summary mismatch: %+v != %+v", got.Summary, want)
	}
}

func TestAnalyzeEmptyFile(t *testing.T) {
	path := writeLog(t)

	got, err := NewAnalyzer(Config{}, nil).AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(got.Results) != 0 || len(got.Summary) != 0 {
		t.Fatalf("expected empty analysis: %+v", got)
	}
}

func TestAnalyzeRanksValidators(t *testing.T) {
	path := writeLog(t,
		`lvl=info msg="Imported new chain segment" number=1 hash=0x0a miner=Y`,
		`lvl=info msg="Imported new chain segment" number=2 hash=0x0b miner=X`,
		`lvl=info msg="Chain reorg detected" number=3 hash=0x0c drop=1 dropfrom=0x0b add=1 addfrom=0x0a`,
		`lvl=info msg="Chain reorg detected" number=4 hash=0x0d drop=1 dropfrom=0x0a add=1 addfrom=0x0b`,
		`lvl=info msg="Chain reorg detected" number=5 hash=0x0e drop=1 dropfrom=0x0a add=1 addfrom=0x0b`,
	)

	got, err := NewAnalyzer(Config{}, nil).AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	want := []model.ValidatorSummary{
		{Validator: "X", Count: 2, BlockNumbers: []uint64{4, 5}},
		{Validator: "Y", Count: 1, BlockNumbers: []uint64{3}},
	}
	if !reflect.DeepEqual(got.Summary, want) {
		t.Fatalf("summary mismatch: %+v != %+v", got.Summary, want)
	}
}

func TestAnalyzeResolvesLaterImports(t *testing.T) {
	got, err := NewAnalyzer(Config{}, nil).Analyze(context.Background(), strings.NewReader(strings.Join([]string{
		`lvl=info msg="Chain reorg detected" number=9 hash=0x0c drop=1 dropfrom=0x01 add=1 addfrom=0x02`,
		`lvl=info msg="Imported new chain segment" number=8 hash=0x02 miner=LATE`,
	}, "\n")))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.Results[0].AddedMiner != "LATE" {
		t.Fatalf("expected index built from the whole stream: %+v", got.Results[0])
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	_, err := NewAnalyzer(Config{}, nil).AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "missing.log"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestAnalyzeStrictMalformed(t *testing.T) {
	input := `lvl=info msg="Chain reorg detected" number=99999999999999999999 hash=0x0c drop=1 dropfrom=0x01 add=1 addfrom=0x02`

	if _, err := NewAnalyzer(Config{}, nil).Analyze(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("lenient analyze should skip malformed lines: %v", err)
	}

	_, err := NewAnalyzer(Config{Strict: true}, nil).Analyze(context.Background(), strings.NewReader(input))
	if !errors.Is(err, extract.ErrMalformedLine) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestAnalyzeCanceledWithFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fallback := &ctxResolver{}
	got, err := NewAnalyzer(Config{Fallback: fallback}, nil).Analyze(ctx, strings.NewReader(
		`lvl=info msg="Chain reorg detected" number=9 hash=0x0c drop=1 dropfrom=0x01 add=1 addfrom=0x02`,
	))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if len(got.Results) != 0 {
		t.Fatalf("expected no results, got %+v", got.Results)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback must not run after cancel, got %d calls", fallback.calls)
	}
}
