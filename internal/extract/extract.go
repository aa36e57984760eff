package extract

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"reorgScope/internal/model"
)

// ErrMalformedLine reports a line that has a known shape but a numeric field
// that does not fit an unsigned 64-bit integer.
var ErrMalformedLine = errors.New("malformed numeric field")

// Kind classifies an extracted line.
type Kind int

const (
	KindNone Kind = iota
	KindBlock
	KindReorg
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "import"
	case KindReorg:
		return "reorg"
	default:
		return "none"
	}
}

// Record is the classification of one line. Only the field matching Kind is set.
type Record struct {
	Kind  Kind
	Block model.BlockRecord
	Reorg model.ReorgEvent
}

// LineError carries the 1-based line number of a malformed line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Extractor turns node log lines into typed records. It keeps no state
// between lines.
type Extractor struct {
	// Strict turns malformed lines into scan errors instead of skipping them.
	Strict bool
	// Logger receives debug entries for skipped malformed lines. Nil is silent.
	Logger *zap.Logger
}

func (e Extractor) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// ParseLine classifies a single line. The import shape is checked first and
// wins when a line somehow carries both markers.
func (e Extractor) ParseLine(line string) (Record, error) {
	if m := importPattern.FindStringSubmatch(line); m != nil {
		number, err := parseUint(m[1])
		if err != nil {
			return Record{}, err
		}
		return Record{
			Kind:  KindBlock,
			Block: model.BlockRecord{Number: number, Hash: m[2], Miner: m[3]},
		}, nil
	}

	m := reorgPattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, nil
	}

	var nums [3]uint64
	for i, idx := range []int{1, 3, 5} {
		n, err := parseUint(m[idx])
		if err != nil {
			return Record{}, err
		}
		nums[i] = n
	}

	return Record{
		Kind: KindReorg,
		Reorg: model.ReorgEvent{
			Number:       nums[0],
			Hash:         m[2],
			DropCount:    nums[1],
			DropFromHash: m[4],
			AddCount:     nums[2],
			AddFromHash:  m[6],
		},
	}, nil
}

func parseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLine, s)
	}
	return v, nil
}
