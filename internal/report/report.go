package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"reorgScope/internal/model"
)

const (
	detailRuleWidth  = 60
	summaryRuleWidth = 90
)

// Write renders the per-reorg detail blocks followed by the validator table.
// summary is expected in presentation order.
func Write(w io.Writer, results []model.AttributionResult, summary []model.ValidatorSummary) error {
	bw := bufio.NewWriter(w)

	for _, res := range results {
		fmt.Fprintf(bw, "Reorg detected at block number %d:\n", res.Reorg.Number)
		fmt.Fprintf(bw, "  Dropped block hash: %s\n", res.DroppedHash())
		fmt.Fprintf(bw, "  Dropped miner: %s\n", res.DroppedMiner)
		fmt.Fprintf(bw, "  Added block hash: %s\n", res.AddedHash())
		fmt.Fprintf(bw, "  Added miner: %s\n", res.AddedMiner)
		fmt.Fprintf(bw, "  Validator responsible for reorg: %s\n", res.ResponsibleValidator)
		fmt.Fprintln(bw, strings.Repeat("-", detailRuleWidth))
	}

	fmt.Fprint(bw, "\nAggregated Validators Responsible for Reorgs:\n\n")
	fmt.Fprintf(bw, "%-46s %-16s %s\n", "Validator Address", "Number of Reorgs", "Block Numbers")
	fmt.Fprintln(bw, strings.Repeat("-", summaryRuleWidth))
	for _, s := range summary {
		fmt.Fprintf(bw, "%-46s %-16d %s\n", s.Validator, s.Count, JoinBlockNumbers(s.BlockNumbers))
	}

	return bw.Flush()
}

// JoinBlockNumbers renders block numbers as "1, 2, 3".
func JoinBlockNumbers(numbers []uint64) string {
	parts := make([]string, 0, len(numbers))
	for _, n := range numbers {
		parts = append(parts, strconv.FormatUint(n, 10))
	}
	return strings.Join(parts, ", ")
}
