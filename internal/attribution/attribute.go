package attribution

import (
	"context"
	"sort"

	"reorgScope/internal/model"
)

// ResolutionCounts tallies how each tip hash was resolved.
type ResolutionCounts map[Resolution]int

// Attribute resolves the dropped and added tips of each reorg, in order.
// The added tip's miner is held responsible. The reorg's own hash is not
// consulted. A canceled ctx aborts the run, since the fallback would
// otherwise report every remaining tip as unknown.
func Attribute(ctx context.Context, events []model.ReorgEvent, index *Index, fallback MinerResolver) ([]model.AttributionResult, ResolutionCounts, error) {
	r := chainResolver{index: index, fallback: fallback}
	counts := make(ResolutionCounts)

	results := make([]model.AttributionResult, 0, len(events))
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		dropped, how := r.resolve(ctx, ev.DropFromHash)
		counts[how]++
		if how == ResolvedUnknown {
			dropped = model.UnknownMiner
		}

		added, how := r.resolve(ctx, ev.AddFromHash)
		counts[how]++
		if how == ResolvedUnknown {
			added = model.UnknownMiner
		}

		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		results = append(results, model.AttributionResult{
			Reorg:                ev,
			DroppedMiner:         dropped,
			AddedMiner:           added,
			ResponsibleValidator: added,
		})
	}
	return results, counts, nil
}

// Summarize folds results into one summary per responsible validator. Block
// numbers keep encounter order. The returned slice is sorted by count
// descending; validators with equal counts keep first-seen order.
func Summarize(results []model.AttributionResult) []model.ValidatorSummary {
	summaries := make([]model.ValidatorSummary, 0)
	pos := make(map[string]int)

	for _, res := range results {
		validator := res.ResponsibleValidator
		i, ok := pos[validator]
		if !ok {
			i = len(summaries)
			pos[validator] = i
			summaries = append(summaries, model.ValidatorSummary{Validator: validator})
		}
		summaries[i].Count++
		summaries[i].BlockNumbers = append(summaries[i].BlockNumbers, res.Reorg.Number)
	}

	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].Count > summaries[b].Count
	})
	return summaries
}
