package attribution

import "context"

// Resolution names the source that produced a miner.
type Resolution string

const (
	ResolvedIndex    Resolution = "index"
	ResolvedFallback Resolution = "rpc"
	ResolvedUnknown  Resolution = "unknown"
)

// MinerResolver maps a block hash to the miner that produced it.
type MinerResolver interface {
	ResolveMiner(ctx context.Context, hash string) (string, bool)
}

// chainResolver consults the log index first and the optional fallback only
// for hashes the log never imported.
type chainResolver struct {
	index    *Index
	fallback MinerResolver
}

func (r chainResolver) resolve(ctx context.Context, hash string) (string, Resolution) {
	if miner, ok := r.index.ResolveMiner(ctx, hash); ok {
		return miner, ResolvedIndex
	}
	if r.fallback != nil {
		if miner, ok := r.fallback.ResolveMiner(ctx, hash); ok {
			return miner, ResolvedFallback
		}
	}
	return "", ResolvedUnknown
}
