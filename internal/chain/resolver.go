package chain

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// HeaderMinerSource looks up the producer of a block by hash.
type HeaderMinerSource interface {
	HeaderMiner(ctx context.Context, hash common.Hash) (string, error)
}

// ResolverConfig holds retry settings for RPC lookups.
type ResolverConfig struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

type lookup struct {
	miner string
	ok    bool
}

// MinerResolver resolves block hashes that the log never imported by asking
// the node for the block header. Results, misses included, are cached.
type MinerResolver struct {
	cfg    ResolverConfig
	source HeaderMinerSource
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]lookup
}

func NewMinerResolver(cfg ResolverConfig, source HeaderMinerSource, logger *zap.Logger) *MinerResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MinerResolver{
		cfg:    cfg,
		source: source,
		logger: logger,
		cache:  make(map[string]lookup),
	}
}

// ResolveMiner returns the header coinbase for a full 32-byte hash. Short or
// non-hex hashes and failed lookups are misses. Lookups cut short by ctx are
// not cached.
func (r *MinerResolver) ResolveMiner(ctx context.Context, hash string) (string, bool) {
	r.mu.RLock()
	cached, hit := r.cache[hash]
	r.mu.RUnlock()
	if hit {
		return cached.miner, cached.ok
	}

	res, err := r.fetch(ctx, hash)
	if err != nil {
		return "", false
	}

	r.mu.Lock()
	r.cache[hash] = res
	r.mu.Unlock()

	return res.miner, res.ok
}

// fetch returns an error only when ctx ended the lookup. Every other failure
// is a definitive miss.
func (r *MinerResolver) fetch(ctx context.Context, hash string) (lookup, error) {
	data, err := hexutil.Decode(hash)
	if err != nil || len(data) != common.HashLength {
		return lookup{}, nil
	}
	blockHash := common.BytesToHash(data)

	var miner string
	err = withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		miner, err = r.source.HeaderMiner(ctx, blockHash)
		if err != nil && !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			r.logger.Warn("header lookup failed", zap.Error(err), zap.String("hash", hash))
		}
		return err
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return lookup{}, ctxErr
	}
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			r.logger.Debug("header not found", zap.String("hash", hash))
		}
		return lookup{}, nil
	}
	if miner == "" {
		return lookup{}, nil
	}
	return lookup{miner: miner, ok: true}, nil
}
