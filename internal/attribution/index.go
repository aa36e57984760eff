package attribution

import (
	"context"

	"reorgScope/internal/model"
)

// Index maps block hash to the last imported record for that hash.
type Index struct {
	blocks map[string]model.BlockRecord
}

func NewIndex() *Index {
	return &Index{blocks: make(map[string]model.BlockRecord)}
}

// Add stores a block record. A later record for the same hash replaces the
// earlier one.
func (i *Index) Add(rec model.BlockRecord) {
	i.blocks[rec.Hash] = rec
}

// Lookup returns the block record imported under hash.
func (i *Index) Lookup(hash string) (model.BlockRecord, bool) {
	rec, ok := i.blocks[hash]
	return rec, ok
}

func (i *Index) Len() int {
	return len(i.blocks)
}

// ResolveMiner implements MinerResolver against the imported blocks.
func (i *Index) ResolveMiner(_ context.Context, hash string) (string, bool) {
	rec, ok := i.Lookup(hash)
	if !ok {
		return "", false
	}
	return rec.Miner, true
}
