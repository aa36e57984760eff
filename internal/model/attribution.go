package model

// UnknownMiner is reported for hashes that no import line produced.
const UnknownMiner = "Unknown"

// AttributionResult links a reorg to the miners of the dropped and added tips.
type AttributionResult struct {
	Reorg                ReorgEvent `json:"reorg"`
	DroppedMiner         string     `json:"dropped_miner"`
	AddedMiner           string     `json:"added_miner"`
	ResponsibleValidator string     `json:"responsible_validator"`
}

// DroppedHash returns the tip hash of the discarded branch.
func (r AttributionResult) DroppedHash() string {
	return r.Reorg.DropFromHash
}

// AddedHash returns the tip hash of the branch that became canonical.
func (r AttributionResult) AddedHash() string {
	return r.Reorg.AddFromHash
}

// ValidatorSummary aggregates the reorgs attributed to one validator.
type ValidatorSummary struct {
	Validator    string   `json:"validator"`
	Count        int      `json:"count"`
	BlockNumbers []uint64 `json:"block_numbers"`
}
