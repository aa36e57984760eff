package model

// BlockRecord is an imported block as reported by the node log.
type BlockRecord struct {
	Number uint64 `json:"number"`
	Hash   string `json:"hash"`
	Miner  string `json:"miner"`
}
