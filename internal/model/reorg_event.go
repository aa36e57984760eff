package model

// ReorgEvent is a chain reorganization reported by the node log.
// Hash is the canonical head at detection time and is informational only.
type ReorgEvent struct {
	Number       uint64 `json:"number"`
	Hash         string `json:"hash"`
	DropCount    uint64 `json:"drop_count"`
	DropFromHash string `json:"drop_from_hash"`
	AddCount     uint64 `json:"add_count"`
	AddFromHash  string `json:"add_from_hash"`
}
