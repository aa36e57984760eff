package extract

import "regexp"

// Both shapes follow the node's logfmt output. Arbitrary key=value pairs may
// sit between the expected fields, but the fields keep their order.
const (
	importMarker = `lvl=info\s+msg="Imported new chain segment"`
	reorgMarker  = `lvl=info\s+msg="Chain reorg detected"`

	gap      = `(?:\s+\S+)*?\s+`
	hexToken = `([0-9a-fA-Fx]+)`
	idToken  = `([0-9a-zA-Zx]+)`
	uintTok  = `(\d+)`
)

var (
	importPattern = regexp.MustCompile(importMarker +
		gap + `number=` + uintTok +
		gap + `hash=` + hexToken +
		gap + `miner=` + idToken)

	reorgPattern = regexp.MustCompile(reorgMarker +
		gap + `number=` + uintTok +
		gap + `hash=` + hexToken +
		gap + `drop=` + uintTok +
		gap + `dropfrom=` + hexToken +
		gap + `add=` + uintTok +
		gap + `addfrom=` + hexToken)
)
