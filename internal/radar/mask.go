package radar

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Mask is a per-channel enable list in physical channel order. Non-zero
// entries are enabled. In JSON each entry may be a boolean or a number.
type Mask []int

// UnmarshalJSON accepts [true, false, ...] as well as [1, 0, ...].
func (m *Mask) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*m = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("mask: %w", err)
	}
	out := make(Mask, len(raw))
	for i, r := range raw {
		switch string(bytes.TrimSpace(r)) {
		case "true":
			out[i] = 1
		case "false":
			out[i] = 0
		default:
			var n float64
			if err := json.Unmarshal(r, &n); err != nil {
				return fmt.Errorf("mask entry %d: want boolean or number, got %s", i, r)
			}
			out[i] = int(n)
		}
	}
	*m = out
	return nil
}
