package query

import (
	"strings"
	"time"

	"github.com/tribeboard/tribeboard/pkg/types"
)

// Display values produced by Normalize.
const (
	NotAvailable    = "N/A"
	UnknownPlayerID = "Unknown"
	displayLayout   = "03:04 PM"
)

// achievedLayouts are the upstream timestamp layouts. Fractional seconds and
// the Z suffix are required.
var achievedLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
}

// Normalize returns display-ready copies of entries:
//   - the alternate address spelling moves into Address when Address is empty
//   - HighScoreAchievedAt becomes "03:04 PM" (UTC), or "N/A" when absent or
//     unparsable
//   - PlayerID is derived from Address
//
// Normalize(Normalize(x)) equals Normalize(x).
func Normalize(entries []types.Entry) []types.Entry {
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		e = e.Clone()
		if e.Address == "" && e.WalletAddress != "" {
			e.Address = e.WalletAddress
			e.WalletAddress = ""
		}
		e.HighScoreAchievedAt = formatAchievedAt(e.HighScoreAchievedAt)
		e.PlayerID = PlayerIDFromAddress(e.Address)
		out[i] = e
	}
	return out
}

// PlayerIDFromAddress returns the segment after the last ':' of address, or
// "Unknown" when address has no separator.
func PlayerIDFromAddress(address string) string {
	i := strings.LastIndex(address, ":")
	if i < 0 {
		return UnknownPlayerID
	}
	return address[i+1:]
}

func formatAchievedAt(v string) string {
	if v == "" || v == NotAvailable {
		return NotAvailable
	}
	// Already normalized.
	if _, err := time.Parse(displayLayout, v); err == nil {
		return v
	}
	for _, layout := range achievedLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC().Format(displayLayout)
		}
	}
	return NotAvailable
}
