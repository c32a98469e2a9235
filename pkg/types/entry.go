package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Upstream JSON keys for the fields Entry understands.
const (
	KeyPlayerID            = "playerId"
	KeyAddress             = "address"
	KeyWalletAddress       = "walletAddress"
	KeyTribe               = "tribe"
	KeyHighScore           = "highScore"
	KeyHighScoreAchievedAt = "highScoreAchievedAt"
	KeyAttempts            = "attempts"
)

// Entry is one row of the leaderboard.
type Entry struct {
	// PlayerID is derived from Address by the query normalizer.
	PlayerID string

	// Address is the canonical colon-delimited player identifier.
	Address string

	// WalletAddress is the alternate upstream spelling of Address. It is
	// folded into Address during normalization.
	WalletAddress string

	Tribe string

	// HighScore is never negative; negative upstream values decode as 0.
	HighScore int64

	// HighScoreAchievedAt is the raw ISO-8601 timestamp before normalization
	// and the "03:04 PM" display string after it. Empty when absent.
	HighScoreAchievedAt string

	Attempts int64

	// Extra holds every upstream field not listed above, verbatim.
	Extra map[string]json.RawMessage
}

// UnmarshalJSON decodes an upstream leaderboard object. Numeric fields accept
// any JSON number; null or missing fields leave the zero value.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("entry: %w", err)
	}

	var out Entry
	for k, v := range fields {
		var err error
		switch k {
		case KeyPlayerID:
			err = decodeString(v, &out.PlayerID)
		case KeyAddress:
			err = decodeString(v, &out.Address)
		case KeyWalletAddress:
			err = decodeString(v, &out.WalletAddress)
		case KeyTribe:
			err = decodeString(v, &out.Tribe)
		case KeyHighScore:
			err = decodeInt(v, &out.HighScore)
			if out.HighScore < 0 {
				out.HighScore = 0
			}
		case KeyHighScoreAchievedAt:
			err = decodeString(v, &out.HighScoreAchievedAt)
		case KeyAttempts:
			err = decodeInt(v, &out.Attempts)
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[k] = v
		}
		if err != nil {
			return fmt.Errorf("entry: field %q: %w", k, err)
		}
	}
	*e = out
	return nil
}

// MarshalJSON encodes the entry with its passthrough fields. Empty optional
// strings are omitted so a round trip does not invent fields.
func (e Entry) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Extra)+7)
	for k, v := range e.Extra {
		m[k] = v
	}
	if e.PlayerID != "" {
		m[KeyPlayerID] = e.PlayerID
	}
	if e.Address != "" {
		m[KeyAddress] = e.Address
	}
	if e.WalletAddress != "" {
		m[KeyWalletAddress] = e.WalletAddress
	}
	m[KeyTribe] = e.Tribe
	m[KeyHighScore] = e.HighScore
	if e.HighScoreAchievedAt != "" {
		m[KeyHighScoreAchievedAt] = e.HighScoreAchievedAt
	}
	m[KeyAttempts] = e.Attempts
	return json.Marshal(m)
}

// Clone returns a copy of e that shares no mutable state with it.
func (e Entry) Clone() Entry {
	if e.Extra != nil {
		extra := make(map[string]json.RawMessage, len(e.Extra))
		for k, v := range e.Extra {
			extra[k] = v
		}
		e.Extra = extra
	}
	return e
}

func decodeString(raw json.RawMessage, dst *string) error {
	if string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// decodeInt reads a JSON number exactly when it is an integer. Numbers with
// a fraction or exponent are truncated; values beyond int64 saturate.
func decodeInt(raw json.RawMessage, dst *int64) error {
	raw = bytes.TrimSpace(raw)
	if string(raw) == "null" {
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		return fmt.Errorf("want number, got string %s", raw)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*dst = i
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	switch {
	case f >= math.MaxInt64:
		*dst = math.MaxInt64
	case f <= math.MinInt64:
		*dst = math.MinInt64
	default:
		*dst = int64(f)
	}
	return nil
}
