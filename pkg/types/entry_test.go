package types

import (
	"encoding/json"
	"math"
	"testing"
)

func TestEntry_UnmarshalKnownAndExtra(t *testing.T) {
	raw := `{"address":"0xabc:7","tribe":"red","highScore":1500.0,"attempts":3,
		"highScoreAchievedAt":"2025-01-15T14:05:09.123Z","avatar":"cat.png"}`

	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.Address != "0xabc:7" || e.Tribe != "red" {
		t.Errorf("address/tribe: got %q/%q", e.Address, e.Tribe)
	}
	if e.HighScore != 1500 || e.Attempts != 3 {
		t.Errorf("highScore/attempts: got %d/%d", e.HighScore, e.Attempts)
	}
	if got := string(e.Extra["avatar"]); got != `"cat.png"` {
		t.Errorf("Extra[avatar]: got %s", got)
	}
}

func TestEntry_NegativeScoreClamped(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`{"tribe":"blue","highScore":-5}`), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.HighScore != 0 {
		t.Errorf("HighScore: got %d, want 0", e.HighScore)
	}
}

func TestEntry_NullFieldsKeepZero(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`{"tribe":null,"highScore":null,"highScoreAchievedAt":null}`), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.Tribe != "" || e.HighScore != 0 || e.HighScoreAchievedAt != "" {
		t.Errorf("expected zero values, got %+v", e)
	}
}

func TestEntry_WrongTypeIsError(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`{"highScore":"lots"}`), &e); err == nil {
		t.Fatal("expected error for string highScore")
	}
}

func TestEntry_MarshalKeepsExtra(t *testing.T) {
	e := Entry{
		Address:   "x:1",
		Tribe:     "red",
		HighScore: 10,
		Extra:     map[string]json.RawMessage{"avatar": json.RawMessage(`"cat.png"`)},
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back["avatar"] != "cat.png" {
		t.Errorf("avatar: got %v", back["avatar"])
	}
	if _, ok := back[KeyWalletAddress]; ok {
		t.Error("empty walletAddress should be omitted")
	}
}

func TestEntry_CloneDetachesExtra(t *testing.T) {
	e := Entry{Extra: map[string]json.RawMessage{"a": json.RawMessage(`1`)}}
	c := e.Clone()
	c.Extra["a"] = json.RawMessage(`2`)
	if string(e.Extra["a"]) != "1" {
		t.Error("Clone shares Extra map with original")
	}
}

func TestEntry_LargeIntegersExact(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{`{"highScore":9007199254740993}`, 9007199254740993},
		{`{"highScore":9223372036854775807}`, math.MaxInt64},
		{`{"highScore":1e30}`, math.MaxInt64},
		{`{"highScore":99999999999999999999}`, math.MaxInt64},
		{`{"highScore":12.9}`, 12},
		{`{"highScore":2.5e3}`, 2500},
	}
	for _, tc := range tests {
		var e Entry
		if err := json.Unmarshal([]byte(tc.raw), &e); err != nil {
			t.Fatalf("%s: Unmarshal: %v", tc.raw, err)
		}
		if e.HighScore != tc.want {
			t.Errorf("%s: HighScore got %d, want %d", tc.raw, e.HighScore, tc.want)
		}
	}
}

func TestEntry_AttemptsExtremes(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`{"attempts":-9223372036854775808}`), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.Attempts != math.MinInt64 {
		t.Errorf("Attempts got %d, want MinInt64", e.Attempts)
	}
	if err := json.Unmarshal([]byte(`{"attempts":-1e40}`), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.Attempts != math.MinInt64 {
		t.Errorf("Attempts got %d, want MinInt64", e.Attempts)
	}
	if err := json.Unmarshal([]byte(`{"attempts":"12"}`), &e); err == nil {
		t.Error("string attempts should be rejected")
	}
}
