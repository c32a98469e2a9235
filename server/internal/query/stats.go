package query

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tribeboard/tribeboard/pkg/types"
)

// DefaultVoteOffThreshold is the score below which a player is listed by
// VoteOffList.
const DefaultVoteOffThreshold int64 = 100000

var printer = message.NewPrinter(language.English)

// TribeStats summarises one tribe over the unpaginated leaderboard.
type TribeStats struct {
	Tribe string `json:"tribe"`

	// PercentScored reads like "62.5% (5/8)": players with a score above
	// zero, one decimal, followed by the raw counts. "0% (0/0)" when empty.
	PercentScored string `json:"percent_scored"`

	// AvgScore is the mean score of every player, zeros included, rounded
	// half to even and printed with thousands separators. "0" when empty.
	AvgScore string `json:"avg_score"`

	Scored  int     `json:"scored"`
	Players int     `json:"players"`
	Average float64 `json:"average"`
}

// ComputeTribeStats returns the stats for tribe over entries.
func ComputeTribeStats(entries []types.Entry, tribe string) TribeStats {
	st := TribeStats{Tribe: tribe}
	var sum int64
	for _, e := range entries {
		if e.Tribe != tribe {
			continue
		}
		st.Players++
		sum += e.HighScore
		if e.HighScore > 0 {
			st.Scored++
		}
	}

	if st.Players == 0 || tribe == "" {
		return TribeStats{Tribe: tribe, PercentScored: "0% (0/0)", AvgScore: "0"}
	}

	pct := 100 * float64(st.Scored) / float64(st.Players)
	st.PercentScored = fmt.Sprintf("%.1f%% (%d/%d)", pct, st.Scored, st.Players)
	st.Average = float64(sum) / float64(st.Players)
	st.AvgScore = formatThousands(st.Average)
	return st
}

// TeamStat is one row of the team table.
type TeamStat struct {
	Tribe          string  `json:"tribe"`
	Players        int     `json:"players"`
	Average        float64 `json:"average"`
	AverageDisplay string  `json:"average_display"`
	Highest        int64   `json:"highest"`
	HighestDisplay string  `json:"highest_display"`
}

// TeamStats groups entries by tribe and returns one row per tribe, sorted by
// mean score descending. Ties break on tribe name so the order is stable.
func TeamStats(entries []types.Entry) []TeamStat {
	type acc struct {
		n       int
		sum     int64
		highest int64
	}
	groups := make(map[string]*acc)
	for _, e := range entries {
		a, ok := groups[e.Tribe]
		if !ok {
			a = &acc{}
			groups[e.Tribe] = a
		}
		a.n++
		a.sum += e.HighScore
		if e.HighScore > a.highest {
			a.highest = e.HighScore
		}
	}

	out := make([]TeamStat, 0, len(groups))
	for tribe, a := range groups {
		avg := float64(a.sum) / float64(a.n)
		out = append(out, TeamStat{
			Tribe:          tribe,
			Players:        a.n,
			Average:        avg,
			AverageDisplay: formatThousands(avg),
			Highest:        a.highest,
			HighestDisplay: formatThousands(float64(a.highest)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Tribe < out[j].Tribe
	})
	return out
}

// VoteOff is one candidate on the vote-off list.
type VoteOff struct {
	PlayerID  string `json:"player_id"`
	HighScore int64  `json:"high_score"`
}

// VoteOffList returns the players of tribe scoring below threshold, lowest
// first. A non-positive threshold uses DefaultVoteOffThreshold.
func VoteOffList(entries []types.Entry, tribe string, threshold int64) []VoteOff {
	if threshold <= 0 {
		threshold = DefaultVoteOffThreshold
	}
	candidates := make([]types.Entry, 0)
	for _, e := range entries {
		if e.Tribe == tribe && e.HighScore < threshold {
			candidates = append(candidates, e)
		}
	}
	candidates = Sort(candidates, SortHighScore, true)

	out := make([]VoteOff, 0, len(candidates))
	for _, e := range candidates {
		out = append(out, VoteOff{
			PlayerID:  PlayerIDFromAddress(canonicalAddress(e)),
			HighScore: e.HighScore,
		})
	}
	return out
}

// canonicalAddress applies the same address fallback as Normalize so
// VoteOffList works on raw entries too.
func canonicalAddress(e types.Entry) string {
	if e.Address == "" {
		return e.WalletAddress
	}
	return e.Address
}

// formatThousands rounds v half to even and groups digits: 1234.5 → "1,234".
func formatThousands(v float64) string {
	return printer.Sprintf("%d", int64(math.RoundToEven(v)))
}
