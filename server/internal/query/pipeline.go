package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tribeboard/tribeboard/pkg/types"
)

// DefaultPageSize is used when Paginate or Run get a non-positive page size.
const DefaultPageSize = 25

// SortKey names a sortable Entry field.
type SortKey string

// Sortable fields. Values match the upstream JSON keys so query strings can
// use the names users see.
const (
	SortHighScore  SortKey = types.KeyHighScore
	SortAttempts   SortKey = types.KeyAttempts
	SortTribe      SortKey = types.KeyTribe
	SortAddress    SortKey = types.KeyAddress
	SortPlayerID   SortKey = types.KeyPlayerID
	SortAchievedAt SortKey = types.KeyHighScoreAchievedAt
)

var sortKeys = []SortKey{SortHighScore, SortAttempts, SortTribe, SortAddress, SortPlayerID, SortAchievedAt}

// ParseSortKey validates a user-supplied sort field. Empty means highScore.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortHighScore, nil
	}
	for _, k := range sortKeys {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("query: unknown sort key %q", s)
}

// Filter keeps entries whose Tribe equals tribe exactly. An empty tribe
// returns a copy of entries.
func Filter(entries []types.Entry, tribe string) []types.Entry {
	if tribe == "" {
		return append([]types.Entry(nil), entries...)
	}
	out := make([]types.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Tribe == tribe {
			out = append(out, e)
		}
	}
	return out
}

// Sort returns a stably sorted copy of entries. Numeric fields compare
// numerically, string fields lexicographically; empty fields sort as their
// zero value. An unrecognised key leaves the order unchanged.
func Sort(entries []types.Entry, key SortKey, ascending bool) []types.Entry {
	out := append([]types.Entry(nil), entries...)
	less := lessFunc(key)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}

func lessFunc(key SortKey) func(a, b types.Entry) bool {
	switch key {
	case SortHighScore:
		return func(a, b types.Entry) bool { return a.HighScore < b.HighScore }
	case SortAttempts:
		return func(a, b types.Entry) bool { return a.Attempts < b.Attempts }
	case SortTribe:
		return func(a, b types.Entry) bool { return a.Tribe < b.Tribe }
	case SortAddress:
		return func(a, b types.Entry) bool { return a.Address < b.Address }
	case SortPlayerID:
		return func(a, b types.Entry) bool { return a.PlayerID < b.PlayerID }
	case SortAchievedAt:
		return func(a, b types.Entry) bool { return a.HighScoreAchievedAt < b.HighScoreAchievedAt }
	default:
		return nil
	}
}

// Page is one page of a result set.
type Page struct {
	Entries    []types.Entry `json:"entries"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// Paginate returns the 1-based page of entries. Pages past the end are empty;
// a page below 1 is treated as 1. TotalPages is ceil(Total/pageSize), 0 when
// there are no entries.
func Paginate(entries []types.Entry, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(entries)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	// Pages past the end are checked before multiplying so a huge page
	// number cannot overflow start.
	start, end := total, total
	if page <= totalPages {
		start = (page - 1) * pageSize
		end = min(start+min(pageSize, total), total)
	}
	return Page{
		Entries:    append([]types.Entry{}, entries[start:end]...),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Params selects one view of the leaderboard.
type Params struct {
	Tribe     string
	SortBy    SortKey
	Ascending bool
	Page      int
	PageSize  int
}

// Run applies Normalize, Filter, Sort and Paginate in that order.
func Run(entries []types.Entry, p Params) Page {
	key := p.SortBy
	if key == "" {
		key = SortHighScore
	}
	normalized := Normalize(entries)
	filtered := Filter(normalized, p.Tribe)
	sorted := Sort(filtered, key, p.Ascending)
	return Paginate(sorted, p.Page, p.PageSize)
}
