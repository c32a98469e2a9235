package query

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribeboard/tribeboard/pkg/types"
)

func entry(addr, tribe string, score int64) types.Entry {
	return types.Entry{Address: addr, Tribe: tribe, HighScore: score}
}

// board returns n entries alternating across tribes with distinct scores.
func board(red, blue int) []types.Entry {
	out := make([]types.Entry, 0, red+blue)
	for i := 0; i < red; i++ {
		out = append(out, entry(fmt.Sprintf("x:r%d", i), "red", int64(i*1000)))
	}
	for i := 0; i < blue; i++ {
		out = append(out, entry(fmt.Sprintf("x:b%d", i), "blue", int64(i*1000+500)))
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortHighScore, k)

	k, err = ParseSortKey("attempts")
	require.NoError(t, err)
	assert.Equal(t, SortAttempts, k)

	k, err = ParseSortKey("HIGHSCORE")
	require.NoError(t, err)
	assert.Equal(t, SortHighScore, k)

	_, err = ParseSortKey("favouriteColour")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	in := board(3, 2)
	assert.Len(t, Filter(in, "red"), 3)
	assert.Len(t, Filter(in, "blue"), 2)
	assert.Empty(t, Filter(in, "green"))
	assert.Equal(t, in, Filter(in, ""), "empty tribe passes through")
	assert.Empty(t, Filter(in, "Red"), "match is exact")
}

func TestSort_NumericAndStable(t *testing.T) {
	in := []types.Entry{
		entry("x:a", "red", 10),
		entry("x:b", "blue", 30),
		entry("x:c", "red", 10),
		entry("x:d", "blue", 20),
	}

	desc := Sort(in, SortHighScore, false)
	assert.Equal(t, []string{"x:b", "x:d", "x:a", "x:c"}, addresses(desc))

	asc := Sort(in, SortHighScore, true)
	assert.Equal(t, []string{"x:a", "x:c", "x:d", "x:b"}, addresses(asc))

	assert.Equal(t, []string{"x:a", "x:b", "x:c", "x:d"}, addresses(in), "input untouched")
}

func TestSort_Numeric_NotLexicographic(t *testing.T) {
	in := []types.Entry{entry("x:a", "", 9), entry("x:b", "", 100000)}
	out := Sort(in, SortHighScore, false)
	assert.Equal(t, int64(100000), out[0].HighScore)
}

func TestSort_StringKeyWithEmptyValues(t *testing.T) {
	in := []types.Entry{entry("x:a", "red", 1), entry("x:b", "", 2), entry("x:c", "blue", 3)}
	out := Sort(in, SortTribe, true)
	assert.Equal(t, []string{"", "blue", "red"}, []string{out[0].Tribe, out[1].Tribe, out[2].Tribe})
}

func TestSort_UnknownKeyKeepsOrder(t *testing.T) {
	in := board(2, 2)
	assert.Equal(t, in, Sort(in, SortKey("nope"), true))
}

func TestPaginate_Bounds(t *testing.T) {
	in := board(30, 0)

	p := Paginate(in, 1, 25)
	assert.Len(t, p.Entries, 25)
	assert.Equal(t, 30, p.Total)
	assert.Equal(t, 2, p.TotalPages)

	p = Paginate(in, 2, 25)
	assert.Len(t, p.Entries, 5)

	p = Paginate(in, 3, 25)
	assert.Empty(t, p.Entries)
	assert.NotNil(t, p.Entries)

	p = Paginate(in, 0, 25)
	assert.Equal(t, 1, p.Page)
	assert.Len(t, p.Entries, 25)

	p = Paginate(in, 1, 0)
	assert.Equal(t, DefaultPageSize, p.PageSize)
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate(nil, 1, 25)
	assert.Equal(t, 0, p.Total)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Entries)
}

func TestPaginate_HugePage(t *testing.T) {
	in := []types.Entry{entry("x:1", "red", 1)}

	for _, page := range []int{2, 368934881474191034, math.MaxInt} {
		p := Paginate(in, page, 25)
		assert.Empty(t, p.Entries, "page %d", page)
		assert.Equal(t, 1, p.TotalPages)
		assert.Equal(t, page, p.Page)
	}

	p := Paginate(in, 1, math.MaxInt)
	assert.Len(t, p.Entries, 1)
	assert.Equal(t, 1, p.TotalPages)
}

func TestPaginate_ConcatenationReproducesInput(t *testing.T) {
	for _, n := range []int{0, 1, 24, 25, 26, 49, 50, 51, 103} {
		for _, size := range []int{1, 7, 25} {
			in := Sort(board(n, 0), SortHighScore, false)
			first := Paginate(in, 1, size)
			wantPages := (n + size - 1) / size
			require.Equal(t, wantPages, first.TotalPages, "n=%d size=%d", n, size)

			var all []types.Entry
			for page := 1; page <= first.TotalPages; page++ {
				all = append(all, Paginate(in, page, size).Entries...)
			}
			if n == 0 {
				assert.Empty(t, all)
				continue
			}
			assert.Equal(t, in, all, "n=%d size=%d", n, size)
		}
	}
}

func TestRun_FilterSortPaginate(t *testing.T) {
	in := board(18, 12)

	p := Run(in, Params{Tribe: "red", SortBy: SortHighScore, Ascending: false, Page: 1, PageSize: 25})

	assert.Len(t, p.Entries, 18)
	assert.Equal(t, 18, p.Total)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, int64(17000), p.Entries[0].HighScore)
	for _, e := range p.Entries {
		assert.Equal(t, "red", e.Tribe)
		assert.NotEmpty(t, e.PlayerID, "Run normalizes")
	}
}

func TestRun_DefaultsToHighScoreDescending(t *testing.T) {
	p := Run(board(3, 0), Params{})
	assert.Equal(t, int64(2000), p.Entries[0].HighScore)
	assert.Equal(t, DefaultPageSize, p.PageSize)
}

func addresses(es []types.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Address
	}
	return out
}
