package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribeboard/tribeboard/pkg/types"
)

func TestComputeTribeStats(t *testing.T) {
	in := []types.Entry{
		entry("x:1", "red", 0),
		entry("x:2", "red", 1500),
		entry("x:3", "red", 2000),
		entry("x:4", "red", 0),
		entry("x:5", "blue", 999999),
	}
	st := ComputeTribeStats(in, "red")

	assert.Equal(t, "50.0% (2/4)", st.PercentScored)
	assert.Equal(t, "875", st.AvgScore)
	assert.Equal(t, 2, st.Scored)
	assert.Equal(t, 4, st.Players)
}

func TestComputeTribeStats_ThousandsSeparator(t *testing.T) {
	in := []types.Entry{entry("x:1", "gold", 1234567), entry("x:2", "gold", 1234568)}
	st := ComputeTribeStats(in, "gold")
	assert.Equal(t, "1,234,568", st.AvgScore)
	assert.Equal(t, "100.0% (2/2)", st.PercentScored)
}

func TestComputeTribeStats_RoundsHalfToEven(t *testing.T) {
	in := []types.Entry{entry("x:1", "red", 2), entry("x:2", "red", 3)}
	assert.Equal(t, "2", ComputeTribeStats(in, "red").AvgScore)

	in = []types.Entry{entry("x:1", "red", 4), entry("x:2", "red", 5)}
	assert.Equal(t, "4", ComputeTribeStats(in, "red").AvgScore)

	in = []types.Entry{entry("x:1", "red", 5), entry("x:2", "red", 6)}
	assert.Equal(t, "6", ComputeTribeStats(in, "red").AvgScore)
}

func TestComputeTribeStats_Empty(t *testing.T) {
	in := []types.Entry{entry("x:1", "red", 10)}

	for _, tribe := range []string{"green", ""} {
		st := ComputeTribeStats(in, tribe)
		assert.Equal(t, "0% (0/0)", st.PercentScored)
		assert.Equal(t, "0", st.AvgScore)
	}
	st := ComputeTribeStats(nil, "red")
	assert.Equal(t, "0% (0/0)", st.PercentScored)
	assert.Equal(t, "0", st.AvgScore)
}

func TestTeamStats(t *testing.T) {
	in := []types.Entry{
		entry("x:1", "red", 100),
		entry("x:2", "red", 300),
		entry("x:3", "blue", 5000),
		entry("x:4", "gold", 0),
	}
	got := TeamStats(in)
	require.Len(t, got, 3)

	assert.Equal(t, "blue", got[0].Tribe)
	assert.Equal(t, "5,000", got[0].AverageDisplay)
	assert.Equal(t, "red", got[1].Tribe)
	assert.Equal(t, 200.0, got[1].Average)
	assert.Equal(t, int64(300), got[1].Highest)
	assert.Equal(t, 2, got[1].Players)
	assert.Equal(t, "gold", got[2].Tribe)
}

func TestTeamStats_Empty(t *testing.T) {
	assert.Empty(t, TeamStats(nil))
}

func TestVoteOffList(t *testing.T) {
	in := []types.Entry{
		{Address: "x:1", Tribe: "red", HighScore: 50},
		{Address: "x:2", Tribe: "red", HighScore: 200000},
	}
	got := VoteOffList(in, "red", 100000)
	assert.Equal(t, []VoteOff{{PlayerID: "1", HighScore: 50}}, got)
}

func TestVoteOffList_OrderAndFallbacks(t *testing.T) {
	in := []types.Entry{
		{Address: "x:9", Tribe: "red", HighScore: 70000},
		{Address: "solo", Tribe: "red", HighScore: 10},
		{WalletAddress: "w:7", Tribe: "red", HighScore: 500},
		{Address: "x:8", Tribe: "blue", HighScore: 1},
		{Address: "x:6", Tribe: "red", HighScore: 100000},
	}
	got := VoteOffList(in, "red", 0)
	assert.Equal(t, []VoteOff{
		{PlayerID: UnknownPlayerID, HighScore: 10},
		{PlayerID: "7", HighScore: 500},
		{PlayerID: "9", HighScore: 70000},
	}, got)
}

func TestVoteOffList_NoneQualify(t *testing.T) {
	got := VoteOffList([]types.Entry{entry("x:1", "red", 500000)}, "red", 100000)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
