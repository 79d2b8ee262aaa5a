package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeriesFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float32
	}{
		{"01.", 1.0},
		{".5", 0.5},
		{"12", 12.0},
		{"3.52", 3.52},
	}
	for _, c := range cases {
		got, err := parseSeriesFloat(c.in)
		require.NoError(t, err)
		assert.InDelta(t, c.want, got, 0.0001, "parseSeriesFloat(%q)", c.in)
	}
}

func TestParseSeriesEntryRange(t *testing.T) {
	e, err := parseSeriesEntry("01.-3.52")
	require.NoError(t, err)
	assert.Equal(t, SeriesRange, e.Kind)
	assert.InDelta(t, 1.0, e.Num, 0.0001)
	assert.InDelta(t, 3.52, e.End, 0.0001)
}

func TestParseSeriesEntryPart(t *testing.T) {
	e, err := parseSeriesEntry(".5 p 32.")
	require.NoError(t, err)
	assert.Equal(t, SeriesPart, e.Kind)
	assert.InDelta(t, 0.5, e.Num, 0.0001)
	assert.InDelta(t, 32.0, e.End, 0.0001)
}

func TestParseSeriesEntriesEmpty(t *testing.T) {
	entries, err := ParseSeriesEntries("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseSeriesEntriesSortedOrder(t *testing.T) {
	entries, err := ParseSeriesEntries("1p2,1,1p1,2,1-2")
	require.NoError(t, err)
	entries.Sort()

	require.Len(t, entries, 5)
	want := []SeriesEntry{
		{Kind: SeriesNum, Num: 1.0},
		{Kind: SeriesPart, Num: 1.0, End: 1.0},
		{Kind: SeriesPart, Num: 1.0, End: 2.0},
		{Kind: SeriesRange, Num: 1.0, End: 2.0},
		{Kind: SeriesNum, Num: 2.0},
	}
	for i, w := range want {
		assert.Equal(t, w.Kind, entries[i].Kind, "entry %d kind", i)
		assert.InDelta(t, w.Num, entries[i].Num, 0.0001, "entry %d Num", i)
		assert.InDelta(t, w.End, entries[i].End, 0.0001, "entry %d End", i)
	}
}

func TestSeriesEntryContains(t *testing.T) {
	entries, err := ParseSeriesEntries("1-3,5")
	require.NoError(t, err)
	assert.True(t, entries.Contains(1))
	assert.True(t, entries.Contains(2.5))
	assert.True(t, entries.Contains(3))
	assert.False(t, entries.Contains(4))
	assert.True(t, entries.Contains(5))
}

func TestParseSeriesEntryInvalid(t *testing.T) {
	_, err := parseSeriesEntry("abc")
	require.Error(t, err)
}
