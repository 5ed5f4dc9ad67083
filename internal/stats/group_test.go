package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupSamples(key string, n int, base float64) []Sample {
	out := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		v := base + float64(i)
		out = append(out, Sample{Key: key, Value: &v})
	}
	return out
}

func TestGroupStats_MinNBoundary(t *testing.T) {
	samples := append(groupSamples("nine", 9, 100), groupSamples("ten", 10, 200)...)

	got := GroupStats(samples, 10, false)
	require.Len(t, got, 1)
	assert.Equal(t, "ten", got[0].Key)
	assert.Equal(t, 10, got[0].N)
}

func TestGroupStats_ExcludedNotReportedAsZero(t *testing.T) {
	samples := groupSamples("thin", 3, 10)
	got := GroupStats(samples, 10, false)
	assert.Empty(t, got)
}

func TestGroupStats_NilValuesDontCount(t *testing.T) {
	samples := groupSamples("a", 9, 10)
	samples = append(samples, Sample{Key: "a", Value: nil})
	got := GroupStats(samples, 10, false)
	assert.Empty(t, got, "nil values must not count toward min_n")
}

func TestGroupStats_QuantilesAndMoments(t *testing.T) {
	samples := groupSamples("d", 11, 0) // 0..10
	got := GroupStats(samples, 10, false)
	require.Len(t, got, 1)

	g := got[0]
	require.NotNil(t, g.P10)
	assert.InDelta(t, 1.0, *g.P10, 1e-9)
	require.NotNil(t, g.P50)
	assert.InDelta(t, 5.0, *g.P50, 1e-9)
	require.NotNil(t, g.P90)
	assert.InDelta(t, 9.0, *g.P90, 1e-9)
	require.NotNil(t, g.Mean)
	assert.InDelta(t, 5.0, *g.Mean, 1e-9)
	require.NotNil(t, g.Std)
	assert.InDelta(t, 3.3166, *g.Std, 0.001)
	assert.Nil(t, g.WeightedMean)
}

func TestGroupStats_WeightedMean(t *testing.T) {
	var samples []Sample
	for i := 0; i < 10; i++ {
		v := float64(10 + i)
		w := 1.0
		if i == 9 {
			w = 10
		}
		samples = append(samples, Sample{Key: "w", Value: &v, Weight: &w})
	}
	got := GroupStats(samples, 10, true)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].WeightedMean)
	// sum(v*w) = 10+11+...+18 + 19*10 = 126 + 190 = 316; sum(w) = 19.
	assert.InDelta(t, 316.0/19.0, *got[0].WeightedMean, 1e-9)
}

func TestGroupStats_OrderedBySizeDescending(t *testing.T) {
	samples := append(groupSamples("small", 10, 0), groupSamples("big", 20, 0)...)
	samples = append(samples, groupSamples("mid", 15, 0)...)

	got := GroupStats(samples, 10, false)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"big", "mid", "small"}, []string{got[0].Key, got[1].Key, got[2].Key})
}

type fakeSource struct {
	total   int
	nonNull map[string]int
}

func (f fakeSource) Len() int                  { return f.total }
func (f fakeSource) HasColumn(name string) bool { _, ok := f.nonNull[name]; return ok }
func (f fakeSource) NonNull(name string) int   { return f.nonNull[name] }

func TestCoverageTable_SortedAscendingWithAbsentColumns(t *testing.T) {
	src := fakeSource{total: 10, nonNull: map[string]int{"full": 10, "half": 5}}

	got := CoverageTable(src, []string{"full", "missing", "half"})
	require.Len(t, got, 3)

	assert.Equal(t, "missing", got[0].Column)
	assert.Equal(t, 0.0, got[0].Coverage)
	assert.Equal(t, 0, got[0].NonNull)

	assert.Equal(t, "half", got[1].Column)
	assert.InDelta(t, 0.5, got[1].Coverage, 1e-9)

	assert.Equal(t, "full", got[2].Column)
	assert.InDelta(t, 1.0, got[2].Coverage, 1e-9)
}

func TestCoverageTable_EmptyTable(t *testing.T) {
	src := fakeSource{total: 0, nonNull: map[string]int{"col": 0}}
	got := CoverageTable(src, []string{"col"})
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Coverage)
}

func TestGroupStats_CompositeKeys(t *testing.T) {
	var samples []Sample
	for d := 0; d < 2; d++ {
		for b := 0; b < 2; b++ {
			key := fmt.Sprintf("D%d|B%d", d, b)
			samples = append(samples, groupSamples(key, 10+d+b, float64(d*100))...)
		}
	}
	got := GroupStats(samples, 10, false)
	assert.Len(t, got, 4)
	assert.Equal(t, "D1|B1", got[0].Key)
}
