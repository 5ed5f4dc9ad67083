package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floats(vals ...float64) []*float64 {
	out := make([]*float64, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out
}

func TestCompact_DropsNilAndNonFinite(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	in := []*float64{Float(1), nil, &nan, Float(2), &inf}
	assert.Equal(t, []float64{1, 2}, Compact(in))
}

func TestMeanStdMedian_Empty(t *testing.T) {
	assert.Nil(t, Mean(nil))
	assert.Nil(t, Std(nil))
	assert.Nil(t, Median(nil))
	assert.Nil(t, Std([]float64{5})) // sample std undefined for n=1
}

func TestStd_SampleDenominator(t *testing.T) {
	got := Std([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NotNil(t, got)
	assert.InDelta(t, 2.138, *got, 0.001)
}

func TestQuantile_LinearInterpolation(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	q25 := Quantile(vals, 0.25)
	require.NotNil(t, q25)
	assert.InDelta(t, 1.75, *q25, 1e-9)

	med := Median(vals)
	require.NotNil(t, med)
	assert.InDelta(t, 2.5, *med, 1e-9)
}

func TestQuantiles_EmptyReturnsAllNilMapping(t *testing.T) {
	got := Quantiles(nil, 0.25, 0.5, 0.75)
	require.Len(t, got, 3)
	assert.Nil(t, got["q25"])
	assert.Nil(t, got["q50"])
	assert.Nil(t, got["q75"])
}

func TestWeightedMean(t *testing.T) {
	values := floats(10, 20, 30)
	weights := floats(1, 1, 2)
	got := WeightedMean(values, weights)
	require.NotNil(t, got)
	assert.InDelta(t, 22.5, *got, 1e-9)
}

func TestWeightedMean_SkipsNilAndNonPositiveWeights(t *testing.T) {
	values := []*float64{Float(10), Float(100), nil, Float(50)}
	weights := []*float64{Float(1), Float(0), Float(3), nil}
	got := WeightedMean(values, weights)
	require.NotNil(t, got)
	assert.InDelta(t, 10, *got, 1e-9)

	assert.Nil(t, WeightedMean(values, []*float64{nil, nil, nil, nil}))
}

func TestWeightedMedian_MatchesManualCumulativeWeight(t *testing.T) {
	// Sorted by value: (10,w5) (20,w1) (30,w2) (40,w1) (50,w1); total=10,
	// cutoff=5; cumulative weight reaches 5 at value 10.
	values := floats(40, 10, 50, 20, 30)
	weights := floats(1, 5, 1, 1, 2)
	got := WeightedMedian(values, weights)
	require.NotNil(t, got)
	assert.Equal(t, 10.0, *got)
}

func TestWeightedMedian_InvariantToRowOrder(t *testing.T) {
	values := floats(3, 1, 4, 1, 5)
	weights := floats(2, 1, 3, 2, 1)
	a := WeightedMedian(values, weights)

	valuesR := floats(5, 1, 4, 1, 3)
	weightsR := floats(1, 2, 3, 1, 2)
	b := WeightedMedian(valuesR, weightsR)

	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, *a, *b)
}

func TestWeightedMedian_NoEligibleRows(t *testing.T) {
	assert.Nil(t, WeightedMedian(nil, nil))
	assert.Nil(t, WeightedMedian(floats(1, 2), []*float64{Float(0), Float(-1)}))
}

func TestPearson(t *testing.T) {
	x := floats(1, 2, 3, 4, 5)
	y := floats(2, 4, 6, 8, 10)
	got := Pearson(x, y)
	require.NotNil(t, got)
	assert.InDelta(t, 1.0, *got, 1e-9)

	yNeg := floats(10, 8, 6, 4, 2)
	got = Pearson(x, yNeg)
	require.NotNil(t, got)
	assert.InDelta(t, -1.0, *got, 1e-9)
}

func TestPearson_ZeroVarianceIsNil(t *testing.T) {
	x := floats(1, 2, 3)
	flat := floats(5, 5, 5)
	assert.Nil(t, Pearson(x, flat))
}

func TestPearson_DropsUnpairedRows(t *testing.T) {
	x := []*float64{Float(1), nil, Float(3), Float(4)}
	y := []*float64{Float(1), Float(2), nil, Float(4)}
	got := Pearson(x, y)
	require.NotNil(t, got)
	assert.InDelta(t, 1.0, *got, 1e-9)
	assert.Equal(t, 2, PairCount(x, y))
}

func TestBucketize_RightClosedLowestInclusive(t *testing.T) {
	edges := []float64{0, 10, 20}
	labels := []string{"low", "high"}

	vals := []*float64{Float(0), Float(10), Float(10.5), Float(20), Float(25), nil}
	got := Bucketize(vals, edges, labels)
	assert.Equal(t, []string{"low", "low", "high", "high", "", ""}, got)
}
