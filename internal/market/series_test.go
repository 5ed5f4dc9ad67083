package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barzel-group/market-cli/internal/listing"
)

func seen(year int, month time.Month, day int) *time.Time {
	return tp(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func TestMonthlyMedianPrice(t *testing.T) {
	view := listing.FactTable{
		{FirstSeen: seen(2025, time.March, 5), PricePerSqm: fp(10000)},
		{FirstSeen: seen(2025, time.January, 12), PricePerSqm: fp(9000)},
		{FirstSeen: seen(2025, time.January, 28), PricePerSqm: fp(9400)},
		{FirstSeen: seen(2025, time.March, 20), PricePerSqm: fp(11000)},
		{FirstSeen: seen(2025, time.February, 1)},  // no price, skipped
		{PricePerSqm: fp(99999)},                   // no date, skipped
	}

	got := MonthlyMedianPrice(view)
	require.Len(t, got, 2)

	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), got[0].Month)
	assert.InDelta(t, 9200, got[0].Median, 1e-9)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), got[1].Month)
	assert.InDelta(t, 10500, got[1].Median, 1e-9)
}

func TestMonthlyMedianPrice_BucketsByUTCMonth(t *testing.T) {
	// Local Jan 31 23:00 in UTC+4 is Jan 31 19:00 UTC; local Feb 1 02:00
	// in UTC+4 is still Jan 31 22:00 UTC.
	gulf := time.FixedZone("GST", 4*3600)
	view := listing.FactTable{
		{FirstSeen: tp(time.Date(2025, time.February, 1, 2, 0, 0, 0, gulf)), PricePerSqm: fp(9000)},
	}
	got := MonthlyMedianPrice(view)
	require.Len(t, got, 1)
	assert.Equal(t, time.January, got[0].Month.Month())
}

func TestMonthlyMedianPrice_Empty(t *testing.T) {
	assert.Nil(t, MonthlyMedianPrice(nil))
	assert.Nil(t, MonthlyMedianPrice(listing.FactTable{{PricePerSqm: fp(9000)}}))
}

func floorRow(floor, price, size float64) listing.Fact {
	return listing.Fact{Floor: fp(floor), PricePerSqm: fp(price), SizeSqm: fp(size)}
}

func TestFloorWeightedPrice_BandOrderAndOmittedEmpties(t *testing.T) {
	view := listing.FactTable{
		floorRow(55, 14000, 100),
		floorRow(3, 9000, 80),
		floorRow(12, 11000, 90),
		floorRow(5, 9500, 120), // band edge: floor 5 is still "1-5"
	}
	got := FloorWeightedPrice(view)
	require.Len(t, got, 3)

	assert.Equal(t, "1-5", got[0].Bucket)
	assert.Equal(t, 2, got[0].N)
	assert.Equal(t, "11-20", got[1].Bucket)
	assert.Equal(t, "50+", got[2].Bucket)
}

func TestFloorWeightedPrice_WeightedBySize(t *testing.T) {
	// One big cheap unit dominates two small expensive ones.
	view := listing.FactTable{
		floorRow(2, 8000, 300),
		floorRow(3, 12000, 50),
		floorRow(4, 13000, 50),
	}
	got := FloorWeightedPrice(view)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].WeightedPriceSqm)
	assert.InDelta(t, 8000, *got[0].WeightedPriceSqm, 1e-9)
}

func TestFloorWeightedPrice_SkipsIncompleteRows(t *testing.T) {
	view := listing.FactTable{
		{Floor: fp(2), PricePerSqm: fp(9000)},               // no size
		{Floor: fp(2), SizeSqm: fp(100)},                    // no price
		{PricePerSqm: fp(9000), SizeSqm: fp(100)},           // no floor
		{Floor: fp(2), PricePerSqm: fp(9000), SizeSqm: fp(0)}, // zero size
	}
	assert.Empty(t, FloorWeightedPrice(view))
}

func TestFloorBucketEdges(t *testing.T) {
	cases := map[float64]string{
		1: "1-5", 5: "1-5", 6: "6-10", 10: "6-10", 11: "11-20",
		20: "11-20", 21: "21-30", 40: "31-40", 50: "41-50", 51: "50+",
	}
	for floor, want := range cases {
		assert.Equal(t, want, floorBucket(floor), "floor %v", floor)
	}
}
