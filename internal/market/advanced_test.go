package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barzel-group/market-cli/internal/listing"
)

func TestPriceConsistencyIndex(t *testing.T) {
	nine := priceRows("d", 9000, 9100, 9200, 9300, 9400, 9500, 9600, 9700, 9800)
	assert.Nil(t, PriceConsistencyIndex(nine))

	ten := append(nine, listing.Fact{District: "d", PricePerSqm: fp(9900)})
	got := PriceConsistencyIndex(ten)
	require.NotNil(t, got)
	// std(9000..9900 step 100) = 302.765, mean = 9450.
	assert.InDelta(t, 302.765/9450.0, *got, 0.0001)
}

func TestIntraBuildingDispersion_Ordering(t *testing.T) {
	var view listing.FactTable
	add := func(building string, prices ...float64) {
		for _, p := range prices {
			view = append(view, listing.Fact{Building: building, PricePerSqm: fp(p)})
		}
	}
	add("Tight", 10000, 10010, 10020)   // n=3, tiny CV
	add("Wild", 8000, 12000, 16000)     // n=3, big CV
	add("Small", 9000, 9100)            // n=2
	add("Lone", 9000)                   // n=1, std undefined -> CV nil
	view = append(view, listing.Fact{Building: "NoPrice"}) // skipped entirely

	got := IntraBuildingDispersion(view)
	require.Len(t, got, 4)

	// Same n: lower CV first.
	assert.Equal(t, "Tight", got[0].Building)
	assert.Equal(t, "Wild", got[1].Building)
	assert.Equal(t, "Small", got[2].Building)
	assert.Equal(t, "Lone", got[3].Building)
	assert.Nil(t, got[3].CVPrice)
	assert.Nil(t, got[3].StdPriceSqm)

	require.NotNil(t, got[1].CVPrice)
	// CV is std over median: std = 4000, median = 12000.
	assert.InDelta(t, 4000.0/12000.0, *got[1].CVPrice, 1e-9)
}

func TestLiquidityDepthRatio(t *testing.T) {
	view := listing.FactTable{
		{DaysOnMarket: fp(10)},
		{DaysOnMarket: fp(20)},
		{DaysOnMarket: fp(30)},
		{}, // counts toward depth even without DOM
	}
	got := LiquidityDepthRatio(view)
	require.NotNil(t, got)
	assert.InDelta(t, 4.0/20.0, *got, 1e-9)
}

func TestLiquidityDepthRatio_ZeroMedianIsNil(t *testing.T) {
	view := listing.FactTable{{DaysOnMarket: fp(0)}, {DaysOnMarket: fp(0)}}
	assert.Nil(t, LiquidityDepthRatio(view))
}

func TestYieldEfficiencyRatio(t *testing.T) {
	var view listing.FactTable
	for i := 0; i < 10; i++ {
		view = append(view, listing.Fact{
			PricePerSqm: fp(9000 + float64(i)*100),
			NetYield:    fp(5 + float64(i)*0.1),
		})
	}
	got := YieldEfficiencyRatio(view)
	require.NotNil(t, got)
	// median net = 5.45, price std = 302.765.
	assert.InDelta(t, 5.45/302.765, *got, 0.0001)

	assert.Nil(t, YieldEfficiencyRatio(view[:9]), "below the observation floor")
}

func TestYieldEfficiencyRatio_FlatPricesNil(t *testing.T) {
	var view listing.FactTable
	for i := 0; i < 10; i++ {
		view = append(view, listing.Fact{PricePerSqm: fp(9000), NetYield: fp(5)})
	}
	assert.Nil(t, YieldEfficiencyRatio(view))
}

func TestCostToYieldRatio_NegativeYieldUsesMagnitude(t *testing.T) {
	var view listing.FactTable
	for i := 0; i < 10; i++ {
		view = append(view, listing.Fact{
			ServiceChargeSqmYear: fp(120),
			NetYield:             fp(-4),
		})
	}
	got := CostToYieldRatio(view)
	require.NotNil(t, got)
	assert.InDelta(t, 30, *got, 1e-9)
}

func TestCostToYieldRatio_ZeroYieldNil(t *testing.T) {
	var view listing.FactTable
	for i := 0; i < 10; i++ {
		view = append(view, listing.Fact{ServiceChargeSqmYear: fp(120), NetYield: fp(0)})
	}
	assert.Nil(t, CostToYieldRatio(view))
}

func TestTypologyConcentration_Bedrooms(t *testing.T) {
	view := listing.FactTable{
		{Bedrooms: "2"},
		{Bedrooms: "1"},
		{Bedrooms: "2"},
		{Bedrooms: ""},
	}
	got := TypologyConcentration(view)
	require.Len(t, got, 3)
	assert.Equal(t, TypologyShare{Category: "2", Count: 2, Share: 0.5}, got[0])
	// Unknown is a real bucket, not dropped.
	cats := []string{got[1].Category, got[2].Category}
	assert.Contains(t, cats, "1")
	assert.Contains(t, cats, "Unknown")
}

func TestTypologyConcentration_PropertyTypeFallback(t *testing.T) {
	view := listing.FactTable{
		{PropertyType: "Apartment"},
		{PropertyType: "Apartment"},
		{PropertyType: "Villa"},
	}
	got := TypologyConcentration(view)
	require.Len(t, got, 2)
	assert.Equal(t, "Apartment", got[0].Category)
	assert.InDelta(t, 2.0/3.0, got[0].Share, 1e-9)
}

func TestComputeTerracePremium(t *testing.T) {
	var view listing.FactTable
	for i := 0; i < 25; i++ {
		view = append(view, listing.Fact{PricePerSqm: fp(15000), HasTerrace: bp(true)})
		view = append(view, listing.Fact{PricePerSqm: fp(12000), HasTerrace: bp(false)})
	}
	got := ComputeTerracePremium(view)
	require.NotNil(t, got.PremiumAbs)
	assert.InDelta(t, 3000, *got.PremiumAbs, 1e-9)
	require.NotNil(t, got.PremiumPct)
	assert.InDelta(t, 0.25, *got.PremiumPct, 1e-9)
}

func TestComputeTerracePremium_BelowSampleFloor(t *testing.T) {
	var view listing.FactTable
	for i := 0; i < 19; i++ {
		flag := i%2 == 0
		view = append(view, listing.Fact{PricePerSqm: fp(10000), HasTerrace: bp(flag)})
	}
	got := ComputeTerracePremium(view)
	assert.Nil(t, got.PremiumAbs)
	assert.Nil(t, got.PremiumPct)
}

func TestComputeTerracePremium_RowsMissingEitherFieldDontCount(t *testing.T) {
	var view listing.FactTable
	for i := 0; i < 10; i++ {
		view = append(view, listing.Fact{PricePerSqm: fp(15000), HasTerrace: bp(true)})
		view = append(view, listing.Fact{PricePerSqm: fp(12000), HasTerrace: bp(false)})
	}
	// 20 complete rows qualifies; dropping one field from one row does not.
	got := ComputeTerracePremium(view)
	require.NotNil(t, got.PremiumAbs)

	view[0].HasTerrace = nil
	got = ComputeTerracePremium(view)
	assert.Nil(t, got.PremiumAbs)
}
