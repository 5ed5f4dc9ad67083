package market

import (
	"math"
	"sort"

	"github.com/barzel-group/market-cli/internal/listing"
	"github.com/barzel-group/market-cli/internal/stats"
)

const (
	minConsistencyObs = 10
	minEfficiencyObs  = 10
	minTerracePairs   = 20
	minCostToYieldObs = 10
)

// PriceConsistencyIndex is the coefficient of variation (std/mean) of
// price_per_sqm. Lower means more consistent pricing. Nil below 10
// observations or when the mean is not positive.
func PriceConsistencyIndex(view listing.FactTable) *float64 {
	price := stats.Compact(view.Numeric("price_per_sqm"))
	if len(price) < minConsistencyObs {
		return nil
	}
	mean := *stats.Mean(price)
	if mean <= 0 {
		return nil
	}
	std := stats.Std(price)
	if std == nil {
		return nil
	}
	cv := *std / mean
	return &cv
}

// BuildingDispersion is the per-building pricing spread row.
type BuildingDispersion struct {
	Building       string   `json:"building_name"`
	NObs           int      `json:"n_obs"`
	MedianPriceSqm *float64 `json:"median_price_sqm"`
	StdPriceSqm    *float64 `json:"std_price_sqm"`
	CVPrice        *float64 `json:"cv_price"`
}

// IntraBuildingDispersion reports price_per_sqm spread within each building,
// ordered by (n desc, CV asc): well-sampled buildings with unusually
// inconsistent pricing surface first.
func IntraBuildingDispersion(view listing.FactTable) []BuildingDispersion {
	groups := make(map[string][]float64)
	var order []string
	for _, f := range view {
		if f.Building == "" || f.PricePerSqm == nil {
			continue
		}
		if _, seen := groups[f.Building]; !seen {
			order = append(order, f.Building)
		}
		groups[f.Building] = append(groups[f.Building], *f.PricePerSqm)
	}

	out := make([]BuildingDispersion, 0, len(order))
	for _, b := range order {
		price := groups[b]
		row := BuildingDispersion{
			Building:       b,
			NObs:           len(price),
			MedianPriceSqm: stats.Median(price),
			StdPriceSqm:    stats.Std(price),
		}
		if row.StdPriceSqm != nil && row.MedianPriceSqm != nil && *row.MedianPriceSqm != 0 {
			cv := *row.StdPriceSqm / *row.MedianPriceSqm
			row.CVPrice = &cv
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NObs != out[j].NObs {
			return out[i].NObs > out[j].NObs
		}
		ci, cj := out[i].CVPrice, out[j].CVPrice
		switch {
		case ci == nil && cj == nil:
			return out[i].Building < out[j].Building
		case ci == nil:
			return false
		case cj == nil:
			return true
		default:
			return *ci < *cj
		}
	})
	return out
}

// LiquidityDepthRatio is listings count over median days on market; a
// higher value means deeper liquidity. Nil when the DOM median is missing
// or non-positive.
func LiquidityDepthRatio(view listing.FactTable) *float64 {
	med := stats.Median(stats.Compact(view.Numeric("days_on_market")))
	if med == nil || *med <= 0 {
		return nil
	}
	r := float64(view.Len()) / *med
	return &r
}

// YieldEfficiencyRatio is median net yield per unit of price volatility.
// Nil when either series has fewer than 10 values or the volatility is not
// positive.
func YieldEfficiencyRatio(view listing.FactTable) *float64 {
	net := stats.Compact(view.Numeric("net_yield"))
	price := stats.Compact(view.Numeric("price_per_sqm"))
	if len(net) < minEfficiencyObs || len(price) < minEfficiencyObs {
		return nil
	}
	vol := stats.Std(price)
	if vol == nil || *vol <= 0 {
		return nil
	}
	r := *stats.Median(net) / *vol
	return &r
}

// VacancyDragIndex is the median of gross - net yield over rows with both
// present; higher means more drag.
func VacancyDragIndex(view listing.FactTable) *float64 {
	var diffs []float64
	for _, f := range view {
		if f.GrossYield != nil && f.NetYield != nil {
			diffs = append(diffs, *f.GrossYield-*f.NetYield)
		}
	}
	return stats.Median(diffs)
}

// CostToYieldRatio relates median service charge to the absolute median net
// yield. Not precise economics, but it flags high-cost-low-return pockets.
func CostToYieldRatio(view listing.FactTable) *float64 {
	charge := stats.Compact(view.Numeric("service_charge_psm_year"))
	net := stats.Compact(view.Numeric("net_yield"))
	if len(charge) < minCostToYieldObs || len(net) < minCostToYieldObs {
		return nil
	}
	netMed := *stats.Median(net)
	if netMed == 0 || math.IsNaN(netMed) || math.IsInf(netMed, 0) {
		return nil
	}
	r := *stats.Median(charge) / math.Abs(netMed)
	return &r
}

// TypologyShare is one bedroom-category (or property-type fallback) slice.
type TypologyShare struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"`
}

// TypologyConcentration counts rows per bedroom category, falling back to
// property_type when bedrooms is entirely absent. Rows without either are
// grouped under "Unknown". Ordered by count descending.
func TypologyConcentration(view listing.FactTable) []TypologyShare {
	keyOf := func(f listing.Fact) string { return f.Bedrooms }
	if view.NonNull("bedrooms") == 0 {
		keyOf = func(f listing.Fact) string { return f.PropertyType }
	}

	counts := make(map[string]int)
	var order []string
	for _, f := range view {
		key := keyOf(f)
		if key == "" {
			key = "Unknown"
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	if len(order) == 0 {
		return nil
	}

	out := make([]TypologyShare, 0, len(order))
	for _, key := range order {
		out = append(out, TypologyShare{
			Category: key,
			Count:    counts[key],
			Share:    float64(counts[key]) / float64(view.Len()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TerracePremium is the price_per_sqm premium of terraced over
// non-terraced listings.
type TerracePremium struct {
	PremiumAbs *float64 `json:"premium_abs"`
	PremiumPct *float64 `json:"premium_pct"`
}

// ComputeTerracePremium compares median price_per_sqm of terraced vs
// non-terraced rows. Nil when fewer than 20 rows carry both fields, either
// median is missing, or the non-terraced median is zero.
func ComputeTerracePremium(view listing.FactTable) TerracePremium {
	var with, without []float64
	for _, f := range view {
		if f.PricePerSqm == nil || f.HasTerrace == nil {
			continue
		}
		if *f.HasTerrace {
			with = append(with, *f.PricePerSqm)
		} else {
			without = append(without, *f.PricePerSqm)
		}
	}
	if len(with)+len(without) < minTerracePairs {
		return TerracePremium{}
	}
	a, b := stats.Median(with), stats.Median(without)
	if a == nil || b == nil || *b == 0 {
		return TerracePremium{}
	}
	abs := *a - *b
	pct := abs / *b
	return TerracePremium{PremiumAbs: &abs, PremiumPct: &pct}
}
