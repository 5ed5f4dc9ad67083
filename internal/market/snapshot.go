// Package market builds the descriptive KPI bundles (snapshots) and the
// second-order KPI library over canonical fact tables. All functions are
// pure: they never mutate the input view and return fresh values.
package market

import (
	"sort"

	"github.com/barzel-group/market-cli/internal/listing"
	"github.com/barzel-group/market-cli/internal/stats"
)

// minCorrPairs is the minimum paired observations for the pricing
// discipline correlation.
const minCorrPairs = 10

// Snapshot is the fixed bundle of descriptive KPIs for one view. Every
// metric is independently nullable: a nil KPI means "not computable from
// this view", which is distinct from zero.
type Snapshot struct {
	NObs int `json:"n_obs"`

	// Pricing.
	MedianPriceSqm     *float64 `json:"median_price_sqm"`
	P25PriceSqm        *float64 `json:"p25_price_sqm"`
	P75PriceSqm        *float64 `json:"p75_price_sqm"`
	PriceDispersionStd *float64 `json:"price_dispersion_std"`

	// Liquidity.
	MedianDOM              *float64 `json:"median_dom"`
	P25DOM                 *float64 `json:"p25_dom"`
	P75DOM                 *float64 `json:"p75_dom"`
	FastSaleRatio30        *float64 `json:"fast_sale_ratio_30d"`
	FastSaleRatio60        *float64 `json:"fast_sale_ratio_60d"`
	OverpricingPenaltyCorr *float64 `json:"overpricing_penalty_corr"`

	// Yield and vacancy.
	GrossYieldMedian      *float64 `json:"gross_yield_median"`
	NetYieldMedian        *float64 `json:"net_yield_median"`
	NetYieldDispersionStd *float64 `json:"net_yield_dispersion_std"`
	VacancyDaysMedian     *float64 `json:"vacancy_days_median"`
	VacancyDragMedian     *float64 `json:"vacancy_drag_median"`

	// Costs.
	ServiceChargeMedian        *float64 `json:"service_charge_median"`
	ServiceChargeDispersionStd *float64 `json:"service_charge_dispersion_std"`

	// Terrace.
	TerraceRate       *float64 `json:"terrace_rate"`
	TerraceSizeMedian *float64 `json:"terrace_size_median"`

	// Advanced (still factual).
	PriceConsistencyCV  *float64 `json:"price_consistency_cv"`
	LiquidityDepthRatio *float64 `json:"liquidity_depth_ratio"`
	YieldEfficiency     *float64 `json:"yield_efficiency_ratio"`
	VacancyDrag         *float64 `json:"vacancy_drag_index"`
	CostToYield         *float64 `json:"cost_to_yield_ratio"`
}

// BuildSnapshot computes the full KPI bundle for a view. Snapshots are
// recomputed on every call and never cached; the result is purely a
// function of the input rows.
func BuildSnapshot(view listing.FactTable) Snapshot {
	s := Snapshot{NObs: view.Len()}
	pricingKPIs(view, &s)
	liquidityKPIs(view, &s)
	yieldKPIs(view, &s)
	costKPIs(view, &s)
	terraceKPIs(view, &s)

	s.PriceConsistencyCV = PriceConsistencyIndex(view)
	s.LiquidityDepthRatio = LiquidityDepthRatio(view)
	s.YieldEfficiency = YieldEfficiencyRatio(view)
	s.VacancyDrag = VacancyDragIndex(view)
	s.CostToYield = CostToYieldRatio(view)
	return s
}

func pricingKPIs(view listing.FactTable, s *Snapshot) {
	price := stats.Compact(view.Numeric("price_per_sqm"))
	s.MedianPriceSqm = stats.Median(price)
	s.P25PriceSqm = stats.Quantile(price, 0.25)
	s.P75PriceSqm = stats.Quantile(price, 0.75)
	s.PriceDispersionStd = stats.Std(price)
}

func liquidityKPIs(view listing.FactTable, s *Snapshot) {
	domCol := view.Numeric("days_on_market")
	dom := stats.Compact(domCol)
	s.MedianDOM = stats.Median(dom)
	s.P25DOM = stats.Quantile(dom, 0.25)
	s.P75DOM = stats.Quantile(dom, 0.75)

	// Fast-sale ratios are fractions of the whole view, not of the rows
	// where DOM is known; both are computed over the same filtered view as
	// the other DOM metrics.
	if view.Len() > 0 {
		s.FastSaleRatio30 = fastSaleRatio(domCol, view.Len(), 30)
		s.FastSaleRatio60 = fastSaleRatio(domCol, view.Len(), 60)
	}

	price := view.Numeric("price_per_sqm")
	if stats.PairCount(price, domCol) >= minCorrPairs {
		s.OverpricingPenaltyCorr = stats.Pearson(price, domCol)
	}
}

func fastSaleRatio(dom []*float64, total int, cutoff float64) *float64 {
	fast := 0
	for _, d := range dom {
		if d != nil && *d <= cutoff {
			fast++
		}
	}
	r := float64(fast) / float64(total)
	return &r
}

func yieldKPIs(view listing.FactTable, s *Snapshot) {
	gross := view.Numeric("gross_yield")
	net := view.Numeric("net_yield")
	s.GrossYieldMedian = stats.Median(stats.Compact(gross))
	s.NetYieldMedian = stats.Median(stats.Compact(net))
	s.NetYieldDispersionStd = stats.Std(stats.Compact(net))
	s.VacancyDaysMedian = stats.Median(stats.Compact(view.Numeric("vacancy_days")))

	// Vacancy drag: median of gross - net over rows with both present.
	var diffs []float64
	for i := range view {
		if gross[i] != nil && net[i] != nil {
			diffs = append(diffs, *gross[i]-*net[i])
		}
	}
	s.VacancyDragMedian = stats.Median(diffs)
}

func costKPIs(view listing.FactTable, s *Snapshot) {
	charge := stats.Compact(view.Numeric("service_charge_psm_year"))
	s.ServiceChargeMedian = stats.Median(charge)
	s.ServiceChargeDispersionStd = stats.Std(charge)
}

func terraceKPIs(view listing.FactTable, s *Snapshot) {
	known, terraced := 0, 0
	for _, f := range view {
		if f.HasTerrace == nil {
			continue
		}
		known++
		if *f.HasTerrace {
			terraced++
		}
	}
	if known > 0 {
		r := float64(terraced) / float64(known)
		s.TerraceRate = &r
	}
	s.TerraceSizeMedian = stats.Median(stats.Compact(view.Numeric("terrace_size_sqm")))
}

// GroupedSnapshot pairs a snapshot with its grouping key.
type GroupedSnapshot struct {
	Key string `json:"key"`
	Snapshot
}

// SnapshotsBy computes one snapshot per distinct non-null value of the
// grouping column, ordered by sample size descending (key ascending on
// ties). No minimum-sample suppression happens here; flagging thin groups
// is presentation logic. An unknown column yields an empty table.
func SnapshotsBy(view listing.FactTable, column string) []GroupedSnapshot {
	keyOf, ok := listing.GroupKey(column)
	if !ok {
		return nil
	}

	groups := make(map[string]listing.FactTable)
	var order []string
	for _, f := range view {
		key := keyOf(f)
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	out := make([]GroupedSnapshot, 0, len(order))
	for _, key := range order {
		out = append(out, GroupedSnapshot{Key: key, Snapshot: BuildSnapshot(groups[key])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NObs != out[j].NObs {
			return out[i].NObs > out[j].NObs
		}
		return out[i].Key < out[j].Key
	})
	return out
}
