// Package scoring implements the document-only percentile scoring model.
//
// A view's median KPI values are located within the full market's
// distributions and converted to percentile ranks, then to bounded pillar
// points (0-25 each, total 0-100). The engine is state-free: both inputs
// are read-only and every call recomputes from scratch, so the interactive
// surface and the generated document always agree.
package scoring

import (
	"github.com/barzel-group/market-cli/internal/listing"
	"github.com/barzel-group/market-cli/internal/market"
	"github.com/barzel-group/market-cli/internal/stats"
)

const (
	// minReferenceN is the smallest market distribution a percentile may be
	// read against.
	minReferenceN = 10
	// minDistrictRows is the smallest view a per-district score is
	// computed for.
	minDistrictRows = 10
	// Trend requires a real time series: at least this many dated rows
	// spanning at least this many distinct months.
	minTrendRows   = 30
	minTrendMonths = 6

	pillarPoints = 25.0
)

// Pillar names as rendered in the document.
const (
	PillarLiquidity = "Liquidity"
	PillarYield     = "Yield"
	PillarRisk      = "Risk"
	PillarTrend     = "Trend"
)

// Scores holds the four pillar scores (0-25 each, nil when no constituent
// KPI could be computed) and their total (0-100). Nil pillars are
// additively absent from the total: they do not drag the others down.
type Scores struct {
	Liquidity *float64 `json:"liquidity"`
	Yield     *float64 `json:"yield"`
	Risk      *float64 `json:"risk"`
	Trend     *float64 `json:"trend"`
	Total     float64  `json:"total"`
}

// Inputs are the view-side central values fed into the percentile lookups,
// exposed for auditable reporting.
type Inputs struct {
	PriceMedian     *float64 `json:"price_median"`
	DOMMedian       *float64 `json:"dom_median"`
	NetYieldMedian  *float64 `json:"net_yield_median"`
	VacancyMedian   *float64 `json:"vacancy_median"`
	PriceVolatility *float64 `json:"price_volatility"`
	TrendMomentum   *float64 `json:"trend_momentum"`
}

// ReferenceSizes are the market-side sample sizes behind each percentile.
type ReferenceSizes struct {
	Price   int `json:"price"`
	DOM     int `json:"dom"`
	Yield   int `json:"yield"`
	Vacancy int `json:"vacancy"`
	Risk    int `json:"risk"`
	Trend   int `json:"trend"`
}

// DetailRow is one KPI line of the scoring breakdown: raw value, percentile
// rank against the market distribution, and derived points.
type DetailRow struct {
	Pillar     string   `json:"pillar"`
	KPI        string   `json:"kpi"`
	Value      *float64 `json:"value"`
	Percentile *float64 `json:"pct"`
	Points     *float64 `json:"points"`
	RefN       int      `json:"ref_n"`
}

// Details is the fully transparent scoring breakdown. Its Totals are the
// same values Score returns for the same input pair.
type Details struct {
	Inputs         Inputs         `json:"inputs"`
	ReferenceSizes ReferenceSizes `json:"reference_sizes"`
	Rows           []DetailRow    `json:"rows"`
	Totals         Scores         `json:"totals"`
}

// Score computes the four pillar scores and total for a view against the
// full market. Neither table is mutated.
func Score(all, view listing.FactTable) Scores {
	return ScoreDetails(all, view).Totals
}

// ScoreDetails computes the same scores as Score along with the per-KPI
// breakdown. Both paths share one evaluation, so percentiles and points are
// identical wherever both are rendered.
func ScoreDetails(all, view listing.FactTable) Details {
	// Market reference distributions.
	priceAll := stats.Compact(all.Numeric("price_per_sqm"))
	domAll := stats.Compact(all.Numeric("days_on_market"))
	netAll := stats.Compact(all.Numeric("net_yield"))
	vacAll := stats.Compact(all.Numeric("vacancy_days"))
	riskRef := districtPriceStds(all)
	trendRef := districtMomentums(all)

	// View central values.
	in := Inputs{
		PriceMedian:     stats.Median(stats.Compact(view.Numeric("price_per_sqm"))),
		DOMMedian:       stats.Median(stats.Compact(view.Numeric("days_on_market"))),
		NetYieldMedian:  stats.Median(stats.Compact(view.Numeric("net_yield"))),
		VacancyMedian:   stats.Median(stats.Compact(view.Numeric("vacancy_days"))),
		PriceVolatility: stats.Std(stats.Compact(view.Numeric("price_per_sqm"))),
		TrendMomentum:   Momentum(view),
	}

	rows := []DetailRow{
		kpiRow(PillarLiquidity, "Days on market (median)", in.DOMMedian, domAll, false),
		kpiRow(PillarLiquidity, "Vacancy days (median)", in.VacancyMedian, vacAll, false),
		kpiRow(PillarYield, "Net yield (median)", in.NetYieldMedian, netAll, true),
		kpiRow(PillarRisk, "Price dispersion (district volatility)", in.PriceVolatility, riskRef, false),
		kpiRow(PillarTrend, "Price momentum (6m+)", in.TrendMomentum, trendRef, true),
	}

	totals := Scores{
		Liquidity: pillarScore(rows, PillarLiquidity),
		Yield:     pillarScore(rows, PillarYield),
		Risk:      pillarScore(rows, PillarRisk),
		Trend:     pillarScore(rows, PillarTrend),
	}
	for _, p := range []*float64{totals.Liquidity, totals.Yield, totals.Risk, totals.Trend} {
		if p != nil {
			totals.Total += *p
		}
	}

	return Details{
		Inputs: in,
		ReferenceSizes: ReferenceSizes{
			Price:   len(priceAll),
			DOM:     len(domAll),
			Yield:   len(netAll),
			Vacancy: len(vacAll),
			Risk:    len(riskRef),
			Trend:   len(trendRef),
		},
		Rows:   rows,
		Totals: totals,
	}
}

// DistrictScores pairs one district with its score tuple.
type DistrictScores struct {
	District string `json:"district"`
	Scores
}

// ScoresByDistrict scores each named district's slice of the view against
// the full market. Districts default to all distinct districts present in
// the view; districts with fewer than 10 view rows are skipped entirely.
func ScoresByDistrict(all, view listing.FactTable, districts []string) []DistrictScores {
	if len(districts) == 0 {
		districts = view.Districts()
	}
	out := make([]DistrictScores, 0, len(districts))
	for _, d := range districts {
		sub := view.WhereDistricts(d)
		if sub.Len() < minDistrictRows {
			continue
		}
		out = append(out, DistrictScores{District: d, Scores: Score(all, sub)})
	}
	return out
}

// kpiRow evaluates one KPI against its reference distribution. The
// percentile is the inclusive fraction of reference values <= the view
// value, inverted when lower is better. Below minReferenceN reference
// values, or without a view value, percentile and points stay nil and the
// KPI is excluded from its pillar mean (not treated as zero).
func kpiRow(pillar, kpi string, value *float64, ref []float64, higherBetter bool) DetailRow {
	row := DetailRow{Pillar: pillar, KPI: kpi, Value: value, RefN: len(ref)}
	pct := percentileScore(ref, value, higherBetter)
	if pct == nil {
		return row
	}
	points := pillarPoints * *pct
	row.Percentile = pct
	row.Points = &points
	return row
}

func percentileScore(ref []float64, value *float64, higherBetter bool) *float64 {
	if len(ref) < minReferenceN || value == nil {
		return nil
	}
	le := 0
	for _, r := range ref {
		if r <= *value {
			le++
		}
	}
	pct := float64(le) / float64(len(ref))
	if !higherBetter {
		pct = 1 - pct
	}
	pct = clip01(pct)
	return &pct
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// pillarScore is the mean of the pillar's non-nil KPI points; nil when all
// constituents are nil.
func pillarScore(rows []DetailRow, pillar string) *float64 {
	var sum float64
	var n int
	for _, row := range rows {
		if row.Pillar != pillar || row.Points == nil {
			continue
		}
		sum += *row.Points
		n++
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// districtPriceStds builds the Risk reference: the standard deviation of
// price_per_sqm per district across the whole market. A distribution of
// per-district volatilities, deliberately not of raw prices; its
// meaningfulness depends on enough districts being sampled.
func districtPriceStds(all listing.FactTable) []float64 {
	var out []float64
	for _, d := range all.Districts() {
		std := stats.Std(stats.Compact(all.WhereDistricts(d).Numeric("price_per_sqm")))
		if std != nil {
			out = append(out, *std)
		}
	}
	return out
}

// Momentum is the 6-month-plus price trend of a view: monthly median
// price_per_sqm from first_seen, (last - first) / first. Requires at least
// 30 dated-and-priced rows spanning at least 6 distinct months; nil when
// the first month's median is zero.
func Momentum(view listing.FactTable) *float64 {
	dated := 0
	for _, f := range view {
		if f.FirstSeen != nil && f.PricePerSqm != nil {
			dated++
		}
	}
	if dated < minTrendRows {
		return nil
	}
	series := market.MonthlyMedianPrice(view)
	if len(series) < minTrendMonths {
		return nil
	}
	first := series[0].Median
	last := series[len(series)-1].Median
	if first == 0 {
		return nil
	}
	m := (last - first) / first
	return &m
}

// districtMomentums builds the Trend reference: one momentum value per
// district across the whole market, each district independently clearing
// the same row and month thresholds.
func districtMomentums(all listing.FactTable) []float64 {
	var out []float64
	for _, d := range all.Districts() {
		sub := all.WhereDistricts(d)
		m := Momentum(sub)
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}
