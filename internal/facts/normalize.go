// Package facts derives the canonical fact table from a raw listings table.
//
// Each canonical field is produced by an ordered fallback chain of raw
// sources; the first source with at least one non-null value in its column
// wins. Values outside a field's sanity bounds are nulled, never clamped,
// and unparsable cells become nil rather than errors.
package facts

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/barzel-group/market-cli/internal/listing"
)

// Sanity bounds per canonical field (inclusive). Out-of-bounds values are
// data-quality noise, not errors: they null the field silently.
const (
	minPricePerSqm = 2_000
	maxPricePerSqm = 400_000
	minDOM         = 0
	maxDOM         = 3650
	minYield       = -5
	maxYield       = 40
	minCharge      = 0
	maxCharge      = 100_000
	minVacancy     = 0
	maxVacancy     = 3650
)

// CanonicalColumns lists the canonical fact columns in the order data
// quality views report them.
var CanonicalColumns = []string{
	"price_per_sqm",
	"days_on_market",
	"net_yield",
	"gross_yield",
	"service_charge_psm_year",
	"vacancy_days",
	"has_terrace",
	"terrace_size_sqm",
}

// terraceTrue are the raw spellings normalized to true, case-insensitive.
var terraceTrue = map[string]struct{}{"1": {}, "true": {}, "yes": {}}

// Normalize converts a raw listings table into the canonical fact table.
// Output has the same row count and order as the input, one fact per row.
func Normalize(raw *listing.RawTable) listing.FactTable {
	n := &normalizer{raw: raw, now: time.Now().UTC(), cache: map[string][]*float64{}}

	pricePerSqm := n.resolve(
		column("weighted_price_per_sqm_aed"),
		column("price_per_sqm_aed"),
		derived(n.priceOverSize, n.priceOverSizeReady),
	)
	daysOnMarket := n.resolve(
		column("days_on_market"),
		derived(n.domFromSeen, n.domFromSeenReady),
	)
	netYield := n.resolve(
		column("net_yield_adj_vacancy_pct"),
		column("net_yield_est_pct"),
	)
	grossYield := n.resolve(column("gross_yield_pct"))
	serviceCharge := n.resolve(column("service_charge_aed_per_sqm_year"))
	vacancyDays := n.resolve(column("vacancy_days_est"))

	facts := make(listing.FactTable, raw.Len())
	for i := range facts {
		f := listing.Fact{
			District:     raw.Value(i, "district"),
			Building:     raw.Value(i, "building_name"),
			Bedrooms:     raw.Value(i, "bedrooms"),
			PropertyType: raw.Value(i, "property_type"),
			Floor:        parseFloat(raw.Value(i, "floor")),
			SizeSqm:      parseFloat(raw.Value(i, "size_sqm")),
			Latitude:     parseFloat(raw.Value(i, "latitude")),
			Longitude:    parseFloat(raw.Value(i, "longitude")),
			FirstSeen:    parseTime(raw.Value(i, "first_seen")),
			LastSeen:     parseTime(raw.Value(i, "last_seen")),

			PricePerSqm:          bounded(pick(pricePerSqm, i), minPricePerSqm, maxPricePerSqm),
			DaysOnMarket:         bounded(pick(daysOnMarket, i), minDOM, maxDOM),
			NetYield:             bounded(pick(netYield, i), minYield, maxYield),
			GrossYield:           bounded(pick(grossYield, i), minYield, maxYield),
			ServiceChargeSqmYear: bounded(pick(serviceCharge, i), minCharge, maxCharge),
			VacancyDays:          bounded(pick(vacancyDays, i), minVacancy, maxVacancy),
			TerraceSizeSqm:       parseFloat(raw.Value(i, "terrace_size_sqm")),
		}

		if raw.HasColumn("has_terrace") {
			_, yes := terraceTrue[strings.ToLower(raw.Value(i, "has_terrace"))]
			f.HasTerrace = &yes
		}

		facts[i] = f
	}
	return facts
}

// normalizer carries the per-call state for one Normalize run: the raw
// table, the wall-clock reference used to close open listings, and a cache
// of parsed numeric columns.
type normalizer struct {
	raw   *listing.RawTable
	now   time.Time
	cache map[string][]*float64
}

// fallbackSource is one entry of a fallback chain: either a raw column or a
// derived computation with its own eligibility rule.
type fallbackSource struct {
	col    string
	derive func(row int) *float64
	ready  func() bool
}

func column(name string) fallbackSource { return fallbackSource{col: name} }

func derived(fn func(int) *float64, ready func() bool) fallbackSource {
	return fallbackSource{derive: fn, ready: ready}
}

// resolve evaluates a fallback chain into a per-row value column. The first
// eligible source wins for the whole column: a column source is eligible
// when it holds at least one parseable value, a derived source when its own
// readiness check passes. No eligible source yields an all-nil column.
func (n *normalizer) resolve(chain ...fallbackSource) []*float64 {
	for _, src := range chain {
		if src.derive != nil {
			if src.ready == nil || src.ready() {
				out := make([]*float64, n.raw.Len())
				for i := range out {
					out[i] = src.derive(i)
				}
				return out
			}
			continue
		}
		if vals := n.numericColumn(src.col); hasValue(vals) {
			return vals
		}
	}
	return nil
}

// numericColumn parses a raw column to nullable floats, cached per call.
func (n *normalizer) numericColumn(col string) []*float64 {
	if !n.raw.HasColumn(col) {
		return nil
	}
	if vals, ok := n.cache[col]; ok {
		return vals
	}
	vals := make([]*float64, n.raw.Len())
	for i := range vals {
		vals[i] = parseFloat(n.raw.Value(i, col))
	}
	n.cache[col] = vals
	return vals
}

// priceOverSize computes price / size_sqm for one row, nil when either side
// is missing or the size is not positive.
func (n *normalizer) priceOverSize(row int) *float64 {
	price := pick(n.priceColumn(), row)
	size := pick(n.numericColumn("size_sqm"), row)
	if price == nil || size == nil || *size <= 0 {
		return nil
	}
	v := *price / *size
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (n *normalizer) priceOverSizeReady() bool {
	return hasValue(n.priceColumn()) && n.raw.HasColumn("size_sqm")
}

// priceColumn is the absolute-price fallback chain feeding priceOverSize.
func (n *normalizer) priceColumn() []*float64 {
	if vals := n.numericColumn("sale_price_aed"); hasValue(vals) {
		return vals
	}
	return n.numericColumn("price")
}

// domFromSeen derives days on market from the seen timestamps; open
// listings (no last_seen) are measured against the current time.
func (n *normalizer) domFromSeen(row int) *float64 {
	first := parseTime(n.raw.Value(row, "first_seen"))
	if first == nil {
		return nil
	}
	last := parseTime(n.raw.Value(row, "last_seen"))
	end := n.now
	if last != nil {
		end = *last
	}
	days := math.Floor(end.Sub(*first).Hours() / 24)
	return &days
}

func (n *normalizer) domFromSeenReady() bool {
	return n.raw.HasColumn("first_seen")
}

func pick(col []*float64, row int) *float64 {
	if col == nil || row >= len(col) {
		return nil
	}
	return col[row]
}

func hasValue(col []*float64) bool {
	for _, v := range col {
		if v != nil {
			return true
		}
	}
	return false
}

// bounded nulls values outside [lo, hi]. Out-of-bound raw inputs are
// dropped, never clamped.
func bounded(v *float64, lo, hi float64) *float64 {
	if v == nil || *v < lo || *v > hi {
		return nil
	}
	return v
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// timeLayouts are tried in order; all parsed values normalize to UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}
