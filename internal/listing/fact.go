package listing

import (
	"time"
)

// Fact is the canonical, sanity-bounded record derived one-to-one from a raw
// listing row. Every derived numeric field is either a finite in-bounds value
// or nil; never a sentinel.
type Fact struct {
	// Identity and categorical fields carried through from the raw row.
	District     string     `json:"district,omitempty"`
	Building     string     `json:"building_name,omitempty"`
	Bedrooms     string     `json:"bedrooms,omitempty"`
	PropertyType string     `json:"property_type,omitempty"`
	Floor        *float64   `json:"floor,omitempty"`
	SizeSqm      *float64   `json:"size_sqm,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	FirstSeen    *time.Time `json:"first_seen,omitempty"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`

	// Canonical derived facts.
	PricePerSqm          *float64 `json:"price_per_sqm,omitempty"`
	DaysOnMarket         *float64 `json:"days_on_market,omitempty"`
	NetYield             *float64 `json:"net_yield,omitempty"`
	GrossYield           *float64 `json:"gross_yield,omitempty"`
	ServiceChargeSqmYear *float64 `json:"service_charge_psm_year,omitempty"`
	VacancyDays          *float64 `json:"vacancy_days,omitempty"`
	HasTerrace           *bool    `json:"has_terrace,omitempty"`
	TerraceSizeSqm       *float64 `json:"terrace_size_sqm,omitempty"`
}

// FactTable is an immutable-by-convention collection of facts. Filter
// helpers return fresh slices; consumers never alias back into a caller's
// storage.
type FactTable []Fact

// Len returns the number of rows.
func (t FactTable) Len() int { return len(t) }

// Where returns the rows matching pred, as a new table.
func (t FactTable) Where(pred func(Fact) bool) FactTable {
	out := make(FactTable, 0, len(t))
	for _, f := range t {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}

// WhereDistricts returns the rows belonging to any of the named districts.
// An empty district list returns a copy of the full table.
func (t FactTable) WhereDistricts(districts ...string) FactTable {
	if len(districts) == 0 {
		out := make(FactTable, len(t))
		copy(out, t)
		return out
	}
	want := make(map[string]struct{}, len(districts))
	for _, d := range districts {
		want[d] = struct{}{}
	}
	return t.Where(func(f Fact) bool {
		_, ok := want[f.District]
		return ok
	})
}

// Districts returns the distinct non-empty district names in first-seen
// row order. Grouped iteration elsewhere keys off this explicit ordering.
func (t FactTable) Districts() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range t {
		if f.District == "" {
			continue
		}
		if _, ok := seen[f.District]; ok {
			continue
		}
		seen[f.District] = struct{}{}
		out = append(out, f.District)
	}
	return out
}

// GroupKey resolves a categorical column name to an accessor. The second
// return reports whether the column is a known grouping column; unknown
// columns degrade to empty results downstream rather than erroring.
func GroupKey(column string) (func(Fact) string, bool) {
	switch normalizeColumn(column) {
	case "district":
		return func(f Fact) string { return f.District }, true
	case "building_name", "building":
		return func(f Fact) string { return f.Building }, true
	case "bedrooms":
		return func(f Fact) string { return f.Bedrooms }, true
	case "property_type":
		return func(f Fact) string { return f.PropertyType }, true
	default:
		return nil, false
	}
}

// NumericColumn resolves a canonical numeric field name to an accessor.
func NumericColumn(name string) (func(Fact) *float64, bool) {
	switch normalizeColumn(name) {
	case "price_per_sqm":
		return func(f Fact) *float64 { return f.PricePerSqm }, true
	case "days_on_market":
		return func(f Fact) *float64 { return f.DaysOnMarket }, true
	case "net_yield":
		return func(f Fact) *float64 { return f.NetYield }, true
	case "gross_yield":
		return func(f Fact) *float64 { return f.GrossYield }, true
	case "service_charge_psm_year":
		return func(f Fact) *float64 { return f.ServiceChargeSqmYear }, true
	case "vacancy_days":
		return func(f Fact) *float64 { return f.VacancyDays }, true
	case "terrace_size_sqm":
		return func(f Fact) *float64 { return f.TerraceSizeSqm }, true
	case "size_sqm":
		return func(f Fact) *float64 { return f.SizeSqm }, true
	case "floor":
		return func(f Fact) *float64 { return f.Floor }, true
	case "latitude":
		return func(f Fact) *float64 { return f.Latitude }, true
	case "longitude":
		return func(f Fact) *float64 { return f.Longitude }, true
	default:
		return nil, false
	}
}

// Numeric collects the named canonical column as nullable values, one per
// row. Absent columns return nil (missing-column, not all-null).
func (t FactTable) Numeric(name string) []*float64 {
	get, ok := NumericColumn(name)
	if !ok {
		return nil
	}
	out := make([]*float64, len(t))
	for i, f := range t {
		out[i] = get(f)
	}
	return out
}

// HasColumn reports whether name is a canonical fact column.
func (t FactTable) HasColumn(name string) bool {
	if _, ok := NumericColumn(name); ok {
		return true
	}
	switch normalizeColumn(name) {
	case "district", "building_name", "bedrooms", "property_type", "has_terrace", "first_seen", "last_seen":
		return true
	}
	return false
}

// NonNull counts the populated values in the named canonical column.
// Together with Len and HasColumn this lets a FactTable feed coverage
// statistics alongside raw tables.
func (t FactTable) NonNull(name string) int {
	if get, ok := NumericColumn(name); ok {
		n := 0
		for _, f := range t {
			if get(f) != nil {
				n++
			}
		}
		return n
	}
	n := 0
	switch normalizeColumn(name) {
	case "district":
		for _, f := range t {
			if f.District != "" {
				n++
			}
		}
	case "building_name":
		for _, f := range t {
			if f.Building != "" {
				n++
			}
		}
	case "bedrooms":
		for _, f := range t {
			if f.Bedrooms != "" {
				n++
			}
		}
	case "property_type":
		for _, f := range t {
			if f.PropertyType != "" {
				n++
			}
		}
	case "has_terrace":
		for _, f := range t {
			if f.HasTerrace != nil {
				n++
			}
		}
	case "first_seen":
		for _, f := range t {
			if f.FirstSeen != nil {
				n++
			}
		}
	case "last_seen":
		for _, f := range t {
			if f.LastSeen != nil {
				n++
			}
		}
	}
	return n
}
