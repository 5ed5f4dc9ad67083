package stats

import "sort"

// Sample is one observation for grouped statistics: a group key, a nullable
// value, and an optional weight. Callers compose composite keys before
// handing samples over, keeping grouping independent of any table schema.
type Sample struct {
	Key    string
	Value  *float64
	Weight *float64
}

// GroupStat is the statistics row for one group.
type GroupStat struct {
	Key          string
	N            int
	P10          *float64
	P25          *float64
	P50          *float64
	P75          *float64
	P90          *float64
	Mean         *float64
	Std          *float64
	WeightedMean *float64
}

// GroupStats computes per-group quantiles, mean and sample std. Groups with
// fewer than minN non-null values are omitted entirely, not reported as
// zero. When weighted is true a size-weighted mean is included. Output is
// ordered by n descending, then key ascending, so group iteration order is
// explicit rather than map-dependent.
func GroupStats(samples []Sample, minN int, weighted bool) []GroupStat {
	byKey := make(map[string][]Sample)
	var order []string
	for _, s := range samples {
		if s.Key == "" {
			continue
		}
		if _, seen := byKey[s.Key]; !seen {
			order = append(order, s.Key)
		}
		byKey[s.Key] = append(byKey[s.Key], s)
	}

	var out []GroupStat
	for _, key := range order {
		group := byKey[key]
		var values, weights []*float64
		for _, s := range group {
			values = append(values, s.Value)
			weights = append(weights, s.Weight)
		}
		vals := Compact(values)
		if len(vals) < minN {
			continue
		}
		g := GroupStat{
			Key:  key,
			N:    len(vals),
			P10:  Quantile(vals, 0.10),
			P25:  Quantile(vals, 0.25),
			P50:  Quantile(vals, 0.50),
			P75:  Quantile(vals, 0.75),
			P90:  Quantile(vals, 0.90),
			Mean: Mean(vals),
			Std:  Std(vals),
		}
		if weighted {
			g.WeightedMean = WeightedMean(values, weights)
		}
		out = append(out, g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ColumnSource is any table that can report column presence and non-null
// counts. Both raw listing tables and fact tables satisfy it.
type ColumnSource interface {
	Len() int
	HasColumn(name string) bool
	NonNull(name string) int
}

// Coverage is the fill rate of one column.
type Coverage struct {
	Column   string  `json:"column"`
	Coverage float64 `json:"coverage"`
	NonNull  int     `json:"non_null"`
	Total    int     `json:"total"`
}

// CoverageTable reports, for each named column, the fraction of non-null
// rows; absent columns report 0. Sorted ascending by coverage so the least
// reliable fields surface first.
func CoverageTable(src ColumnSource, columns []string) []Coverage {
	total := src.Len()
	out := make([]Coverage, 0, len(columns))
	for _, col := range columns {
		c := Coverage{Column: col, Total: total}
		if src.HasColumn(col) {
			c.NonNull = src.NonNull(col)
			if total > 0 {
				c.Coverage = float64(c.NonNull) / float64(total)
			}
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Coverage != out[j].Coverage {
			return out[i].Coverage < out[j].Coverage
		}
		return out[i].Column < out[j].Column
	})
	return out
}
