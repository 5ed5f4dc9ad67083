// Package stats implements schema-agnostic descriptive statistics over
// nullable numeric series. Every function treats nil and non-finite inputs
// as missing and returns nil instead of erroring on empty input.
package stats

import (
	"fmt"
	"math"
	"sort"
)

// Float returns a pointer to v. Shorthand for building nullable fixtures.
func Float(v float64) *float64 { return &v }

// Compact drops nil and non-finite entries, returning plain values.
func Compact(vals []*float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			out = append(out, *v)
		}
	}
	return out
}

// Mean returns the arithmetic mean, nil for an empty series.
func Mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}

// Std returns the sample standard deviation (n-1 denominator), nil when
// fewer than two values are present.
func Std(vals []float64) *float64 {
	if len(vals) < 2 {
		return nil
	}
	m := *Mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	s := math.Sqrt(ss / float64(len(vals)-1))
	return &s
}

// Median returns the 50th percentile, nil for an empty series.
func Median(vals []float64) *float64 {
	return Quantile(vals, 0.5)
}

// Quantile returns the q-th quantile (0 <= q <= 1) using linear
// interpolation between closest ranks. Nil for an empty series.
func Quantile(vals []float64, q float64) *float64 {
	if len(vals) == 0 || q < 0 || q > 1 {
		return nil
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return &sorted[lo]
	}
	frac := pos - float64(lo)
	v := sorted[lo] + (sorted[hi]-sorted[lo])*frac
	return &v
}

// Quantiles computes the given levels at once, keyed "q<percent>" (q25,
// q50, ...). An empty series yields the full key set mapped to nil rather
// than an error.
func Quantiles(vals []float64, levels ...float64) map[string]*float64 {
	out := make(map[string]*float64, len(levels))
	for _, q := range levels {
		out[fmt.Sprintf("q%d", int(q*100))] = Quantile(vals, q)
	}
	return out
}

// WeightedMean returns sum(v*w)/sum(w) over rows where both value and
// weight are present and the weight is positive. Nil when no row qualifies.
func WeightedMean(values, weights []*float64) *float64 {
	var num, den float64
	n := len(values)
	if len(weights) < n {
		n = len(weights)
	}
	for i := 0; i < n; i++ {
		v, w := values[i], weights[i]
		if v == nil || w == nil || *w <= 0 {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || math.IsNaN(*w) || math.IsInf(*w, 0) {
			continue
		}
		num += *v * *w
		den += *w
	}
	if den == 0 {
		return nil
	}
	m := num / den
	return &m
}

// WeightedMedian returns the value at which the cumulative weight first
// reaches half the total weight, after sorting by value ascending. Rows
// missing either side, or with non-positive weight, are skipped. The result
// is invariant to input row order. Nil when no row qualifies.
func WeightedMedian(values, weights []*float64) *float64 {
	type pair struct{ v, w float64 }
	var pairs []pair
	n := len(values)
	if len(weights) < n {
		n = len(weights)
	}
	for i := 0; i < n; i++ {
		v, w := values[i], weights[i]
		if v == nil || w == nil || *w <= 0 {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || math.IsNaN(*w) || math.IsInf(*w, 0) {
			continue
		}
		pairs = append(pairs, pair{*v, *w})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })

	var total float64
	for _, p := range pairs {
		total += p.w
	}
	cutoff := total / 2
	var cum float64
	for _, p := range pairs {
		cum += p.w
		if cum >= cutoff {
			v := p.v
			return &v
		}
	}
	v := pairs[len(pairs)-1].v
	return &v
}

// Pearson returns the Pearson correlation between paired series. Rows where
// either side is nil are dropped before pairing. Nil when fewer than two
// pairs remain or either side has zero variance.
func Pearson(x, y []*float64) *float64 {
	var xs, ys []float64
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		if x[i] == nil || y[i] == nil {
			continue
		}
		if math.IsNaN(*x[i]) || math.IsNaN(*y[i]) || math.IsInf(*x[i], 0) || math.IsInf(*y[i], 0) {
			continue
		}
		xs = append(xs, *x[i])
		ys = append(ys, *y[i])
	}
	if len(xs) < 2 {
		return nil
	}
	mx, my := *Mean(xs), *Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return nil
	}
	r := sxy / math.Sqrt(sxx*syy)
	return &r
}

// PairCount returns the number of rows where both series are present.
func PairCount(x, y []*float64) int {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	count := 0
	for i := 0; i < n; i++ {
		if x[i] != nil && y[i] != nil {
			count++
		}
	}
	return count
}

// Bucketize maps each value to a bin label using right-closed intervals
// (lo, hi], with the lowest edge inclusive. len(labels) must be
// len(edges)-1. Nil values and values outside all bins map to "".
func Bucketize(vals []*float64, edges []float64, labels []string) []string {
	out := make([]string, len(vals))
	if len(edges) < 2 || len(labels) != len(edges)-1 {
		return out
	}
	for i, v := range vals {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		out[i] = bucketLabel(*v, edges, labels)
	}
	return out
}

func bucketLabel(v float64, edges []float64, labels []string) string {
	if v < edges[0] || v > edges[len(edges)-1] {
		return ""
	}
	// Lowest edge inclusive.
	if v == edges[0] {
		return labels[0]
	}
	for b := 0; b < len(labels); b++ {
		if v > edges[b] && v <= edges[b+1] {
			return labels[b]
		}
	}
	return ""
}
