package market

import (
	"sort"
	"time"

	"github.com/barzel-group/market-cli/internal/listing"
	"github.com/barzel-group/market-cli/internal/stats"
)

// MonthlyMedian is the median price_per_sqm for one calendar month.
type MonthlyMedian struct {
	Month  time.Time `json:"month"`
	Median float64   `json:"median_price_sqm"`
}

// MonthlyMedianPrice buckets the view by calendar month of first_seen (UTC)
// and takes the median price_per_sqm per month, ascending by month. Rows
// missing either field are skipped.
func MonthlyMedianPrice(view listing.FactTable) []MonthlyMedian {
	byMonth := make(map[time.Time][]float64)
	for _, f := range view {
		if f.FirstSeen == nil || f.PricePerSqm == nil {
			continue
		}
		m := monthOf(*f.FirstSeen)
		byMonth[m] = append(byMonth[m], *f.PricePerSqm)
	}
	if len(byMonth) == 0 {
		return nil
	}

	months := make([]time.Time, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	out := make([]MonthlyMedian, 0, len(months))
	for _, m := range months {
		out = append(out, MonthlyMedian{Month: m, Median: *stats.Median(byMonth[m])})
	}
	return out
}

func monthOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// floorLabels bucket floors the way the market reads them; per-floor
// micro-noise is not meaningful.
var floorLabels = []string{"1-5", "6-10", "11-20", "21-30", "31-40", "41-50", "50+"}

// FloorBucketPrice is the size-weighted median price for one floor band.
type FloorBucketPrice struct {
	Bucket           string   `json:"floor_bucket"`
	N                int      `json:"n"`
	WeightedPriceSqm *float64 `json:"weighted_price_sqm"`
}

// FloorWeightedPrice computes a size-weighted median price_per_sqm per
// floor band. Rows missing floor, price, or a positive size are skipped.
// Buckets appear in band order; empty bands are omitted.
func FloorWeightedPrice(view listing.FactTable) []FloorBucketPrice {
	type group struct {
		values  []*float64
		weights []*float64
	}
	groups := make(map[string]*group)
	for _, f := range view {
		if f.Floor == nil || f.PricePerSqm == nil || f.SizeSqm == nil || *f.SizeSqm <= 0 || *f.PricePerSqm <= 0 {
			continue
		}
		label := floorBucket(*f.Floor)
		g := groups[label]
		if g == nil {
			g = &group{}
			groups[label] = g
		}
		g.values = append(g.values, f.PricePerSqm)
		g.weights = append(g.weights, f.SizeSqm)
	}

	var out []FloorBucketPrice
	for _, label := range floorLabels {
		g := groups[label]
		if g == nil {
			continue
		}
		out = append(out, FloorBucketPrice{
			Bucket:           label,
			N:                len(g.values),
			WeightedPriceSqm: stats.WeightedMedian(g.values, g.weights),
		})
	}
	return out
}

func floorBucket(floor float64) string {
	switch {
	case floor <= 5:
		return floorLabels[0]
	case floor <= 10:
		return floorLabels[1]
	case floor <= 20:
		return floorLabels[2]
	case floor <= 30:
		return floorLabels[3]
	case floor <= 40:
		return floorLabels[4]
	case floor <= 50:
		return floorLabels[5]
	default:
		return floorLabels[6]
	}
}
