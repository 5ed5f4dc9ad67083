package market

import (
	"github.com/rotisserie/eris"

	"github.com/barzel-group/market-cli/internal/listing"
	"github.com/barzel-group/market-cli/internal/stats"
)

// ColumnSamples extracts keyed samples for grouped statistics: one sample
// per row holding the grouping key, the canonical column value, and, when
// weighted, size_sqm as the weight.
func ColumnSamples(view listing.FactTable, column, by string, weighted bool) ([]stats.Sample, error) {
	value, ok := listing.NumericColumn(column)
	if !ok {
		return nil, eris.Errorf("market: unknown numeric column %q", column)
	}
	keyOf, ok := listing.GroupKey(by)
	if !ok {
		return nil, eris.Errorf("market: unknown grouping column %q", by)
	}

	out := make([]stats.Sample, 0, view.Len())
	for _, f := range view {
		key := keyOf(f)
		if key == "" {
			continue
		}
		s := stats.Sample{Key: key, Value: value(f)}
		if weighted {
			s.Weight = f.SizeSqm
		}
		out = append(out, s)
	}
	return out, nil
}
