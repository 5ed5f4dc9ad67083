// Package geoexport writes geocoded listings to ESRI shapefiles and derives
// per-district spatial envelopes for mapping tools.
package geoexport

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/barzel-group/market-cli/internal/listing"
)

// WriteShapefile writes one point per geocoded listing with its district,
// building, price, and yield attributes. Rows without coordinates are
// skipped. Returns the number of points written.
func WriteShapefile(path string, view listing.FactTable) (int, error) {
	writer, err := shp.Create(path, shp.POINT)
	if err != nil {
		return 0, eris.Wrapf(err, "geoexport: create shapefile %s", path)
	}
	defer writer.Close()

	fields := []shp.Field{
		shp.StringField("DISTRICT", 64),
		shp.StringField("BUILDING", 64),
		shp.FloatField("PRICE_SQM", 12, 2),
		shp.FloatField("NET_YIELD", 8, 3),
		shp.FloatField("DOM", 8, 1),
	}
	if err := writer.SetFields(fields); err != nil {
		return 0, eris.Wrap(err, "geoexport: set fields")
	}

	written, skipped := 0, 0
	for _, f := range view {
		if f.Latitude == nil || f.Longitude == nil {
			skipped++
			continue
		}
		row := writer.Write(&shp.Point{X: *f.Longitude, Y: *f.Latitude})
		attrs := []any{
			f.District,
			f.Building,
			floatAttr(f.PricePerSqm),
			floatAttr(f.NetYield),
			floatAttr(f.DaysOnMarket),
		}
		for i, v := range attrs {
			if err := writer.WriteAttribute(int(row), i, v); err != nil {
				return written, eris.Wrapf(err, "geoexport: write attribute %d", i)
			}
		}
		written++
	}

	if skipped > 0 {
		zap.L().Debug("geoexport: skipped listings without coordinates",
			zap.Int("skipped", skipped),
		)
	}
	return written, nil
}

// floatAttr renders a nullable float for a DBF field; missing stays empty.
func floatAttr(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// Envelope is the bounding box of one district's geocoded listings.
type Envelope struct {
	District string  `json:"district"`
	N        int     `json:"n"`
	MinLon   float64 `json:"min_lon"`
	MinLat   float64 `json:"min_lat"`
	MaxLon   float64 `json:"max_lon"`
	MaxLat   float64 `json:"max_lat"`
}

// DistrictEnvelopes computes a bounding box per district from geocoded
// listings, in district first-appearance order. Districts without any
// coordinates are omitted.
func DistrictEnvelopes(view listing.FactTable) []Envelope {
	var out []Envelope
	for _, d := range view.Districts() {
		var flat []float64
		for _, f := range view.WhereDistricts(d) {
			if f.Latitude == nil || f.Longitude == nil {
				continue
			}
			flat = append(flat, *f.Longitude, *f.Latitude)
		}
		if len(flat) == 0 {
			continue
		}
		bounds := geom.NewMultiPointFlat(geom.XY, flat).Bounds()
		out = append(out, Envelope{
			District: d,
			N:        len(flat) / 2,
			MinLon:   bounds.Min(0),
			MinLat:   bounds.Min(1),
			MaxLon:   bounds.Max(0),
			MaxLat:   bounds.Max(1),
		})
	}
	return out
}
