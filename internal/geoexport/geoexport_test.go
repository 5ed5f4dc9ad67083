package geoexport

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barzel-group/market-cli/internal/listing"
)

func fp(v float64) *float64 { return &v }

func geoFixture() listing.FactTable {
	return listing.FactTable{
		{District: "Marina", Building: "Tower A", Latitude: fp(25.08), Longitude: fp(55.14), PricePerSqm: fp(9500)},
		{District: "Marina", Latitude: fp(25.09), Longitude: fp(55.15)},
		{District: "Downtown", Latitude: fp(25.19), Longitude: fp(55.27), NetYield: fp(5.2)},
		{District: "Downtown"}, // no coordinates
	}
}

func TestWriteShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.shp")

	n, err := WriteShapefile(path, geoFixture())
	require.NoError(t, err)
	assert.Equal(t, 3, n, "row without coordinates is skipped")

	reader, err := shp.Open(path)
	require.NoError(t, err)
	defer reader.Close()

	var points []*shp.Point
	for reader.Next() {
		_, shape := reader.Shape()
		pt, ok := shape.(*shp.Point)
		require.True(t, ok)
		points = append(points, pt)
	}
	require.Len(t, points, 3)
	assert.InDelta(t, 55.14, points[0].X, 1e-9)
	assert.InDelta(t, 25.08, points[0].Y, 1e-9)
}

func TestWriteShapefile_EmptyView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.shp")
	n, err := WriteShapefile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDistrictEnvelopes(t *testing.T) {
	got := DistrictEnvelopes(geoFixture())
	require.Len(t, got, 2)

	marina := got[0]
	assert.Equal(t, "Marina", marina.District)
	assert.Equal(t, 2, marina.N)
	assert.InDelta(t, 55.14, marina.MinLon, 1e-9)
	assert.InDelta(t, 55.15, marina.MaxLon, 1e-9)
	assert.InDelta(t, 25.08, marina.MinLat, 1e-9)
	assert.InDelta(t, 25.09, marina.MaxLat, 1e-9)

	downtown := got[1]
	assert.Equal(t, 1, downtown.N)
	assert.Equal(t, downtown.MinLon, downtown.MaxLon)
}

func TestDistrictEnvelopes_NoCoordinates(t *testing.T) {
	view := listing.FactTable{{District: "Marina"}}
	assert.Empty(t, DistrictEnvelopes(view))
}
