package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/barzel-group/market-cli/internal/listing"
)

func fp(v float64) *float64 { return &v }

func memoFixture() listing.FactTable {
	var all listing.FactTable
	for i := 0; i < 30; i++ {
		seen := time.Date(2026, time.Month(1+i%6), 10, 0, 0, 0, 0, time.UTC)
		all = append(all, listing.Fact{
			District:     "Marina",
			Building:     "Tower A",
			Bedrooms:     "2",
			PricePerSqm:  fp(10000 + float64(i)*50),
			DaysOnMarket: fp(15 + float64(i%10)),
			NetYield:     fp(5.5),
			SizeSqm:      fp(80),
			Floor:        fp(float64(2 + i%8)),
			FirstSeen:    &seen,
		})
	}
	for i := 0; i < 20; i++ {
		all = append(all, listing.Fact{
			District:     "Downtown",
			Bedrooms:     "1",
			PricePerSqm:  fp(16000 + float64(i)*100),
			DaysOnMarket: fp(45 + float64(i%15)),
		})
	}
	return all
}

func TestGenerate(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	memo, err := Generate(context.Background(), memoFixture(), Options{
		Title:   "Marina Memo",
		Dataset: "aug-2026",
		Now:     now,
	})
	require.NoError(t, err)

	// YAML front matter
	assert.True(t, strings.HasPrefix(memo, "---\n"))
	assert.Contains(t, memo, "title: Marina Memo")
	assert.Contains(t, memo, "dataset: aug-2026")
	assert.Contains(t, memo, "run_id:")
	assert.Contains(t, memo, "rows: 50")

	// Section headers
	for _, h := range []string{
		"# Marina Memo",
		"## Overview",
		"## Data Quality",
		"## Market Overview",
		"## District Profiles",
		"## Market Structure",
		"## Scoring",
	} {
		assert.Contains(t, memo, h)
	}

	// District table includes both districts, larger first.
	marina := strings.Index(memo, "| Marina |")
	downtown := strings.Index(memo, "| Downtown |")
	require.Greater(t, marina, 0)
	require.Greater(t, downtown, 0)
	assert.Less(t, marina, downtown)

	// Scoring breakdown rows are present.
	assert.Contains(t, memo, "Days on market (median)")
	assert.Contains(t, memo, "Net yield (median)")
	assert.Contains(t, memo, "### District Scores")
}

func TestGenerate_DistrictFilter(t *testing.T) {
	memo, err := Generate(context.Background(), memoFixture(), Options{
		Dataset:   "aug-2026",
		Districts: []string{"Downtown"},
	})
	require.NoError(t, err)
	assert.Contains(t, memo, "rows: 20")
	assert.NotContains(t, memo, "| Marina |")
}

func TestGenerate_EmptyDataset(t *testing.T) {
	_, err := Generate(context.Background(), nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty dataset")
}

func TestGenerate_UnknownDistrict(t *testing.T) {
	_, err := Generate(context.Background(), memoFixture(), Options{
		Districts: []string{"Atlantis"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows match")
}

func TestRendererNum(t *testing.T) {
	r := &renderer{p: message.NewPrinter(language.English)}
	assert.Equal(t, "n/a", r.num(nil, 2))
	assert.Equal(t, "12,500", r.num(fp(12500), 0))
	assert.Equal(t, "0.25", r.num(fp(0.25), 2))
	assert.Equal(t, "25.0%", r.pct(fp(0.25)))
	assert.Equal(t, "n/a", r.pct(nil))
}
