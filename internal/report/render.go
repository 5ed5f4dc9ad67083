package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/message"

	"github.com/barzel-group/market-cli/internal/listing"
	"github.com/barzel-group/market-cli/internal/market"
	"github.com/barzel-group/market-cli/internal/scoring"
	"github.com/barzel-group/market-cli/internal/stats"
)

type renderer struct {
	p *message.Printer
}

// num formats a nullable value with thousands separators; missing values
// render as "n/a" so tables stay aligned.
func (r *renderer) num(v *float64, decimals int) string {
	if v == nil {
		return "n/a"
	}
	return r.p.Sprintf("%.*f", decimals, *v)
}

func (r *renderer) pct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func (r *renderer) writeOverview(b *strings.Builder, view listing.FactTable, fm frontMatter) {
	b.WriteString("## Overview\n\n")
	r.p.Fprintf(b, "- Listings analyzed: %d\n", view.Len())
	fmt.Fprintf(b, "- Districts: %d\n", len(view.Districts()))
	fmt.Fprintf(b, "- Dataset: %s\n", fm.Dataset)
	fmt.Fprintf(b, "- Generated: %s\n\n", fm.GeneratedAt.Format("2006-01-02 15:04 MST"))
}

func (r *renderer) writeDataQuality(b *strings.Builder, coverage []stats.Coverage) {
	b.WriteString("## Data Quality\n\n")
	b.WriteString("Coverage of canonical fields, thinnest first. Metrics built on\n")
	b.WriteString("low-coverage fields should be read with their sample size in mind.\n\n")
	b.WriteString("| Field | Coverage | Non-null | Rows |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, c := range coverage {
		fmt.Fprintf(b, "| %s | %.1f%% | %d | %d |\n", c.Column, c.Coverage*100, c.NonNull, c.Total)
	}
	b.WriteString("\n")
}

func (r *renderer) writeMarketOverview(b *strings.Builder, s market.Snapshot, series []market.MonthlyMedian) {
	b.WriteString("## Market Overview\n\n")
	fmt.Fprintf(b, "- Median price: %s AED/sqm (P25 %s, P75 %s)\n",
		r.num(s.MedianPriceSqm, 0), r.num(s.P25PriceSqm, 0), r.num(s.P75PriceSqm, 0))
	fmt.Fprintf(b, "- Median days on market: %s (fast-sale 30d: %s, 60d: %s)\n",
		r.num(s.MedianDOM, 0), r.pct(s.FastSaleRatio30), r.pct(s.FastSaleRatio60))
	fmt.Fprintf(b, "- Gross / net yield (median): %s%% / %s%%\n",
		r.num(s.GrossYieldMedian, 2), r.num(s.NetYieldMedian, 2))
	fmt.Fprintf(b, "- Service charge (median): %s AED/sqm/yr\n", r.num(s.ServiceChargeMedian, 0))
	fmt.Fprintf(b, "- Price consistency (CV): %s\n", r.num(s.PriceConsistencyCV, 3))
	fmt.Fprintf(b, "- Liquidity depth: %s listings per median DOM day\n", r.num(s.LiquidityDepthRatio, 2))
	fmt.Fprintf(b, "- Vacancy drag: %s yield points\n", r.num(s.VacancyDrag, 2))
	b.WriteString("\n")

	if len(series) > 1 {
		b.WriteString("### Monthly Median Price\n\n")
		b.WriteString("| Month | Median AED/sqm |\n|---|---|\n")
		for _, m := range series {
			fmt.Fprintf(b, "| %s | %s |\n", m.Month.Format("2006-01"), r.p.Sprintf("%.0f", m.Median))
		}
		b.WriteString("\n")
	}
}

func (r *renderer) writeDistrictProfiles(b *strings.Builder, groups []market.GroupedSnapshot, minN int) {
	b.WriteString("## District Profiles\n\n")
	if len(groups) == 0 {
		b.WriteString("No district information present.\n\n")
		return
	}
	b.WriteString("| District | Listings | Median AED/sqm | Median DOM | Net Yield | Fast 30d |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, g := range groups {
		name := g.Key
		if g.NObs < minN {
			// Thin samples stay visible but flagged.
			name += " *"
		}
		fmt.Fprintf(b, "| %s | %d | %s | %s | %s | %s |\n",
			name, g.NObs, r.num(g.MedianPriceSqm, 0), r.num(g.MedianDOM, 0),
			r.num(g.NetYieldMedian, 2), r.pct(g.FastSaleRatio30))
	}
	fmt.Fprintf(b, "\n\\* fewer than %d listings\n\n", minN)
}

func (r *renderer) writeStructure(b *strings.Builder, floors []market.FloorBucketPrice, typ []market.TypologyShare, terrace market.TerracePremium, buildings []market.BuildingDispersion, minN int) {
	b.WriteString("## Market Structure\n\n")

	if len(floors) > 0 {
		b.WriteString("### Floor Premiums\n\n")
		b.WriteString("| Floor band | Listings | Size-weighted AED/sqm |\n|---|---|---|\n")
		for _, f := range floors {
			fmt.Fprintf(b, "| %s | %d | %s |\n", f.Bucket, f.N, r.num(f.WeightedPriceSqm, 0))
		}
		b.WriteString("\n")
	}

	if len(typ) > 0 {
		b.WriteString("### Typology Mix\n\n")
		for _, t := range typ {
			fmt.Fprintf(b, "- %s: %d listings (%.1f%%)\n", t.Category, t.Count, t.Share*100)
		}
		b.WriteString("\n")
	}

	if terrace.PremiumAbs != nil {
		b.WriteString("### Terrace Premium\n\n")
		fmt.Fprintf(b, "Terraced units trade at %s AED/sqm over non-terraced (%s).\n\n",
			r.num(terrace.PremiumAbs, 0), r.pct(terrace.PremiumPct))
	}

	var wellSampled []market.BuildingDispersion
	for _, bd := range buildings {
		if bd.NObs >= minN {
			wellSampled = append(wellSampled, bd)
		}
	}
	if len(wellSampled) > 0 {
		b.WriteString("### Intra-building Price Spread\n\n")
		b.WriteString("| Building | Listings | Median AED/sqm | CV |\n|---|---|---|---|\n")
		for _, bd := range wellSampled {
			fmt.Fprintf(b, "| %s | %d | %s | %s |\n",
				bd.Building, bd.NObs, r.num(bd.MedianPriceSqm, 0), r.num(bd.CVPrice, 3))
		}
		b.WriteString("\n")
	}
}

func (r *renderer) writeScoring(b *strings.Builder, det scoring.Details, byDist []scoring.DistrictScores) {
	b.WriteString("## Scoring\n\n")
	b.WriteString("Each KPI is ranked against the full market distribution and converted\n")
	b.WriteString("to 0-25 pillar points; the total is the sum of computable pillars.\n")
	b.WriteString("KPIs without enough reference data are excluded, not zeroed.\n\n")

	b.WriteString("| Pillar | KPI | Value | Percentile | Points | Ref N |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, row := range det.Rows {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %d |\n",
			row.Pillar, row.KPI, r.num(row.Value, 2), r.pct(row.Percentile),
			r.num(row.Points, 1), row.RefN)
	}
	b.WriteString("\n")

	t := det.Totals
	fmt.Fprintf(b, "**Total: %.1f / 100** (Liquidity %s, Yield %s, Risk %s, Trend %s)\n\n",
		t.Total, r.num(t.Liquidity, 1), r.num(t.Yield, 1), r.num(t.Risk, 1), r.num(t.Trend, 1))

	if len(byDist) > 0 {
		b.WriteString("### District Scores\n\n")
		b.WriteString("| District | Liquidity | Yield | Risk | Trend | Total |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, d := range byDist {
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %.1f |\n",
				d.District, r.num(d.Liquidity, 1), r.num(d.Yield, 1),
				r.num(d.Risk, 1), r.num(d.Trend, 1), d.Total)
		}
		b.WriteString("\n")
	}
}
