// Package report renders a market memo in Markdown from a normalized
// dataset: data quality, market overview, district profiles, and the full
// scoring breakdown.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/barzel-group/market-cli/internal/facts"
	"github.com/barzel-group/market-cli/internal/listing"
	"github.com/barzel-group/market-cli/internal/market"
	"github.com/barzel-group/market-cli/internal/scoring"
	"github.com/barzel-group/market-cli/internal/stats"
)

// Options configures memo generation.
type Options struct {
	Title   string
	Author  string
	Dataset string
	// Districts restricts the profile and scoring sections; empty means all.
	Districts []string
	// MinGroupN is the smallest group shown in grouped tables.
	MinGroupN int
	Now       time.Time
}

// frontMatter is the YAML header prepended to the memo.
type frontMatter struct {
	Title       string    `yaml:"title"`
	Author      string    `yaml:"author,omitempty"`
	Dataset     string    `yaml:"dataset"`
	RunID       string    `yaml:"run_id"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Rows        int       `yaml:"rows"`
}

// sections holds the precomputed inputs of the memo body.
type sections struct {
	coverage  []stats.Coverage
	overall   market.Snapshot
	districts []market.GroupedSnapshot
	floors    []market.FloorBucketPrice
	typology  []market.TypologyShare
	terrace   market.TerracePremium
	buildings []market.BuildingDispersion
	series    []market.MonthlyMedian
	details   scoring.Details
	byDist    []scoring.DistrictScores
}

// Generate renders the full memo for a dataset. Sections are computed
// concurrently; rendering itself is sequential and deterministic.
func Generate(ctx context.Context, all listing.FactTable, opts Options) (string, error) {
	if all.Len() == 0 {
		return "", eris.New("report: empty dataset")
	}
	if opts.Title == "" {
		opts.Title = "Residential Market Memo"
	}
	if opts.MinGroupN <= 0 {
		opts.MinGroupN = 10
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	view := all.WhereDistricts(opts.Districts...)
	if view.Len() == 0 {
		return "", eris.Errorf("report: no rows match districts %v", opts.Districts)
	}

	var sec sections
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		sec.coverage = stats.CoverageTable(view, facts.CanonicalColumns)
		return nil
	})
	g.Go(func() error {
		sec.overall = market.BuildSnapshot(view)
		sec.floors = market.FloorWeightedPrice(view)
		sec.typology = market.TypologyConcentration(view)
		sec.terrace = market.ComputeTerracePremium(view)
		sec.series = market.MonthlyMedianPrice(view)
		return nil
	})
	g.Go(func() error {
		sec.districts = market.SnapshotsBy(view, "district")
		sec.buildings = market.IntraBuildingDispersion(view)
		return nil
	})
	g.Go(func() error {
		sec.details = scoring.ScoreDetails(all, view)
		sec.byDist = scoring.ScoresByDistrict(all, view, opts.Districts)
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	fm := frontMatter{
		Title:       opts.Title,
		Author:      opts.Author,
		Dataset:     opts.Dataset,
		RunID:       uuid.New().String(),
		GeneratedAt: now,
		Rows:        view.Len(),
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", eris.Wrap(err, "report: marshal front matter")
	}

	r := &renderer{p: message.NewPrinter(language.English)}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", opts.Title)
	r.writeOverview(&b, view, fm)
	r.writeDataQuality(&b, sec.coverage)
	r.writeMarketOverview(&b, sec.overall, sec.series)
	r.writeDistrictProfiles(&b, sec.districts, opts.MinGroupN)
	r.writeStructure(&b, sec.floors, sec.typology, sec.terrace, sec.buildings, opts.MinGroupN)
	r.writeScoring(&b, sec.details, sec.byDist)

	return b.String(), nil
}
