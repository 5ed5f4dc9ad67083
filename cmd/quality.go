package main

import (
	"github.com/spf13/cobra"

	"github.com/barzel-group/market-cli/internal/facts"
	"github.com/barzel-group/market-cli/internal/market"
	"github.com/barzel-group/market-cli/internal/stats"
)

var qualityDataset string

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Show canonical field coverage for a dataset, thinnest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadFacts(cmd.Context(), qualityDataset)
		if err != nil {
			return err
		}
		return printJSON(stats.CoverageTable(table, facts.CanonicalColumns))
	},
}

var (
	groupsDataset  string
	groupsColumn   string
	groupsBy       string
	groupsWeighted bool
	groupsMinN     int
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Grouped distribution statistics for one canonical column",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadFacts(cmd.Context(), groupsDataset)
		if err != nil {
			return err
		}

		minN := groupsMinN
		if minN <= 0 {
			minN = cfg.Market.MinGroupN
		}
		samples, err := market.ColumnSamples(table, groupsColumn, groupsBy, groupsWeighted)
		if err != nil {
			return err
		}
		return printJSON(stats.GroupStats(samples, minN, groupsWeighted))
	},
}

func init() {
	qualityCmd.Flags().StringVar(&qualityDataset, "dataset", "", "dataset name (required)")
	_ = qualityCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(qualityCmd)

	groupsCmd.Flags().StringVar(&groupsDataset, "dataset", "", "dataset name (required)")
	groupsCmd.Flags().StringVar(&groupsColumn, "column", "price_per_sqm", "canonical numeric column")
	groupsCmd.Flags().StringVar(&groupsBy, "by", "district", "grouping column")
	groupsCmd.Flags().BoolVar(&groupsWeighted, "weighted", false, "size-weighted mean per group")
	groupsCmd.Flags().IntVar(&groupsMinN, "min-n", 0, "smallest reported group (default from config)")
	_ = groupsCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(groupsCmd)
}
