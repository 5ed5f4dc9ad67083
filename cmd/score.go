package main

import (
	"github.com/spf13/cobra"

	"github.com/barzel-group/market-cli/internal/scoring"
)

var (
	scoreDataset    string
	scoreDistricts  []string
	scoreDetails    bool
	scoreByDistrict bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Percentile-score a view of the market against the full dataset",
	Long: "Computes the four pillar scores (Liquidity, Yield, Risk, Trend; 0-25 each) " +
		"for the selected districts against the whole dataset's distributions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadFacts(cmd.Context(), scoreDataset)
		if err != nil {
			return err
		}
		view := table.WhereDistricts(scoreDistricts...)

		switch {
		case scoreByDistrict:
			return printJSON(scoring.ScoresByDistrict(table, view, scoreDistricts))
		case scoreDetails:
			return printJSON(scoring.ScoreDetails(table, view))
		default:
			return printJSON(scoring.Score(table, view))
		}
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreDataset, "dataset", "", "dataset name (required)")
	scoreCmd.Flags().StringSliceVar(&scoreDistricts, "district", nil, "score this view (default whole market)")
	scoreCmd.Flags().BoolVar(&scoreDetails, "details", false, "full per-KPI breakdown")
	scoreCmd.Flags().BoolVar(&scoreByDistrict, "by-district", false, "one score row per district")
	_ = scoreCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(scoreCmd)
}
