package main

import (
	"github.com/spf13/cobra"

	"github.com/barzel-group/market-cli/internal/market"
)

var (
	snapshotDataset   string
	snapshotDistricts []string
	snapshotBy        string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Compute the KPI snapshot for a dataset or a slice of it",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadFacts(cmd.Context(), snapshotDataset)
		if err != nil {
			return err
		}
		view := table.WhereDistricts(snapshotDistricts...)

		if snapshotBy != "" {
			return printJSON(market.SnapshotsBy(view, snapshotBy))
		}
		return printJSON(market.BuildSnapshot(view))
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotDataset, "dataset", "", "dataset name (required)")
	snapshotCmd.Flags().StringSliceVar(&snapshotDistricts, "district", nil, "restrict to these districts")
	snapshotCmd.Flags().StringVar(&snapshotBy, "by", "", "group snapshots by column (district, building_name, bedrooms, property_type)")
	_ = snapshotCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(snapshotCmd)
}
