package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/barzel-group/market-cli/internal/geoexport"
)

var (
	exportDataset   string
	exportDistricts []string
	exportOut       string
)

var exportShpCmd = &cobra.Command{
	Use:   "export-shp",
	Short: "Export geocoded listings as an ESRI shapefile",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadFacts(cmd.Context(), exportDataset)
		if err != nil {
			return err
		}
		view := table.WhereDistricts(exportDistricts...)

		n, err := geoexport.WriteShapefile(exportOut, view)
		if err != nil {
			return err
		}
		zap.L().Info("shapefile written",
			zap.String("path", exportOut),
			zap.Int("points", n),
			zap.Int("rows", view.Len()),
		)
		return nil
	},
}

var exportBoundsCmd = &cobra.Command{
	Use:   "export-bounds",
	Short: "Print per-district bounding boxes of geocoded listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadFacts(cmd.Context(), exportDataset)
		if err != nil {
			return err
		}
		view := table.WhereDistricts(exportDistricts...)
		return printJSON(geoexport.DistrictEnvelopes(view))
	},
}

func init() {
	for _, c := range []*cobra.Command{exportShpCmd, exportBoundsCmd} {
		c.Flags().StringVar(&exportDataset, "dataset", "", "dataset name (required)")
		c.Flags().StringSliceVar(&exportDistricts, "district", nil, "restrict to these districts")
		_ = c.MarkFlagRequired("dataset")
	}
	exportShpCmd.Flags().StringVar(&exportOut, "out", "listings.shp", "output shapefile path")
	rootCmd.AddCommand(exportShpCmd)
	rootCmd.AddCommand(exportBoundsCmd)
}
