package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/barzel-group/market-cli/internal/report"
)

var (
	reportDataset   string
	reportDistricts []string
	reportOut       string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a Markdown market memo for a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		table, err := loadFacts(ctx, reportDataset)
		if err != nil {
			return err
		}

		memo, err := report.Generate(ctx, table, report.Options{
			Title:     cfg.Report.Title,
			Author:    cfg.Report.Author,
			Dataset:   reportDataset,
			Districts: reportDistricts,
			MinGroupN: cfg.Market.MinGroupN,
		})
		if err != nil {
			return err
		}

		out := reportOut
		if out == "" {
			if err := os.MkdirAll(cfg.Report.OutputDir, 0o755); err != nil {
				return err
			}
			name := fmt.Sprintf("%s-%s.md", reportDataset, time.Now().UTC().Format("20060102-150405"))
			out = filepath.Join(cfg.Report.OutputDir, name)
		}
		if err := os.WriteFile(out, []byte(memo), 0o644); err != nil {
			return err
		}

		zap.L().Info("memo written",
			zap.String("dataset", reportDataset),
			zap.String("path", out),
		)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportDataset, "dataset", "", "dataset name (required)")
	reportCmd.Flags().StringSliceVar(&reportDistricts, "district", nil, "restrict the memo to these districts")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output path (default under report.output_dir)")
	_ = reportCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(reportCmd)
}
