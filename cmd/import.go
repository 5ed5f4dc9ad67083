package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/barzel-group/market-cli/internal/facts"
	"github.com/barzel-group/market-cli/internal/fetcher"
	"github.com/barzel-group/market-cli/internal/listing"
	"github.com/barzel-group/market-cli/internal/store"
)

var (
	importName   string
	importSheet  string
	importDelim  string
	importFromDB bool
)

var importCmd = &cobra.Command{
	Use:   "import [source]",
	Short: "Import a listings dataset and cache its normalized facts",
	Long: "Loads listings from a CSV, XLSX, or zipped CSV file (local path or URL), " +
		"or from the configured Postgres table with --from-db, normalizes them into " +
		"canonical facts, and stores the result under --name.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var raw *listing.RawTable
		var source string
		var err error

		switch {
		case importFromDB:
			if cfg.Store.DatabaseURL == "" {
				return eris.New("database URL is required for --from-db (MARKET_STORE_DATABASE_URL)")
			}
			pool, perr := store.NewPostgresPool(ctx, cfg.Store.DatabaseURL)
			if perr != nil {
				return perr
			}
			defer pool.Close()
			source = "postgres:" + cfg.Import.Table
			raw, err = store.LoadListings(ctx, pool, cfg.Import.Table)
		case len(args) == 1:
			source = args[0]
			delim := cfg.Import.Delimiter
			if importDelim != "" {
				delim = importDelim
			}
			sheet := cfg.Import.Sheet
			if importSheet != "" {
				sheet = importSheet
			}
			opts := fetcher.Options{Sheet: sheet}
			if delim != "" {
				opts.Delimiter = rune(delim[0])
			}
			raw, err = fetcher.Load(ctx, source, opts)
		default:
			return eris.New("a source file or --from-db is required")
		}
		if err != nil {
			return err
		}

		table := facts.Normalize(raw)
		zap.L().Info("normalized listings",
			zap.String("source", source),
			zap.Int("raw_rows", raw.Len()),
			zap.Int("facts", table.Len()),
			zap.Int("districts", len(table.Districts())),
		)

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		saved, err := s.SaveDataset(ctx, importName, source, table)
		if err != nil {
			return err
		}
		zap.L().Info("dataset saved",
			zap.String("name", saved.Name),
			zap.String("id", saved.ID),
			zap.Int("rows", saved.Rows),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "dataset name (required)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default first)")
	importCmd.Flags().StringVar(&importDelim, "delimiter", "", "CSV delimiter (default from config)")
	importCmd.Flags().BoolVar(&importFromDB, "from-db", false, "import from the configured Postgres table")
	_ = importCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(importCmd)
}
