package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/barzel-group/market-cli/internal/listing"
	"github.com/barzel-group/market-cli/internal/store"
)

// openStore opens the configured SQLite dataset cache and runs migrations.
func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	s, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// loadFacts loads one dataset's normalized facts by name.
func loadFacts(ctx context.Context, name string) (listing.FactTable, error) {
	if name == "" {
		return nil, eris.New("dataset name is required (--dataset)")
	}
	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	d, err := s.GetDataset(ctx, name)
	if err != nil {
		return nil, err
	}
	return d.Facts, nil
}

// printJSON writes indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
