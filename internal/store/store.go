// Package store persists imported datasets. Normalized fact tables are
// cached in a local SQLite database so analysis commands never re-parse the
// source file; raw listings can additionally be pulled straight from a
// Postgres warehouse.
package store

import (
	"context"
	"time"

	"github.com/barzel-group/market-cli/internal/listing"
)

// Dataset is one imported listings snapshot with its normalized facts.
type Dataset struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Source    string            `json:"source"`
	Rows      int               `json:"rows"`
	CreatedAt time.Time         `json:"created_at"`
	Facts     listing.FactTable `json:"facts,omitempty"`
}

// Store defines the dataset persistence interface.
type Store interface {
	// SaveDataset inserts a dataset under a unique name, replacing any
	// previous dataset of the same name.
	SaveDataset(ctx context.Context, name, source string, facts listing.FactTable) (*Dataset, error)
	// GetDataset loads a dataset with its facts by name.
	GetDataset(ctx context.Context, name string) (*Dataset, error)
	// ListDatasets returns dataset metadata (no facts), newest first.
	ListDatasets(ctx context.Context) ([]Dataset, error)
	// DeleteDataset removes a dataset by name.
	DeleteDataset(ctx context.Context, name string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
