// Package store persists extraction batches behind a driver-neutral
// interface with SQLite and Postgres backends.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// BatchFilter specifies criteria for listing batches.
type BatchFilter struct {
	Source model.SourceName `json:"source,omitempty"`
	Query  string           `json:"query,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// BatchInfo is a batch header without its records, for listings.
type BatchInfo struct {
	ID             string           `json:"id"`
	SearchQuery    string           `json:"search_query"`
	SearchLocation string           `json:"search_location"`
	Source         model.SourceName `json:"source"`
	Synthetic      bool             `json:"synthetic"`
	RecordCount    int              `json:"record_count"`
	ScrapedAt      time.Time        `json:"scraped_at"`
}

// Store defines the persistence interface for extraction batches.
type Store interface {
	SaveBatch(ctx context.Context, batch *model.ExtractionBatch) error
	GetBatch(ctx context.Context, batchID string) (*model.ExtractionBatch, error)
	ListBatches(ctx context.Context, filter BatchFilter) ([]BatchInfo, error)

	// UpdateRecordEmail writes rec's email fields back to the stored record
	// with the same name in the batch.
	UpdateRecordEmail(ctx context.Context, batchID string, rec model.BusinessRecord) error

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the Store named by the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q (valid: sqlite, postgres)", cfg.Driver)
	}
}
