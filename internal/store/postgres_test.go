package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS batches`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveBatch(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	batch := testBatch()

	mock.ExpectExec(`INSERT INTO batches`).
		WithArgs(pgxmock.AnyArg(), "coffee shops", "Denver, CO", "yelp", false, batch.ScrapedAt.UTC()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_business_records"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_business_records"}, recordColumns).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "business_records" .* ON CONFLICT \("batch_id", "name"\) DO UPDATE SET`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	require.NoError(t, s.SaveBatch(context.Background(), batch))
	assert.NotEmpty(t, batch.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetBatch(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	scrapedAt := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, search_query, search_location, source, synthetic, scraped_at FROM batches WHERE id = \$1`).
		WithArgs("batch-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "search_query", "search_location", "source", "synthetic", "scraped_at"}).
			AddRow("batch-1", "coffee shops", "Denver, CO", "yelp", false, scrapedAt))

	recordRows := pgxmock.NewRows([]string{
		"name", "phone", "email", "address", "website", "category", "rating", "review_count",
		"price_tier", "neighborhood", "hours", "description", "source_url", "source_name",
		"email_verified", "email_status", "email_confidence",
	}).AddRow(
		"Joe's Cafe", "", "", "12 Main St", "", "Cafe", 4.5, 120,
		"$$", "", "", "", "https://yelp.com/search", "yelp",
		false, "", "",
	)
	mock.ExpectQuery(`SELECT name, phone, email, .* FROM business_records WHERE batch_id = \$1`).
		WithArgs("batch-1").
		WillReturnRows(recordRows)

	got, err := s.GetBatch(context.Background(), "batch-1")
	require.NoError(t, err)
	assert.Equal(t, model.SourceYelp, got.Source)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "Joe's Cafe", got.Records[0].Name)
	assert.Equal(t, "coffee shops", got.Records[0].SearchQuery)
	assert.Equal(t, scrapedAt, got.Records[0].ScrapedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetBatch_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, search_query, search_location, source, synthetic, scraped_at FROM batches WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetBatch(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get batch")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListBatches(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	scrapedAt := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT b.id, .* FROM batches b WHERE true AND b.source = \$1 ORDER BY b.scraped_at DESC LIMIT \$2`).
		WithArgs("synthetic", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "search_query", "search_location", "source", "synthetic", "scraped_at", "count"}).
			AddRow("batch-2", "dentists", "Austin, TX", "synthetic", true, scrapedAt, 10))

	infos, err := s.ListBatches(context.Background(), BatchFilter{Source: model.SourceSynthetic})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.True(t, infos[0].Synthetic)
	assert.Equal(t, 10, infos[0].RecordCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRecordEmail(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE business_records SET email = \$1`).
		WithArgs("sales@acmewidgets.com", true, "verified", "medium", "batch-1", "Acme Widgets").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rec := model.BusinessRecord{
		Name:            "Acme Widgets",
		Email:           "sales@acmewidgets.com",
		EmailVerified:   true,
		EmailStatus:     model.EmailStatusVerified,
		EmailConfidence: model.ConfidenceMedium,
	}
	require.NoError(t, s.UpdateRecordEmail(context.Background(), "batch-1", rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRecordEmail_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE business_records SET email = \$1`).
		WithArgs("", false, "", "", "batch-1", "Nobody").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRecordEmail(context.Background(), "batch-1", model.BusinessRecord{Name: "Nobody"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
