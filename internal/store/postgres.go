package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/db"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_batch":        `INSERT INTO batches (id, search_query, search_location, source, synthetic, scraped_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"get_batch":           `SELECT id, search_query, search_location, source, synthetic, scraped_at FROM batches WHERE id = $1`,
	"update_record_email": `UPDATE business_records SET email = $1, email_verified = $2, email_status = $3, email_confidence = $4 WHERE batch_id = $5 AND name = $6`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS batches (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	search_query    TEXT NOT NULL,
	search_location TEXT NOT NULL,
	source          TEXT NOT NULL,
	synthetic       BOOLEAN NOT NULL DEFAULT false,
	scraped_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS business_records (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	batch_id         TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	name             TEXT NOT NULL,
	phone            TEXT NOT NULL DEFAULT '',
	email            TEXT NOT NULL DEFAULT '',
	address          TEXT NOT NULL DEFAULT '',
	website          TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	rating           DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count     INTEGER NOT NULL DEFAULT 0,
	price_tier       TEXT NOT NULL DEFAULT '',
	neighborhood     TEXT NOT NULL DEFAULT '',
	hours            TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	source_url       TEXT NOT NULL DEFAULT '',
	source_name      TEXT NOT NULL,
	email_verified   BOOLEAN NOT NULL DEFAULT false,
	email_status     TEXT NOT NULL DEFAULT '',
	email_confidence TEXT NOT NULL DEFAULT '',
	UNIQUE (batch_id, name)
);

CREATE INDEX IF NOT EXISTS idx_batches_source ON batches(source);
CREATE INDEX IF NOT EXISTS idx_batches_query ON batches(search_query);
CREATE INDEX IF NOT EXISTS idx_records_batch_id ON business_records(batch_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// recordColumns is the COPY column order for business_records bulk inserts.
var recordColumns = []string{
	"id", "batch_id", "name", "phone", "email", "address", "website", "category",
	"rating", "review_count", "price_tier", "neighborhood", "hours", "description",
	"source_url", "source_name", "email_verified", "email_status", "email_confidence",
}

func (s *PostgresStore) SaveBatch(ctx context.Context, batch *model.ExtractionBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO batches (id, search_query, search_location, source, synthetic, scraped_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		batch.ID, batch.SearchQuery, batch.SearchLocation, string(batch.Source), batch.Synthetic, batch.ScrapedAt.UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert batch")
	}

	rows := make([][]any, 0, len(batch.Records))
	for _, rec := range batch.Records {
		rows = append(rows, []any{
			uuid.New().String(), batch.ID, rec.Name, rec.Phone, rec.Email, rec.Address,
			rec.Website, rec.Category, rec.Rating, rec.ReviewCount, rec.PriceTier,
			rec.Neighborhood, rec.Hours, rec.Description, rec.SourceURL,
			string(rec.SourceName), rec.EmailVerified, string(rec.EmailStatus), string(rec.EmailConfidence),
		})
	}

	_, err = db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "business_records",
		Columns:      recordColumns,
		ConflictKeys: []string{"batch_id", "name"},
	}, rows)
	return eris.Wrap(err, "postgres: insert records")
}

func (s *PostgresStore) GetBatch(ctx context.Context, batchID string) (*model.ExtractionBatch, error) {
	var b model.ExtractionBatch
	var source string
	err := s.pool.QueryRow(ctx,
		`SELECT id, search_query, search_location, source, synthetic, scraped_at FROM batches WHERE id = $1`,
		batchID,
	).Scan(&b.ID, &b.SearchQuery, &b.SearchLocation, &source, &b.Synthetic, &b.ScrapedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get batch %s", batchID)
	}
	b.Source = model.SourceName(source)

	rows, err := s.pool.Query(ctx,
		`SELECT name, phone, email, address, website, category, rating, review_count,
		        price_tier, neighborhood, hours, description, source_url, source_name,
		        email_verified, email_status, email_confidence
		 FROM business_records WHERE batch_id = $1 ORDER BY name`,
		batchID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query records")
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.BusinessRecord
		var sourceName, status, confidence string
		err := rows.Scan(&rec.Name, &rec.Phone, &rec.Email, &rec.Address, &rec.Website,
			&rec.Category, &rec.Rating, &rec.ReviewCount, &rec.PriceTier, &rec.Neighborhood,
			&rec.Hours, &rec.Description, &rec.SourceURL, &sourceName,
			&rec.EmailVerified, &status, &confidence)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		rec.SourceName = model.SourceName(sourceName)
		rec.EmailStatus = model.EmailStatus(status)
		rec.EmailConfidence = model.EmailConfidence(confidence)
		rec.SearchQuery = b.SearchQuery
		rec.SearchLocation = b.SearchLocation
		rec.ScrapedAt = b.ScrapedAt
		b.Records = append(b.Records, rec)
	}
	return &b, eris.Wrap(rows.Err(), "postgres: iterate records")
}

func (s *PostgresStore) ListBatches(ctx context.Context, filter BatchFilter) ([]BatchInfo, error) {
	query := `SELECT b.id, b.search_query, b.search_location, b.source, b.synthetic, b.scraped_at,
	                 (SELECT COUNT(*) FROM business_records r WHERE r.batch_id = b.id)
	          FROM batches b WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Source != "" {
		query += fmt.Sprintf(` AND b.source = $%d`, argIdx)
		args = append(args, string(filter.Source))
		argIdx++
	}
	if filter.Query != "" {
		query += fmt.Sprintf(` AND b.search_query = $%d`, argIdx)
		args = append(args, filter.Query)
		argIdx++
	}
	query += ` ORDER BY b.scraped_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list batches")
	}
	defer rows.Close()

	var infos []BatchInfo
	for rows.Next() {
		var bi BatchInfo
		var source string
		if err := rows.Scan(&bi.ID, &bi.SearchQuery, &bi.SearchLocation, &source, &bi.Synthetic, &bi.ScrapedAt, &bi.RecordCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan batch info")
		}
		bi.Source = model.SourceName(source)
		infos = append(infos, bi)
	}
	return infos, eris.Wrap(rows.Err(), "postgres: list batches iterate")
}

func (s *PostgresStore) UpdateRecordEmail(ctx context.Context, batchID string, rec model.BusinessRecord) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE business_records SET email = $1, email_verified = $2, email_status = $3, email_confidence = $4 WHERE batch_id = $5 AND name = $6`,
		rec.Email, rec.EmailVerified, string(rec.EmailStatus), string(rec.EmailConfidence),
		batchID, rec.Name,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update record email %q", rec.Name)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("record not found in batch %s: %q", batchID, rec.Name)
	}
	return nil
}
