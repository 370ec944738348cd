package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS batches (
	id              TEXT PRIMARY KEY,
	search_query    TEXT NOT NULL,
	search_location TEXT NOT NULL,
	source          TEXT NOT NULL,
	synthetic       INTEGER NOT NULL DEFAULT 0,
	scraped_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS business_records (
	id               TEXT PRIMARY KEY,
	batch_id         TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	name             TEXT NOT NULL,
	phone            TEXT NOT NULL DEFAULT '',
	email            TEXT NOT NULL DEFAULT '',
	address          TEXT NOT NULL DEFAULT '',
	website          TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	rating           REAL NOT NULL DEFAULT 0,
	review_count     INTEGER NOT NULL DEFAULT 0,
	price_tier       TEXT NOT NULL DEFAULT '',
	neighborhood     TEXT NOT NULL DEFAULT '',
	hours            TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	source_url       TEXT NOT NULL DEFAULT '',
	source_name      TEXT NOT NULL,
	email_verified   INTEGER NOT NULL DEFAULT 0,
	email_status     TEXT NOT NULL DEFAULT '',
	email_confidence TEXT NOT NULL DEFAULT '',
	UNIQUE (batch_id, name)
);

CREATE INDEX IF NOT EXISTS idx_batches_source ON batches(source);
CREATE INDEX IF NOT EXISTS idx_batches_query ON batches(search_query);
CREATE INDEX IF NOT EXISTS idx_records_batch_id ON business_records(batch_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveBatch(ctx context.Context, batch *model.ExtractionBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, search_query, search_location, source, synthetic, scraped_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			search_query = excluded.search_query,
			search_location = excluded.search_location,
			source = excluded.source,
			synthetic = excluded.synthetic,
			scraped_at = excluded.scraped_at`,
		batch.ID, batch.SearchQuery, batch.SearchLocation, string(batch.Source), batch.Synthetic, batch.ScrapedAt.UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: upsert batch")
	}

	for _, rec := range batch.Records {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO business_records (
				id, batch_id, name, phone, email, address, website, category,
				rating, review_count, price_tier, neighborhood, hours, description,
				source_url, source_name, email_verified, email_status, email_confidence
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (batch_id, name) DO UPDATE SET
				phone = excluded.phone,
				email = excluded.email,
				address = excluded.address,
				website = excluded.website,
				category = excluded.category,
				rating = excluded.rating,
				review_count = excluded.review_count,
				price_tier = excluded.price_tier,
				neighborhood = excluded.neighborhood,
				hours = excluded.hours,
				description = excluded.description,
				source_url = excluded.source_url,
				source_name = excluded.source_name,
				email_verified = excluded.email_verified,
				email_status = excluded.email_status,
				email_confidence = excluded.email_confidence`,
			uuid.New().String(), batch.ID, rec.Name, rec.Phone, rec.Email, rec.Address,
			rec.Website, rec.Category, rec.Rating, rec.ReviewCount, rec.PriceTier,
			rec.Neighborhood, rec.Hours, rec.Description, rec.SourceURL,
			string(rec.SourceName), rec.EmailVerified, string(rec.EmailStatus), string(rec.EmailConfidence),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert record %q", rec.Name)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit batch")
}

func (s *SQLiteStore) GetBatch(ctx context.Context, batchID string) (*model.ExtractionBatch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, search_query, search_location, source, synthetic, scraped_at
		 FROM batches WHERE id = ?`, batchID)

	var b model.ExtractionBatch
	var source string
	err := row.Scan(&b.ID, &b.SearchQuery, &b.SearchLocation, &source, &b.Synthetic, &b.ScrapedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("batch not found: %s", batchID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan batch")
	}
	b.Source = model.SourceName(source)

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, phone, email, address, website, category, rating, review_count,
		        price_tier, neighborhood, hours, description, source_url, source_name,
		        email_verified, email_status, email_confidence
		 FROM business_records WHERE batch_id = ? ORDER BY rowid`, batchID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query records")
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
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		rec.SourceName = model.SourceName(sourceName)
		rec.EmailStatus = model.EmailStatus(status)
		rec.EmailConfidence = model.EmailConfidence(confidence)
		rec.SearchQuery = b.SearchQuery
		rec.SearchLocation = b.SearchLocation
		rec.ScrapedAt = b.ScrapedAt
		b.Records = append(b.Records, rec)
	}
	return &b, eris.Wrap(rows.Err(), "sqlite: iterate records")
}

func (s *SQLiteStore) ListBatches(ctx context.Context, filter BatchFilter) ([]BatchInfo, error) {
	query := `SELECT b.id, b.search_query, b.search_location, b.source, b.synthetic, b.scraped_at,
	                 (SELECT COUNT(*) FROM business_records r WHERE r.batch_id = b.id)
	          FROM batches b WHERE 1=1`
	var args []any

	if filter.Source != "" {
		query += ` AND b.source = ?`
		args = append(args, string(filter.Source))
	}
	if filter.Query != "" {
		query += ` AND b.search_query = ?`
		args = append(args, filter.Query)
	}
	query += ` ORDER BY b.scraped_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list batches")
	}
	defer rows.Close()

	var infos []BatchInfo
	for rows.Next() {
		var bi BatchInfo
		var source string
		if err := rows.Scan(&bi.ID, &bi.SearchQuery, &bi.SearchLocation, &source, &bi.Synthetic, &bi.ScrapedAt, &bi.RecordCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan batch info")
		}
		bi.Source = model.SourceName(source)
		infos = append(infos, bi)
	}
	return infos, eris.Wrap(rows.Err(), "sqlite: list batches iterate")
}

func (s *SQLiteStore) UpdateRecordEmail(ctx context.Context, batchID string, rec model.BusinessRecord) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE business_records
		 SET email = ?, email_verified = ?, email_status = ?, email_confidence = ?
		 WHERE batch_id = ? AND name = ?`,
		rec.Email, rec.EmailVerified, string(rec.EmailStatus), string(rec.EmailConfidence),
		batchID, rec.Name,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update record email %q", rec.Name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("record not found in batch %s: %q", batchID, rec.Name)
	}
	return nil
}
