package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// SQLiteStore is the archive of previously ingested URLs. One table, url as
// primary key; rows are written once and removed only by retention pruning.
type SQLiteStore struct {
	db    *sql.DB
	table string
	now   func() time.Time
}

var _ ports.ArchiveStore = (*SQLiteStore)(nil)

// Open connects to the SQLite file and creates the schema if absent. The
// caller owns the store for the whole run; writes are sequential.
func Open(path, table string) (*SQLiteStore, error) {
	if table == "" {
		table = "articles"
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}

	// SQLite supports a single writer; one connection avoids lock churn.
	db.SetMaxOpenConns(1)

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		url TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		source TEXT,
		publish_time TEXT,
		description TEXT,
		insert_timestamp INTEGER
	)`, table)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}

	return &SQLiteStore{db: db, table: table, now: time.Now}, nil
}

// ExistingURLs returns the set of all stored URLs for membership tests.
func (s *SQLiteStore) ExistingURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := sq.Select("url").From(s.table).RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query existing urls: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		urls[url] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return urls, nil
}

// Append persists new articles, each stamped with the current insert time.
// A URL already present is skipped, never a batch failure: the caller
// pre-filters, the conflict clause is the safety net.
func (s *SQLiteStore) Append(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	stamp := s.now().Unix()
	insert := sq.Insert(s.table).
		Columns("url", "title", "source", "publish_time", "description", "insert_timestamp").
		Suffix("ON CONFLICT(url) DO NOTHING")

	rows := 0
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		insert = insert.Values(a.URL, a.Title, a.Source, a.PublishTime, a.Description, stamp)
		rows++
	}
	if rows == 0 {
		return nil
	}

	if _, err := insert.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("append articles: %w", err)
	}
	return nil
}

// Prune deletes entries older than retainDays and reports the count removed.
// Non-positive retainDays disables pruning.
func (s *SQLiteStore) Prune(ctx context.Context, retainDays int) (int64, error) {
	if retainDays <= 0 {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retainDays).Unix()
	res, err := sq.Delete(s.table).
		Where(sq.Lt{"insert_timestamp": cutoff}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune archive: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
