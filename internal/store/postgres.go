package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/domain"
)

const newsTable = "news"

// PostgresStore persists content records in the news table.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ContentStore = (*PostgresStore)(nil)

// OpenPostgres connects to the content store and verifies the connection.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database_url is empty")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return NewPostgresStore(db), nil
}

// NewPostgresStore wires an existing sql.DB. Callers keep ownership of db
// lifetime when using this constructor directly.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CheckTitle reports whether a record with the exact title already exists.
func (s *PostgresStore) CheckTitle(ctx context.Context, title string) DedupResult {
	if s == nil || s.db == nil {
		return DedupResult{Status: DedupError, Err: fmt.Errorf("store is not initialized")}
	}

	query, args, err := s.builder.
		Select("title").
		From(newsTable).
		Where(sq.Eq{"title": title}).
		Limit(1).
		ToSql()
	if err != nil {
		return DedupResult{Status: DedupError, Err: fmt.Errorf("build dedup query: %w", err)}
	}

	var existing string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		return DedupResult{Status: DedupFresh}
	case err != nil:
		return DedupResult{Status: DedupError, Err: fmt.Errorf("dedup lookup: %w", err)}
	default:
		return DedupResult{Status: DedupFound}
	}
}

// InsertArticle writes one finalized record. Uniqueness is the caller's
// responsibility; the dedup check must have run first.
func (s *PostgresStore) InsertArticle(ctx context.Context, rec domain.ContentRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is not initialized")
	}

	query, args, err := s.builder.
		Insert(newsTable).
		Columns("title", "content", "image", "date", "is_published", "category", "uid").
		Values(rec.Title, rec.Content, rec.ImageURL, rec.Date, rec.IsPublished, rec.Category, rec.UID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}
