// Package records implements the record-query capability over a SQLite store
// of structured operational records: users, attendance, leave requests and
// notices.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/adalundhe/relay/core/capability"
)

// DefaultQueryLimit bounds result sets when the caller does not.
const DefaultQueryLimit = 50

var (
	// ErrUnknownDomain indicates a query against a domain with no table.
	ErrUnknownDomain = errors.New("unknown record domain")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("record store is closed")
)

// domainTables maps record domains to their tables and the text columns
// keyword filters match against.
var domainTables = map[string]struct {
	table       string
	textColumns []string
}{
	"users":      {"users", []string{"name", "email", "role", "department"}},
	"attendance": {"attendance", []string{"user_name", "day", "status"}},
	"leave":      {"leave_requests", []string{"user_name", "status", "reason"}},
	"notices":    {"notices", []string{"title", "body"}},
}

// Domains returns the known record domains in a stable order.
func Domains() []string {
	return []string{"users", "attendance", "leave", "notices"}
}

// =============================================================================
// Store
// =============================================================================

// Query describes one record lookup.
type Query struct {
	// Domain selects the record table.
	Domain string

	// Keywords are matched (OR, case-insensitive substring) against the
	// domain's text columns. Empty keywords return the newest records.
	Keywords []string

	// Limit caps the result set; zero means DefaultQueryLimit.
	Limit int
}

// Store is the SQLite-backed record store.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (and migrates) the store at path. Use ":memory:" for an
// ephemeral store.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open record store %s: %w", path, err)
	}

	// A single writer keeps SQLite happy without WAL tuning.
	db.SetMaxOpenConns(1)

	store := &Store{
		db:  db,
		log: log.With("component", "records.store"),
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	role       TEXT NOT NULL DEFAULT 'member',
	department TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS attendance (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	user_name TEXT NOT NULL,
	day       TEXT NOT NULL,
	status    TEXT NOT NULL DEFAULT 'present'
);

CREATE TABLE IF NOT EXISTS leave_requests (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	user_name TEXT NOT NULL,
	from_day  TEXT NOT NULL,
	to_day    TEXT NOT NULL,
	status    TEXT NOT NULL DEFAULT 'pending',
	reason    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS notices (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	title     TEXT NOT NULL,
	body      TEXT NOT NULL,
	posted_at TEXT NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate record store: %w", err)
	}
	return nil
}

// Execute runs one record query.
func (s *Store) Execute(ctx context.Context, q Query) ([]capability.Record, error) {
	spec, ok := domainTables[q.Domain]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, q.Domain)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	where, args := keywordFilter(spec.textColumns, q.Keywords)
	query := fmt.Sprintf("SELECT * FROM %s%s ORDER BY id DESC LIMIT %d", spec.table, where, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Domain, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// keywordFilter builds an OR of LIKE clauses across the text columns.
func keywordFilter(columns, keywords []string) (string, []any) {
	if len(keywords) == 0 {
		return "", nil
	}

	var clauses []string
	var args []any
	for _, keyword := range keywords {
		for _, column := range columns {
			clauses = append(clauses, fmt.Sprintf("%s LIKE ?", column))
			args = append(args, "%"+keyword+"%")
		}
	}
	return " WHERE " + strings.Join(clauses, " OR "), args
}

// scanRecords reads all rows into field-name-to-value records.
func scanRecords(rows *sql.Rows) ([]capability.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var records []capability.Record
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		record := make(capability.Record, len(columns))
		for i, column := range columns {
			record[column] = normalizeValue(values[i])
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// normalizeValue converts driver byte slices to strings for stable rendering.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
