// Package journal keeps a local SQLite log of resolved decisions.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"relieflink/internal/decision"
	"relieflink/internal/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	_ "github.com/mattn/go-sqlite3"
)

const tableName = "decisions"

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	capability TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	degraded BOOLEAN NOT NULL DEFAULT 0,
	degraded_reason TEXT NOT NULL DEFAULT '',
	payload TEXT NOT NULL,
	decided_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_decided_at ON decisions(decided_at);
CREATE INDEX IF NOT EXISTS idx_decisions_capability ON decisions(capability);
`

type Entry struct {
	ID             string    `db:"id"`
	Collection     string    `db:"collection"`
	Capability     string    `db:"capability"`
	Source         string    `db:"source"`
	Degraded       bool      `db:"degraded"`
	DegradedReason string    `db:"degraded_reason"`
	Payload        string    `db:"payload"`
	DecidedAt      time.Time `db:"decided_at"`
}

// Tally counts decisions per capability and source.
type Tally struct {
	Capability string `db:"capability"`
	Source     string `db:"source"`
	Degraded   bool   `db:"degraded"`
	Count      int64  `db:"count"`
}

type Journal struct {
	conn *sql.DB
}

// Open opens (or creates) the journal at path and applies the schema.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	return &Journal{conn: conn}, nil
}

func (j *Journal) Close() error {
	return j.conn.Close()
}

// Record stores record under collection. decision.Record values are
// indexed by capability and source; anything else is kept as payload only.
func (j *Journal) Record(ctx context.Context, collection string, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}

	entry := Entry{
		ID:         utils.NanoID(),
		Collection: collection,
		Payload:    string(payload),
		DecidedAt:  time.Now().UTC(),
	}

	if rec, ok := record.(decision.Record); ok {
		if rec.ID != "" {
			entry.ID = rec.ID
		}
		if !rec.DecidedAt.IsZero() {
			entry.DecidedAt = rec.DecidedAt.UTC()
		}
		entry.Capability = string(rec.Capability)
		entry.Source = string(rec.Source)
		entry.Degraded = rec.Degraded
		entry.DegradedReason = rec.DegradedReason
	}

	query, args, err := insertQuery(entry)
	if err != nil {
		return fmt.Errorf("failed to generate sql: %w", err)
	}

	if _, err := j.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}

	return nil
}

// Recent returns up to limit entries, newest first. An empty capability
// means all.
func (j *Journal) Recent(ctx context.Context, capability string, limit uint64) ([]Entry, error) {
	query, args, err := recentQuery(capability, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sql: %w", err)
	}

	var entries []Entry
	if err := sqlscan.Select(ctx, j.conn, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	return entries, nil
}

func (j *Journal) Tallies(ctx context.Context) ([]Tally, error) {
	query, args, err := tallyQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to generate sql: %w", err)
	}

	var tallies []Tally
	if err := sqlscan.Select(ctx, j.conn, &tallies, query, args...); err != nil {
		return nil, fmt.Errorf("failed to tally journal: %w", err)
	}

	return tallies, nil
}

func insertQuery(e Entry) (string, []any, error) {
	return sq.Insert(tableName).
		SetMap(utils.StructToMap(e)).
		ToSql()
}

func recentQuery(capability string, limit uint64) (string, []any, error) {
	q := sq.Select(utils.StructTagValues(Entry{})...).
		From(tableName).
		OrderBy("decided_at DESC", "id").
		Limit(max(limit, 1))

	if capability != "" {
		q = q.Where(sq.Eq{"capability": capability})
	}

	return q.ToSql()
}

func tallyQuery() (string, []any, error) {
	return sq.Select("capability", "source", "degraded", "COUNT(*) AS count").
		From(tableName).
		GroupBy("capability", "source", "degraded").
		OrderBy("capability", "source", "degraded").
		ToSql()
}
