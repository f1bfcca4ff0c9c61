package audit

import (
	"context"
	"database/sql"
	"fmt"

	"cartlog/pkg/domain"
	"cartlog/pkg/platform/sentinel"
)

// SQLiteLog persists the audit trail in SQLite, the engine the default
// single-node deployment runs on. Same counter-row sequencing as the
// Postgres log: the increment rolls back with the transaction, so the
// sequence stays gap-free across failed calls and process restarts.
type SQLiteLog struct {
	db *sql.DB
}

func NewSQLiteLog(db *sql.DB) *SQLiteLog {
	return &SQLiteLog{db: db}
}

var sqliteLogSchema = []string{
	`CREATE TABLE IF NOT EXISTS audit_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		value INTEGER NOT NULL
	)`,
	`INSERT OR IGNORE INTO audit_sequence (id, value) VALUES (1, 0)`,
	`CREATE TABLE IF NOT EXISTS audit_entries (
		sequence INTEGER PRIMARY KEY,
		ts TIMESTAMP NOT NULL,
		action TEXT NOT NULL,
		list_id TEXT NOT NULL,
		list_name TEXT NOT NULL,
		item_name TEXT,
		value INTEGER NOT NULL,
		lat REAL,
		lng REAL,
		ip TEXT,
		user_agent TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS audit_entries_list_name_idx ON audit_entries (list_name, sequence)`,
}

// Init creates the audit tables if they do not exist.
func (l *SQLiteLog) Init(ctx context.Context) error {
	for _, stmt := range sqliteLogSchema {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init audit schema: %w", err)
		}
	}
	return nil
}

func (l *SQLiteLog) Append(ctx context.Context, entry Entry) (Entry, error) {
	ex := execer(ctx, l.db)

	var seq int64
	err := ex.QueryRowContext(ctx,
		`UPDATE audit_sequence SET value = value + 1 WHERE id = 1 RETURNING value`,
	).Scan(&seq)
	if err != nil {
		return Entry{}, fmt.Errorf("advance audit sequence: %w: %v", sentinel.ErrUnavailable, err)
	}

	lat, lng := nullableCoords(entry.Location)
	_, err = ex.ExecContext(ctx,
		`INSERT INTO audit_entries (sequence, ts, action, list_id, list_name, item_name, value, lat, lng, ip, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seq,
		entry.Timestamp,
		string(entry.Action),
		entry.ListID.String(),
		entry.ListName,
		nullableName(entry.ItemName),
		entry.Value,
		lat,
		lng,
		nullableName(entry.IP),
		nullableName(entry.UserAgent),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert audit entry: %w: %v", sentinel.ErrUnavailable, err)
	}

	entry.Sequence = seq
	return entry, nil
}

func (l *SQLiteLog) EntriesForList(ctx context.Context, listName string) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT sequence, ts, action, list_id, list_name, item_name, value, lat, lng, ip, user_agent
		 FROM audit_entries
		 WHERE list_name = ?
		 ORDER BY sequence ASC`,
		domain.NormalizeName(listName),
	)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (l *SQLiteLog) EntriesSince(ctx context.Context, sequence int64) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT sequence, ts, action, list_id, list_name, item_name, value, lat, lng, ip, user_agent
		 FROM audit_entries
		 WHERE sequence > ?
		 ORDER BY sequence ASC`,
		sequence,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}
