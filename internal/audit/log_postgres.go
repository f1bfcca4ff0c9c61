package audit

import (
	"context"
	"database/sql"
	"fmt"

	"cartlog/pkg/domain"
	"cartlog/pkg/platform/sentinel"
)

// PostgresLog persists the audit trail in PostgreSQL.
//
// Sequence numbers come from a single counter row updated inside the caller's
// transaction: the increment and the insert commit together, so a rolled-back
// call releases its number and successful entries stay gap-free. The row lock
// taken by the UPDATE serializes concurrent appends.
type PostgresLog struct {
	db *sql.DB
}

func NewPostgresLog(db *sql.DB) *PostgresLog {
	return &PostgresLog{db: db}
}

var postgresLogSchema = []string{
	`CREATE TABLE IF NOT EXISTS audit_sequence (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		value BIGINT NOT NULL
	)`,
	`INSERT INTO audit_sequence (id, value) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`,
	`CREATE TABLE IF NOT EXISTS audit_entries (
		sequence BIGINT PRIMARY KEY,
		ts TIMESTAMPTZ NOT NULL,
		action TEXT NOT NULL,
		list_id UUID NOT NULL,
		list_name TEXT NOT NULL,
		item_name TEXT,
		value BIGINT NOT NULL,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		ip TEXT,
		user_agent TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS audit_entries_list_name_idx ON audit_entries (list_name, sequence)`,
}

// Init creates the audit tables if they do not exist.
func (l *PostgresLog) Init(ctx context.Context) error {
	for _, stmt := range postgresLogSchema {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init audit schema: %w", err)
		}
	}
	return nil
}

func (l *PostgresLog) Append(ctx context.Context, entry Entry) (Entry, error) {
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
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
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

func (l *PostgresLog) EntriesForList(ctx context.Context, listName string) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT sequence, ts, action, list_id, list_name, item_name, value, lat, lng, ip, user_agent
		 FROM audit_entries
		 WHERE list_name = $1
		 ORDER BY sequence ASC`,
		domain.NormalizeName(listName),
	)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (l *PostgresLog) EntriesSince(ctx context.Context, sequence int64) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT sequence, ts, action, list_id, list_name, item_name, value, lat, lng, ip, user_agent
		 FROM audit_entries
		 WHERE sequence > $1
		 ORDER BY sequence ASC`,
		sequence,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}
