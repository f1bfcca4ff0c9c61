package audit

import (
	"context"
	"database/sql"
	"fmt"

	"cartlog/pkg/domain"
	txcontext "cartlog/pkg/platform/tx"
)

// querier is the subset of *sql.DB / *sql.Tx the SQL logs need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer returns the in-flight transaction from context when present so the
// append joins the same atomic unit as the list mutation.
func execer(ctx context.Context, db *sql.DB) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

// scanEntries reads audit rows ordered by sequence. Both SQL engines share
// the column layout: sequence, ts, action, list_id, list_name, item_name,
// value, lat, lng, ip, user_agent.
func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		var (
			e        Entry
			listID   string
			itemName sql.NullString
			lat, lng sql.NullFloat64
			ip, ua   sql.NullString
		)
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.Action, &listID, &e.ListName, &itemName, &e.Value, &lat, &lng, &ip, &ua); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		id, err := domain.ParseListID(listID)
		if err != nil {
			return nil, fmt.Errorf("parse audit list id: %w", err)
		}
		e.ListID = id
		e.ItemName = itemName.String
		if lat.Valid && lng.Valid {
			e.Location = &domain.Location{Lat: lat.Float64, Lng: lng.Float64}
		}
		e.IP = ip.String
		e.UserAgent = ua.String

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func nullableName(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableCoords(loc *domain.Location) (sql.NullFloat64, sql.NullFloat64) {
	if loc == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: loc.Lat, Valid: true}, sql.NullFloat64{Float64: loc.Lng, Valid: true}
}
