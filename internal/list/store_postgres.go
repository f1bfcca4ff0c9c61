package list

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cartlog/pkg/domain"
	"cartlog/pkg/platform/sentinel"
)

// PostgresStore implements Store on PostgreSQL. Mutations are expected to
// run inside the service's transaction (pkg/platform/tx); the partial unique
// index on active list names backs up the uniqueness check for anything that
// bypasses the serialized mutation path.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var postgresStoreSchema = []string{
	`CREATE TABLE IF NOT EXISTS lists (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS lists_active_name_idx ON lists (name) WHERE NOT deleted`,
	`CREATE TABLE IF NOT EXISTS items (
		list_id UUID NOT NULL REFERENCES lists (id),
		name TEXT NOT NULL,
		quantity BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		position BIGINT NOT NULL,
		PRIMARY KEY (list_id, name)
	)`,
}

// Init creates the list tables if they do not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	for _, stmt := range postgresStoreSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init list schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateList(ctx context.Context, list List) error {
	ex := execer(ctx, s.db)

	var exists bool
	err := ex.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM lists WHERE name = $1 AND NOT deleted)`,
		list.Name,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check list name: %w: %v", sentinel.ErrUnavailable, err)
	}
	if exists {
		return ErrDuplicateList
	}

	_, err = ex.ExecContext(ctx,
		`INSERT INTO lists (id, name, created_at, deleted) VALUES ($1, $2, $3, FALSE)`,
		list.ID.String(), list.Name, list.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert list: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) DeleteList(ctx context.Context, name string) (List, error) {
	name = domain.NormalizeName(name)
	ex := execer(ctx, s.db)

	var (
		rawID     string
		createdAt time.Time
	)
	err := ex.QueryRowContext(ctx,
		`UPDATE lists SET deleted = TRUE WHERE name = $1 AND NOT deleted RETURNING id, created_at`,
		name,
	).Scan(&rawID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return List{}, ErrListNotFound
	}
	if err != nil {
		return List{}, fmt.Errorf("delete list: %w: %v", sentinel.ErrUnavailable, err)
	}

	id, err := domain.ParseListID(rawID)
	if err != nil {
		return List{}, fmt.Errorf("parse list id: %w", err)
	}
	return List{ID: id, Name: name, CreatedAt: createdAt, Deleted: true}, nil
}

func (s *PostgresStore) AddItem(ctx context.Context, listName, itemName string, quantity int64, at time.Time) (Item, error) {
	itemName = domain.NormalizeName(itemName)
	ex := execer(ctx, s.db)

	listID, err := s.findActive(ctx, ex, listName)
	if err != nil {
		return Item{}, err
	}

	var current int64
	err = ex.QueryRowContext(ctx,
		`SELECT quantity FROM items WHERE list_id = $1 AND name = $2`,
		listID.String(), itemName,
	).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = ex.ExecContext(ctx,
			`INSERT INTO items (list_id, name, quantity, updated_at, position)
			 VALUES ($1, $2, $3, $4,
			         (SELECT COALESCE(MAX(position), 0) + 1 FROM items WHERE list_id = $1))`,
			listID.String(), itemName, quantity, at,
		)
		if err != nil {
			return Item{}, fmt.Errorf("insert item: %w: %v", sentinel.ErrUnavailable, err)
		}
		return Item{Name: itemName, Quantity: quantity, UpdatedAt: at}, nil
	case err != nil:
		return Item{}, fmt.Errorf("read item: %w: %v", sentinel.ErrUnavailable, err)
	}

	merged := current + quantity
	if merged > MaxQuantity {
		return Item{}, ErrQuantityOverflow
	}
	_, err = ex.ExecContext(ctx,
		`UPDATE items SET quantity = $3, updated_at = $4 WHERE list_id = $1 AND name = $2`,
		listID.String(), itemName, merged, at,
	)
	if err != nil {
		return Item{}, fmt.Errorf("update item: %w: %v", sentinel.ErrUnavailable, err)
	}
	return Item{Name: itemName, Quantity: merged, UpdatedAt: at}, nil
}

func (s *PostgresStore) SetQuantity(ctx context.Context, listName, itemName string, quantity int64, at time.Time) (Item, error) {
	itemName = domain.NormalizeName(itemName)
	ex := execer(ctx, s.db)

	listID, err := s.findActive(ctx, ex, listName)
	if err != nil {
		return Item{}, err
	}

	if quantity == 0 {
		return s.deleteItem(ctx, ex, listID, itemName)
	}

	res, err := ex.ExecContext(ctx,
		`UPDATE items SET quantity = $3, updated_at = $4 WHERE list_id = $1 AND name = $2`,
		listID.String(), itemName, quantity, at,
	)
	if err != nil {
		return Item{}, fmt.Errorf("update item: %w: %v", sentinel.ErrUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Item{}, ErrItemNotFound
	}
	return Item{Name: itemName, Quantity: quantity, UpdatedAt: at}, nil
}

func (s *PostgresStore) RemoveItem(ctx context.Context, listName, itemName string) (Item, error) {
	itemName = domain.NormalizeName(itemName)
	ex := execer(ctx, s.db)

	listID, err := s.findActive(ctx, ex, listName)
	if err != nil {
		return Item{}, err
	}
	return s.deleteItem(ctx, ex, listID, itemName)
}

func (s *PostgresStore) Snapshot(ctx context.Context, name string) (List, error) {
	name = domain.NormalizeName(name)
	ex := execer(ctx, s.db)

	var (
		rawID     string
		createdAt time.Time
	)
	err := ex.QueryRowContext(ctx,
		`SELECT id, created_at FROM lists WHERE name = $1 AND NOT deleted`,
		name,
	).Scan(&rawID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return List{}, ErrListNotFound
	}
	if err != nil {
		return List{}, fmt.Errorf("read list: %w: %v", sentinel.ErrUnavailable, err)
	}
	id, err := domain.ParseListID(rawID)
	if err != nil {
		return List{}, fmt.Errorf("parse list id: %w", err)
	}

	rows, err := ex.QueryContext(ctx,
		`SELECT name, quantity, updated_at FROM items WHERE list_id = $1 ORDER BY position ASC`,
		id.String(),
	)
	if err != nil {
		return List{}, fmt.Errorf("read items: %w: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	snapshot := List{ID: id, Name: name, CreatedAt: createdAt}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.Name, &item.Quantity, &item.UpdatedAt); err != nil {
			return List{}, fmt.Errorf("scan item: %w", err)
		}
		snapshot.Items = append(snapshot.Items, item)
	}
	if err := rows.Err(); err != nil {
		return List{}, fmt.Errorf("iterate items: %w", err)
	}
	return snapshot, nil
}

func (s *PostgresStore) findActive(ctx context.Context, ex querier, name string) (domain.ListID, error) {
	var rawID string
	err := ex.QueryRowContext(ctx,
		`SELECT id FROM lists WHERE name = $1 AND NOT deleted`,
		domain.NormalizeName(name),
	).Scan(&rawID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ListID{}, ErrListNotFound
	}
	if err != nil {
		return domain.ListID{}, fmt.Errorf("read list: %w: %v", sentinel.ErrUnavailable, err)
	}
	return domain.ParseListID(rawID)
}

func (s *PostgresStore) deleteItem(ctx context.Context, ex querier, listID domain.ListID, itemName string) (Item, error) {
	res, err := ex.ExecContext(ctx,
		`DELETE FROM items WHERE list_id = $1 AND name = $2`,
		listID.String(), itemName,
	)
	if err != nil {
		return Item{}, fmt.Errorf("delete item: %w: %v", sentinel.ErrUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Item{}, ErrItemNotFound
	}
	return Item{Name: itemName, Quantity: 0}, nil
}
