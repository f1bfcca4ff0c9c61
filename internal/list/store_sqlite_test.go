package list

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	_ "modernc.org/sqlite"
)

type SQLiteStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store *SQLiteStore
	ctx   context.Context
	now   time.Time
}

func (s *SQLiteStoreSuite) SetupTest() {
	db, err := sql.Open("sqlite", ":memory:")
	s.Require().NoError(err)
	db.SetMaxOpenConns(1)
	s.db = db

	s.store = NewSQLiteStore(db)
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s.Require().NoError(s.store.Init(s.ctx))
}

func (s *SQLiteStoreSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) create(name string) List {
	l, err := NewList(name, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateList(s.ctx, l))
	return l
}

func (s *SQLiteStoreSuite) TestListLifecycle() {
	s.Run("create, snapshot, delete", func() {
		l := s.create("groceries")

		snapshot, err := s.store.Snapshot(s.ctx, "Groceries")
		s.Require().NoError(err)
		s.Equal(l.ID, snapshot.ID)
		s.Empty(snapshot.Items)

		deleted, err := s.store.DeleteList(s.ctx, "groceries")
		s.Require().NoError(err)
		s.Equal(l.ID, deleted.ID)
		s.True(deleted.Deleted)

		_, err = s.store.Snapshot(s.ctx, "groceries")
		s.Require().ErrorIs(err, ErrListNotFound)
	})

	s.Run("active names are unique", func() {
		s.create("unique")
		l, err := NewList("unique", s.now)
		s.Require().NoError(err)
		s.Require().ErrorIs(s.store.CreateList(s.ctx, l), ErrDuplicateList)
	})

	s.Run("deleted names are reusable", func() {
		first := s.create("seasonal")
		_, err := s.store.DeleteList(s.ctx, "seasonal")
		s.Require().NoError(err)

		second := s.create("seasonal")
		s.NotEqual(first.ID, second.ID)

		snapshot, err := s.store.Snapshot(s.ctx, "seasonal")
		s.Require().NoError(err)
		s.Equal(second.ID, snapshot.ID)
	})
}

func (s *SQLiteStoreSuite) TestItems() {
	s.Run("add merges and keeps creation order", func() {
		s.create("groceries")
		_, err := s.store.AddItem(s.ctx, "groceries", "Milk", 2, s.now)
		s.Require().NoError(err)
		_, err = s.store.AddItem(s.ctx, "groceries", "eggs", 12, s.now)
		s.Require().NoError(err)
		item, err := s.store.AddItem(s.ctx, "groceries", "milk", 1, s.now.Add(time.Minute))
		s.Require().NoError(err)
		s.Equal(int64(3), item.Quantity)

		snapshot, err := s.store.Snapshot(s.ctx, "groceries")
		s.Require().NoError(err)
		s.Require().Len(snapshot.Items, 2)
		s.Equal("milk", snapshot.Items[0].Name)
		s.Equal("eggs", snapshot.Items[1].Name)
	})

	s.Run("merge past the bound fails and changes nothing", func() {
		s.create("bulk")
		_, err := s.store.AddItem(s.ctx, "bulk", "rice", MaxQuantity, s.now)
		s.Require().NoError(err)

		_, err = s.store.AddItem(s.ctx, "bulk", "rice", 1, s.now)
		s.Require().ErrorIs(err, ErrQuantityOverflow)

		snapshot, err := s.store.Snapshot(s.ctx, "bulk")
		s.Require().NoError(err)
		s.Equal(MaxQuantity, snapshot.Items[0].Quantity)
	})

	s.Run("set quantity and remove", func() {
		s.create("pantry")
		_, err := s.store.AddItem(s.ctx, "pantry", "flour", 2, s.now)
		s.Require().NoError(err)

		item, err := s.store.SetQuantity(s.ctx, "pantry", "flour", 9, s.now)
		s.Require().NoError(err)
		s.Equal(int64(9), item.Quantity)

		_, err = s.store.SetQuantity(s.ctx, "pantry", "flour", 0, s.now)
		s.Require().NoError(err)

		snapshot, err := s.store.Snapshot(s.ctx, "pantry")
		s.Require().NoError(err)
		s.Empty(snapshot.Items)

		_, err = s.store.RemoveItem(s.ctx, "pantry", "flour")
		s.Require().ErrorIs(err, ErrItemNotFound)
	})

	s.Run("unknown list fails before touching items", func() {
		_, err := s.store.AddItem(s.ctx, "ghost", "milk", 1, s.now)
		s.Require().ErrorIs(err, ErrListNotFound)
		_, err = s.store.SetQuantity(s.ctx, "ghost", "milk", 1, s.now)
		s.Require().ErrorIs(err, ErrListNotFound)
		_, err = s.store.RemoveItem(s.ctx, "ghost", "milk")
		s.Require().ErrorIs(err, ErrListNotFound)
	})
}
