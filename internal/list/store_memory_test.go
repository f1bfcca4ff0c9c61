package list

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newList(name string) List {
	l, err := NewList(name, s.now)
	s.Require().NoError(err)
	return l
}

func (s *MemoryStoreSuite) TestCreateAndSnapshot() {
	s.Run("creates an empty list", func() {
		l := s.newList("Groceries")
		s.Require().NoError(s.store.CreateList(s.ctx, l))

		snapshot, err := s.store.Snapshot(s.ctx, "groceries")
		s.Require().NoError(err)
		s.Equal(l.ID, snapshot.ID)
		s.Empty(snapshot.Items)
	})

	s.Run("rejects duplicate names", func() {
		s.Require().NoError(s.store.CreateList(s.ctx, s.newList("weekend")))
		err := s.store.CreateList(s.ctx, s.newList("weekend"))
		s.Require().ErrorIs(err, ErrDuplicateList)
	})

	s.Run("returns ErrListNotFound for unknown list", func() {
		_, err := s.store.Snapshot(s.ctx, "nope")
		s.Require().ErrorIs(err, ErrListNotFound)
	})
}

func (s *MemoryStoreSuite) TestAddItem() {
	s.Run("merges quantities for the same normalized name", func() {
		s.Require().NoError(s.store.CreateList(s.ctx, s.newList("groceries")))

		_, err := s.store.AddItem(s.ctx, "groceries", "Milk", 2, s.now)
		s.Require().NoError(err)
		item, err := s.store.AddItem(s.ctx, "groceries", "  milk ", 1, s.now.Add(time.Minute))
		s.Require().NoError(err)

		s.Equal("milk", item.Name)
		s.Equal(int64(3), item.Quantity)

		snapshot, err := s.store.Snapshot(s.ctx, "groceries")
		s.Require().NoError(err)
		s.Len(snapshot.Items, 1)
	})

	s.Run("keeps items in creation order", func() {
		s.Require().NoError(s.store.CreateList(s.ctx, s.newList("ordered")))
		for _, name := range []string{"bread", "eggs", "butter"} {
			_, err := s.store.AddItem(s.ctx, "ordered", name, 1, s.now)
			s.Require().NoError(err)
		}
		_, err := s.store.AddItem(s.ctx, "ordered", "bread", 1, s.now)
		s.Require().NoError(err)

		snapshot, err := s.store.Snapshot(s.ctx, "ordered")
		s.Require().NoError(err)
		s.Require().Len(snapshot.Items, 3)
		s.Equal("bread", snapshot.Items[0].Name)
		s.Equal("eggs", snapshot.Items[1].Name)
		s.Equal("butter", snapshot.Items[2].Name)
	})

	s.Run("rejects merges past MaxQuantity", func() {
		s.Require().NoError(s.store.CreateList(s.ctx, s.newList("bulk")))
		_, err := s.store.AddItem(s.ctx, "bulk", "rice", MaxQuantity-1, s.now)
		s.Require().NoError(err)

		_, err = s.store.AddItem(s.ctx, "bulk", "rice", 2, s.now)
		s.Require().ErrorIs(err, ErrQuantityOverflow)

		// the failed merge leaves the stored quantity untouched
		snapshot, err := s.store.Snapshot(s.ctx, "bulk")
		s.Require().NoError(err)
		s.Equal(MaxQuantity-1, snapshot.Items[0].Quantity)
	})

	s.Run("returns ErrListNotFound for unknown list", func() {
		_, err := s.store.AddItem(s.ctx, "ghost", "milk", 1, s.now)
		s.Require().ErrorIs(err, ErrListNotFound)
	})
}

func (s *MemoryStoreSuite) TestSetQuantityAndRemove() {
	s.Run("replaces the quantity", func() {
		s.Require().NoError(s.store.CreateList(s.ctx, s.newList("pantry")))
		_, err := s.store.AddItem(s.ctx, "pantry", "flour", 2, s.now)
		s.Require().NoError(err)

		item, err := s.store.SetQuantity(s.ctx, "pantry", "flour", 7, s.now)
		s.Require().NoError(err)
		s.Equal(int64(7), item.Quantity)
	})

	s.Run("zero removes the item", func() {
		s.Require().NoError(s.store.CreateList(s.ctx, s.newList("zero")))
		_, err := s.store.AddItem(s.ctx, "zero", "sugar", 2, s.now)
		s.Require().NoError(err)

		_, err = s.store.SetQuantity(s.ctx, "zero", "sugar", 0, s.now)
		s.Require().NoError(err)

		snapshot, err := s.store.Snapshot(s.ctx, "zero")
		s.Require().NoError(err)
		s.Empty(snapshot.Items)
	})

	s.Run("remove then add starts fresh", func() {
		s.Require().NoError(s.store.CreateList(s.ctx, s.newList("fresh")))
		_, err := s.store.AddItem(s.ctx, "fresh", "apples", 5, s.now)
		s.Require().NoError(err)
		_, err = s.store.RemoveItem(s.ctx, "fresh", "apples")
		s.Require().NoError(err)

		item, err := s.store.AddItem(s.ctx, "fresh", "apples", 2, s.now)
		s.Require().NoError(err)
		s.Equal(int64(2), item.Quantity)
	})

	s.Run("returns ErrItemNotFound for unknown item", func() {
		s.Require().NoError(s.store.CreateList(s.ctx, s.newList("sparse")))

		_, err := s.store.SetQuantity(s.ctx, "sparse", "ghost", 3, s.now)
		s.Require().ErrorIs(err, ErrItemNotFound)

		_, err = s.store.RemoveItem(s.ctx, "sparse", "ghost")
		s.Require().ErrorIs(err, ErrItemNotFound)
	})
}

func (s *MemoryStoreSuite) TestDeleteList() {
	s.Run("soft delete hides the list", func() {
		l := s.newList("holiday")
		s.Require().NoError(s.store.CreateList(s.ctx, l))

		deleted, err := s.store.DeleteList(s.ctx, "holiday")
		s.Require().NoError(err)
		s.Equal(l.ID, deleted.ID)
		s.True(deleted.Deleted)

		_, err = s.store.Snapshot(s.ctx, "holiday")
		s.Require().ErrorIs(err, ErrListNotFound)
	})

	s.Run("deleting twice fails", func() {
		s.Require().NoError(s.store.CreateList(s.ctx, s.newList("twice")))
		_, err := s.store.DeleteList(s.ctx, "twice")
		s.Require().NoError(err)
		_, err = s.store.DeleteList(s.ctx, "twice")
		s.Require().ErrorIs(err, ErrListNotFound)
	})

	s.Run("name becomes reusable with a new identity", func() {
		first := s.newList("reuse")
		s.Require().NoError(s.store.CreateList(s.ctx, first))
		_, err := s.store.DeleteList(s.ctx, "reuse")
		s.Require().NoError(err)

		second := s.newList("reuse")
		s.Require().NoError(s.store.CreateList(s.ctx, second))
		snapshot, err := s.store.Snapshot(s.ctx, "reuse")
		s.Require().NoError(err)
		s.NotEqual(first.ID, snapshot.ID)
	})
}

func TestNewListValidation(t *testing.T) {
	_, err := NewList("   ", time.Now())
	if err == nil {
		t.Fatal("expected error for blank name")
	}
	l, err := NewList("  Weekend   BBQ ", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Name != "weekend bbq" {
		t.Fatalf("normalized name = %q, want %q", l.Name, "weekend bbq")
	}
	if l.ID.IsNil() {
		t.Fatal("expected a minted list ID")
	}
}
