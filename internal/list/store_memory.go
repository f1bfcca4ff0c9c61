package list

import (
	"context"
	"sync"
	"time"

	"cartlog/pkg/domain"
)

type listState struct {
	list  List
	items []Item // creation order
}

// InMemory is the memory-backed Store used by tests and throwaway
// deployments. Active lists are keyed by normalized name; a delete drops the
// record entirely, since deleted lists live on only through the audit log.
type InMemory struct {
	mu     sync.RWMutex
	active map[string]*listState
}

func NewInMemory() *InMemory {
	return &InMemory{active: make(map[string]*listState)}
}

func (s *InMemory) CreateList(_ context.Context, list List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.active[list.Name]; exists {
		return ErrDuplicateList
	}
	s.active[list.Name] = &listState{list: list}
	return nil
}

func (s *InMemory) DeleteList(_ context.Context, name string) (List, error) {
	name = domain.NormalizeName(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.active[name]
	if !ok {
		return List{}, ErrListNotFound
	}
	delete(s.active, name)
	st.list.Deleted = true
	return st.list, nil
}

func (s *InMemory) AddItem(_ context.Context, listName, itemName string, quantity int64, at time.Time) (Item, error) {
	listName = domain.NormalizeName(listName)
	itemName = domain.NormalizeName(itemName)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.active[listName]
	if !ok {
		return Item{}, ErrListNotFound
	}

	for i := range st.items {
		if st.items[i].Name != itemName {
			continue
		}
		merged := st.items[i].Quantity + quantity
		if merged > MaxQuantity {
			return Item{}, ErrQuantityOverflow
		}
		st.items[i].Quantity = merged
		st.items[i].UpdatedAt = at
		return st.items[i], nil
	}

	item := Item{Name: itemName, Quantity: quantity, UpdatedAt: at}
	st.items = append(st.items, item)
	return item, nil
}

func (s *InMemory) SetQuantity(_ context.Context, listName, itemName string, quantity int64, at time.Time) (Item, error) {
	listName = domain.NormalizeName(listName)
	itemName = domain.NormalizeName(itemName)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.active[listName]
	if !ok {
		return Item{}, ErrListNotFound
	}

	if quantity == 0 {
		return st.remove(itemName)
	}

	for i := range st.items {
		if st.items[i].Name == itemName {
			st.items[i].Quantity = quantity
			st.items[i].UpdatedAt = at
			return st.items[i], nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (s *InMemory) RemoveItem(_ context.Context, listName, itemName string) (Item, error) {
	listName = domain.NormalizeName(listName)
	itemName = domain.NormalizeName(itemName)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.active[listName]
	if !ok {
		return Item{}, ErrListNotFound
	}
	return st.remove(itemName)
}

func (s *InMemory) Snapshot(_ context.Context, name string) (List, error) {
	name = domain.NormalizeName(name)

	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.active[name]
	if !ok {
		return List{}, ErrListNotFound
	}
	snapshot := st.list
	snapshot.Items = append([]Item{}, st.items...)
	return snapshot, nil
}

func (st *listState) remove(itemName string) (Item, error) {
	for i := range st.items {
		if st.items[i].Name == itemName {
			removed := st.items[i]
			removed.Quantity = 0
			st.items = append(st.items[:i:i], st.items[i+1:]...)
			return removed, nil
		}
	}
	return Item{}, ErrItemNotFound
}
