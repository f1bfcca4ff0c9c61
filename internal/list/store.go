package list

import (
	"context"
	"time"
)

// Store owns list and item state transitions. Implementations normalize all
// incoming names, enforce per-list item uniqueness by merging quantities,
// and keep invariant checks inside the mutation so a single serialized
// writer per list observes a consistent view.
//
// The SQL implementations join a transaction carried in context
// (pkg/platform/tx), letting the service commit a mutation and its audit
// entry as one unit.
type Store interface {
	// CreateList inserts an empty list. Fails with ErrDuplicateList when
	// an active list with the same normalized name exists.
	CreateList(ctx context.Context, list List) error

	// DeleteList soft-deletes an active list and hides its items,
	// returning the list as it was. Fails with ErrListNotFound when the
	// list is absent or already deleted.
	DeleteList(ctx context.Context, name string) (List, error)

	// AddItem merges quantity into an existing item or creates one.
	// Fails with ErrListNotFound or, when the merged quantity would pass
	// MaxQuantity, ErrQuantityOverflow (leaving state untouched).
	AddItem(ctx context.Context, listName, itemName string, quantity int64, at time.Time) (Item, error)

	// SetQuantity replaces an item's quantity; zero removes the item,
	// identically to RemoveItem. Fails with ErrListNotFound or
	// ErrItemNotFound.
	SetQuantity(ctx context.Context, listName, itemName string, quantity int64, at time.Time) (Item, error)

	// RemoveItem removes an item outright (items are cheap; only lists
	// keep history). Fails with ErrListNotFound or ErrItemNotFound.
	RemoveItem(ctx context.Context, listName, itemName string) (Item, error)

	// Snapshot returns the active list with its items in creation order.
	// Fails with ErrListNotFound for absent or deleted lists.
	Snapshot(ctx context.Context, name string) (List, error)
}
