package list

import (
	"time"

	"cartlog/pkg/domain"
	dErrors "cartlog/pkg/domain-errors"
)

// MaxQuantity bounds item quantities. Merging adds past the bound fail with
// QuantityOverflow instead of wrapping.
const MaxQuantity int64 = 1_000_000_000

// List is a named collection of items. Identity is the surrogate ID; the
// display name is unique among active lists only, so a deleted list's name
// may be taken by a later list without touching the old one's history.
type List struct {
	ID        domain.ListID
	Name      string // normalized
	CreatedAt time.Time
	Deleted   bool
	// Items holds the active items in creation order. Populated by
	// Snapshot; empty on a freshly created or deleted list.
	Items []Item
}

// Item is one entry in a list. Names are normalized and unique within the
// owning list; quantities are positive (a quantity reaching zero removes
// the item).
type Item struct {
	Name      string // normalized
	Quantity  int64
	UpdatedAt time.Time
}

// NewList validates the display name and mints a fresh identity.
func NewList(name string, createdAt time.Time) (List, error) {
	normalized := domain.NormalizeName(name)
	if normalized == "" {
		return List{}, dErrors.New(dErrors.CodeBadRequest, "list name is required")
	}
	return List{
		ID:        domain.NewListID(),
		Name:      normalized,
		CreatedAt: createdAt,
	}, nil
}
