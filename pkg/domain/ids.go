// Package domain holds identifier and value types shared across packages.
package domain

import "github.com/google/uuid"

// ListID is the surrogate identity of a list, distinct from its display
// name. Deleting a list and creating a new one with the same name yields a
// different ListID, so audit history is never misattributed across the two.
type ListID uuid.UUID

// NewListID returns a fresh random list identity.
func NewListID() ListID {
	return ListID(uuid.New())
}

// ParseListID parses the canonical string form of a ListID.
func ParseListID(s string) (ListID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ListID{}, err
	}
	return ListID(u), nil
}

// IsNil reports whether the ID is the zero UUID.
func (id ListID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ListID) String() string {
	return uuid.UUID(id).String()
}
