package audit

import (
	"time"

	"cartlog/pkg/domain"
)

// Action identifies the kind of mutation an Entry records.
type Action string

const (
	ActionCreateList  Action = "create_list"
	ActionDeleteList  Action = "delete_list"
	ActionAddItem     Action = "add_item"
	ActionRemoveItem  Action = "remove_item"
	ActionSetQuantity Action = "set_quantity"
)

// Entry is one immutable record in the audit log. Entries are created once,
// never updated or removed, and outlive the list they reference: a
// soft-deleted list keeps its full history.
//
// ListID pins the entry to the exact list generation that was mutated.
// Display names may be reused after a delete; the surrogate ID never is.
type Entry struct {
	// Sequence is assigned by the log on append: global, monotonic,
	// gap-free for successful calls, durable across restarts.
	Sequence  int64
	Timestamp time.Time
	Action    Action
	ListID    domain.ListID
	ListName  string
	// ItemName is empty for list-level actions.
	ItemName string
	// Value carries the quantity delta for ActionAddItem and the new
	// quantity for ActionSetQuantity; zero otherwise.
	Value int64
	// Location is the reporting device's position, nil when the client
	// did not supply one.
	Location *domain.Location
	// IP and UserAgent identify the actor as seen at the HTTP edge.
	// Empty for callers that bypass the middleware chain.
	IP        string
	UserAgent string
}
