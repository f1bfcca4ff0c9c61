package audit

import "context"

// Log is the append-only record of every list mutation.
//
// Append assigns the next global sequence number atomically and persists the
// entry; it fails only on storage faults (sentinel.ErrUnavailable), which the
// service treats as fatal for the triggering call. The SQL implementations
// join an in-flight transaction found in context, so the append commits or
// rolls back together with the list mutation it records.
//
// Reads start fresh on every call and return entries ordered by ascending
// sequence, including entries for soft-deleted lists.
type Log interface {
	Append(ctx context.Context, entry Entry) (Entry, error)
	EntriesForList(ctx context.Context, listName string) ([]Entry, error)
	EntriesSince(ctx context.Context, sequence int64) ([]Entry, error)
}
