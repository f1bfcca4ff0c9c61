package audit

import (
	"context"
	"sync"

	"cartlog/pkg/domain"
)

// InMemoryLog keeps the audit trail in process memory. Used by tests and
// memory-backed deployments; sequence numbers are durable only for the
// lifetime of the process.
type InMemoryLog struct {
	mu      sync.RWMutex
	nextSeq int64
	entries []Entry
}

func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{}
}

func (l *InMemoryLog) Append(_ context.Context, entry Entry) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextSeq++
	entry.Sequence = l.nextSeq
	l.entries = append(l.entries, entry)
	return entry, nil
}

func (l *InMemoryLog) EntriesForList(_ context.Context, listName string) ([]Entry, error) {
	name := domain.NormalizeName(listName)

	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry
	for _, e := range l.entries {
		if e.ListName == name {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *InMemoryLog) EntriesSince(_ context.Context, sequence int64) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry
	for _, e := range l.entries {
		if e.Sequence > sequence {
			out = append(out, e)
		}
	}
	return out, nil
}
