package list

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"cartlog/internal/audit"
	"cartlog/internal/platform/metrics"
	"cartlog/pkg/domain"
	dErrors "cartlog/pkg/domain-errors"
	"cartlog/pkg/platform/sentinel"
	platformtx "cartlog/pkg/platform/tx"
	"cartlog/pkg/requestcontext"
)

// SnapshotCache is an optional read cache for list snapshots. Implementations
// are best-effort: a miss or a failed set must never fail the request.
type SnapshotCache interface {
	Get(ctx context.Context, listName string) (List, bool)
	Set(ctx context.Context, snapshot List)
	Invalidate(ctx context.Context, listName string)
}

// Result is the outcome of a successful mutation: the updated snapshot and
// the audit entry the call produced.
type Result struct {
	List  List
	Entry audit.Entry
}

// Service orchestrates the list store and the audit log. Every mutation runs
// as one atomic unit: validate, apply to the store, append to the log. A
// failed append rolls the mutation back; a failed validation writes nothing,
// so "mutated but unlogged" and "logged but unmutated" both cannot occur.
// Calls for the same list are serialized by a keyed mutex; different lists
// proceed in parallel.
//
// The actor timestamp and client metadata (location, IP, user agent) ride in
// on the context (pkg/requestcontext), supplied by the caller rather than
// read from the clock here, which keeps the core testable against fixed
// times.
type Service struct {
	lists   Store
	log     audit.Log
	tx      platformtx.Runner
	cache   SnapshotCache
	logger  *slog.Logger
	metrics *metrics.Metrics
	locks   keyedMutex
}

type Option func(*Service)

// WithTxRunner sets the transaction runner. SQL deployments pass
// tx.NewSQLRunner so the mutation and the audit append commit together; the
// default passthrough suits the in-memory stores, whose appends cannot fail.
func WithTxRunner(r platformtx.Runner) Option {
	return func(s *Service) { s.tx = r }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithSnapshotCache(c SnapshotCache) Option {
	return func(s *Service) { s.cache = c }
}

// NewService constructs a Service over the given store and audit log.
func NewService(lists Store, log audit.Log, opts ...Option) *Service {
	s := &Service{
		lists:  lists,
		log:    log,
		tx:     platformtx.Passthrough{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateList creates an empty list with the given display name.
func (s *Service) CreateList(ctx context.Context, name string) (Result, error) {
	now := requestcontext.Now(ctx)
	l, err := NewList(name, now)
	if err != nil {
		return Result{}, err
	}

	unlock := s.locks.lock(l.Name)
	defer unlock()

	var res Result
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.lists.CreateList(ctx, l); err != nil {
			return s.storeError(err)
		}
		entry, err := s.append(ctx, audit.Entry{
			Timestamp: now,
			Action:    audit.ActionCreateList,
			ListID:    l.ID,
			ListName:  l.Name,
		})
		if err != nil {
			return err
		}
		res = Result{List: l, Entry: entry}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.finishMutation(ctx, res.Entry)
	return res, nil
}

// DeleteList soft-deletes a list and hides its items. Audit history stays
// retrievable via History even though Snapshot fails from here on.
func (s *Service) DeleteList(ctx context.Context, name string) (Result, error) {
	n := domain.NormalizeName(name)
	if n == "" {
		return Result{}, dErrors.New(dErrors.CodeBadRequest, "list name is required")
	}
	now := requestcontext.Now(ctx)

	unlock := s.locks.lock(n)
	defer unlock()

	var res Result
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		deleted, err := s.lists.DeleteList(ctx, n)
		if err != nil {
			return s.storeError(err)
		}
		entry, err := s.append(ctx, audit.Entry{
			Timestamp: now,
			Action:    audit.ActionDeleteList,
			ListID:    deleted.ID,
			ListName:  n,
		})
		if err != nil {
			return err
		}
		res = Result{List: deleted, Entry: entry}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.finishMutation(ctx, res.Entry)
	return res, nil
}

// AddItem merges quantity into the named item, creating it when absent.
// The audit entry's Value carries the delta, not the merged total.
func (s *Service) AddItem(ctx context.Context, listName, itemName string, quantity int64) (Result, error) {
	ln, in, err := mutationNames(listName, itemName)
	if err != nil {
		return Result{}, err
	}
	if quantity <= 0 {
		return Result{}, dErrors.New(dErrors.CodeInvalidQuantity, "quantity must be a positive integer")
	}
	if quantity > MaxQuantity {
		return Result{}, dErrors.New(dErrors.CodeQuantityOverflow, "quantity exceeds maximum")
	}
	now := requestcontext.Now(ctx)

	unlock := s.locks.lock(ln)
	defer unlock()

	var res Result
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.lists.AddItem(ctx, ln, in, quantity, now); err != nil {
			return s.storeError(err)
		}
		snapshot, err := s.lists.Snapshot(ctx, ln)
		if err != nil {
			return s.storeError(err)
		}
		entry, err := s.append(ctx, audit.Entry{
			Timestamp: now,
			Action:    audit.ActionAddItem,
			ListID:    snapshot.ID,
			ListName:  ln,
			ItemName:  in,
			Value:     quantity,
		})
		if err != nil {
			return err
		}
		res = Result{List: snapshot, Entry: entry}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.finishMutation(ctx, res.Entry)
	return res, nil
}

// SetQuantity replaces an item's quantity. Zero removes the item, leaving
// the list in the same observable state RemoveItem would; the audit entry
// still records the SetQuantity the caller asked for.
func (s *Service) SetQuantity(ctx context.Context, listName, itemName string, quantity int64) (Result, error) {
	ln, in, err := mutationNames(listName, itemName)
	if err != nil {
		return Result{}, err
	}
	if quantity < 0 {
		return Result{}, dErrors.New(dErrors.CodeInvalidQuantity, "quantity must be a non-negative integer")
	}
	if quantity > MaxQuantity {
		return Result{}, dErrors.New(dErrors.CodeQuantityOverflow, "quantity exceeds maximum")
	}
	now := requestcontext.Now(ctx)

	unlock := s.locks.lock(ln)
	defer unlock()

	var res Result
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.lists.SetQuantity(ctx, ln, in, quantity, now); err != nil {
			return s.storeError(err)
		}
		snapshot, err := s.lists.Snapshot(ctx, ln)
		if err != nil {
			return s.storeError(err)
		}
		entry, err := s.append(ctx, audit.Entry{
			Timestamp: now,
			Action:    audit.ActionSetQuantity,
			ListID:    snapshot.ID,
			ListName:  ln,
			ItemName:  in,
			Value:     quantity,
		})
		if err != nil {
			return err
		}
		res = Result{List: snapshot, Entry: entry}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.finishMutation(ctx, res.Entry)
	return res, nil
}

// RemoveItem removes an item outright.
func (s *Service) RemoveItem(ctx context.Context, listName, itemName string) (Result, error) {
	ln, in, err := mutationNames(listName, itemName)
	if err != nil {
		return Result{}, err
	}
	now := requestcontext.Now(ctx)

	unlock := s.locks.lock(ln)
	defer unlock()

	var res Result
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.lists.RemoveItem(ctx, ln, in); err != nil {
			return s.storeError(err)
		}
		snapshot, err := s.lists.Snapshot(ctx, ln)
		if err != nil {
			return s.storeError(err)
		}
		entry, err := s.append(ctx, audit.Entry{
			Timestamp: now,
			Action:    audit.ActionRemoveItem,
			ListID:    snapshot.ID,
			ListName:  ln,
			ItemName:  in,
		})
		if err != nil {
			return err
		}
		res = Result{List: snapshot, Entry: entry}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.finishMutation(ctx, res.Entry)
	return res, nil
}

// Snapshot returns the active list with its items in creation order.
func (s *Service) Snapshot(ctx context.Context, name string) (List, error) {
	n := domain.NormalizeName(name)
	if n == "" {
		return List{}, dErrors.New(dErrors.CodeBadRequest, "list name is required")
	}

	if s.cache != nil {
		if snapshot, ok := s.cache.Get(ctx, n); ok {
			s.metrics.IncrementCacheHit()
			return snapshot, nil
		}
		s.metrics.IncrementCacheMiss()
	}

	snapshot, err := s.lists.Snapshot(ctx, n)
	if err != nil {
		return List{}, s.storeError(err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, snapshot)
	}
	return snapshot, nil
}

// History returns all audit entries for the named list, in sequence order,
// including entries recorded before a soft delete.
func (s *Service) History(ctx context.Context, name string) ([]audit.Entry, error) {
	n := domain.NormalizeName(name)
	if n == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "list name is required")
	}
	entries, err := s.log.EntriesForList(ctx, n)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "audit read failed")
	}
	return entries, nil
}

// HistorySince returns audit entries with sequence greater than the given
// value, for incremental consumption.
func (s *Service) HistorySince(ctx context.Context, sequence int64) ([]audit.Entry, error) {
	entries, err := s.log.EntriesSince(ctx, sequence)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "audit read failed")
	}
	return entries, nil
}

func mutationNames(listName, itemName string) (string, string, error) {
	ln := domain.NormalizeName(listName)
	if ln == "" {
		return "", "", dErrors.New(dErrors.CodeBadRequest, "list name is required")
	}
	in := domain.NormalizeName(itemName)
	if in == "" {
		return "", "", dErrors.New(dErrors.CodeBadRequest, "item name is required")
	}
	return ln, in, nil
}

// append stamps the actor metadata carried on the context onto the entry and
// writes it. Failures roll the whole transaction back; the caller never
// observes a half-applied call.
func (s *Service) append(ctx context.Context, e audit.Entry) (audit.Entry, error) {
	e.Location = requestcontext.Location(ctx)
	e.IP = requestcontext.ClientIP(ctx)
	e.UserAgent = requestcontext.UserAgent(ctx)

	entry, err := s.log.Append(ctx, e)
	if err != nil {
		s.metrics.IncrementAuditAppendFailure()
		s.logger.ErrorContext(ctx, "audit append failed, rolling back mutation",
			"action", string(e.Action),
			"list", e.ListName,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return audit.Entry{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "audit append failed")
	}
	return entry, nil
}

// finishMutation runs the after-commit bookkeeping shared by all mutations.
func (s *Service) finishMutation(ctx context.Context, entry audit.Entry) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, entry.ListName)
	}
	s.metrics.IncrementMutation(string(entry.Action))
	s.logger.InfoContext(ctx, "mutation applied",
		"action", string(entry.Action),
		"list", entry.ListName,
		"item", entry.ItemName,
		"sequence", entry.Sequence,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// storeError translates store-level facts into coded domain errors.
func (s *Service) storeError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateList):
		return dErrors.New(dErrors.CodeDuplicateList, "a list with that name already exists")
	case errors.Is(err, ErrListNotFound):
		return dErrors.New(dErrors.CodeListNotFound, "list not found")
	case errors.Is(err, ErrItemNotFound):
		return dErrors.New(dErrors.CodeItemNotFound, "item not found")
	case errors.Is(err, ErrQuantityOverflow):
		return dErrors.New(dErrors.CodeQuantityOverflow, "quantity exceeds maximum")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "storage unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "store operation failed")
	}
}
