// package tasks implements the client-side synchronization between a local task list and the remote item store.
//
// The core abstraction is Synchronizer, which applies user intents optimistically where safe and confirms
// everything else against the store. Changes are announced via a channel for non-blocking UI updates.
package tasks

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/services"
	"github.com/desertthunder/tdx/internal/shared"
)

const (
	DefaultQuietPeriod = 500 * time.Millisecond
	DefaultTimeout     = 10 * time.Second
)

// SyncOpts contains configuration options for creating a Synchronizer.
type SyncOpts struct {
	Logger      *log.Logger
	QuietPeriod time.Duration // Idle time after the last edit to an item before it is written
	Timeout     time.Duration // Per-call timeout for store requests
	Events      chan<- Event  // Optional; sends never block
}

// Synchronizer owns the task list state and keeps it consistent with a [services.Store].
//
// It is safe for concurrent use. The lock is never held across a store call.
type Synchronizer struct {
	store   services.Store
	logger  *log.Logger
	timeout time.Duration
	events  chan<- Event
	writes  *Scheduler[int, models.Item]

	mu       sync.Mutex
	items    []models.Item // nil while unloaded
	filter   models.Filter
	draft    string
	phase    models.Phase
	lastErr  error
	fetched  bool // initial load guard
	fetchSeq uint64
	changes  map[int]*localChange // edits and deletes a list response may not reflect yet
	closed   bool
}

// localChange is the last local mutation of one item.
//
// A change is settled once its write or delete has finished. It is dropped when a list response
// issued after it settled is applied, since that response already reflects the store's outcome.
type localChange struct {
	item    models.Item
	deleted bool
	settled bool
	seq     uint64 // latest fetch sequence when settled
}

// NewSynchronizer creates a Synchronizer over store. State starts unloaded.
func NewSynchronizer(store services.Store, opts SyncOpts) *Synchronizer {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	s := &Synchronizer{
		store:   store,
		logger:  shared.WithLogger(opts.Logger, "component", "sync"),
		timeout: opts.Timeout,
		events:  opts.Events,
		phase:   models.Unloaded,
		changes: make(map[int]*localChange),
	}
	s.writes = NewScheduler(opts.QuietPeriod, s.pushUpdate)
	return s
}

// State returns the current snapshot.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Synchronizer) snapshotLocked() State {
	return State{
		Items:  s.items,
		Filter: s.filter,
		Draft:  s.draft,
		Phase:  s.phase,
		Err:    s.lastErr,
	}
}

// Initialize performs the initial unfiltered load.
//
// Only the first call issues a request; the guard is set before the request goes out, so concurrent or
// repeated calls return nil immediately. On failure items stay unloaded and nothing is retried.
func (s *Synchronizer) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrClosed
	}
	if s.fetched {
		s.mu.Unlock()
		return nil
	}
	s.fetched = true
	s.items = nil
	s.phase = models.Loading
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	s.emit(stateChanged(OpLoad, 0))
	return s.fetch(ctx, OpLoad, models.FilterAll, seq)
}

// ChangeFilter sets the filter and reloads the list scoped by it.
//
// The current items stay visible while the request is in flight. On failure they are left as they were.
func (s *Synchronizer) ChangeFilter(ctx context.Context, filter models.Filter) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrClosed
	}
	s.fetched = true
	s.filter = filter
	s.phase = models.Loading
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	s.emit(stateChanged(OpFilter, 0))
	return s.fetch(ctx, OpFilter, filter, seq)
}

// fetch lists items and applies the result if seq is still the latest fetch.
func (s *Synchronizer) fetch(ctx context.Context, op Op, filter models.Filter, seq uint64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.store.List(ctx, filter)

	s.mu.Lock()
	if seq != s.fetchSeq {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded list response", "op", op, "filter", filter, "seq", seq)
		return err
	}

	if err != nil {
		if s.items != nil {
			s.phase = models.Loaded
		} else {
			s.phase = models.Unloaded
		}
		s.mu.Unlock()
		s.report(op, 0, fmt.Errorf("failed to fetch items: %w", err))
		return err
	}

	s.items = s.reconcileLocked(items, seq)
	s.phase = models.Loaded
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.Debug("items loaded", "op", op, "filter", filter, "count", len(items))
	s.emit(stateChanged(op, 0))
	return nil
}

// reconcileLocked applies local changes that the list response for seq may have missed.
// Items deleted locally are dropped and edited items take their local value.
func (s *Synchronizer) reconcileLocked(items []models.Item, seq uint64) []models.Item {
	for id, c := range s.changes {
		if c.settled && c.seq < seq {
			delete(s.changes, id)
		}
	}

	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		c, ok := s.changes[it.ID]
		switch {
		case !ok:
			out = append(out, it)
		case c.deleted:
			s.logger.Debug("dropping item deleted during fetch", "id", it.ID, "seq", seq)
		default:
			out = append(out, c.item)
		}
	}
	return out
}

// EditItem sets field to value on the item with id, locally and immediately, then schedules a coalesced
// write of the full item.
//
// Editing before the list is loaded, or an id that is not present, is a silent no-op.
// A value of the wrong type for field returns [shared.ErrInvalidArgument].
func (s *Synchronizer) EditItem(id int, field models.Field, value any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrClosed
	}

	idx := -1
	if s.items != nil && id > 0 {
		idx = indexOf(s.items, id)
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	updated, err := s.items[idx].With(field, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	next := slices.Clone(s.items)
	next[idx] = updated
	s.items = next
	s.changes[id] = &localChange{item: updated}
	// Scheduled under the lock so concurrent edits to one item reach the scheduler in state order.
	s.writes.Schedule(id, updated)
	s.mu.Unlock()

	s.emit(stateChanged(OpEdit, id))
	return nil
}

// SetCompleted is EditItem for the completed flag.
func (s *Synchronizer) SetCompleted(id int, completed bool) error {
	return s.EditItem(id, models.FieldCompleted, completed)
}

// Rename is EditItem for the name.
func (s *Synchronizer) Rename(id int, name string) error {
	return s.EditItem(id, models.FieldName, name)
}

// Toggle flips the completed flag of the item with id. Unknown ids are a no-op.
func (s *Synchronizer) Toggle(id int) error {
	item, ok := s.State().Find(id)
	if !ok {
		return nil
	}
	return s.SetCompleted(id, !item.Completed)
}

// pushUpdate is the scheduler's fire function: one PUT with the final state of an item.
//
// Local state is not rolled back on failure; it stays ahead of the store until the next fetch.
func (s *Synchronizer) pushUpdate(id int, item models.Item) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.store.Update(ctx, item)

	s.mu.Lock()
	if c, ok := s.changes[id]; ok && !c.deleted && c.item == item {
		c.settled = true
		c.seq = s.fetchSeq
	}
	s.mu.Unlock()

	if err != nil {
		s.report(OpUpdate, id, fmt.Errorf("failed to update item %d: %w", id, err))
		return
	}

	s.logger.Debug("item written", "id", id, "completed", item.Completed)
}

// AddItem creates an item named name on the store and appends the stored record.
//
// An empty name is a no-op. Nothing is inserted locally until the store returns the record with its ID.
func (s *Synchronizer) AddItem(ctx context.Context, name string) error {
	if len(name) == 0 {
		return nil
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return shared.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.store.Create(ctx, name)
	if err != nil {
		s.report(OpAdd, 0, fmt.Errorf("failed to add item: %w", err))
		return err
	}

	s.mu.Lock()
	next := make([]models.Item, len(s.items)+1)
	copy(next, s.items)
	next[len(s.items)] = *created
	s.items = next
	if s.phase == models.Unloaded {
		s.phase = models.Loaded
	}
	s.mu.Unlock()

	s.logger.Info("item added", "id", created.ID, "name", created.Name)
	s.emit(stateChanged(OpAdd, created.ID))
	return nil
}

// SetDraft stores the text of the item being typed.
func (s *Synchronizer) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()

	s.emit(stateChanged(OpDraft, 0))
}

// SubmitDraft adds the draft as a new item. A non-empty draft is cleared before the request,
// whether or not the store accepts it.
func (s *Synchronizer) SubmitDraft(ctx context.Context) error {
	s.mu.Lock()
	name := s.draft
	if name == "" {
		s.mu.Unlock()
		return nil
	}
	s.draft = ""
	s.mu.Unlock()

	s.emit(stateChanged(OpDraft, 0))
	return s.AddItem(ctx, name)
}

// DeleteItem deletes the item with id on the store and removes it locally only after success.
//
// A pending coalesced write for the item is held back while the delete is in flight. It is dropped
// if the delete succeeds and scheduled again if it fails.
func (s *Synchronizer) DeleteItem(ctx context.Context, id int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrClosed
	}
	held, holding := s.writes.Take(id)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Delete(ctx, id); err != nil {
		if holding {
			s.restoreWrite(id, held)
		}
		s.report(OpDelete, id, fmt.Errorf("failed to delete item %d: %w", id, err))
		return err
	}

	s.mu.Lock()
	s.writes.Cancel(id)
	s.changes[id] = &localChange{deleted: true, settled: true, seq: s.fetchSeq}
	idx := indexOf(s.items, id)
	if idx >= 0 {
		s.items = slices.Delete(slices.Clone(s.items), idx, idx+1)
	}
	s.mu.Unlock()

	if idx >= 0 {
		s.emit(stateChanged(OpDelete, id))
	}
	return nil
}

// restoreWrite schedules a write held back by a failed delete, unless a newer edit already did.
// Once closed the write is sent immediately, as Close would have done.
func (s *Synchronizer) restoreWrite(id int, item models.Item) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.pushUpdate(id, item)
		return
	}
	if _, ok := s.writes.Payload(id); !ok {
		s.writes.Schedule(id, item)
	}
	s.mu.Unlock()
}

// PendingWrites returns the number of items with a coalesced write waiting to fire.
func (s *Synchronizer) PendingWrites() int {
	return s.writes.Pending()
}

// Close flushes pending coalesced writes and stops accepting operations.
//
// The flushed writes run on the caller's goroutine; their failures are reported but state is not changed.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if n := s.writes.Pending(); n > 0 {
		s.logger.Info("flushing pending writes", "count", n)
	}
	s.writes.Flush()
	s.writes.Stop()
	return nil
}

// report records err as the last failure, logs it, and emits an [EventError].
func (s *Synchronizer) report(op Op, id int, err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	s.logger.Error("store operation failed", "op", op, "id", id, "err", err)
	s.emit(failed(op, id, err))
}

// emit sends an event through the channel without blocking.
func (s *Synchronizer) emit(ev Event) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}
