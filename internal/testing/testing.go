// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
)

// Call records one invocation of a [FakeStore] method.
type Call struct {
	Op     string // "list", "create", "update" or "delete"
	Filter models.Filter
	Name   string
	Item   models.Item
	ID     int
}

// FakeStore is an in-memory test double for services.Store.
//
// Errors can be injected per operation, and Gate blocks every call until it is closed,
// which lets tests observe synchronizer state while a request is in flight.
type FakeStore struct {
	mu     sync.Mutex
	items  []models.Item
	nextID int
	calls  []Call

	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// Gate, when non-nil, must be closed (or receive) before a call completes.
	Gate chan struct{}
	// Started receives the op name once a call has been recorded, if non-nil.
	Started chan string
}

// NewFakeStore creates a FakeStore seeded with items. IDs for new items continue after the highest seeded ID.
func NewFakeStore(items ...models.Item) *FakeStore {
	f := &FakeStore{nextID: 1}
	for _, it := range items {
		f.items = append(f.items, it)
		if it.ID >= f.nextID {
			f.nextID = it.ID + 1
		}
	}
	return f
}

func (f *FakeStore) record(ctx context.Context, c Call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	gate, started := f.Gate, f.Started
	f.mu.Unlock()

	if started != nil {
		started <- c.Op
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", shared.ErrStoreRequest, ctx.Err())
		}
	}
	return nil
}

// List implements services.Store.
func (f *FakeStore) List(ctx context.Context, filter models.Filter) ([]models.Item, error) {
	if err := f.record(ctx, Call{Op: "list", Filter: filter}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	want, scoped := filter.Completed()
	items := []models.Item{}
	for _, it := range f.items {
		if !scoped || it.Completed == want {
			items = append(items, it)
		}
	}
	return items, nil
}

// Create implements services.Store.
func (f *FakeStore) Create(ctx context.Context, name string) (*models.Item, error) {
	if err := f.record(ctx, Call{Op: "create", Name: name}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}

	item := models.Item{ID: f.nextID, Name: name}
	f.nextID++
	f.items = append(f.items, item)
	return &item, nil
}

// Update implements services.Store.
func (f *FakeStore) Update(ctx context.Context, item models.Item) error {
	if err := f.record(ctx, Call{Op: "update", Item: item, ID: item.ID}); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}

	for i, it := range f.items {
		if it.ID == item.ID {
			f.items[i] = item
			return nil
		}
	}
	return fmt.Errorf("%w: %w: %d", shared.ErrStoreRequest, shared.ErrItemNotFound, item.ID)
}

// Delete implements services.Store.
func (f *FakeStore) Delete(ctx context.Context, id int) error {
	if err := f.record(ctx, Call{Op: "delete", ID: id}); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	for i, it := range f.items {
		if it.ID == id {
			f.items = append(f.items[:i:i], f.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %w: %d", shared.ErrStoreRequest, shared.ErrItemNotFound, id)
}

// SetListErr sets the list error while holding the store lock.
func (f *FakeStore) SetListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListErr = err
}

// Calls returns a copy of the recorded calls, optionally restricted to one op.
func (f *FakeStore) Calls(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Call
	for _, c := range f.calls {
		if op == "" || c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Items returns a copy of the stored items.
func (f *FakeStore) Items() []models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Item(nil), f.items...)
}

// Eventually polls cond every few milliseconds until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
