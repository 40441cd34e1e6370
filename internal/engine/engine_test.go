package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/logger"
	"github.com/axonhq/axon/internal/store/memory"
)

// testClock is a settable clock so tests control every timestamp.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// testEngine returns an Engine over a fresh in-memory store.
func testEngine(t *testing.T) (*Engine, *testClock) {
	t.Helper()
	clock := newTestClock()
	return New(memory.New(), logger.Nop(), WithClock(clock.Now)), clock
}

func ptr[T any](v T) *T { return &v }

// mustCreate creates a task or fails the test.
func mustCreate(t *testing.T, e *Engine, code, name string, owner *string) *domain.Task {
	t.Helper()
	task, err := e.CreateTask(context.Background(), CreateTaskParams{Code: code, Name: name, Owner: owner})
	if err != nil {
		t.Fatalf("CreateTask(%s): %v", code, err)
	}
	return task
}

// wantKind asserts that err is a typed error of the given kind; reason is
// checked when non-empty.
func wantKind(t *testing.T, err error, kind domain.Kind, reason string) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want kind %s", kind)
	}
	de, ok := domain.AsError(err)
	if !ok {
		t.Fatalf("error = %v, want kind %s", err, kind)
	}
	if de.Kind != kind {
		t.Fatalf("error kind = %s (%v), want %s", de.Kind, err, kind)
	}
	if reason != "" && de.Reason != reason {
		t.Fatalf("conflict reason = %q (%v), want %q", de.Reason, err, reason)
	}
}

func TestPageDefaults(t *testing.T) {
	limit, offset, err := page(nil, nil)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if limit != DefaultListLimit || offset != 0 {
		t.Errorf("page(nil, nil) = (%d, %d), want (%d, 0)", limit, offset, DefaultListLimit)
	}
}

func TestPageCapsOversizedLimit(t *testing.T) {
	limit, _, err := page(ptr(5000), nil)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if limit != MaxListLimit {
		t.Errorf("limit = %d, want %d", limit, MaxListLimit)
	}
}

func TestPageRejectsBadValues(t *testing.T) {
	if _, _, err := page(ptr(0), nil); err == nil {
		t.Error("limit 0: expected validation error")
	}
	if _, _, err := page(nil, ptr(-1)); err == nil {
		t.Error("offset -1: expected validation error")
	}
}

func TestStats(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()

	mustCreate(t, e, "STAT-1", "one", nil)
	task := mustCreate(t, e, "STAT-2", "two", nil)
	if _, err := e.ClaimTask(ctx, task.ID, "agent-a"); err != nil {
		t.Fatalf("ClaimTask: %v", err)
	}

	stats, err := e.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TasksByState[domain.StateCreated] != 1 {
		t.Errorf("created = %d, want 1", stats.TasksByState[domain.StateCreated])
	}
	if stats.TasksByState[domain.StateInProgress] != 1 {
		t.Errorf("in progress = %d, want 1", stats.TasksByState[domain.StateInProgress])
	}
}
