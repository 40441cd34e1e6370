// Package store defines the persistence boundary of the coordination engine.
// Implementations must make every method a single atomic transaction: the
// operation either commits completely or leaves no trace.
package store

import (
	"context"
	"time"

	"github.com/axonhq/axon/internal/domain"
)

// TaskFilter narrows ListTasks. Nil fields are not applied. Limit and Offset
// are required; callers resolve defaults before reaching the store.
type TaskFilter struct {
	Owner    *string
	Unowned  bool // owner IS NULL; used by work discovery
	State    *domain.State
	DateFrom *time.Time // created_at >= DateFrom
	DateTo   *time.Time // created_at < DateTo
	Limit    int
	Offset   int
}

// MessageFilter narrows ListMessages within one task. The Target filter is an
// exact match: broadcasts (null target) are not returned when it is set.
type MessageFilter struct {
	TaskID  int64
	Author  *string
	Target  *string
	Kind    *string
	ReplyTo *int64
	Limit   int
	Offset  int
}

// Stats is an aggregate snapshot for the health and dashboard surfaces.
type Stats struct {
	TasksByState map[domain.State]int `json:"tasks_by_state"`
	Messages     int                  `json:"messages"`
	OpenSessions int                  `json:"open_sessions"`
}

// Store is the transactional persistence contract. Methods return typed
// domain errors (*domain.Error) for expected failures (not-found, duplicate
// code, conflicts, archived-task rejections) and plain wrapped errors for
// unexpected storage faults.
type Store interface {
	// CreateTask inserts a task and returns it with its assigned id.
	// Duplicate codes fail with a duplicate_code error.
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// GetTaskByID returns the task or a not_found error.
	GetTaskByID(ctx context.Context, id int64) (*domain.Task, error)

	// GetTaskByCode returns the task or a not_found error.
	GetTaskByCode(ctx context.Context, code string) (*domain.Task, error)

	// ListTasks returns tasks matching the filter ordered by (created_at, id).
	ListTasks(ctx context.Context, f TaskFilter) ([]*domain.Task, error)

	// MutateTask loads the task, applies mutate under the write lock, and
	// persists the result. A mutate error rolls the transaction back.
	MutateTask(ctx context.Context, id int64, mutate func(*domain.Task) error) (*domain.Task, error)

	// ClaimTask atomically assigns an unowned Created task to agent and moves
	// it to InProgress. The precondition is encoded in the write itself;
	// concurrent claims of one task produce exactly one winner. Losers get a
	// conflict error with reason already_claimed or wrong_state.
	ClaimTask(ctx context.Context, id int64, agent string, now time.Time) (*domain.Task, error)

	// ReleaseTask returns a claimed task to the unowned Created state. Only
	// the current owner may release, and only from InProgress or Blocked.
	ReleaseTask(ctx context.Context, id int64, agent string, now time.Time) (*domain.Task, error)

	// CreateMessage appends a message. Inside the same transaction it
	// verifies the task exists and is not archived, and that any reply_to
	// references an existing message of the same task.
	CreateMessage(ctx context.Context, msg *domain.TaskMessage) (*domain.TaskMessage, error)

	// ListMessages returns messages matching the filter ordered by
	// (created_at, id).
	ListMessages(ctx context.Context, f MessageFilter) ([]*domain.TaskMessage, error)

	// StartSession opens a work session after verifying, transactionally,
	// that the task exists, is owned by agent, and is InProgress or Review.
	// A second open session for the same (task, agent) pair is a conflict.
	StartSession(ctx context.Context, taskID int64, agent string, now time.Time) (*domain.WorkSession, error)

	// EndSession closes an open session, stamping ended_at (clamped to be at
	// least started_at) and storing the optional notes and score verbatim.
	EndSession(ctx context.Context, id int64, now time.Time, notes *string, score *float64) (*domain.WorkSession, error)

	// GetSession returns the session or a not_found error.
	GetSession(ctx context.Context, id int64) (*domain.WorkSession, error)

	// Stats returns aggregate counts for health and dashboard reporting.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases the underlying resources. Call on shutdown.
	Close() error
}
