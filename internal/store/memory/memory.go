// Package memory implements the store in process memory. It backs tests and
// `--database-url :memory:` runs; nothing survives a restart. A single writer
// mutex stands in for the SQLite write lock.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/store"
)

// Store implements store.Store in memory.
type Store struct {
	mu sync.Mutex

	tasks    map[int64]*domain.Task
	byCode   map[string]int64
	messages map[int64]*domain.TaskMessage
	sessions map[int64]*domain.WorkSession

	nextTaskID    int64
	nextMessageID int64
	nextSessionID int64
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		tasks:         make(map[int64]*domain.Task),
		byCode:        make(map[string]int64),
		messages:      make(map[int64]*domain.TaskMessage),
		sessions:      make(map[int64]*domain.WorkSession),
		nextTaskID:    1,
		nextMessageID: 1,
		nextSessionID: 1,
	}
}

// Close implements store.Store. No resources to release.
func (s *Store) Close() error { return nil }

// CreateTask implements store.Store.
func (s *Store) CreateTask(_ context.Context, task *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[task.Code]; exists {
		return nil, domain.DuplicateCodef("task code %q already exists", task.Code)
	}
	t := task.Clone()
	t.ID = s.nextTaskID
	s.nextTaskID++
	s.tasks[t.ID] = t
	s.byCode[t.Code] = t.ID
	return t.Clone(), nil
}

// GetTaskByID implements store.Store.
func (s *Store) GetTaskByID(_ context.Context, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.NotFoundf("task %d not found", id)
	}
	return t.Clone(), nil
}

// GetTaskByCode implements store.Store.
func (s *Store) GetTaskByCode(_ context.Context, code string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, domain.NotFoundf("task with code %q not found", code)
	}
	return s.tasks[id].Clone(), nil
}

// ListTasks implements store.Store.
func (s *Store) ListTasks(_ context.Context, f store.TaskFilter) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []*domain.Task{}
	for _, t := range s.tasks {
		if f.Unowned && t.Owner != nil {
			continue
		}
		if !f.Unowned && f.Owner != nil && (t.Owner == nil || *t.Owner != *f.Owner) {
			continue
		}
		if f.State != nil && t.State != *f.State {
			continue
		}
		if f.DateFrom != nil && t.CreatedAt.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && !t.CreatedAt.Before(*f.DateTo) {
			continue
		}
		matched = append(matched, t)
	}
	sortTasks(matched)
	return clonePage(matched, f.Offset, f.Limit, (*domain.Task).Clone), nil
}

// MutateTask implements store.Store.
func (s *Store) MutateTask(_ context.Context, id int64, mutate func(*domain.Task) error) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.NotFoundf("task %d not found", id)
	}
	draft := t.Clone()
	if err := mutate(draft); err != nil {
		return nil, err
	}
	if draft.Code != t.Code {
		if _, exists := s.byCode[draft.Code]; exists {
			return nil, domain.DuplicateCodef("task code %q already exists", draft.Code)
		}
		delete(s.byCode, t.Code)
		s.byCode[draft.Code] = id
	}
	s.tasks[id] = draft
	return draft.Clone(), nil
}

// ClaimTask implements store.Store. The whole compare-and-set runs under the
// writer mutex, which is the in-memory stand-in for the storage write lock.
func (s *Store) ClaimTask(_ context.Context, id int64, agent string, now time.Time) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.NotFoundf("task %d not found", id)
	}
	if t.Owner != nil {
		return nil, domain.Conflictf(domain.ReasonAlreadyClaimed, "task %d is already claimed by %s", id, *t.Owner)
	}
	if t.State != domain.StateCreated {
		return nil, domain.Conflictf(domain.ReasonWrongState, "task %d is in state %s, not %s", id, t.State, domain.StateCreated)
	}
	owner := agent
	t.Owner = &owner
	t.State = domain.StateInProgress
	t.UpdatedAt = now.UTC()
	return t.Clone(), nil
}

// ReleaseTask implements store.Store.
func (s *Store) ReleaseTask(_ context.Context, id int64, agent string, now time.Time) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.NotFoundf("task %d not found", id)
	}
	if t.Owner == nil || *t.Owner != agent {
		return nil, domain.Conflictf(domain.ReasonNotOwner, "task %d is not owned by %s", id, agent)
	}
	if t.State != domain.StateInProgress && t.State != domain.StateBlocked {
		return nil, domain.Conflictf(domain.ReasonWrongState, "task %d is in state %s, not %s or %s", id, t.State, domain.StateInProgress, domain.StateBlocked)
	}
	t.Owner = nil
	t.State = domain.StateCreated
	t.UpdatedAt = now.UTC()
	return t.Clone(), nil
}

// CreateMessage implements store.Store.
func (s *Store) CreateMessage(_ context.Context, msg *domain.TaskMessage) (*domain.TaskMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[msg.TaskID]
	if !ok {
		return nil, domain.NotFoundf("task %d not found", msg.TaskID)
	}
	if t.State == domain.StateArchived {
		return nil, domain.InvalidTransitionf("task %d is archived and no longer accepts messages", msg.TaskID)
	}
	if msg.ReplyTo != nil {
		parent, ok := s.messages[*msg.ReplyTo]
		if !ok {
			return nil, domain.NotFoundf("reply_to message %d not found", *msg.ReplyTo)
		}
		if parent.TaskID != msg.TaskID {
			return nil, domain.Validationf("reply_to message %d belongs to a different task", *msg.ReplyTo)
		}
	}
	m := msg.Clone()
	m.ID = s.nextMessageID
	s.nextMessageID++
	s.messages[m.ID] = m
	return m.Clone(), nil
}

// ListMessages implements store.Store.
func (s *Store) ListMessages(_ context.Context, f store.MessageFilter) ([]*domain.TaskMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []*domain.TaskMessage{}
	for _, m := range s.messages {
		if m.TaskID != f.TaskID {
			continue
		}
		if f.Author != nil && m.Author != *f.Author {
			continue
		}
		if f.Target != nil && (m.Target == nil || *m.Target != *f.Target) {
			continue
		}
		if f.Kind != nil && m.Kind != *f.Kind {
			continue
		}
		if f.ReplyTo != nil && (m.ReplyTo == nil || *m.ReplyTo != *f.ReplyTo) {
			continue
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return clonePage(matched, f.Offset, f.Limit, (*domain.TaskMessage).Clone), nil
}

// StartSession implements store.Store.
func (s *Store) StartSession(_ context.Context, taskID int64, agent string, now time.Time) (*domain.WorkSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, domain.NotFoundf("task %d not found", taskID)
	}
	if t.Owner == nil || *t.Owner != agent {
		return nil, domain.Conflictf(domain.ReasonNotOwner, "task %d is not owned by %s", taskID, agent)
	}
	if t.State != domain.StateInProgress && t.State != domain.StateReview {
		return nil, domain.Conflictf(domain.ReasonWrongState, "task %d is in state %s; work sessions require %s or %s",
			taskID, t.State, domain.StateInProgress, domain.StateReview)
	}
	for _, sess := range s.sessions {
		if sess.TaskID == taskID && sess.Agent == agent && sess.Open() {
			return nil, domain.Conflictf(domain.ReasonSessionOpen, "agent %s already has an open session on task %d", agent, taskID)
		}
	}
	sess := &domain.WorkSession{ID: s.nextSessionID, TaskID: taskID, Agent: agent, StartedAt: now.UTC()}
	s.nextSessionID++
	s.sessions[sess.ID] = sess
	return sess.Clone(), nil
}

// EndSession implements store.Store.
func (s *Store) EndSession(_ context.Context, id int64, now time.Time, notes *string, score *float64) (*domain.WorkSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.NotFoundf("work session %d not found", id)
	}
	if !sess.Open() {
		return nil, domain.Conflictf(domain.ReasonSessionClosed, "work session %d is already ended", id)
	}
	ended := now.UTC()
	if ended.Before(sess.StartedAt) {
		ended = sess.StartedAt
	}
	sess.EndedAt = &ended
	if notes != nil {
		v := *notes
		sess.Notes = &v
	}
	if score != nil {
		v := *score
		sess.ProductivityScore = &v
	}
	return sess.Clone(), nil
}

// GetSession implements store.Store.
func (s *Store) GetSession(_ context.Context, id int64) (*domain.WorkSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.NotFoundf("work session %d not found", id)
	}
	return sess.Clone(), nil
}

// Stats implements store.Store.
func (s *Store) Stats(_ context.Context) (*store.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &store.Stats{TasksByState: make(map[domain.State]int)}
	for _, t := range s.tasks {
		st.TasksByState[t.State]++
	}
	st.Messages = len(s.messages)
	for _, sess := range s.sessions {
		if sess.Open() {
			st.OpenSessions++
		}
	}
	return st, nil
}

func sortTasks(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// clonePage applies offset/limit and deep-copies the window so callers never
// alias store-owned values.
func clonePage[T any](items []T, offset, limit int, clone func(T) T) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = clone(it)
	}
	return out
}
