// Package domain holds the coordination entities, the task state machine,
// and the pure validation rules. It has no dependencies on other packages.
package domain

import "time"

// Task is the unit of coordinated work.
type Task struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Owner       *string    `json:"owner"` // nil means unassigned
	State       State      `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DoneAt      *time.Time `json:"done_at"`
	ArchivedAt  *time.Time `json:"archived_at"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Owner = cloneString(t.Owner)
	c.DoneAt = cloneTime(t.DoneAt)
	c.ArchivedAt = cloneTime(t.ArchivedAt)
	return &c
}

// TaskMessage is an append-only communication scoped to one task.
type TaskMessage struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	Author    string    `json:"author"`
	Target    *string   `json:"target"` // nil means broadcast
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	ReplyTo   *int64    `json:"reply_to"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the message.
func (m *TaskMessage) Clone() *TaskMessage {
	c := *m
	c.Target = cloneString(m.Target)
	if m.ReplyTo != nil {
		v := *m.ReplyTo
		c.ReplyTo = &v
	}
	return &c
}

// WorkSession records an agent's focused effort on one task.
type WorkSession struct {
	ID                int64      `json:"id"`
	TaskID            int64      `json:"task_id"`
	Agent             string     `json:"agent"`
	StartedAt         time.Time  `json:"started_at"`
	EndedAt           *time.Time `json:"ended_at"`
	Notes             *string    `json:"notes"`
	ProductivityScore *float64   `json:"productivity_score"`
}

// Open reports whether the session has not been ended yet.
func (s *WorkSession) Open() bool { return s.EndedAt == nil }

// Clone returns a deep copy of the session.
func (s *WorkSession) Clone() *WorkSession {
	c := *s
	c.EndedAt = cloneTime(s.EndedAt)
	c.Notes = cloneString(s.Notes)
	if s.ProductivityScore != nil {
		v := *s.ProductivityScore
		c.ProductivityScore = &v
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
