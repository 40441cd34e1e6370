package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/store"
)

const taskColumns = "id, code, name, description, owner, state, created_at, updated_at, done_at, archived_at"

// CreateTask implements store.Store.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	res, err := s.writer.ExecContext(ctx,
		"INSERT INTO tasks (code, name, description, owner, state, created_at, updated_at, done_at, archived_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		task.Code, task.Name, task.Description, nullString(task.Owner), string(task.State),
		formatTime(task.CreatedAt), formatTime(task.UpdatedAt), nullTime(task.DoneAt), nullTime(task.ArchivedAt))
	if err != nil {
		if isUniqueViolation(err, "tasks.code") {
			return nil, domain.DuplicateCodef("task code %q already exists", task.Code)
		}
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task id: %w", err)
	}
	out := task.Clone()
	out.ID = id
	return out, nil
}

// GetTaskByID implements store.Store.
func (s *Store) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := s.reader.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("task %d not found", id)
	}
	return t, err
}

// GetTaskByCode implements store.Store.
func (s *Store) GetTaskByCode(ctx context.Context, code string) (*domain.Task, error) {
	row := s.reader.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE code = ?", code)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("task with code %q not found", code)
	}
	return t, err
}

// ListTasks implements store.Store.
func (s *Store) ListTasks(ctx context.Context, f store.TaskFilter) ([]*domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var conds []string
	var args []any
	if f.Unowned {
		conds = append(conds, "owner IS NULL")
	} else if f.Owner != nil {
		conds = append(conds, "owner = ?")
		args = append(args, *f.Owner)
	}
	if f.State != nil {
		conds = append(conds, "state = ?")
		args = append(args, string(*f.State))
	}
	if f.DateFrom != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, formatTime(*f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, "created_at < ?")
		args = append(args, formatTime(*f.DateTo))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks iteration: %w", err)
	}
	return tasks, nil
}

// MutateTask implements store.Store.
func (s *Store) MutateTask(ctx context.Context, id int64, mutate func(*domain.Task) error) (*domain.Task, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mutate: %w", err)
	}
	defer tx.Rollback()

	t, err := getTaskTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(t); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET code = ?, name = ?, description = ?, owner = ?, state = ?, updated_at = ?, done_at = ?, archived_at = ? WHERE id = ?",
		t.Code, t.Name, t.Description, nullString(t.Owner), string(t.State),
		formatTime(t.UpdatedAt), nullTime(t.DoneAt), nullTime(t.ArchivedAt), id); err != nil {
		if isUniqueViolation(err, "tasks.code") {
			return nil, domain.DuplicateCodef("task code %q already exists", t.Code)
		}
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mutate: %w", err)
	}
	return t, nil
}

// ClaimTask implements store.Store. The precondition lives in the UPDATE's
// WHERE clause, so two concurrent claims can never both match the row.
func (s *Store) ClaimTask(ctx context.Context, id int64, agent string, now time.Time) (*domain.Task, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE tasks SET owner = ?, state = ?, updated_at = ? WHERE id = ? AND owner IS NULL AND state = ?",
		agent, string(domain.StateInProgress), formatTime(now), id, string(domain.StateCreated))
	if err != nil {
		return nil, fmt.Errorf("claim task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim task %d rows: %w", id, err)
	}
	if n == 0 {
		t, err := getTaskTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if t.Owner != nil {
			return nil, domain.Conflictf(domain.ReasonAlreadyClaimed, "task %d is already claimed by %s", id, *t.Owner)
		}
		return nil, domain.Conflictf(domain.ReasonWrongState, "task %d is in state %s, not %s", id, t.State, domain.StateCreated)
	}

	t, err := getTaskTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return t, nil
}

// ReleaseTask implements store.Store. Symmetric to ClaimTask: only the
// current owner may release, and only from InProgress or Blocked.
func (s *Store) ReleaseTask(ctx context.Context, id int64, agent string, now time.Time) (*domain.Task, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin release: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE tasks SET owner = NULL, state = ?, updated_at = ? WHERE id = ? AND owner = ? AND state IN (?, ?)",
		string(domain.StateCreated), formatTime(now), id, agent,
		string(domain.StateInProgress), string(domain.StateBlocked))
	if err != nil {
		return nil, fmt.Errorf("release task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("release task %d rows: %w", id, err)
	}
	if n == 0 {
		t, err := getTaskTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if t.Owner == nil || *t.Owner != agent {
			return nil, domain.Conflictf(domain.ReasonNotOwner, "task %d is not owned by %s", id, agent)
		}
		return nil, domain.Conflictf(domain.ReasonWrongState, "task %d is in state %s, not %s or %s", id, t.State, domain.StateInProgress, domain.StateBlocked)
	}

	t, err := getTaskTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit release: %w", err)
	}
	return t, nil
}

func getTaskTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Task, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("task %d not found", id)
	}
	return t, err
}

func scanTask(sc interface{ Scan(dest ...any) error }) (*domain.Task, error) {
	var t domain.Task
	var owner sql.NullString
	var state, created, updated string
	var done, archived sql.NullString
	if err := sc.Scan(&t.ID, &t.Code, &t.Name, &t.Description, &owner, &state, &created, &updated, &done, &archived); err != nil {
		return nil, err
	}
	t.State = domain.State(state)
	if owner.Valid {
		t.Owner = &owner.String
	}
	var err error
	if t.CreatedAt, err = parseTime(created, "tasks created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updated, "tasks updated_at"); err != nil {
		return nil, err
	}
	if done.Valid {
		ts, err := parseTime(done.String, "tasks done_at")
		if err != nil {
			return nil, err
		}
		t.DoneAt = &ts
	}
	if archived.Valid {
		ts, err := parseTime(archived.String, "tasks archived_at")
		if err != nil {
			return nil, err
		}
		t.ArchivedAt = &ts
	}
	return &t, nil
}
