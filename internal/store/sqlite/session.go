package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/axonhq/axon/internal/domain"
)

const sessionColumns = "id, task_id, agent, started_at, ended_at, notes, productivity_score"

// StartSession implements store.Store. The ownership and state preconditions
// are checked in the same transaction as the insert; the partial unique index
// on (task_id, agent) WHERE ended_at IS NULL backs the one-open-session rule
// even against concurrent starts.
func (s *Store) StartSession(ctx context.Context, taskID int64, agent string, now time.Time) (*domain.WorkSession, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	defer tx.Rollback()

	var owner sql.NullString
	var state string
	err = tx.QueryRowContext(ctx, "SELECT owner, state FROM tasks WHERE id = ?", taskID).Scan(&owner, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("task %d not found", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("session task lookup: %w", err)
	}
	if !owner.Valid || owner.String != agent {
		return nil, domain.Conflictf(domain.ReasonNotOwner, "task %d is not owned by %s", taskID, agent)
	}
	if st := domain.State(state); st != domain.StateInProgress && st != domain.StateReview {
		return nil, domain.Conflictf(domain.ReasonWrongState, "task %d is in state %s; work sessions require %s or %s",
			taskID, st, domain.StateInProgress, domain.StateReview)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO work_sessions (task_id, agent, started_at) VALUES (?, ?, ?)",
		taskID, agent, formatTime(now))
	if err != nil {
		if isUniqueViolation(err, "work_sessions") {
			return nil, domain.Conflictf(domain.ReasonSessionOpen, "agent %s already has an open session on task %d", agent, taskID)
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert session id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit session: %w", err)
	}

	return &domain.WorkSession{ID: id, TaskID: taskID, Agent: agent, StartedAt: now.UTC()}, nil
}

// EndSession implements store.Store. ended_at is clamped so it never precedes
// started_at when the wall clock regresses.
func (s *Store) EndSession(ctx context.Context, id int64, now time.Time, notes *string, score *float64) (*domain.WorkSession, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin end session: %w", err)
	}
	defer tx.Rollback()

	sess, err := getSessionTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !sess.Open() {
		return nil, domain.Conflictf(domain.ReasonSessionClosed, "work session %d is already ended", id)
	}

	ended := now.UTC()
	if ended.Before(sess.StartedAt) {
		ended = sess.StartedAt
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE work_sessions SET ended_at = ?, notes = ?, productivity_score = ? WHERE id = ?",
		formatTime(ended), nullString(notes), nullFloat(score), id); err != nil {
		return nil, fmt.Errorf("end session %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit end session: %w", err)
	}

	sess.EndedAt = &ended
	sess.Notes = notes
	sess.ProductivityScore = score
	return sess, nil
}

// GetSession implements store.Store.
func (s *Store) GetSession(ctx context.Context, id int64) (*domain.WorkSession, error) {
	row := s.reader.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM work_sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("work session %d not found", id)
	}
	return sess, err
}

func getSessionTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.WorkSession, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM work_sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("work session %d not found", id)
	}
	return sess, err
}

func scanSession(sc interface{ Scan(dest ...any) error }) (*domain.WorkSession, error) {
	var sess domain.WorkSession
	var started string
	var ended, notes sql.NullString
	var score sql.NullFloat64
	if err := sc.Scan(&sess.ID, &sess.TaskID, &sess.Agent, &started, &ended, &notes, &score); err != nil {
		return nil, err
	}
	var err error
	if sess.StartedAt, err = parseTime(started, "work_sessions started_at"); err != nil {
		return nil, err
	}
	if ended.Valid {
		ts, err := parseTime(ended.String, "work_sessions ended_at")
		if err != nil {
			return nil, err
		}
		sess.EndedAt = &ts
	}
	if notes.Valid {
		sess.Notes = &notes.String
	}
	if score.Valid {
		sess.ProductivityScore = &score.Float64
	}
	return &sess, nil
}
