package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/store"
)

const messageColumns = "id, task_id, author, target, kind, content, reply_to, created_at"

// CreateMessage implements store.Store. The archived check and the reply_to
// check run in the same transaction as the insert so the append is atomic
// against a concurrent archive.
func (s *Store) CreateMessage(ctx context.Context, msg *domain.TaskMessage) (*domain.TaskMessage, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin message: %w", err)
	}
	defer tx.Rollback()

	var state string
	err = tx.QueryRowContext(ctx, "SELECT state FROM tasks WHERE id = ?", msg.TaskID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("task %d not found", msg.TaskID)
	}
	if err != nil {
		return nil, fmt.Errorf("message task lookup: %w", err)
	}
	if domain.State(state) == domain.StateArchived {
		return nil, domain.InvalidTransitionf("task %d is archived and no longer accepts messages", msg.TaskID)
	}

	if msg.ReplyTo != nil {
		var replyTaskID int64
		err = tx.QueryRowContext(ctx, "SELECT task_id FROM task_messages WHERE id = ?", *msg.ReplyTo).Scan(&replyTaskID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("reply_to message %d not found", *msg.ReplyTo)
		}
		if err != nil {
			return nil, fmt.Errorf("message reply lookup: %w", err)
		}
		if replyTaskID != msg.TaskID {
			return nil, domain.Validationf("reply_to message %d belongs to a different task", *msg.ReplyTo)
		}
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO task_messages (task_id, author, target, kind, content, reply_to, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		msg.TaskID, msg.Author, nullString(msg.Target), msg.Kind, msg.Content, nullInt(msg.ReplyTo), formatTime(msg.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert message id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit message: %w", err)
	}

	out := msg.Clone()
	out.ID = id
	return out, nil
}

// ListMessages implements store.Store.
func (s *Store) ListMessages(ctx context.Context, f store.MessageFilter) ([]*domain.TaskMessage, error) {
	query := "SELECT " + messageColumns + " FROM task_messages"
	conds := []string{"task_id = ?"}
	args := []any{f.TaskID}
	if f.Author != nil {
		conds = append(conds, "author = ?")
		args = append(args, *f.Author)
	}
	if f.Target != nil {
		conds = append(conds, "target = ?")
		args = append(args, *f.Target)
	}
	if f.Kind != nil {
		conds = append(conds, "kind = ?")
		args = append(args, *f.Kind)
	}
	if f.ReplyTo != nil {
		conds = append(conds, "reply_to = ?")
		args = append(args, *f.ReplyTo)
	}
	query += " WHERE " + strings.Join(conds, " AND ")
	query += " ORDER BY created_at, id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := []*domain.TaskMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages iteration: %w", err)
	}
	return msgs, nil
}

func scanMessage(sc interface{ Scan(dest ...any) error }) (*domain.TaskMessage, error) {
	var m domain.TaskMessage
	var target sql.NullString
	var replyTo sql.NullInt64
	var created string
	if err := sc.Scan(&m.ID, &m.TaskID, &m.Author, &target, &m.Kind, &m.Content, &replyTo, &created); err != nil {
		return nil, err
	}
	if target.Valid {
		m.Target = &target.String
	}
	if replyTo.Valid {
		m.ReplyTo = &replyTo.Int64
	}
	var err error
	if m.CreatedAt, err = parseTime(created, "task_messages created_at"); err != nil {
		return nil, err
	}
	return &m, nil
}

func nullInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
