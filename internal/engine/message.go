package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/store"
)

// CreateMessageParams carries the create_task_message inputs. Target nil
// means broadcast; ReplyTo nil means a top-level message.
type CreateMessageParams struct {
	TaskCode string
	Author   string
	Target   *string
	Kind     string
	Content  string
	ReplyTo  *int64
}

// CreateTaskMessage appends a message to the task's log. The task is
// resolved by code and must not be archived; reply_to must reference a
// message of the same task.
func (e *Engine) CreateTaskMessage(ctx context.Context, p CreateMessageParams) (*domain.TaskMessage, error) {
	if err := domain.ValidateAgentName(p.Author); err != nil {
		return nil, e.finish("create_task_message", err)
	}
	if p.Target != nil {
		if err := domain.ValidateAgentName(*p.Target); err != nil {
			return nil, e.finish("create_task_message", err)
		}
	}
	if err := domain.ValidateMessageKind(p.Kind); err != nil {
		return nil, e.finish("create_task_message", err)
	}
	if err := domain.ValidateMessageContent(p.Content); err != nil {
		return nil, e.finish("create_task_message", err)
	}

	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	task, err := e.store.GetTaskByCode(ctx, p.TaskCode)
	if err != nil {
		return nil, e.finish("create_task_message", err)
	}

	msg := &domain.TaskMessage{
		TaskID:    task.ID,
		Author:    p.Author,
		Target:    p.Target,
		Kind:      p.Kind,
		Content:   p.Content,
		ReplyTo:   p.ReplyTo,
		CreatedAt: e.clock(),
	}
	created, err := e.store.CreateMessage(ctx, msg)
	if err != nil {
		return nil, e.finish("create_task_message", err)
	}
	e.log.Info("message posted",
		zap.Int64("message_id", created.ID),
		zap.Int64("task_id", created.TaskID),
		zap.String("author", created.Author),
		zap.String("kind", created.Kind))
	return created, nil
}

// ListMessagesParams carries the get_task_messages filters. A Target filter
// matches exactly; broadcasts are not folded in.
type ListMessagesParams struct {
	TaskCode string
	Author   *string
	Target   *string
	Kind     *string
	ReplyTo  *int64
	Limit    *int
	Offset   *int
}

// GetTaskMessages returns the task's messages matching the AND-composed
// filters, ordered by (created_at, id) ascending.
func (e *Engine) GetTaskMessages(ctx context.Context, p ListMessagesParams) ([]*domain.TaskMessage, error) {
	limit, offset, err := page(p.Limit, p.Offset)
	if err != nil {
		return nil, e.finish("get_task_messages", err)
	}
	if p.Author != nil {
		if err := domain.ValidateAgentName(*p.Author); err != nil {
			return nil, e.finish("get_task_messages", err)
		}
	}
	if p.Target != nil {
		if err := domain.ValidateAgentName(*p.Target); err != nil {
			return nil, e.finish("get_task_messages", err)
		}
	}
	if p.Kind != nil {
		if err := domain.ValidateMessageKind(*p.Kind); err != nil {
			return nil, e.finish("get_task_messages", err)
		}
	}

	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	task, err := e.store.GetTaskByCode(ctx, p.TaskCode)
	if err != nil {
		return nil, e.finish("get_task_messages", err)
	}

	msgs, err := e.store.ListMessages(ctx, store.MessageFilter{
		TaskID:  task.ID,
		Author:  p.Author,
		Target:  p.Target,
		Kind:    p.Kind,
		ReplyTo: p.ReplyTo,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, e.finish("get_task_messages", err)
	}
	return msgs, nil
}
