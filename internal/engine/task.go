package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/store"
)

// CreateTaskParams carries the create_task inputs.
type CreateTaskParams struct {
	Code        string
	Name        string
	Description string
	Owner       *string
}

// CreateTask validates the inputs and inserts a new task in state Created.
func (e *Engine) CreateTask(ctx context.Context, p CreateTaskParams) (*domain.Task, error) {
	if err := domain.ValidateTaskCode(p.Code); err != nil {
		return nil, e.finish("create_task", err)
	}
	if err := domain.ValidateTaskName(p.Name); err != nil {
		return nil, e.finish("create_task", err)
	}
	if err := domain.ValidateDescription(p.Description); err != nil {
		return nil, e.finish("create_task", err)
	}
	if p.Owner != nil {
		if err := domain.ValidateAgentName(*p.Owner); err != nil {
			return nil, e.finish("create_task", err)
		}
	}

	now := e.clock()
	task := &domain.Task{
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Owner:       p.Owner,
		State:       domain.StateCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	created, err := e.store.CreateTask(ctx, task)
	if err != nil {
		return nil, e.finish("create_task", err)
	}
	e.log.Info("task created",
		zap.Int64("task_id", created.ID),
		zap.String("code", created.Code))
	return created, nil
}

// UpdateTaskParams carries the update_task inputs. Nil fields are left
// unchanged; OwnerSet distinguishes "unassign" from "not provided".
type UpdateTaskParams struct {
	ID          int64
	Name        *string
	Description *string
	Owner       *string
	OwnerSet    bool
}

// UpdateTask applies a partial update. Archived tasks reject every mutation.
func (e *Engine) UpdateTask(ctx context.Context, p UpdateTaskParams) (*domain.Task, error) {
	if p.Name == nil && p.Description == nil && !p.OwnerSet {
		return nil, e.finish("update_task",
			domain.Validationf("at least one of name, description, or owner must be provided"))
	}
	if p.Name != nil {
		if err := domain.ValidateTaskName(*p.Name); err != nil {
			return nil, e.finish("update_task", err)
		}
	}
	if p.Description != nil {
		if err := domain.ValidateDescription(*p.Description); err != nil {
			return nil, e.finish("update_task", err)
		}
	}
	if p.OwnerSet && p.Owner != nil {
		if err := domain.ValidateAgentName(*p.Owner); err != nil {
			return nil, e.finish("update_task", err)
		}
	}

	now := e.clock()
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	task, err := e.store.MutateTask(ctx, p.ID, func(t *domain.Task) error {
		if t.State == domain.StateArchived {
			return domain.InvalidTransitionf("task %d is archived and can no longer be modified", p.ID)
		}
		if p.Name != nil {
			t.Name = *p.Name
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.OwnerSet {
			t.Owner = p.Owner
		}
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, e.finish("update_task", err)
	}
	e.log.Info("task updated", zap.Int64("task_id", task.ID))
	return task, nil
}

// AssignTask sets or clears the owner without touching the state machine.
// A nil owner unassigns.
func (e *Engine) AssignTask(ctx context.Context, id int64, owner *string) (*domain.Task, error) {
	if owner != nil {
		if err := domain.ValidateAgentName(*owner); err != nil {
			return nil, e.finish("assign_task", err)
		}
	}

	now := e.clock()
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	task, err := e.store.MutateTask(ctx, id, func(t *domain.Task) error {
		if t.State == domain.StateArchived {
			return domain.InvalidTransitionf("task %d is archived and can no longer be modified", id)
		}
		t.Owner = owner
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, e.finish("assign_task", err)
	}
	e.log.Info("task assigned",
		zap.Int64("task_id", task.ID),
		zap.Stringp("owner", task.Owner))
	return task, nil
}

// SetTaskState moves the task through the state machine, stamping done_at
// and archived_at when the terminal states are entered.
func (e *Engine) SetTaskState(ctx context.Context, id int64, target domain.State) (*domain.Task, error) {
	now := e.clock()
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	task, err := e.store.MutateTask(ctx, id, func(t *domain.Task) error {
		if err := domain.CheckTransition(t.State, target); err != nil {
			return err
		}
		switch target {
		case domain.StateDone:
			t.DoneAt = &now
		case domain.StateArchived:
			t.ArchivedAt = &now
		}
		t.State = target
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, e.finish("set_task_state", err)
	}
	e.log.Info("task state changed",
		zap.Int64("task_id", task.ID),
		zap.String("state", task.State.String()))
	return task, nil
}

// ArchiveTask is set_task_state(id, Archived) under its own operation name.
func (e *Engine) ArchiveTask(ctx context.Context, id int64) (*domain.Task, error) {
	return e.SetTaskState(ctx, id, domain.StateArchived)
}

// GetTaskByID returns the task, or nil without error when it does not exist.
func (e *Engine) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	task, err := e.store.GetTaskByID(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, nil
		}
		return nil, e.finish("get_task_by_id", err)
	}
	return task, nil
}

// GetTaskByCode returns the task, or nil without error when it does not exist.
func (e *Engine) GetTaskByCode(ctx context.Context, code string) (*domain.Task, error) {
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	task, err := e.store.GetTaskByCode(ctx, code)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, nil
		}
		return nil, e.finish("get_task_by_code", err)
	}
	return task, nil
}

// ListTasksParams carries the list_tasks filters. Nil fields are not applied.
type ListTasksParams struct {
	Owner    *string
	State    *string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    *int
	Offset   *int
}

// ListTasks returns tasks matching the AND-composed filters, ordered by
// (created_at, id) ascending.
func (e *Engine) ListTasks(ctx context.Context, p ListTasksParams) ([]*domain.Task, error) {
	limit, offset, err := page(p.Limit, p.Offset)
	if err != nil {
		return nil, e.finish("list_tasks", err)
	}
	f := store.TaskFilter{
		DateFrom: p.DateFrom,
		DateTo:   p.DateTo,
		Limit:    limit,
		Offset:   offset,
	}
	if p.Owner != nil {
		if err := domain.ValidateAgentName(*p.Owner); err != nil {
			return nil, e.finish("list_tasks", err)
		}
		f.Owner = p.Owner
	}
	if p.State != nil {
		state, err := domain.ParseState(*p.State)
		if err != nil {
			return nil, e.finish("list_tasks", err)
		}
		f.State = &state
	}

	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	tasks, err := e.store.ListTasks(ctx, f)
	if err != nil {
		return nil, e.finish("list_tasks", err)
	}
	return tasks, nil
}
