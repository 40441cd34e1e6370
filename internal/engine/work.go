package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/store"
)

// DiscoverWork returns up to maxTasks unowned tasks in state Created, oldest
// first. Capabilities are advisory: the engine does not match on them, it
// hands the candidate list back for the agent to judge. No writes happen
// here; a discovered task is only taken via ClaimTask.
func (e *Engine) DiscoverWork(ctx context.Context, agent string, capabilities []string, maxTasks int) ([]*domain.Task, error) {
	if err := domain.ValidateAgentName(agent); err != nil {
		return nil, e.finish("discover_work", err)
	}
	if maxTasks <= 0 {
		maxTasks = DefaultDiscoverLimit
	}
	if maxTasks > MaxListLimit {
		maxTasks = MaxListLimit
	}

	state := domain.StateCreated
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	tasks, err := e.store.ListTasks(ctx, store.TaskFilter{
		Unowned: true,
		State:   &state,
		Limit:   maxTasks,
	})
	if err != nil {
		return nil, e.finish("discover_work", err)
	}
	e.log.Debug("work discovered",
		zap.String("agent", agent),
		zap.Strings("capabilities", capabilities),
		zap.Int("tasks", len(tasks)))
	return tasks, nil
}

// ClaimTask atomically takes ownership of an unowned Created task and moves
// it to InProgress. Exactly one concurrent claimant wins; the rest receive a
// conflict.
func (e *Engine) ClaimTask(ctx context.Context, id int64, agent string) (*domain.Task, error) {
	if err := domain.ValidateAgentName(agent); err != nil {
		return nil, e.finish("claim_task", err)
	}

	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	task, err := e.store.ClaimTask(ctx, id, agent, e.clock())
	if err != nil {
		return nil, e.finish("claim_task", err)
	}
	e.log.Info("task claimed",
		zap.Int64("task_id", task.ID),
		zap.String("agent", agent))
	return task, nil
}

// ReleaseTask hands a claimed task back to the pool: owner cleared, state
// reset to Created. Only the current owner may release, and only from
// InProgress or Blocked.
func (e *Engine) ReleaseTask(ctx context.Context, id int64, agent string) (*domain.Task, error) {
	if err := domain.ValidateAgentName(agent); err != nil {
		return nil, e.finish("release_task", err)
	}

	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	task, err := e.store.ReleaseTask(ctx, id, agent, e.clock())
	if err != nil {
		return nil, e.finish("release_task", err)
	}
	e.log.Info("task released",
		zap.Int64("task_id", task.ID),
		zap.String("agent", agent))
	return task, nil
}
