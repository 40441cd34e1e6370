package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/axonhq/axon/internal/domain"
)

// StartWorkSession opens a work session on a task the agent currently owns.
// The task must be InProgress or Review, and the agent must not already have
// an open session on it.
func (e *Engine) StartWorkSession(ctx context.Context, taskID int64, agent string) (*domain.WorkSession, error) {
	if err := domain.ValidateAgentName(agent); err != nil {
		return nil, e.finish("start_work_session", err)
	}

	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	session, err := e.store.StartSession(ctx, taskID, agent, e.clock())
	if err != nil {
		return nil, e.finish("start_work_session", err)
	}
	e.log.Info("work session started",
		zap.Int64("session_id", session.ID),
		zap.Int64("task_id", taskID),
		zap.String("agent", agent))
	return session, nil
}

// EndWorkSession closes an open session, stamping ended_at and storing the
// optional notes and productivity score verbatim.
func (e *Engine) EndWorkSession(ctx context.Context, sessionID int64, notes *string, score *float64) (*domain.WorkSession, error) {
	if notes != nil {
		if err := domain.ValidateNotes(*notes); err != nil {
			return nil, e.finish("end_work_session", err)
		}
	}
	if score != nil {
		if err := domain.ValidateProductivityScore(*score); err != nil {
			return nil, e.finish("end_work_session", err)
		}
	}

	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	session, err := e.store.EndSession(ctx, sessionID, e.clock(), notes, score)
	if err != nil {
		return nil, e.finish("end_work_session", err)
	}
	e.log.Info("work session ended",
		zap.Int64("session_id", session.ID),
		zap.Int64("task_id", session.TaskID),
		zap.String("agent", session.Agent))
	return session, nil
}

// GetWorkSession returns the session, or nil without error when it does not
// exist.
func (e *Engine) GetWorkSession(ctx context.Context, id int64) (*domain.WorkSession, error) {
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	session, err := e.store.GetSession(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, nil
		}
		return nil, e.finish("get_work_session", err)
	}
	return session, nil
}
