// Package engine implements the coordination operations: task lifecycle,
// work discovery and claiming, session accounting, and task messaging. It
// validates inputs, stamps timestamps, and delegates atomicity to the store.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/logger"
	"github.com/axonhq/axon/internal/store"
)

const (
	// DefaultListLimit applies when a list operation omits limit.
	DefaultListLimit = 100
	// MaxListLimit is the hard cap; larger requests are trimmed, not rejected.
	MaxListLimit = 1000
	// DefaultDiscoverLimit applies when discover_work omits max_tasks.
	DefaultDiscoverLimit = 10
	// DefaultOpTimeout bounds a single store transaction.
	DefaultOpTimeout = 30 * time.Second
)

// Engine executes coordination operations against a Store. It is safe for
// concurrent use; all shared state lives in the store.
type Engine struct {
	store     store.Store
	log       *logger.Logger
	now       func() time.Time
	opTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock. Test hook.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithOpTimeout bounds each store transaction.
func WithOpTimeout(d time.Duration) Option {
	return func(e *Engine) { e.opTimeout = d }
}

// New creates an Engine on top of the given store.
func New(st store.Store, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		log:       log,
		now:       time.Now,
		opTimeout: DefaultOpTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// clock returns the operation timestamp: UTC at second resolution, so the
// stored RFC 3339 strings sort chronologically.
func (e *Engine) clock() time.Time {
	return e.now().UTC().Truncate(time.Second)
}

func (e *Engine) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.opTimeout)
}

// finish applies the logging policy for a completed operation and returns
// the error unchanged (wrapping untyped storage faults first). Rejections
// the caller can correct log at warn; storage faults at error; lookup
// misses stay quiet.
func (e *Engine) finish(op string, err error) error {
	if err == nil {
		return nil
	}
	de, ok := domain.AsError(err)
	if !ok {
		de = domain.WrapStore(err, "%s failed", op)
		e.log.Error("operation failed", zap.String("op", op), zap.Error(err))
		return de
	}
	switch de.Kind {
	case domain.KindStore:
		e.log.Error("operation failed", zap.String("op", op), zap.Error(err))
	case domain.KindNotFound:
		e.log.Debug("operation target missing", zap.String("op", op), zap.Error(err))
	default:
		e.log.Warn("operation rejected",
			zap.String("op", op),
			zap.String("kind", string(de.Kind)),
			zap.Error(err))
	}
	return err
}

// page resolves limit/offset against defaults and caps. A nil limit takes
// the default; oversized limits are trimmed to MaxListLimit.
func page(limit, offset *int) (int, int, error) {
	l := DefaultListLimit
	if limit != nil {
		if *limit < 1 {
			return 0, 0, domain.Validationf("limit must be at least 1, got %d", *limit)
		}
		l = *limit
		if l > MaxListLimit {
			l = MaxListLimit
		}
	}
	o := 0
	if offset != nil {
		if *offset < 0 {
			return 0, 0, domain.Validationf("offset must not be negative, got %d", *offset)
		}
		o = *offset
	}
	return l, o, nil
}

// Stats reports aggregate store counts for the health and dashboard surfaces.
func (e *Engine) Stats(ctx context.Context) (*store.Stats, error) {
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	st, err := e.store.Stats(ctx)
	if err != nil {
		return nil, e.finish("stats", err)
	}
	return st, nil
}
