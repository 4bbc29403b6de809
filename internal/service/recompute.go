package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RecomputeResult is the outcome of one run.
type RecomputeResult[Res any] struct {
	RunID uuid.UUID
	Value Res
	Err   error
}

// Recomputer coalesces bursts of requests into one computation. Every Submit
// supersedes the previous one: a pending run is dropped and an in-flight run
// has its context cancelled. Only the latest run's result is delivered, and
// an undelivered older result is replaced by a newer one.
type Recomputer[Req, Res any] struct {
	compute func(ctx context.Context, req Req) (Res, error)
	delay   time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	latest  uuid.UUID
	closed  bool
	results chan RecomputeResult[Res]
}

func NewRecomputer[Req, Res any](delay time.Duration, compute func(ctx context.Context, req Req) (Res, error), logger zerolog.Logger) *Recomputer[Req, Res] {
	return &Recomputer[Req, Res]{
		compute: compute,
		delay:   delay,
		logger:  logger.With().Str("component", "recomputer").Logger(),
		results: make(chan RecomputeResult[Res], 1),
	}
}

// Submit schedules a run after the debounce delay and returns its id. The
// run's context derives from ctx, so it must outlive an HTTP request if the
// submit happens inside one. Submit returns uuid.Nil once closed.
func (r *Recomputer[Req, Res]) Submit(ctx context.Context, req Req) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return uuid.Nil
	}
	r.supersede()

	id := uuid.New()
	runCtx, cancel := context.WithCancel(ctx)
	r.latest = id
	r.cancel = cancel
	r.timer = time.AfterFunc(r.delay, func() { r.run(runCtx, id, req) })
	return id
}

// Results delivers the latest completed run. It is closed by Close.
func (r *Recomputer[Req, Res]) Results() <-chan RecomputeResult[Res] {
	return r.results
}

func (r *Recomputer[Req, Res]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.supersede()
	close(r.results)
}

// supersede must be called with mu held.
func (r *Recomputer[Req, Res]) supersede() {
	if r.timer != nil {
		r.timer.Stop()
	}
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Recomputer[Req, Res]) run(ctx context.Context, id uuid.UUID, req Req) {
	if ctx.Err() != nil {
		return
	}

	started := time.Now()
	value, err := r.compute(ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || id != r.latest || ctx.Err() != nil {
		r.logger.Debug().Str("run_id", id.String()).Msg("Discarding superseded run")
		return
	}

	select {
	case <-r.results:
	default:
	}
	r.results <- RecomputeResult[Res]{RunID: id, Value: value, Err: err}

	r.logger.Debug().
		Str("run_id", id.String()).
		Dur("took", time.Since(started)).
		Msg("Recompute finished")
}
