package pipeline

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/react"
)

// State is the boundary's position in its lifecycle
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateRendered State = "rendered"
	StateEmpty    State = "empty"
	StateFailed   State = "failed"
)

// Boundary holds exactly one outcome and the session behind it. Nothing a
// script does escapes it: every error and panic becomes a Failed outcome.
type Boundary struct {
	mu       sync.Mutex
	pipeline *Pipeline
	logger   *logging.Logger

	state   State
	outcome Outcome
	live    *Session
}

// NewBoundary creates an idle boundary around p
func NewBoundary(p *Pipeline) *Boundary {
	return &Boundary{
		pipeline: p,
		logger:   p.logger.Named("boundary"),
		state:    StateIdle,
	}
}

// Run tears down the previous session, clears the output and runs the
// pipeline. The returned outcome replaces the previous one entirely.
func (b *Boundary) Run(ctx context.Context, t topic.Topic, script string) Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.teardown()
	b.state = StateRunning
	b.outcome = Outcome{}

	out, live := b.pipeline.Run(ctx, t, script)
	b.outcome = out
	b.live = live
	b.state = stateOf(out.Kind)
	return out
}

// Dispatch forwards an event to the live session. A handler that throws
// leaves the outcome Rendered and its error is returned; a re-render that
// fails, or a timeout, turns the outcome Failed.
func (b *Boundary) Dispatch(ctx context.Context, nodeID string, ev react.Event) (out Outcome, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.live == nil {
		b.recordEvent(ev.Type, "no_session")
		return b.outcome, ErrNoSession
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Stage: StageDispatch, Value: rec}
			b.logger.Error("recovered panic during dispatch", zap.Any("panic", rec), zap.Stack("stack"))
			b.fail(err)
			out = b.outcome
		}
	}()

	err = b.live.Dispatch(ctx, nodeID, ev)

	var he *react.HandlerError
	switch {
	case err == nil:
		b.recordEvent(ev.Type, "ok")
		b.outcome = b.outcome.withTree(b.live.Tree())
	case errors.Is(err, react.ErrNodeNotFound):
		b.recordEvent(ev.Type, "not_found")
	case errors.As(err, &he) && !interrupted(err):
		b.recordEvent(ev.Type, "handler_error")
		b.outcome = b.outcome.withTree(b.live.Tree())
	default:
		b.recordEvent(ev.Type, "failed")
		b.fail(err)
	}
	if b.live != nil {
		b.outcome.Console = b.live.Console()
	}
	return b.outcome, err
}

// Outcome returns the current outcome
func (b *Boundary) Outcome() Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outcome
}

// State returns the current lifecycle state
func (b *Boundary) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Close tears down the live session and returns to Idle
func (b *Boundary) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.teardown()
	b.state = StateIdle
	b.outcome = Outcome{}
}

// fail replaces the outcome with a failure and drops the session
func (b *Boundary) fail(err error) {
	b.outcome = b.outcome.failed(StageDispatch, diagnostic(err))
	b.state = StateFailed
	b.teardown()
	if m := b.pipeline.metrics; m != nil {
		m.RecordRun(b.outcome.Topic.String(), string(Failed), string(StageDispatch), 0)
	}
}

// teardown closes the live session. Cleanup errors are logged only.
func (b *Boundary) teardown() {
	if b.live == nil {
		return
	}
	live := b.live
	b.live = nil
	if err := live.Close(); err != nil {
		b.logger.Warn("effect cleanup failed during teardown",
			zap.String("topic", live.Topic().String()),
			zap.String("run_id", b.outcome.RunID),
			zap.Error(err),
		)
	}
}

func (b *Boundary) recordEvent(event, result string) {
	if m := b.pipeline.metrics; m != nil {
		m.RecordEvent(event, result)
	}
}

func stateOf(k Kind) State {
	switch k {
	case Rendered:
		return StateRendered
	case Empty:
		return StateEmpty
	default:
		return StateFailed
	}
}
