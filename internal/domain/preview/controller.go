package preview

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/react"
)

// Trigger says why a snapshot was produced
type Trigger string

const (
	TriggerStart    Trigger = "start"
	TriggerEdit     Trigger = "edit"
	TriggerSelect   Trigger = "select"
	TriggerDispatch Trigger = "dispatch"
	TriggerRefresh  Trigger = "refresh"
)

// Snapshot is what subscribers see after every run or dispatch
type Snapshot struct {
	Seq        uint64           `json:"seq"`
	Topic      topic.Topic      `json:"topic"`
	Trigger    Trigger          `json:"trigger"`
	Outcome    pipeline.Outcome `json:"outcome"`
	Stylesheet string           `json:"stylesheet"`
	At         time.Time        `json:"at"`
}

// Controller re-runs the pipeline whenever the active topic's script or
// stylesheet changes, or the active topic itself changes. Runs are
// serialized and complete before the call that caused them returns.
type Controller struct {
	store    *workspace.Store
	boundary *pipeline.Boundary
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	// runMu serializes runs, dispatches and publishing
	runMu sync.Mutex
	ctx   context.Context
	seq   uint64
	stop  func()

	snapMu  sync.RWMutex
	current Snapshot

	subMu   sync.RWMutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewController wires a controller to store. Call Start to begin.
func NewController(store *workspace.Store, boundary *pipeline.Boundary, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		store:    store,
		boundary: boundary,
		logger:   logger.Named("preview"),
		ctx:      context.Background(),
		subs:     make(map[int]func(Snapshot)),
	}
}

// WithMetrics counts handled and ignored changes in m
func (c *Controller) WithMetrics(m *monitoring.Metrics) *Controller {
	c.metrics = m
	return c
}

// Start subscribes to the store and renders the active topic once. ctx is
// passed to every later run; cancelling it interrupts a running script.
func (c *Controller) Start(ctx context.Context) Snapshot {
	c.runMu.Lock()
	if ctx != nil {
		c.ctx = ctx
	}
	if c.stop == nil {
		c.stop = c.store.Subscribe(c.onChange)
	}
	c.runMu.Unlock()

	return c.Refresh(TriggerStart)
}

// Stop unsubscribes from the store and tears down the live session
func (c *Controller) Stop() {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.boundary.Close()
}

// Refresh runs the pipeline over the active topic
func (c *Controller) Refresh(trigger Trigger) Snapshot {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	return c.run(trigger)
}

func (c *Controller) onChange(change workspace.Change) {
	if change.Kind == workspace.ChangeEdit && change.Topic != change.Active {
		c.recordChange("ignored")
		return
	}
	c.recordChange(string(change.Kind))

	trigger := TriggerEdit
	if change.Kind == workspace.ChangeSelect {
		trigger = TriggerSelect
	}
	c.Refresh(trigger)
}

// run executes one pipeline run; callers hold runMu
func (c *Controller) run(trigger Trigger) Snapshot {
	active, files := c.store.ActiveFiles()
	out := c.boundary.Run(c.ctx, active, files.Script)

	if out.Kind == pipeline.Failed {
		c.logger.Debug("preview failed",
			zap.String("topic", active.String()),
			zap.String("stage", string(out.Stage)),
			zap.String("diagnostic", out.Diagnostic),
		)
	}
	return c.publish(trigger, out)
}

// Dispatch forwards an event to the rendered output and publishes the
// result. Events that reach no node publish nothing.
func (c *Controller) Dispatch(ctx context.Context, nodeID string, ev react.Event) (Snapshot, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	out, err := c.boundary.Dispatch(ctx, nodeID, ev)
	if errors.Is(err, pipeline.ErrNoSession) || errors.Is(err, react.ErrNodeNotFound) {
		return c.Snapshot(), err
	}
	return c.publish(TriggerDispatch, out), err
}

// publish stores and fans out a snapshot; callers hold runMu
func (c *Controller) publish(trigger Trigger, out pipeline.Outcome) Snapshot {
	c.seq++
	files, _ := c.store.Get(out.Topic)
	snap := Snapshot{
		Seq:        c.seq,
		Topic:      out.Topic,
		Trigger:    trigger,
		Outcome:    out,
		Stylesheet: files.Stylesheet,
		At:         time.Now(),
	}

	c.snapMu.Lock()
	c.current = snap
	c.snapMu.Unlock()

	c.subMu.RLock()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.RUnlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// Snapshot returns the latest snapshot
func (c *Controller) Snapshot() Snapshot {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.current
}

// Subscribe registers fn for every published snapshot and returns a
// function removing it. fn runs while the controller is busy and must not
// call Refresh or Dispatch.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.nextSub++
	id := c.nextSub
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) recordChange(kind string) {
	if c.metrics != nil {
		c.metrics.RecordChange(kind)
	}
}
