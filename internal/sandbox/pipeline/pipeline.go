package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/dom"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/jsx"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/normalize"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/react"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/runtime"
	"github.com/GriffinCanCode/hookify/backend/internal/shared/id"
)

// Config holds the limits applied to every run
type Config struct {
	Runtime runtime.Config
	Render  react.Options
}

// DefaultConfig has no timeout and React's render limits
func DefaultConfig() Config {
	return Config{
		Runtime: runtime.DefaultConfig(),
		Render:  react.DefaultOptions(),
	}
}

// Pipeline turns lesson source into an outcome. It keeps no state between
// runs; every run gets a fresh runtime and capability set.
type Pipeline struct {
	config  Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// New creates a pipeline. logger may be nil.
func New(config Config, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		config: config,
		logger: logger.Named("pipeline"),
	}
}

// WithMetrics records stage durations and run outcomes in m
func (p *Pipeline) WithMetrics(m *monitoring.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// WithTracer opens a span per run and per stage
func (p *Pipeline) WithTracer(t *tracing.Tracer) *Pipeline {
	p.tracer = t
	return p
}

// Run executes every stage over script for t. The session is non-nil only
// for a Rendered outcome; the caller owns it and must Close it.
func (p *Pipeline) Run(ctx context.Context, t topic.Topic, script string) (Outcome, *Session) {
	start := time.Now()
	out := Outcome{RunID: id.NewRunID().String(), Topic: t}

	span, ctx := p.startSpan(ctx, "pipeline.run")
	if span != nil {
		span.SetTag("topic", t.String())
		span.SetTag("run_id", out.RunID)
	}

	s := newSession(t, p.config)
	root, err := p.build(ctx, s, script, &out)

	switch {
	case err != nil:
		out = out.failed(out.Stage, diagnostic(err))
	case root == nil:
		out.Kind = Empty
		out.Stage = ""
	default:
		out.Kind = Rendered
		out.Stage = ""
		out = out.withTree(s.Tree())
	}
	out.Console = s.Console()
	out.Duration = time.Since(start)

	if out.Kind != Rendered {
		if cerr := s.Close(); cerr != nil {
			p.logger.Warn("teardown after unsuccessful run failed",
				zap.String("run_id", out.RunID), zap.Error(cerr))
		}
		s = nil
	}

	p.record(out, err)
	if span != nil {
		span.SetTag("outcome", string(out.Kind))
		span.SetError(err)
		p.finishSpan(span)
	}
	return out, s
}

// build runs the stages in order and returns the mounted root, or nil when
// the entry symbol did not resolve. out.Stage tracks the current stage.
func (p *Pipeline) build(ctx context.Context, s *Session, script string, out *Outcome) (goja.Value, error) {
	var (
		normalized, transformed string
		unit                    *runtime.Unit
		root                    goja.Value
	)

	out.Stage = StageNormalize
	if err := p.step(ctx, StageNormalize, func() error {
		normalized = normalize.Normalize(script)
		return nil
	}); err != nil {
		return nil, err
	}

	out.Stage = StageTransform
	if err := p.step(ctx, StageTransform, func() (err error) {
		transformed, err = jsx.Transform(normalized)
		return err
	}); err != nil {
		return nil, err
	}

	out.Stage = StageCompile
	if err := p.step(ctx, StageCompile, func() (err error) {
		unit, err = s.rt.Compile(transformed, s.topic)
		return err
	}); err != nil {
		return nil, err
	}

	out.Stage = StageExecute
	if err := p.step(ctx, StageExecute, func() (err error) {
		root, err = s.rt.Execute(ctx, unit, s.renderer.Bindings())
		return err
	}); err != nil {
		return nil, err
	}
	if root == nil || goja.IsUndefined(root) || goja.IsNull(root) {
		return nil, nil
	}

	out.Stage = StageRender
	if err := p.step(ctx, StageRender, func() error {
		return s.rt.Guard(ctx, func() error {
			return s.renderer.Mount(root)
		})
	}); err != nil {
		return nil, err
	}
	return root, nil
}

// step times fn, wraps it in a span and turns a panic into a PanicError
func (p *Pipeline) step(ctx context.Context, stage Stage, fn func() error) (err error) {
	span, _ := p.startSpan(ctx, "pipeline."+string(stage))
	timer := monitoring.NewTimer(p.metrics, string(stage))

	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Stage: stage, Value: rec}
			p.logger.Error("recovered panic in pipeline stage",
				zap.String("stage", string(stage)),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
		}
		timer.Stop()
		if span != nil {
			span.SetError(err)
			p.finishSpan(span)
		}
	}()

	return fn()
}

// record logs and counts a finished run
func (p *Pipeline) record(out Outcome, err error) {
	if p.metrics != nil {
		p.metrics.RecordRun(out.Topic.String(), string(out.Kind), string(out.Stage), out.Duration)
	}

	fields := []zap.Field{
		zap.String("run_id", out.RunID),
		zap.String("topic", out.Topic.String()),
		zap.String("outcome", string(out.Kind)),
		zap.Duration("duration", out.Duration),
	}
	if err != nil {
		fields = append(fields, zap.String("stage", string(out.Stage)), zap.Error(err))
	}
	p.logger.Debug("pipeline run finished", fields...)
}

func (p *Pipeline) startSpan(ctx context.Context, name string) (*tracing.Span, context.Context) {
	if p.tracer == nil {
		return nil, ctx
	}
	return p.tracer.StartSpan(ctx, name)
}

func (p *Pipeline) finishSpan(span *tracing.Span) {
	span.Finish()
	p.tracer.Submit(span)
}

// diagnostic is the text a learner sees for err
func diagnostic(err error) string {
	var (
		te *jsx.TransformError
		ce *runtime.CompileError
		re *runtime.RuntimeError
		rn *react.RenderError
		pe *PanicError
	)
	switch {
	case errors.As(err, &te), errors.As(err, &ce), errors.As(err, &re), errors.As(err, &rn), errors.As(err, &pe):
		return err.Error()
	case interrupted(err):
		return runtime.Message(err)
	default:
		return fmt.Sprintf("unexpected error: %v", err)
	}
}

// Session is the live state of a Rendered run: its runtime, hooks and host
// tree. It is not safe for concurrent use.
type Session struct {
	topic    topic.Topic
	rt       *runtime.Runtime
	renderer *react.Renderer
}

func newSession(t topic.Topic, config Config) *Session {
	rt := runtime.New(config.Runtime)
	return &Session{
		topic:    t,
		rt:       rt,
		renderer: react.New(rt.VM(), config.Render),
	}
}

// Topic returns the topic the session was built for
func (s *Session) Topic() topic.Topic {
	return s.topic
}

// Tree returns the live host tree
func (s *Session) Tree() *dom.Node {
	return s.renderer.Tree()
}

// Console returns what the script logged so far
func (s *Session) Console() []runtime.LogEntry {
	return s.rt.Console()
}

// Dispatch delivers ev to node id under the runtime's timeout
func (s *Session) Dispatch(ctx context.Context, nodeID string, ev react.Event) error {
	return s.rt.Guard(ctx, func() error {
		return s.renderer.Dispatch(nodeID, ev)
	})
}

// Close runs every effect cleanup and releases the tree
func (s *Session) Close() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Stage: StageRender, Value: rec}
		}
	}()
	return s.rt.Guard(context.Background(), s.renderer.Close)
}
