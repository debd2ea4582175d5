package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
)

// hostNames are removed from the global scope of every runtime
var hostNames = []string{"require", "process", "module", "exports", "global", "globalThis"}

// Runtime wraps a goja VM for one pipeline run
type Runtime struct {
	vm     *goja.Runtime
	config Config

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex
}

// Unit is a compiled, not yet invoked, lesson script
type Unit struct {
	Topic  topic.Topic
	Params []string
	fn     goja.Callable
}

// New creates a runtime with a fresh global scope
func New(config Config) *Runtime {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if config.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(config.MaxCallStackSize)
	}

	r := &Runtime{
		vm:     vm,
		config: config,
	}
	r.setupGlobals()
	return r
}

// VM exposes the underlying goja runtime to the capability set
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// setupGlobals removes host names and installs the console if enabled
func (r *Runtime) setupGlobals() {
	for _, name := range hostNames {
		_ = r.vm.Set(name, goja.Undefined())
	}

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error", "debug"} {
			_ = console.Set(level, r.makeConsoleFunc(level))
		}
		_ = r.vm.Set("console", console)
	}
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// Console returns captured console output
func (r *Runtime) Console() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	return append([]LogEntry(nil), r.console...)
}

// Compile wraps body for topic t and compiles it. No user code runs here.
func (r *Runtime) Compile(body string, t topic.Topic) (*Unit, error) {
	prog, err := goja.Compile(UnitName, Source(body, t), false)
	if err != nil {
		return nil, &CompileError{Msg: err.Error(), Err: err}
	}

	val, err := r.vm.RunProgram(prog)
	if err != nil {
		return nil, &CompileError{Msg: Message(err), Err: err}
	}

	fn, ok := goja.AssertFunction(val)
	if !ok {
		return nil, &CompileError{Msg: "compiled unit is not a function"}
	}

	return &Unit{Topic: t, Params: Params(t), fn: fn}, nil
}

// Execute invokes the unit with the capability bindings, appending the topic
// identifier for the context topic. The returned value is the unit's tree
// description or null.
func (r *Runtime) Execute(ctx context.Context, u *Unit, bindings []goja.Value) (goja.Value, error) {
	if len(bindings) != len(CapabilityNames) {
		return nil, fmt.Errorf("expected %d capability bindings, got %d", len(CapabilityNames), len(bindings))
	}

	args := append([]goja.Value(nil), bindings...)
	if u.Topic.IsContextTopic() {
		args = append(args, r.vm.ToValue(u.Topic.String()))
	}

	var result goja.Value
	err := r.Guard(ctx, func() error {
		var callErr error
		result, callErr = u.fn(goja.Undefined(), args...)
		return callErr
	})
	if err != nil {
		return nil, &RuntimeError{Msg: Message(err), Err: err}
	}
	return result, nil
}

// Guard runs fn with the configured timeout and ctx cancellation wired to
// the VM's interrupt. Everything that calls into user code goes through it.
func (r *Runtime) Guard(ctx context.Context, fn func() error) error {
	defer r.vm.ClearInterrupt()

	if ctx != nil && ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			r.vm.Interrupt(ErrCancelled)
		})
		defer stop()
	}

	if r.config.Timeout > 0 {
		timer := time.AfterFunc(r.config.Timeout, func() {
			r.vm.Interrupt(ErrTimeout)
		})
		defer timer.Stop()
	}

	return fn()
}
