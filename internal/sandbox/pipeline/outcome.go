package pipeline

import (
	"time"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/dom"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/runtime"
)

// Kind tags an outcome
type Kind string

const (
	Rendered Kind = "rendered"
	Empty    Kind = "empty"
	Failed   Kind = "failed"
)

// Stage names one step of a run
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageTransform Stage = "transform"
	StageCompile   Stage = "compile"
	StageExecute   Stage = "execute"
	StageRender    Stage = "render"
	StageDispatch  Stage = "dispatch"
)

// Outcome is the result of one run. Tree and HTML are set only when Kind is
// Rendered, Diagnostic only when it is Failed.
type Outcome struct {
	RunID      string             `json:"run_id"`
	Topic      topic.Topic        `json:"topic"`
	Kind       Kind               `json:"kind"`
	Tree       *dom.Node          `json:"tree,omitempty"`
	HTML       string             `json:"html,omitempty"`
	Diagnostic string             `json:"diagnostic,omitempty"`
	Console    []runtime.LogEntry `json:"console,omitempty"`
	Duration   time.Duration      `json:"duration"`
	Revision   int                `json:"revision"`

	// Stage is the step that produced a failure. It is kept for logs and
	// metrics and is never sent to clients.
	Stage Stage `json:"-"`
}

// IsZero reports whether no run has produced this outcome yet
func (o Outcome) IsZero() bool {
	return o.Kind == ""
}

// withTree replaces the rendered output with a snapshot of tree
func (o Outcome) withTree(tree *dom.Node) Outcome {
	o.Tree = tree.Clone()
	o.HTML = o.Tree.HTML()
	o.Revision++
	return o
}

// failed clears any output and records msg
func (o Outcome) failed(stage Stage, msg string) Outcome {
	o.Kind = Failed
	o.Tree = nil
	o.HTML = ""
	o.Stage = stage
	o.Diagnostic = msg
	o.Revision++
	return o
}
