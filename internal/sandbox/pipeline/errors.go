package pipeline

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// ErrNoSession is returned when an event arrives while nothing is rendered
var ErrNoSession = errors.New("no rendered output to dispatch to")

// PanicError is a Go panic recovered inside a stage
type PanicError struct {
	Stage Stage
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("internal error during %s: %v", e.Stage, e.Value)
}

// interrupted reports whether err comes from a timeout or cancellation
func interrupted(err error) bool {
	var ie *goja.InterruptedError
	return errors.As(err, &ie)
}
