package runtime

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

var (
	// ErrTimeout interrupts a unit that ran past Config.Timeout
	ErrTimeout = errors.New("execution timeout exceeded")
	// ErrCancelled interrupts a unit whose context was cancelled
	ErrCancelled = errors.New("execution cancelled")
)

// CompileError is a syntax error in the wrapped unit
type CompileError struct {
	Msg string
	Err error
}

func (e *CompileError) Error() string { return e.Msg }
func (e *CompileError) Unwrap() error { return e.Err }

// RuntimeError is an exception thrown while invoking a unit
type RuntimeError struct {
	Msg string
	Err error
}

func (e *RuntimeError) Error() string { return e.Msg }
func (e *RuntimeError) Unwrap() error { return e.Err }

// Message extracts the learner-facing text of a goja error: the thrown
// value's string form for exceptions, the interrupt reason for interrupts.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if reason, ok := interrupted.Value().(error); ok {
			return reason.Error()
		}
		return fmt.Sprint(interrupted.Value())
	}

	var ex *goja.Exception
	if errors.As(err, &ex) {
		if msg, ok := valueString(ex.Value()); ok {
			return msg
		}
		return ex.Error()
	}
	return err.Error()
}

// valueString converts a thrown value, tolerating a throwing toString
func valueString(v goja.Value) (msg string, ok bool) {
	if v == nil {
		return "", false
	}
	defer func() {
		if recover() != nil {
			msg, ok = "", false
		}
	}()
	return v.String(), true
}

// Throw rethrows err inside JavaScript from a Go callback. Exceptions keep
// their original value so script-level try/catch sees what was thrown. An
// interrupt is re-armed first, so a script that catches the rethrown error
// is interrupted again at its next instruction.
func Throw(vm *goja.Runtime, err error) {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		panic(ex.Value())
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		vm.Interrupt(interrupted.Value())
	}
	panic(vm.NewGoError(err))
}

// ThrowError throws a plain Error with msg
func ThrowError(vm *goja.Runtime, msg string) {
	ctor := vm.Get("Error")
	if obj, err := vm.New(ctor, vm.ToValue(msg)); err == nil {
		panic(obj)
	}
	panic(vm.ToValue(msg))
}
