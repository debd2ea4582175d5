package react

import (
	"errors"
)

var (
	// ErrClosed is returned by operations on a torn down renderer
	ErrClosed = errors.New("renderer is closed")
	// ErrNodeNotFound is returned when dispatching to an unknown handle
	ErrNodeNotFound = errors.New("node not found")
	// ErrNotMounted is returned by Dispatch before Mount succeeded
	ErrNotMounted = errors.New("nothing is mounted")
)

// RenderError is raised while materializing a tree or running its effects
type RenderError struct {
	Msg       string
	Component string // display name of the component being rendered, if any
	Err       error
}

func (e *RenderError) Error() string { return e.Msg }
func (e *RenderError) Unwrap() error { return e.Err }

// HandlerError is raised by an event handler. It does not invalidate the
// rendered output.
type HandlerError struct {
	Msg   string
	Event string
	Err   error
}

func (e *HandlerError) Error() string { return e.Msg }
func (e *HandlerError) Unwrap() error { return e.Err }

// Messages matching the ones learners see from React itself
const (
	msgInvalidHook     = "Invalid hook call. Hooks can only be called inside of the body of a function component."
	msgTooManyRenders  = "Too many re-renders. React limits the number of renders to prevent an infinite loop."
	msgMaxUpdateDepth  = "Maximum update depth exceeded. This can happen when a component calls setState inside useEffect, but useEffect either doesn't have a dependency array, or one of the dependencies changes on every render."
	msgFewerHooks      = "Rendered fewer hooks than expected. This may be caused by an accidental early return statement."
	msgMoreHooks       = "Rendered more hooks than during the previous render."
	msgHookOrder       = "Hooks were called in a different order than during the previous render."
	msgInnerAndKids    = "Can only set one of `children` or `props.dangerouslySetInnerHTML`."
	msgInnerHTMLShape  = "`props.dangerouslySetInnerHTML` must be in the form `{__html: ...}`."
	msgMaxDepth        = "Maximum element nesting depth exceeded."
	msgRootNotElement  = "The entry component did not produce an element."
	msgBadContext      = "useContext expects a context object created by createContext."
	msgBadReducer      = "The reducer passed to useReducer is not a function."
	msgBadMemoCallback = "useMemo expects a function as its first argument."
)
