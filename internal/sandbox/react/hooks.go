package react

import (
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/runtime"
)

type hookKind int

const (
	stateHook hookKind = iota
	reducerHook
	effectHook
	memoHook
	callbackHook
	refHook
	transitionHook
	deferredHook
)

// hook is one slot of a component's hook list
type hook struct {
	kind    hookKind
	state   goja.Value
	setter  goja.Value
	reducer goja.Value

	deps    []goja.Value
	hasDeps bool

	// effects
	effect  goja.Callable
	cleanup goja.Callable
	pending bool
}

// requireFiber returns the component being rendered or throws
func (r *Renderer) requireFiber() *fiber {
	if r.current == nil {
		runtime.ThrowError(r.vm, msgInvalidHook)
	}
	return r.current
}

// nextHook returns the next slot of the current component. fresh is true
// when the slot was created by this call.
func (r *Renderer) nextHook(kind hookKind) (h *hook, fresh bool) {
	f := r.requireFiber()
	i := r.hookIndex
	r.hookIndex++

	if i < len(f.hooks) {
		h = f.hooks[i]
		if h.kind != kind {
			runtime.ThrowError(r.vm, msgHookOrder)
		}
		return h, false
	}
	if f.mounted {
		runtime.ThrowError(r.vm, msgMoreHooks)
	}

	h = &hook{kind: kind}
	f.hooks = append(f.hooks, h)
	return h, true
}

// call invokes fn, rethrowing any exception into the calling script
func (r *Renderer) call(fn goja.Callable, args ...goja.Value) goja.Value {
	res, err := fn(goja.Undefined(), args...)
	if err != nil {
		runtime.Throw(r.vm, err)
	}
	return res
}

// update stores next as the state of h and schedules a render of f
func (r *Renderer) update(f *fiber, h *hook, next goja.Value) {
	if r.closed || f.dead {
		return
	}
	if next.SameAs(h.state) {
		return
	}
	h.state = next
	if r.current == f {
		r.renderAgain = true
		return
	}
	r.dirty = true
}

func (r *Renderer) useState(call goja.FunctionCall) goja.Value {
	f := r.requireFiber()
	h, fresh := r.nextHook(stateHook)
	if fresh {
		init := call.Argument(0)
		if fn, ok := goja.AssertFunction(init); ok {
			init = r.call(fn)
		}
		h.state = init
		h.setter = r.vm.ToValue(func(c goja.FunctionCall) goja.Value {
			next := c.Argument(0)
			if fn, ok := goja.AssertFunction(next); ok {
				next = r.call(fn, h.state)
			}
			r.update(f, h, next)
			return goja.Undefined()
		})
	}
	return r.vm.NewArray(h.state, h.setter)
}

func (r *Renderer) useReducer(call goja.FunctionCall) goja.Value {
	f := r.requireFiber()
	h, fresh := r.nextHook(reducerHook)

	reducer := call.Argument(0)
	if _, ok := goja.AssertFunction(reducer); !ok {
		runtime.ThrowError(r.vm, msgBadReducer)
	}
	h.reducer = reducer

	if fresh {
		state := call.Argument(1)
		if init, ok := goja.AssertFunction(call.Argument(2)); ok {
			state = r.call(init, state)
		}
		h.state = state
		h.setter = r.vm.ToValue(func(c goja.FunctionCall) goja.Value {
			reduce, _ := goja.AssertFunction(h.reducer)
			r.update(f, h, r.call(reduce, h.state, c.Argument(0)))
			return goja.Undefined()
		})
	}
	return r.vm.NewArray(h.state, h.setter)
}

func (r *Renderer) useEffect(call goja.FunctionCall) goja.Value {
	h, fresh := r.nextHook(effectHook)
	effect, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		runtime.ThrowError(r.vm, "useEffect expects a function as its first argument.")
	}

	deps, hasDeps := depsOf(call.Argument(1))
	if fresh || !hasDeps || !h.hasDeps || depsChanged(h.deps, deps) {
		h.effect = effect
		h.pending = true
	}
	h.deps, h.hasDeps = deps, hasDeps
	return goja.Undefined()
}

func (r *Renderer) useMemo(call goja.FunctionCall) goja.Value {
	h, fresh := r.nextHook(memoHook)
	compute, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		runtime.ThrowError(r.vm, msgBadMemoCallback)
	}

	deps, hasDeps := depsOf(call.Argument(1))
	if fresh || !hasDeps || depsChanged(h.deps, deps) {
		h.state = r.call(compute)
		h.deps, h.hasDeps = deps, hasDeps
	}
	return h.state
}

func (r *Renderer) useCallback(call goja.FunctionCall) goja.Value {
	h, fresh := r.nextHook(callbackHook)
	deps, hasDeps := depsOf(call.Argument(1))
	if fresh || !hasDeps || depsChanged(h.deps, deps) {
		h.state = call.Argument(0)
		h.deps, h.hasDeps = deps, hasDeps
	}
	return h.state
}

func (r *Renderer) useRef(call goja.FunctionCall) goja.Value {
	h, fresh := r.nextHook(refHook)
	if fresh {
		ref := r.vm.NewObject()
		_ = ref.Set("current", call.Argument(0))
		h.state = ref
	}
	return h.state
}

func (r *Renderer) useContext(call goja.FunctionCall) goja.Value {
	r.requireFiber()
	c, ok := asContext(call.Argument(0))
	if !ok {
		runtime.ThrowError(r.vm, msgBadContext)
	}
	return r.contextValue(c)
}

// useTransition runs the transition callback immediately; nothing is ever
// pending
func (r *Renderer) useTransition(goja.FunctionCall) goja.Value {
	h, fresh := r.nextHook(transitionHook)
	if fresh {
		h.setter = r.vm.ToValue(func(c goja.FunctionCall) goja.Value {
			if fn, ok := goja.AssertFunction(c.Argument(0)); ok {
				r.call(fn)
			}
			return goja.Undefined()
		})
	}
	return r.vm.NewArray(false, h.setter)
}

func (r *Renderer) useDeferredValue(call goja.FunctionCall) goja.Value {
	h, _ := r.nextHook(deferredHook)
	h.state = call.Argument(0)
	return h.state
}

// depsOf reads a dependency array. hasDeps is false when none was passed.
func depsOf(v goja.Value) (deps []goja.Value, hasDeps bool) {
	obj, ok := v.(*goja.Object)
	if !ok || !isArray(obj) {
		return nil, false
	}
	return arrayItems(obj), true
}

func depsChanged(prev, next []goja.Value) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if !prev[i].SameAs(next[i]) {
			return true
		}
	}
	return false
}
