package react

import (
	"errors"
	"strings"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/runtime"
)

// Event is a user interaction forwarded from the preview
type Event struct {
	Type    string  `json:"type"`
	Value   *string `json:"value,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
}

// eventProps maps DOM event names to the props that handle them
var eventProps = map[string][]string{
	"click":      {"onClick"},
	"dblclick":   {"onDoubleClick"},
	"input":      {"onInput", "onChange"},
	"change":     {"onChange"},
	"submit":     {"onSubmit"},
	"keydown":    {"onKeyDown"},
	"keyup":      {"onKeyUp"},
	"keypress":   {"onKeyPress"},
	"focus":      {"onFocus"},
	"blur":       {"onBlur"},
	"mouseenter": {"onMouseEnter"},
	"mouseleave": {"onMouseLeave"},
	"mousedown":  {"onMouseDown"},
	"mouseup":    {"onMouseUp"},
}

func handlerProps(eventType string) []string {
	if props, ok := eventProps[eventType]; ok {
		return props
	}
	if eventType == "" {
		return nil
	}
	return []string{"on" + strings.ToUpper(eventType[:1]) + eventType[1:]}
}

// Dispatch delivers ev to the node with handle id, bubbling through its
// host ancestors, then re-renders. A render failure takes precedence over
// a handler error.
func (r *Renderer) Dispatch(id string, ev Event) error {
	if r.closed {
		return ErrClosed
	}
	if r.root == nil || r.tree == nil {
		return ErrNotMounted
	}
	target := findHost(r.root, id)
	if target == nil {
		return ErrNodeNotFound
	}

	n := target.node
	if ev.Value != nil {
		n.SetAttr("value", *ev.Value)
	}
	if ev.Checked != nil {
		setChecked(n, *ev.Checked)
	}
	switch ev.Type {
	case "focus":
		r.focus(n)
	case "blur":
		r.blur(n)
	}

	handlerErr := r.deliver(target, ev.Type)
	if err := r.flush(); err != nil {
		return err
	}
	return handlerErr
}

// deliver runs the handlers for eventType from target up to the root
func (r *Renderer) deliver(target *fiber, eventType string) error {
	props := handlerProps(eventType)
	event, stopped := r.syntheticEvent(eventType, target)

	for f := target; f != nil; f = f.parent {
		if f.kind != hostFiber {
			continue
		}
		_ = event.Set("currentTarget", r.proxyFor(f))
		for _, prop := range props {
			handler, ok := f.handlers[prop]
			if !ok {
				continue
			}
			if _, err := handler(goja.Undefined(), event); err != nil {
				return &HandlerError{Msg: runtime.Message(err), Event: eventType, Err: err}
			}
		}
		if *stopped {
			break
		}
	}
	return nil
}

// syntheticEvent builds the event object passed to handlers
func (r *Renderer) syntheticEvent(eventType string, target *fiber) (*goja.Object, *bool) {
	stopped := new(bool)
	ev := r.vm.NewObject()
	_ = ev.Set("type", eventType)
	_ = ev.Set("target", r.proxyFor(target))
	_ = ev.Set("currentTarget", r.proxyFor(target))
	_ = ev.Set("defaultPrevented", false)
	_ = ev.Set("bubbles", true)
	_ = ev.Set("preventDefault", func(goja.FunctionCall) goja.Value {
		_ = ev.Set("defaultPrevented", true)
		return goja.Undefined()
	})
	_ = ev.Set("stopPropagation", func(goja.FunctionCall) goja.Value {
		*stopped = true
		return goja.Undefined()
	})
	_ = ev.Set("isPropagationStopped", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(*stopped)
	})
	_ = ev.Set("persist", func(goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	return ev, stopped
}

// commit finishes a render: removed subtrees are unmounted, refs attached,
// and pending effects run, children before parents
func (r *Renderer) commit() error {
	deletions := r.deletions
	r.deletions = nil

	var errs []error
	for _, f := range deletions {
		if err := r.unmount(f); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return &RenderError{Msg: runtime.Message(err), Err: err}
	}

	if err := r.attachRefs(r.root); err != nil {
		return err
	}

	var pending []*fiber
	collectEffects(r.root, &pending)

	for _, f := range pending {
		for _, h := range f.hooks {
			if h.kind != effectHook || !h.pending || h.cleanup == nil {
				continue
			}
			cleanup := h.cleanup
			h.cleanup = nil
			if _, err := cleanup(goja.Undefined()); err != nil {
				return r.renderError(f, err)
			}
		}
	}
	for _, f := range pending {
		for _, h := range f.hooks {
			if h.kind != effectHook || !h.pending {
				continue
			}
			h.pending = false
			res, err := h.effect(goja.Undefined())
			if err != nil {
				return r.renderError(f, err)
			}
			if fn, ok := goja.AssertFunction(res); ok {
				h.cleanup = fn
			}
		}
	}
	return nil
}

// collectEffects gathers components with pending effects in post-order
func collectEffects(f *fiber, out *[]*fiber) {
	for _, c := range f.children {
		collectEffects(c, out)
	}
	if f.kind != componentFiber {
		return
	}
	for _, h := range f.hooks {
		if h.kind == effectHook && h.pending {
			*out = append(*out, f)
			return
		}
	}
}

// attachRefs points element refs at their host proxies
func (r *Renderer) attachRefs(f *fiber) error {
	for _, c := range f.children {
		if err := r.attachRefs(c); err != nil {
			return err
		}
	}
	if f.kind != hostFiber {
		return nil
	}

	ref := f.ref
	if isNullish(ref) {
		ref = nil
	}
	if f.attachedRef != nil && ref != nil && f.attachedRef.SameAs(ref) {
		return nil
	}
	if f.attachedRef != nil {
		if err := r.setRef(f.attachedRef, goja.Null()); err != nil {
			return r.renderError(f, err)
		}
		f.attachedRef = nil
	}
	if ref != nil {
		if err := r.setRef(ref, r.proxyFor(f)); err != nil {
			return r.renderError(f, err)
		}
		f.attachedRef = ref
	}
	return nil
}

// setRef stores v in a ref object or calls a ref callback with it
func (r *Renderer) setRef(ref, v goja.Value) error {
	if fn, ok := goja.AssertFunction(ref); ok {
		_, err := fn(goja.Undefined(), v)
		return err
	}
	if obj, ok := ref.(*goja.Object); ok {
		return obj.Set("current", v)
	}
	return nil
}

// unmount tears down f and its subtree, children first. Every cleanup runs
// even when an earlier one fails.
func (r *Renderer) unmount(f *fiber) error {
	var errs []error
	for _, c := range f.children {
		if err := r.unmount(c); err != nil {
			errs = append(errs, err)
		}
	}

	switch f.kind {
	case componentFiber:
		for _, h := range f.hooks {
			if h.kind != effectHook || h.cleanup == nil {
				continue
			}
			cleanup := h.cleanup
			h.cleanup = nil
			if _, err := cleanup(goja.Undefined()); err != nil {
				errs = append(errs, r.renderError(f, err))
			}
		}
	case hostFiber:
		if f.attachedRef != nil {
			if err := r.setRef(f.attachedRef, goja.Null()); err != nil {
				errs = append(errs, r.renderError(f, err))
			}
			f.attachedRef = nil
		}
		if r.focused == f.node {
			r.focused = nil
		}
	}

	f.dead = true
	return errors.Join(errs...)
}
