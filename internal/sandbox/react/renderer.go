package react

import (
	"errors"

	"github.com/dop251/goja"
	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/dom"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/runtime"
)

// Options bounds the work a single render may do
type Options struct {
	MaxRenderPasses int                // re-renders of one component within a render
	MaxCommits      int                // commits triggered by one flush
	MaxDepth        int                // nested elements
	Sanitizer       *bluemonday.Policy // applied to dangerouslySetInnerHTML
}

// DefaultOptions mirrors React's own limits
func DefaultOptions() Options {
	return Options{
		MaxRenderPasses: 25,
		MaxCommits:      50,
		MaxDepth:        256,
		Sanitizer:       bluemonday.UGCPolicy(),
	}
}

// Renderer is the capability set and live tree of one pipeline run
type Renderer struct {
	vm   *goja.Runtime
	opts Options

	react    *goja.Object
	fragment *goja.Object
	strict   *goja.Object
	hooks    map[string]goja.Value

	element *Element
	root    *fiber
	tree    *dom.Node
	focused *dom.Node

	// render state
	current     *fiber
	hookIndex   int
	renderAgain bool
	depth       int
	contexts    map[*Context][]goja.Value
	deletions   []*fiber

	dirty  bool
	nextID int
	closed bool
}

// New creates a fresh capability set bound to vm
func New(vm *goja.Runtime, opts Options) *Renderer {
	defaults := DefaultOptions()
	if opts.MaxRenderPasses <= 0 {
		opts.MaxRenderPasses = defaults.MaxRenderPasses
	}
	if opts.MaxCommits <= 0 {
		opts.MaxCommits = defaults.MaxCommits
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaults.MaxDepth
	}
	if opts.Sanitizer == nil {
		opts.Sanitizer = defaults.Sanitizer
	}

	r := &Renderer{
		vm:       vm,
		opts:     opts,
		fragment: vm.NewObject(),
		strict:   vm.NewObject(),
		contexts: make(map[*Context][]goja.Value),
	}
	r.setup()
	return r
}

// setup builds the React object and the standalone hook bindings
func (r *Renderer) setup() {
	fn := func(f func(goja.FunctionCall) goja.Value) goja.Value {
		return r.vm.ToValue(f)
	}

	r.hooks = map[string]goja.Value{
		"useState":         fn(r.useState),
		"useEffect":        fn(r.useEffect),
		"useContext":       fn(r.useContext),
		"createContext":    fn(r.createContext),
		"useReducer":       fn(r.useReducer),
		"useRef":           fn(r.useRef),
		"useMemo":          fn(r.useMemo),
		"useCallback":      fn(r.useCallback),
		"useTransition":    fn(r.useTransition),
		"useDeferredValue": fn(r.useDeferredValue),
	}

	_ = r.fragment.Set("displayName", "Fragment")
	_ = r.strict.Set("displayName", "StrictMode")

	react := r.vm.NewObject()
	_ = react.Set("createElement", fn(r.createElement))
	_ = react.Set("isValidElement", fn(r.isValidElement))
	_ = react.Set("memo", fn(r.identity))
	_ = react.Set("Fragment", r.fragment)
	_ = react.Set("StrictMode", r.strict)
	_ = react.Set("version", "18.3.1")
	for name, hook := range r.hooks {
		_ = react.Set(name, hook)
	}
	r.react = react
}

// Bindings returns the capability values in runtime.CapabilityNames order
func (r *Renderer) Bindings() []goja.Value {
	out := make([]goja.Value, 0, len(runtime.CapabilityNames))
	for _, name := range runtime.CapabilityNames {
		if name == "React" {
			out = append(out, r.react)
			continue
		}
		out = append(out, r.hooks[name])
	}
	return out
}

// Mount renders root, which must be an element, and runs its effects
func (r *Renderer) Mount(root goja.Value) error {
	if r.closed {
		return ErrClosed
	}
	el, ok := AsElement(root)
	if !ok {
		return &RenderError{Msg: msgRootNotElement}
	}

	r.element = el
	r.root = &fiber{kind: rootFiber}
	r.dirty = true
	return r.flush()
}

// Tree returns the live host tree. It changes on every re-render.
func (r *Renderer) Tree() *dom.Node {
	return r.tree
}

// flush re-renders and commits until no update is pending
func (r *Renderer) flush() error {
	for commits := 0; r.dirty; commits++ {
		if commits >= r.opts.MaxCommits {
			return &RenderError{Msg: msgMaxUpdateDepth}
		}
		r.dirty = false
		if err := r.render(); err != nil {
			return err
		}
		if err := r.commit(); err != nil {
			return err
		}
	}
	return nil
}

// render reconciles the whole tree from the root element
func (r *Renderer) render() error {
	r.depth = 0
	r.contexts = make(map[*Context][]goja.Value)

	root := []slotValue{{slot: ".0", el: r.element}}
	if err := r.reconcile(r.root, root); err != nil {
		return err
	}

	tree := dom.NewFragment()
	r.attach(tree, r.root)
	r.tree = tree
	return nil
}

// attach links host nodes under parent, skipping non-host fibers
func (r *Renderer) attach(parent *dom.Node, f *fiber) {
	for _, c := range f.children {
		switch c.kind {
		case textFiber:
			parent.AppendChild(dom.NewText(c.text))
		case hostFiber:
			c.node.Children = nil
			parent.AppendChild(c.node)
			r.attach(c.node, c)
		default:
			r.attach(parent, c)
		}
	}
}

// Close tears the tree down, running every effect cleanup. Cleanup errors
// are joined and returned; the renderer is closed regardless.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.root != nil {
		err = r.unmount(r.root)
	}
	r.root = nil
	r.tree = nil
	r.focused = nil
	return err
}

// renderError converts an error from a call into user code
func (r *Renderer) renderError(f *fiber, err error) error {
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	name := ""
	if f != nil {
		name = f.name
	}
	return &RenderError{Msg: runtime.Message(err), Component: name, Err: err}
}
