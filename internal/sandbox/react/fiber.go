package react

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/dom"
)

type fiberKind int

const (
	rootFiber fiberKind = iota
	hostFiber
	textFiber
	componentFiber
	fragmentFiber
	providerFiber
	consumerFiber
)

// fiber is the persistent record of one rendered element
type fiber struct {
	kind     fiberKind
	ident    interface{} // tag, function object, *Provider, *Consumer or fragment sentinel
	slot     string      // position key within the parent
	parent   *fiber
	children []*fiber
	props    *goja.Object
	ref      goja.Value
	dead     bool

	// component
	fn      goja.Callable
	name    string
	hooks   []*hook
	mounted bool

	// host
	tag         string
	node        *dom.Node
	handlers    map[string]goja.Callable
	proxy       *goja.Object
	attachedRef goja.Value

	// text
	text string
}

// slotValue is one normalized child with its reconciliation key
type slotValue struct {
	slot   string
	el     *Element
	text   string
	isText bool
}

// sameIdent compares element type identities
func sameIdent(a, b interface{}) bool {
	if av, ok := a.(goja.Value); ok {
		bv, ok := b.(goja.Value)
		return ok && av.SameAs(bv)
	}
	return a == b
}

// identify classifies an element type
func (r *Renderer) identify(t goja.Value) (fiberKind, interface{}, error) {
	obj, isObj := t.(*goja.Object)
	if !isObj {
		if t != nil && !goja.IsUndefined(t) && !goja.IsNull(t) {
			if s, ok := t.Export().(string); ok && s != "" {
				return hostFiber, s, nil
			}
		}
		return 0, nil, r.invalidType(t)
	}

	if obj.SameAs(r.fragment) || obj.SameAs(r.strict) {
		return fragmentFiber, r.fragment, nil
	}
	if p, ok := hostValue(obj, providerType); ok {
		return providerFiber, p, nil
	}
	if c, ok := hostValue(obj, consumerType); ok {
		return consumerFiber, c, nil
	}
	if _, ok := goja.AssertFunction(obj); ok {
		return componentFiber, goja.Value(obj), nil
	}
	return 0, nil, r.invalidType(t)
}

func (r *Renderer) invalidType(t goja.Value) error {
	got := "undefined"
	switch {
	case t == nil || goja.IsUndefined(t):
	case goja.IsNull(t):
		got = "null"
	default:
		switch t.Export().(type) {
		case string:
			got = "string"
		case bool:
			got = "boolean"
		case int64, float64:
			got = "number"
		default:
			got = "object"
		}
	}
	return &RenderError{Msg: "Element type is invalid: expected a string (for built-in components) or a class/function (for composite components) but got: " + got + "."}
}

// newFiber creates a fiber for el at slot under parent
func (r *Renderer) newFiber(kind fiberKind, ident interface{}, el *Element, parent *fiber, slot string) *fiber {
	f := &fiber{kind: kind, ident: ident, slot: slot, parent: parent}
	switch kind {
	case hostFiber:
		f.tag = ident.(string)
		r.nextID++
		f.node = dom.NewElement(f.tag, "n"+strconv.Itoa(r.nextID))
	case componentFiber:
		f.fn, _ = goja.AssertFunction(el.Type)
		f.name = displayName(el.Type)
	}
	return f
}

func displayName(v goja.Value) string {
	obj, ok := v.(*goja.Object)
	if !ok {
		return ""
	}
	for _, prop := range []string{"displayName", "name"} {
		if n := obj.Get(prop); n != nil && !goja.IsUndefined(n) && n.String() != "" {
			return n.String()
		}
	}
	return "Anonymous"
}

// reconcile renders values as the children of parent, reusing fibers whose
// slot and type match and scheduling the rest for deletion
func (r *Renderer) reconcile(parent *fiber, values []slotValue) error {
	r.depth++
	defer func() { r.depth-- }()
	if r.depth > r.opts.MaxDepth {
		return &RenderError{Msg: msgMaxDepth}
	}

	old := make(map[string]*fiber, len(parent.children))
	for _, c := range parent.children {
		old[c.slot] = c
	}
	reused := make(map[*fiber]bool, len(values))

	next := make([]*fiber, 0, len(values))
	for _, v := range values {
		prev := old[v.slot]
		if prev != nil {
			delete(old, v.slot)
			if !r.matches(prev, v) {
				prev = nil
			}
		}

		if prev != nil {
			reused[prev] = true
		}
		f, err := r.renderChild(parent, prev, v)
		if err != nil {
			return err
		}
		next = append(next, f)
	}

	for _, c := range parent.children {
		if !reused[c] {
			r.deletions = append(r.deletions, c)
		}
	}
	parent.children = next
	return nil
}

// matches reports whether prev can be reused for v
func (r *Renderer) matches(prev *fiber, v slotValue) bool {
	if v.isText {
		return prev.kind == textFiber
	}
	kind, ident, err := r.identify(v.el.Type)
	return err == nil && kind == prev.kind && sameIdent(ident, prev.ident)
}

// renderChild renders one child into prev, or into a new fiber
func (r *Renderer) renderChild(parent, prev *fiber, v slotValue) (*fiber, error) {
	if v.isText {
		f := prev
		if f == nil {
			f = &fiber{kind: textFiber, slot: v.slot, parent: parent}
		}
		f.text = v.text
		return f, nil
	}

	el := v.el
	kind, ident, err := r.identify(el.Type)
	if err != nil {
		return nil, err
	}

	f := prev
	if f == nil {
		f = r.newFiber(kind, ident, el, parent, v.slot)
	}
	f.props = el.Props
	f.ref = el.Ref

	switch f.kind {
	case hostFiber:
		err = r.renderHost(f)
	case componentFiber:
		err = r.renderComponent(f)
	case fragmentFiber:
		err = r.renderChildren(f, f.props.Get("children"))
	case providerFiber:
		err = r.renderProvider(f, ident.(*Provider))
	case consumerFiber:
		err = r.renderConsumer(f, ident.(*Consumer))
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// renderChildren normalizes v and reconciles it under f
func (r *Renderer) renderChildren(f *fiber, v goja.Value) error {
	values, err := r.collect(v)
	if err != nil {
		return err
	}
	return r.reconcile(f, values)
}

// renderComponent calls the component function, repeating the call while it
// updates its own state during render
func (r *Renderer) renderComponent(f *fiber) error {
	var result goja.Value
	for pass := 1; ; pass++ {
		r.current, r.hookIndex, r.renderAgain = f, 0, false
		res, err := f.fn(goja.Undefined(), f.props)
		again, used := r.renderAgain, r.hookIndex
		r.current, r.renderAgain = nil, false

		if err != nil {
			return r.renderError(f, err)
		}
		if !again {
			if f.mounted && used < len(f.hooks) {
				return &RenderError{Msg: msgFewerHooks, Component: f.name}
			}
			result = res
			break
		}
		if pass >= r.opts.MaxRenderPasses {
			return &RenderError{Msg: msgTooManyRenders, Component: f.name}
		}
	}

	f.mounted = true
	return r.renderChildren(f, result)
}

func (r *Renderer) renderProvider(f *fiber, p *Provider) error {
	r.contexts[p.ctx] = append(r.contexts[p.ctx], f.props.Get("value"))
	defer func() {
		stack := r.contexts[p.ctx]
		r.contexts[p.ctx] = stack[:len(stack)-1]
	}()
	return r.renderChildren(f, f.props.Get("children"))
}

func (r *Renderer) renderConsumer(f *fiber, c *Consumer) error {
	fn, ok := goja.AssertFunction(f.props.Get("children"))
	if !ok {
		return &RenderError{Msg: "A context consumer was rendered with multiple children, or a child that isn't a function."}
	}
	res, err := fn(goja.Undefined(), r.contextValue(c.ctx))
	if err != nil {
		return r.renderError(f, err)
	}
	return r.renderChildren(f, res)
}

// contextValue returns the innermost provided value or the default
func (r *Renderer) contextValue(c *Context) goja.Value {
	if stack := r.contexts[c]; len(stack) > 0 {
		return stack[len(stack)-1]
	}
	if c.defaultValue == nil {
		return goja.Undefined()
	}
	return c.defaultValue
}

// collect flattens a children value into slots. A top-level array is the
// child list itself; nested arrays get their own key prefix.
func (r *Renderer) collect(v goja.Value) ([]slotValue, error) {
	var out []slotValue
	if obj, ok := v.(*goja.Object); ok && isArray(obj) {
		for i, item := range arrayItems(obj) {
			if err := r.collectChild(item, "", i, &out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	if err := r.collectChild(v, "", 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Renderer) collectChild(v goja.Value, prefix string, index int, out *[]slotValue) error {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	position := prefix + "." + strconv.Itoa(index)

	if el, ok := AsElement(v); ok {
		slot := position
		if k, ok := el.key(); ok {
			slot = prefix + "$" + k
		}
		*out = append(*out, slotValue{slot: slot, el: el})
		return nil
	}

	if obj, ok := v.(*goja.Object); ok {
		if isArray(obj) {
			for i, item := range arrayItems(obj) {
				if err := r.collectChild(item, position+":", i, out); err != nil {
					return err
				}
			}
			return nil
		}
		if _, ok := goja.AssertFunction(obj); ok {
			return nil
		}
		return &RenderError{Msg: fmt.Sprintf(
			"Objects are not valid as a React child (found: object with keys {%s}). If you meant to render a collection of children, use an array instead.",
			strings.Join(obj.Keys(), ", "),
		)}
	}

	switch v.Export().(type) {
	case string, int64, float64, *big.Int:
		if text := v.String(); text != "" {
			*out = append(*out, slotValue{slot: position, text: text, isText: true})
		}
	}
	return nil
}

func isArray(obj *goja.Object) bool {
	return obj.ClassName() == "Array"
}

func arrayItems(obj *goja.Object) []goja.Value {
	n := int(obj.Get("length").ToInteger())
	items := make([]goja.Value, n)
	for i := 0; i < n; i++ {
		items[i] = obj.Get(strconv.Itoa(i))
	}
	return items
}

// findHost returns the live host fiber with the given node handle
func findHost(f *fiber, id string) *fiber {
	if f == nil {
		return nil
	}
	if f.kind == hostFiber && f.node.ID == id {
		return f
	}
	for _, c := range f.children {
		if found := findHost(c, id); found != nil {
			return found
		}
	}
	return nil
}
