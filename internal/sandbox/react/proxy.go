package react

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/dom"
)

// proxyFor returns the script-facing object for a host fiber. It is what
// refs point at and what events carry as their target.
func (r *Renderer) proxyFor(f *fiber) *goja.Object {
	if f.proxy != nil {
		return f.proxy
	}

	n := f.node
	p := r.vm.NewObject()
	fn := func(call func(goja.FunctionCall) goja.Value) goja.Value {
		return r.vm.ToValue(call)
	}
	accessor := func(name string, get func() goja.Value, set func(goja.Value)) {
		var setter goja.Value
		if set != nil {
			setter = fn(func(c goja.FunctionCall) goja.Value {
				set(c.Argument(0))
				return goja.Undefined()
			})
		}
		getter := fn(func(goja.FunctionCall) goja.Value { return get() })
		_ = p.DefineAccessorProperty(name, getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	attr := func(key string) goja.Value {
		if v, ok := n.Attr(key); ok {
			return r.vm.ToValue(v)
		}
		return r.vm.ToValue("")
	}

	accessor("tagName", func() goja.Value { return r.vm.ToValue(strings.ToUpper(n.Tag)) }, nil)
	accessor("nodeName", func() goja.Value { return r.vm.ToValue(strings.ToUpper(n.Tag)) }, nil)
	accessor("id", func() goja.Value { return attr("id") }, nil)
	accessor("className", func() goja.Value { return attr("class") }, nil)
	accessor("textContent", func() goja.Value { return r.vm.ToValue(n.TextContent()) }, nil)
	accessor("value", func() goja.Value { return attr("value") }, func(v goja.Value) {
		n.SetAttr("value", v.String())
	})
	accessor("checked", func() goja.Value {
		_, ok := n.Attr("checked")
		return r.vm.ToValue(ok)
	}, func(v goja.Value) {
		setChecked(n, v.ToBoolean())
	})

	_ = p.Set("focus", fn(func(goja.FunctionCall) goja.Value {
		r.focus(n)
		return goja.Undefined()
	}))
	_ = p.Set("blur", fn(func(goja.FunctionCall) goja.Value {
		r.blur(n)
		return goja.Undefined()
	}))
	_ = p.Set("scrollIntoView", fn(func(goja.FunctionCall) goja.Value {
		return goja.Undefined()
	}))
	_ = p.Set("getAttribute", fn(func(c goja.FunctionCall) goja.Value {
		if v, ok := n.Attr(c.Argument(0).String()); ok {
			return r.vm.ToValue(v)
		}
		return goja.Null()
	}))
	_ = p.Set("setAttribute", fn(func(c goja.FunctionCall) goja.Value {
		n.SetAttr(c.Argument(0).String(), c.Argument(1).String())
		return goja.Undefined()
	}))

	f.proxy = p
	return p
}

// focus moves focus to n
func (r *Renderer) focus(n *dom.Node) {
	if r.focused != nil {
		r.focused.Focused = false
	}
	n.Focused = true
	r.focused = n
}

func (r *Renderer) blur(n *dom.Node) {
	if r.focused == n {
		n.Focused = false
		r.focused = nil
	}
}

func setChecked(n *dom.Node, checked bool) {
	if checked {
		n.SetAttr("checked", "")
		return
	}
	n.RemoveAttr("checked")
}
