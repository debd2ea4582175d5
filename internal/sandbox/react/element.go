package react

import (
	"reflect"

	"github.com/dop251/goja"
)

// Element is the tree description produced by createElement. It is exposed
// to scripts as a host object with type, props, key and ref fields.
type Element struct {
	Type  goja.Value   `json:"type"`
	Props *goja.Object `json:"props"`
	Key   goja.Value   `json:"key"`
	Ref   goja.Value   `json:"ref"`
}

// key returns the element key, if any
func (e *Element) key() (string, bool) {
	if e.Key == nil || goja.IsUndefined(e.Key) || goja.IsNull(e.Key) {
		return "", false
	}
	return e.Key.String(), true
}

// Context is the object returned by createContext
type Context struct {
	Provider     *Provider `json:"Provider"`
	Consumer     *Consumer `json:"Consumer"`
	DisplayName  string    `json:"displayName"`
	defaultValue goja.Value
}

// Provider is the element type supplying a context value to its subtree
type Provider struct {
	ctx *Context
}

// Consumer is the element type reading a context value through a render
// function child
type Consumer struct {
	ctx *Context
}

var (
	elementType  = reflect.TypeOf((*Element)(nil))
	contextType  = reflect.TypeOf((*Context)(nil))
	providerType = reflect.TypeOf((*Provider)(nil))
	consumerType = reflect.TypeOf((*Consumer)(nil))
)

// hostValue returns the Go value behind a wrapped host object of type t
func hostValue(v goja.Value, t reflect.Type) (interface{}, bool) {
	obj, ok := v.(*goja.Object)
	if !ok || obj.ExportType() != t {
		return nil, false
	}
	return obj.Export(), true
}

// AsElement reports whether v is an element created by createElement
func AsElement(v goja.Value) (*Element, bool) {
	x, ok := hostValue(v, elementType)
	if !ok {
		return nil, false
	}
	el, ok := x.(*Element)
	return el, ok
}

func asContext(v goja.Value) (*Context, bool) {
	x, ok := hostValue(v, contextType)
	if !ok {
		return nil, false
	}
	c, ok := x.(*Context)
	return c, ok
}

// createElement implements React.createElement(type, props, ...children).
// key and ref are lifted out of props; several children are stored as an
// array, a single child as-is.
func (r *Renderer) createElement(call goja.FunctionCall) goja.Value {
	props := r.vm.NewObject()
	el := &Element{
		Type:  call.Argument(0),
		Props: props,
		Key:   goja.Null(),
		Ref:   goja.Null(),
	}

	if cfg, ok := call.Argument(1).(*goja.Object); ok {
		for _, k := range cfg.Keys() {
			v := cfg.Get(k)
			switch k {
			case "key":
				if !goja.IsUndefined(v) && !goja.IsNull(v) {
					el.Key = r.vm.ToValue(v.String())
				}
			case "ref":
				if !goja.IsUndefined(v) {
					el.Ref = v
				}
			default:
				_ = props.Set(k, v)
			}
		}
	}

	switch children := call.Arguments; {
	case len(children) == 3:
		_ = props.Set("children", children[2])
	case len(children) > 3:
		items := make([]interface{}, 0, len(children)-2)
		for _, c := range children[2:] {
			items = append(items, c)
		}
		_ = props.Set("children", r.vm.NewArray(items...))
	}

	return r.vm.ToValue(el)
}

// createContext implements React.createContext(defaultValue)
func (r *Renderer) createContext(call goja.FunctionCall) goja.Value {
	c := &Context{defaultValue: call.Argument(0)}
	c.Provider = &Provider{ctx: c}
	c.Consumer = &Consumer{ctx: c}
	return r.vm.ToValue(c)
}

// isValidElement implements React.isValidElement(value)
func (r *Renderer) isValidElement(call goja.FunctionCall) goja.Value {
	_, ok := AsElement(call.Argument(0))
	return r.vm.ToValue(ok)
}

// identity returns the first argument; memo and forwardRef wrappers render
// their component directly
func (r *Renderer) identity(call goja.FunctionCall) goja.Value {
	return call.Argument(0)
}
