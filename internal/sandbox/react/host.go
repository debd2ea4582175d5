package react

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/dom"
)

// voidElements may have neither children nor inner HTML
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// attrAliases maps prop names to attribute names where they differ
var attrAliases = map[string]string{
	"className":        "class",
	"htmlFor":          "for",
	"tabIndex":         "tabindex",
	"readOnly":         "readonly",
	"maxLength":        "maxlength",
	"minLength":        "minlength",
	"autoFocus":        "autofocus",
	"autoComplete":     "autocomplete",
	"contentEditable":  "contenteditable",
	"spellCheck":       "spellcheck",
	"colSpan":          "colspan",
	"rowSpan":          "rowspan",
	"defaultValue":     "value",
	"defaultChecked":   "checked",
	"acceptCharset":    "accept-charset",
	"httpEquiv":        "http-equiv",
	"strokeWidth":      "stroke-width",
	"strokeLinecap":    "stroke-linecap",
	"strokeLinejoin":   "stroke-linejoin",
	"strokeDasharray":  "stroke-dasharray",
	"strokeOpacity":    "stroke-opacity",
	"fillOpacity":      "fill-opacity",
	"fillRule":         "fill-rule",
	"clipRule":         "clip-rule",
	"textAnchor":       "text-anchor",
	"dominantBaseline": "dominant-baseline",
	"viewBox":          "viewBox",
}

// skippedProps never become attributes
var skippedProps = map[string]bool{
	"children":                       true,
	"dangerouslySetInnerHTML":        true,
	"suppressContentEditableWarning": true,
	"suppressHydrationWarning":       true,
}

// unitlessStyles take plain numbers
var unitlessStyles = map[string]bool{
	"animationIterationCount": true, "aspectRatio": true, "columnCount": true,
	"columns": true, "flex": true, "flexGrow": true, "flexShrink": true,
	"fontWeight": true, "gridArea": true, "gridColumn": true, "gridRow": true,
	"lineClamp": true, "lineHeight": true, "opacity": true, "order": true,
	"orphans": true, "tabSize": true, "widows": true, "zIndex": true,
	"zoom": true, "fillOpacity": true, "floodOpacity": true,
	"stopOpacity": true, "strokeOpacity": true, "strokeWidth": true,
}

// renderHost applies the props of a host element to its node and renders
// its children
func (r *Renderer) renderHost(f *fiber) error {
	n := f.node
	live := liveState(n)
	n.Attrs = nil
	n.InnerHTML = ""
	f.handlers = make(map[string]goja.Callable)

	children := f.props.Get("children")
	hasChildren := !isNullish(children)

	inner := f.props.Get("dangerouslySetInnerHTML")
	if !isNullish(inner) {
		obj, ok := inner.(*goja.Object)
		if !ok || !hasOwn(obj, "__html") {
			return &RenderError{Msg: msgInnerHTMLShape}
		}
		if hasChildren {
			return &RenderError{Msg: msgInnerAndKids}
		}
		if html := obj.Get("__html"); !isNullish(html) {
			n.InnerHTML = r.opts.Sanitizer.Sanitize(html.String())
		}
	}

	if voidElements[f.tag] && (hasChildren || !isNullish(inner)) {
		return &RenderError{Msg: fmt.Sprintf(
			"%s is a void element tag and must neither have `children` nor use `dangerouslySetInnerHTML`.", f.tag,
		)}
	}

	for _, key := range f.props.Keys() {
		if skippedProps[key] {
			continue
		}
		v := f.props.Get(key)

		if isEventProp(key) {
			if fn, ok := goja.AssertFunction(v); ok {
				f.handlers[key] = fn
			}
			continue
		}
		if key == "style" {
			if obj, ok := v.(*goja.Object); ok {
				if css := styleString(obj); css != "" {
					n.SetAttr("style", css)
				}
				continue
			}
		}

		if (key == "defaultValue" || key == "defaultChecked") && f.mounted {
			continue
		}
		name := attrName(key)
		if val, ok := attrValue(name, v); ok {
			n.SetAttr(name, val)
		}
	}
	if f.mounted {
		live.restore(n, f.props)
	}
	n.Interactive = len(f.handlers) > 0
	f.mounted = true

	if n.InnerHTML != "" || voidElements[f.tag] {
		return r.reconcile(f, nil)
	}
	return r.renderChildren(f, children)
}

// uncontrolled holds form state typed into a node whose props do not
// control it, so a re-render does not reset it
type uncontrolled struct {
	value      string
	hasValue   bool
	hasChecked bool
}

func liveState(n *dom.Node) uncontrolled {
	var u uncontrolled
	u.value, u.hasValue = n.Attr("value")
	_, u.hasChecked = n.Attr("checked")
	return u
}

func (u uncontrolled) restore(n *dom.Node, props *goja.Object) {
	if u.hasValue && !hasOwn(props, "value") {
		n.SetAttr("value", u.value)
	}
	if !hasOwn(props, "checked") {
		setChecked(n, u.hasChecked)
	}
}

// isEventProp reports whether key names an event handler, as in onClick
func isEventProp(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "on") && key[2] >= 'A' && key[2] <= 'Z'
}

func attrName(key string) string {
	if alias, ok := attrAliases[key]; ok {
		return alias
	}
	return key
}

// attrValue renders a prop value as an attribute value. ok is false when
// the attribute is omitted.
func attrValue(name string, v goja.Value) (string, bool) {
	if isNullish(v) {
		return "", false
	}
	if obj, isObj := v.(*goja.Object); isObj {
		if _, fn := goja.AssertFunction(obj); fn {
			return "", false
		}
	}
	if b, isBool := v.Export().(bool); isBool {
		if strings.HasPrefix(name, "aria-") || strings.HasPrefix(name, "data-") {
			return strconv.FormatBool(b), true
		}
		return "", b
	}
	return v.String(), true
}

// styleString serializes a style object the way server rendering does:
// kebab-case names, px on non-zero numbers except unitless properties
func styleString(style *goja.Object) string {
	var parts []string
	for _, key := range style.Keys() {
		v := style.Get(key)
		if isNullish(v) {
			continue
		}
		if _, isBool := v.Export().(bool); isBool {
			continue
		}

		val := v.String()
		if val == "" {
			continue
		}
		if !strings.HasPrefix(key, "--") && !unitlessStyles[key] {
			switch num := v.Export().(type) {
			case int64:
				if num != 0 {
					val += "px"
				}
			case float64:
				if num != 0 && !math.IsNaN(num) && !math.IsInf(num, 0) {
					val += "px"
				}
			}
		}
		parts = append(parts, styleName(key)+":"+strings.TrimSpace(val))
	}
	return strings.Join(parts, ";")
}

// styleName converts a camelCase property to its CSS name
func styleName(key string) string {
	if strings.HasPrefix(key, "--") {
		return key
	}
	var b strings.Builder
	for _, c := range key {
		if c >= 'A' && c <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(c + ('a' - 'A'))
			continue
		}
		b.WriteRune(c)
	}
	name := b.String()
	if strings.HasPrefix(name, "ms-") {
		name = "-" + name
	}
	return name
}

func isNullish(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

func hasOwn(obj *goja.Object, key string) bool {
	for _, k := range obj.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
