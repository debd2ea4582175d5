package jsx

import (
	"strings"
)

// attribute is one entry of an opening tag
type attribute struct {
	name   string
	value  string // JavaScript expression
	spread bool
}

// element parses the markup starting at '<' and returns the factory call
func (t *transformer) element() (string, error) {
	start := t.pos
	t.pos++

	if err := t.skipSpace(); err != nil {
		return "", err
	}

	if t.peek(0) == '>' {
		t.pos++
		children, err := t.children("")
		if err != nil {
			return "", err
		}
		return t.call(start, t.opts.Fragment, nil, children), nil
	}

	name, err := t.tagName()
	if err != nil {
		return "", err
	}

	attrs, selfClosing, err := t.attributes()
	if err != nil {
		return "", err
	}

	var children []string
	if !selfClosing {
		if children, err = t.children(name); err != nil {
			return "", err
		}
	}
	return t.call(start, typeExpr(name), attrs, children), nil
}

// skipSpace skips whitespace and comments inside a tag
func (t *transformer) skipSpace() error {
	for !t.eof() {
		c := t.src[t.pos]
		switch {
		case isSpace(c):
			t.pos++
		case c == '/' && t.peek(1) == '/':
			end := strings.IndexAny(t.src[t.pos:], "\r\n")
			if end < 0 {
				t.pos = len(t.src)
			} else {
				t.pos += end
			}
		case c == '/' && t.peek(1) == '*':
			if _, err := t.blockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// unexpected reports the current byte, or unterminated contents at the end
func (t *transformer) unexpected() error {
	if t.eof() {
		return t.fail(t.pos, msgUnterminatedJSX)
	}
	return t.fail(t.pos, msgUnexpectedToken)
}

// name reads a JSX identifier, which may contain '-'
func (t *transformer) name() (string, error) {
	if t.eof() || !isIdentStart(t.src[t.pos]) {
		return "", t.unexpected()
	}
	start := t.pos
	for !t.eof() && (isIdentPart(t.src[t.pos]) || t.src[t.pos] == '-') {
		t.pos++
	}
	return t.src[start:t.pos], nil
}

// tagName reads `name`, `ns:name` or `a.b.c`
func (t *transformer) tagName() (string, error) {
	name, err := t.name()
	if err != nil {
		return "", err
	}

	if t.peek(0) == ':' {
		t.pos++
		local, err := t.name()
		if err != nil {
			return "", err
		}
		return name + ":" + local, nil
	}

	for t.peek(0) == '.' {
		t.pos++
		member, err := t.name()
		if err != nil {
			return "", err
		}
		name += "." + member
	}
	return name, nil
}

// attributes reads up to and including the end of the opening tag
func (t *transformer) attributes() ([]attribute, bool, error) {
	var attrs []attribute
	for {
		if err := t.skipSpace(); err != nil {
			return nil, false, err
		}
		if t.eof() {
			return nil, false, t.fail(t.pos, msgUnterminatedJSX)
		}

		c := t.src[t.pos]
		switch {
		case c == '/':
			t.pos++
			if err := t.skipSpace(); err != nil {
				return nil, false, err
			}
			if t.peek(0) != '>' {
				return nil, false, t.unexpected()
			}
			t.pos++
			return attrs, true, nil

		case c == '>':
			t.pos++
			return attrs, false, nil

		case c == '{':
			t.pos++
			if err := t.skipSpace(); err != nil {
				return nil, false, err
			}
			if !strings.HasPrefix(t.src[t.pos:], "...") {
				return nil, false, t.fail(t.pos, msgExpectedSpread)
			}
			t.pos += 3
			at := t.pos
			expr, err := t.container()
			if err != nil {
				return nil, false, err
			}
			if isEmptyExpression(expr) {
				return nil, false, t.fail(at, msgUnexpectedToken)
			}
			attrs = append(attrs, attribute{value: expr, spread: true})

		case isIdentStart(c):
			name, err := t.name()
			if err != nil {
				return nil, false, err
			}
			if t.peek(0) == ':' {
				t.pos++
				local, err := t.name()
				if err != nil {
					return nil, false, err
				}
				name += ":" + local
			}
			if err := t.skipSpace(); err != nil {
				return nil, false, err
			}
			if t.peek(0) != '=' {
				attrs = append(attrs, attribute{name: name, value: "true"})
				continue
			}
			t.pos++
			if err := t.skipSpace(); err != nil {
				return nil, false, err
			}
			value, err := t.attributeValue()
			if err != nil {
				return nil, false, err
			}
			attrs = append(attrs, attribute{name: name, value: value})

		default:
			return nil, false, t.unexpected()
		}
	}
}

func (t *transformer) attributeValue() (string, error) {
	if t.eof() {
		return "", t.fail(t.pos, msgUnterminatedJSX)
	}

	switch c := t.src[t.pos]; c {
	case '"', '\'':
		start := t.pos
		end := strings.IndexByte(t.src[start+1:], c)
		if end < 0 {
			return "", t.fail(start, msgUnterminatedString)
		}
		raw := t.src[start+1 : start+1+end]
		t.pos = start + end + 2
		return quote(attributeText(raw)), nil

	case '{':
		open := t.pos
		t.pos++
		expr, err := t.container()
		if err != nil {
			return "", err
		}
		if isEmptyExpression(expr) {
			return "", t.fail(open, msgEmptyAttribute)
		}
		return expr, nil

	case '<':
		return t.element()

	default:
		return "", t.fail(t.pos, msgUnexpectedToken)
	}
}

// children reads element contents up to and including the closing tag of
// name. An empty name closes a fragment.
func (t *transformer) children(name string) ([]string, error) {
	var out []string
	for {
		if t.eof() {
			return nil, t.fail(t.pos, msgUnterminatedJSX)
		}

		switch t.src[t.pos] {
		case '<':
			open := t.pos
			t.pos++
			if err := t.skipSpace(); err != nil {
				return nil, err
			}
			if t.peek(0) != '/' {
				t.pos = open
				el, err := t.element()
				if err != nil {
					return nil, err
				}
				out = append(out, el)
				continue
			}
			if err := t.closingTag(open, name); err != nil {
				return nil, err
			}
			return out, nil

		case '{':
			t.pos++
			expr, err := t.container()
			if err != nil {
				return nil, err
			}
			if !isEmptyExpression(expr) {
				out = append(out, expr)
			}

		case '>':
			return nil, t.fail(t.pos, "Unexpected token `>`. Did you mean `&gt;` or `{'>'}`?")

		case '}':
			return nil, t.fail(t.pos, "Unexpected token `}`. Did you mean `&rbrace;` or `{'}'}`?")

		default:
			end := t.pos
			for end < len(t.src) && !strings.ContainsRune("<{>}", rune(t.src[end])) {
				end++
			}
			if text := childText(t.src[t.pos:end]); text != "" {
				out = append(out, quote(text))
			}
			t.pos = end
		}
	}
}

// closingTag consumes `</name>` after the '<' at open
func (t *transformer) closingTag(open int, name string) error {
	t.pos++ // '/'
	if err := t.skipSpace(); err != nil {
		return err
	}

	var closing string
	if t.peek(0) != '>' {
		var err error
		if closing, err = t.tagName(); err != nil {
			return err
		}
		if err := t.skipSpace(); err != nil {
			return err
		}
	}
	if t.peek(0) != '>' {
		return t.unexpected()
	}
	t.pos++

	if closing == name {
		return nil
	}
	if name == "" {
		return t.fail(open, msgFragmentClose)
	}
	return t.fail(open, "Expected corresponding JSX closing tag for <"+name+">")
}

// call renders the factory call for the element that began at start. Missing
// newlines are added before the closing paren so the output spans as many
// lines as the markup did.
func (t *transformer) call(start int, typ string, attrs []attribute, children []string) string {
	var b strings.Builder
	b.WriteString(t.opts.Factory)
	b.WriteByte('(')
	b.WriteString(typ)
	b.WriteString(", ")
	b.WriteString(propsExpr(attrs))
	for _, child := range children {
		b.WriteString(", ")
		b.WriteString(child)
	}

	pad := strings.Count(t.src[start:t.pos], "\n") - strings.Count(b.String(), "\n")
	if pad > 0 {
		b.WriteString(strings.Repeat("\n", pad))
	}
	b.WriteByte(')')
	return b.String()
}

// typeExpr maps a tag name to the element type argument
func typeExpr(name string) string {
	if strings.Contains(name, ":") {
		return quote(name)
	}
	if strings.Contains(name, ".") {
		return name
	}
	if c := name[0]; (c >= 'a' && c <= 'z') || strings.Contains(name, "-") {
		return quote(name)
	}
	return name
}

// propsExpr builds the props argument; spreads are merged left to right
func propsExpr(attrs []attribute) string {
	if len(attrs) == 0 {
		return "null"
	}

	var parts, pending []string
	spread := false
	flush := func() {
		if len(pending) > 0 {
			parts = append(parts, "{"+strings.Join(pending, ", ")+"}")
			pending = nil
		}
	}

	for _, a := range attrs {
		if a.spread {
			flush()
			parts = append(parts, a.value)
			spread = true
			continue
		}
		pending = append(pending, propKey(a.name)+": "+a.value)
	}
	flush()

	if !spread {
		return parts[0]
	}
	return "Object.assign({}, " + strings.Join(parts, ", ") + ")"
}

// propKey quotes names that are not plain identifiers
func propKey(name string) string {
	for i := 0; i < len(name); i++ {
		if !isIdentPart(name[i]) {
			return quote(name)
		}
	}
	return name
}
