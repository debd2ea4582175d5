package jsx

import (
	"errors"
	"strings"
)

// Options selects the names used in generated calls
type Options struct {
	Factory  string // element constructor, e.g. React.createElement
	Fragment string // fragment type, e.g. React.Fragment
}

// DefaultOptions returns the classic React runtime names
func DefaultOptions() Options {
	return Options{
		Factory:  "React.createElement",
		Fragment: "React.Fragment",
	}
}

// errUnclosed is returned by script when input ends inside a brace context
var errUnclosed = errors.New("unclosed brace")

// Transform rewrites src using DefaultOptions
func Transform(src string) (string, error) {
	return TransformWith(src, DefaultOptions())
}

// TransformWith rewrites every JSX element in src into factory calls
func TransformWith(src string, opts Options) (string, error) {
	defaults := DefaultOptions()
	if opts.Factory == "" {
		opts.Factory = defaults.Factory
	}
	if opts.Fragment == "" {
		opts.Fragment = defaults.Fragment
	}

	t := &transformer{src: src, opts: opts}
	out, err := t.script(false)
	if err != nil {
		return "", err
	}
	return out, nil
}

// transformer holds the scan position over the whole source
type transformer struct {
	src  string
	pos  int
	opts Options
}

func (t *transformer) eof() bool {
	return t.pos >= len(t.src)
}

// peek returns the byte at pos+n, or 0 past the end
func (t *transformer) peek(n int) byte {
	if t.pos+n >= len(t.src) {
		return 0
	}
	return t.src[t.pos+n]
}

func (t *transformer) fail(pos int, msg string) error {
	return newError(t.src, pos, msg)
}

// script copies JavaScript from the current position, rewriting markup on
// the way. With inBrace set it stops after the '}' that balances a brace the
// caller already consumed, and returns errUnclosed at end of input.
func (t *transformer) script(inBrace bool) (string, error) {
	var b strings.Builder
	var st scanState
	depth := 0

	for !t.eof() {
		c := t.src[t.pos]
		switch {
		case isSpace(c):
			b.WriteByte(c)
			t.pos++

		case c == '/' && t.peek(1) == '/':
			end := strings.IndexAny(t.src[t.pos:], "\r\n")
			if end < 0 {
				end = len(t.src) - t.pos
			}
			b.WriteString(t.src[t.pos : t.pos+end])
			t.pos += end

		case c == '/' && t.peek(1) == '*':
			text, err := t.blockComment()
			if err != nil {
				return "", err
			}
			b.WriteString(text)

		case c == '\'' || c == '"':
			text, err := t.stringLiteral(c)
			if err != nil {
				return "", err
			}
			b.WriteString(text)
			st.value()

		case c == '`':
			text, err := t.template()
			if err != nil {
				return "", err
			}
			b.WriteString(text)
			st.value()

		case c == '/' && st.expression():
			text, err := t.regex()
			if err != nil {
				return "", err
			}
			b.WriteString(text)
			st.value()

		case isDigit(c) || (c == '.' && isDigit(t.peek(1))):
			b.WriteString(t.number())
			st.value()

		case isIdentStart(c):
			word := t.identifier()
			b.WriteString(word)
			st.setWord(word)

		case c == '<' && st.expression() && startsElement(t.peek(1)):
			el, err := t.element()
			if err != nil {
				return "", err
			}
			b.WriteString(el)
			st.value()

		case c == '{':
			depth++
			b.WriteByte(c)
			t.pos++
			st.setPunct(c)

		case c == '}':
			if depth == 0 && inBrace {
				t.pos++
				return b.String(), nil
			}
			depth--
			b.WriteByte(c)
			t.pos++
			st.setPunct(c)

		default:
			b.WriteByte(c)
			t.pos++
			st.setPunct(c)
		}
	}

	if inBrace {
		return "", errUnclosed
	}
	return b.String(), nil
}

func (t *transformer) blockComment() (string, error) {
	start := t.pos
	end := strings.Index(t.src[start+2:], "*/")
	if end < 0 {
		return "", t.fail(start, msgUnterminatedComment)
	}
	t.pos = start + 2 + end + 2
	return t.src[start:t.pos], nil
}

func (t *transformer) stringLiteral(quote byte) (string, error) {
	start := t.pos
	t.pos++
	for !t.eof() {
		switch t.src[t.pos] {
		case '\\':
			t.pos += 2
		case quote:
			t.pos++
			return t.src[start:t.pos], nil
		case '\n', '\r':
			return "", t.fail(start, msgUnterminatedString)
		default:
			t.pos++
		}
	}
	return "", t.fail(start, msgUnterminatedString)
}

// template copies a template literal, transforming each ${} hole
func (t *transformer) template() (string, error) {
	start := t.pos
	var b strings.Builder
	b.WriteByte('`')
	t.pos++

	for !t.eof() {
		c := t.src[t.pos]
		switch {
		case c == '\\':
			end := min(t.pos+2, len(t.src))
			b.WriteString(t.src[t.pos:end])
			t.pos = end
		case c == '`':
			b.WriteByte(c)
			t.pos++
			return b.String(), nil
		case c == '$' && t.peek(1) == '{':
			t.pos += 2
			inner, err := t.script(true)
			if errors.Is(err, errUnclosed) {
				return "", t.fail(start, msgUnterminatedTemplate)
			}
			if err != nil {
				return "", err
			}
			b.WriteString("${")
			b.WriteString(inner)
			b.WriteByte('}')
		default:
			b.WriteByte(c)
			t.pos++
		}
	}
	return "", t.fail(start, msgUnterminatedTemplate)
}

func (t *transformer) regex() (string, error) {
	start := t.pos
	t.pos++
	inClass := false

	for {
		if t.eof() {
			return "", t.fail(start, msgUnterminatedRegex)
		}
		c := t.src[t.pos]
		if c == '\n' || c == '\r' {
			return "", t.fail(start, msgUnterminatedRegex)
		}
		t.pos++
		switch {
		case c == '\\':
			if !t.eof() && t.src[t.pos] != '\n' {
				t.pos++
			}
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			for !t.eof() && isIdentPart(t.src[t.pos]) {
				t.pos++
			}
			return t.src[start:t.pos], nil
		}
	}
}

func (t *transformer) number() string {
	start := t.pos
	hex := len(t.src) > start+1 && t.src[start] == '0' && (t.src[start+1]|0x20) == 'x'
	for !t.eof() {
		c := t.src[t.pos]
		switch {
		case isIdentPart(c) || c == '.':
			t.pos++
		case (c == '+' || c == '-') && !hex && (t.src[t.pos-1]|0x20) == 'e':
			t.pos++
		default:
			return t.src[start:t.pos]
		}
	}
	return t.src[start:t.pos]
}

func (t *transformer) identifier() string {
	start := t.pos
	for !t.eof() && isIdentPart(t.src[t.pos]) {
		t.pos++
	}
	return t.src[start:t.pos]
}

// container reads the body of a {...} expression whose opening brace has
// been consumed. The result has leading whitespace removed; trailing newlines
// are kept so a line comment cannot swallow what follows.
func (t *transformer) container() (string, error) {
	inner, err := t.script(true)
	if errors.Is(err, errUnclosed) {
		return "", t.fail(t.pos, msgExpectedBrace)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(strings.TrimLeft(inner, " \t\r\n"), " \t"), nil
}
