package jsx

// tokenKind classifies the last significant token seen by the scanner
type tokenKind int

const (
	tokStart tokenKind = iota
	tokValue
	tokWord
	tokPunct
)

// keywords after which an expression begins
var exprKeywords = map[string]bool{
	"return":     true,
	"case":       true,
	"yield":      true,
	"await":      true,
	"typeof":     true,
	"void":       true,
	"delete":     true,
	"in":         true,
	"of":         true,
	"new":        true,
	"else":       true,
	"do":         true,
	"instanceof": true,
	"throw":      true,
	"extends":    true,
}

// scanState decides whether '<' and '/' begin markup and regex literals
type scanState struct {
	kind     tokenKind
	punct    byte
	word     string
	property bool // word followed a member dot
	dots     int  // run length of consecutive '.'
}

func (s *scanState) expression() bool {
	switch s.kind {
	case tokStart:
		return true
	case tokWord:
		return !s.property && exprKeywords[s.word]
	case tokPunct:
		return s.punct != ')' && s.punct != ']' && s.punct != '}'
	default:
		return false
	}
}

func (s *scanState) value() {
	s.kind = tokValue
	s.dots = 0
}

func (s *scanState) setWord(w string) {
	s.property = s.kind == tokPunct && s.punct == '.' && s.dots == 1
	s.kind = tokWord
	s.word = w
	s.dots = 0
}

func (s *scanState) setPunct(c byte) {
	if c == '.' {
		if s.kind == tokPunct && s.punct == '.' {
			s.dots++
		} else {
			s.dots = 1
		}
	} else {
		s.dots = 0
	}
	s.kind = tokPunct
	s.punct = c
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isIdentStart treats every non-ASCII byte as a letter
func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// startsElement reports whether the byte after '<' opens a tag or fragment
func startsElement(c byte) bool {
	return c == '>' || (isIdentStart(c) && c < 0x80)
}
