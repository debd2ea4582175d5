package jsx

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parser messages
const (
	msgUnterminatedJSX      = "Unterminated JSX contents"
	msgUnexpectedToken      = "Unexpected token"
	msgUnterminatedString   = "Unterminated string constant"
	msgUnterminatedTemplate = "Unterminated template"
	msgUnterminatedRegex    = "Unterminated regular expression"
	msgUnterminatedComment  = "Unterminated comment"
	msgExpectedBrace        = `Unexpected token, expected "}"`
	msgExpectedSpread       = `Unexpected token, expected "..."`
	msgEmptyAttribute       = "JSX attributes must only be assigned a non-empty expression"
	msgFragmentClose        = "Expected corresponding closing tag for JSX fragment"
)

// TransformError reports malformed markup or an unterminated literal
type TransformError struct {
	Line    int    // 1-based
	Col     int    // 1-based, in runes
	Msg     string // parser message
	Snippet string // caret-annotated source excerpt
}

// Error implements the error interface
func (e *TransformError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("%s (%d:%d)", e.Msg, e.Line, e.Col)
	}
	return fmt.Sprintf("%s (%d:%d)\n\n%s", e.Msg, e.Line, e.Col, e.Snippet)
}

// newError locates pos in src and renders the snippet
func newError(src string, pos int, msg string) *TransformError {
	if pos > len(src) {
		pos = len(src)
	}
	if pos < 0 {
		pos = 0
	}
	line := 1 + strings.Count(src[:pos], "\n")
	lineStart := strings.LastIndexByte(src[:pos], '\n') + 1
	col := utf8.RuneCountInString(src[lineStart:pos]) + 1

	return &TransformError{
		Line:    line,
		Col:     col,
		Msg:     msg,
		Snippet: snippet(src, line, col),
	}
}

// snippet shows the error line with one line of context on each side and a
// caret under the column
func snippet(src string, line, col int) string {
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if line > 1 {
		fmt.Fprintf(&b, "  %4d | %s\n", line-1, strings.TrimRight(lines[line-2], "\r"))
	}
	fmt.Fprintf(&b, "> %4d | %s\n", line, strings.TrimRight(lines[line-1], "\r"))
	fmt.Fprintf(&b, "       | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "  %4d | %s\n", line+1, strings.TrimRight(lines[line], "\r"))
	}
	return b.String()
}
