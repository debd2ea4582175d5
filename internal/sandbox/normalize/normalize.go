// Package normalize strips module syntax from lesson scripts so the remaining
// text can run as the body of a single function.
//
// Imports are removed outright; the capability set replaces them. Exports are
// rewritten into plain local bindings so the entry symbol stays reachable.
package normalize

import (
	"regexp"
	"strings"
)

// Patterns for module statements. A match only counts when it begins a
// statement, see statementStart.
var (
	// importPattern matches an import statement, which may span lines
	importPattern = regexp.MustCompile(`\bimport\b[^;]*;[ \t]*`)
	// defaultExportPattern matches the `export default` prefix
	defaultExportPattern = regexp.MustCompile(`\bexport[ \t]+default\s+`)
	// namedExportPattern matches `export` in front of a declaration
	namedExportPattern = regexp.MustCompile(`\bexport[ \t]+((?:async[ \t]+)?function\b|class\b|const\b|let\b|var\b)`)
	// exportListPattern matches `export { a, b as c };`
	exportListPattern = regexp.MustCompile(`\bexport[ \t]*\{[^}]*\}[ \t]*;?[ \t]*`)

	namedFunctionPattern = regexp.MustCompile(`^(?:async\s+)?function\b\s*\*?\s*[A-Za-z_$][\w$]*`)
	namedClassPattern    = regexp.MustCompile(`^class\s+[A-Za-z_$][\w$]*`)
	bareIdentPattern     = regexp.MustCompile(`^([A-Za-z_$][\w$]*)[ \t]*(;|\r?\n|\r|$)`)
)

// DefaultAlias is the binding used when the default export is an anonymous
// expression
const DefaultAlias = "default_export"

// Normalize removes imports and rewrites exports. It never fails; text without
// module statements is returned unchanged.
func Normalize(src string) string {
	out := removeStatements(src, importPattern)
	out = rewriteDefaultExport(out)
	out = removeStatements(out, exportListPattern)
	return stripNamedExports(out)
}

// Alias returns the local name a default-exported identifier is bound to
func Alias(name string) string {
	return name + "_export"
}

// rewriteDefaultExport handles the first `export default` only
func rewriteDefaultExport(src string) string {
	var loc []int
	for _, l := range defaultExportPattern.FindAllStringIndex(src, -1) {
		if statementStart(src, l[0]) {
			loc = l
			break
		}
	}
	if loc == nil {
		return src
	}

	head, rest := src[:loc[0]], src[loc[1]:]

	switch {
	case namedFunctionPattern.MatchString(rest), namedClassPattern.MatchString(rest):
		// declarations keep their own name
		return head + rest
	case bareIdentPattern.MatchString(rest):
		m := bareIdentPattern.FindStringSubmatch(rest)
		name := m[1]
		if !isReserved(name) {
			return head + "const " + Alias(name) + " = " + rest
		}
	}
	return head + "const " + DefaultAlias + " = " + rest
}

// stripNamedExports drops the `export` keyword in front of declarations
func stripNamedExports(src string) string {
	var b strings.Builder
	last := 0
	for _, m := range namedExportPattern.FindAllStringSubmatchIndex(src, -1) {
		if !statementStart(src, m[0]) {
			continue
		}
		b.WriteString(src[last:m[0]])
		last = m[2]
	}
	if last == 0 {
		return src
	}
	b.WriteString(src[last:])
	return b.String()
}

// removeStatements cuts every match of re that begins a statement. A statement
// alone on its line takes its indentation and line terminator with it.
func removeStatements(src string, re *regexp.Regexp) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(src, -1) {
		start, end := loc[0], loc[1]
		if !statementStart(src, start) {
			continue
		}
		lineStart := start
		for lineStart > 0 && isBlank(src[lineStart-1]) {
			lineStart--
		}
		if (lineStart == 0 || isLineBreak(src[lineStart-1])) && (end == len(src) || isLineBreak(src[end])) {
			start = lineStart
			end = skipLineBreak(src, end)
		}
		b.WriteString(src[last:start])
		last = end
	}
	if last == 0 {
		return src
	}
	b.WriteString(src[last:])
	return b.String()
}

// statementStart reports whether only blanks separate offset i from the start
// of the text, a line break, or one of `;`, `{` and `}`
func statementStart(src string, i int) bool {
	for ; i > 0; i-- {
		switch c := src[i-1]; {
		case isBlank(c):
		case isLineBreak(c), c == ';', c == '{', c == '}':
			return true
		default:
			return false
		}
	}
	return true
}

func skipLineBreak(src string, i int) int {
	switch {
	case strings.HasPrefix(src[i:], "\r\n"):
		return i + 2
	case i < len(src) && isLineBreak(src[i]):
		return i + 1
	}
	return i
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

func isLineBreak(c byte) bool { return c == '\n' || c == '\r' }

// isReserved reports words that cannot stand alone as an exported binding
func isReserved(word string) bool {
	switch word {
	case "function", "class", "async", "new", "this", "null", "true", "false", "typeof", "void":
		return true
	}
	return false
}
