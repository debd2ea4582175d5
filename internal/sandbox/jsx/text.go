package jsx

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	lineBreaks       = regexp.MustCompile(`\r\n|\n|\r`)
	attributeNewline = regexp.MustCompile(`\n\s+`)
)

// childText applies the JSX whitespace rules to a run of text between tags.
// Lines are trimmed except at the outer edges of the run, blank lines are
// dropped and the rest are joined with single spaces.
func childText(raw string) string {
	lines := lineBreaks.Split(html.UnescapeString(raw), -1)

	lastNonEmpty := 0
	for i, line := range lines {
		if strings.TrimLeft(line, " \t") != "" {
			lastNonEmpty = i
		}
	}

	var b strings.Builder
	for i, line := range lines {
		text := strings.ReplaceAll(line, "\t", " ")
		if i != 0 {
			text = strings.TrimLeft(text, " ")
		}
		if i != len(lines)-1 {
			text = strings.TrimRight(text, " ")
		}
		if text == "" {
			continue
		}
		b.WriteString(text)
		if i != lastNonEmpty {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// attributeText decodes entities and folds indented line breaks
func attributeText(raw string) string {
	return attributeNewline.ReplaceAllString(html.UnescapeString(raw), " ")
}

// isEmptyExpression reports a container holding only whitespace and comments
func isEmptyExpression(expr string) bool {
	s := expr
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case s == "":
			return true
		case strings.HasPrefix(s, "//"):
			end := strings.IndexAny(s, "\r\n")
			if end < 0 {
				return true
			}
			s = s[end:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s[2:], "*/")
			if end < 0 {
				return false
			}
			s = s[2+end+2:]
		default:
			return false
		}
	}
}

// quote renders s as a double-quoted JavaScript string literal
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
