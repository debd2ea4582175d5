package preview

import (
	"html"
	"regexp"
	"strings"

	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
)

// styleCloser matches anything that would end a <style> element early
var styleCloser = regexp.MustCompile(`(?i)</(style)`)

// Document builds the preview page: the active topic's stylesheet, read
// straight from the store, followed by the outcome panel of the latest
// snapshot
func (c *Controller) Document() string {
	snap := c.Snapshot()
	active, files := c.store.ActiveFiles()

	out := snap.Outcome
	if out.Topic != active {
		// nothing has run for the active topic yet
		out = pipeline.Outcome{Topic: active}
	}
	return Render(files.Stylesheet, out)
}

// Render writes the document for a stylesheet and an outcome
func Render(stylesheet string, out pipeline.Outcome) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString("Preview: " + out.Topic.String()))
	b.WriteString("</title>\n<style>\n")
	b.WriteString(styleCloser.ReplaceAllString(stylesheet, `<\/$1`))
	b.WriteString("\n</style>\n</head>\n<body>\n")
	b.WriteString(Panel(out))
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// Panel renders just the outcome: the output, an empty placeholder or the
// error message
func Panel(out pipeline.Outcome) string {
	var b strings.Builder
	switch out.Kind {
	case pipeline.Rendered:
		b.WriteString(`<div id="preview" class="preview preview-rendered">`)
		b.WriteString(out.HTML)
		b.WriteString(`</div>`)
	case pipeline.Failed:
		b.WriteString(`<div id="preview" class="preview preview-failed"><pre class="preview-error">`)
		b.WriteString(html.EscapeString(out.Diagnostic))
		b.WriteString(`</pre></div>`)
	case pipeline.Empty:
		b.WriteString(`<div id="preview" class="preview preview-empty"><p class="preview-placeholder">Nothing to render. Define a component named <code>`)
		b.WriteString(html.EscapeString(out.Topic.EntrySymbol()))
		b.WriteString(`</code>.</p></div>`)
	default:
		b.WriteString(`<div id="preview" class="preview preview-idle"></div>`)
	}
	return b.String()
}
