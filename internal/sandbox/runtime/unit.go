package runtime

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
)

// CapabilityNames are the unit parameters, in order
var CapabilityNames = []string{
	"React",
	"useState",
	"useEffect",
	"useContext",
	"createContext",
	"useReducer",
	"useRef",
	"useMemo",
	"useCallback",
	"useTransition",
	"useDeferredValue",
}

// TopicParam is the extra parameter of the context topic
const TopicParam = "activeHook"

// UnitName is the file name reported in syntax errors
const UnitName = "lesson.js"

// Params returns the parameter list for a topic
func Params(t topic.Topic) []string {
	params := append([]string(nil), CapabilityNames...)
	if t.IsContextTopic() {
		params = append(params, TopicParam)
	}
	return params
}

// Trailer returns the statement that resolves the entry symbol of t
func Trailer(t topic.Topic) string {
	entry := t.EntrySymbol()
	if t.IsContextTopic() {
		return fmt.Sprintf(
			"return %s === %q && typeof %s === \"function\" ? React.createElement(%s) : null;",
			TopicParam, t.String(), entry, entry,
		)
	}
	return fmt.Sprintf(
		"return typeof %s === \"function\" ? React.createElement(%s) : null;",
		entry, entry,
	)
}

// Source wraps body as a function expression. The header shares the first
// line with the body so line numbers in syntax errors match the input.
func Source(body string, t topic.Topic) string {
	var b strings.Builder
	b.WriteString("(function(")
	b.WriteString(strings.Join(Params(t), ", "))
	b.WriteString(") {")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(Trailer(t))
	b.WriteString("\n})")
	return b.String()
}
