package workspace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
)

var (
	// ErrUnknownTopic is topic.ErrUnknown so either sentinel matches
	ErrUnknownTopic = topic.ErrUnknown
	// ErrUnknownKind is returned for a file kind other than js or css
	ErrUnknownKind = errors.New("unknown file kind")
)

// FileKind selects one of the two texts stored per topic
type FileKind string

const (
	Script     FileKind = "js"
	Stylesheet FileKind = "css"
)

// ParseFileKind accepts js, jsx, script, css, style and stylesheet
func ParseFileKind(s string) (FileKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "js", "jsx", "script":
		return Script, nil
	case "css", "style", "stylesheet":
		return Stylesheet, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
	}
}

// Files is the editable content of one topic
type Files struct {
	Script     string `json:"script"`
	Stylesheet string `json:"stylesheet"`
}

// Get returns the text of kind
func (f Files) Get(kind FileKind) string {
	if kind == Stylesheet {
		return f.Stylesheet
	}
	return f.Script
}

// ChangeKind tells an edit apart from a topic switch
type ChangeKind string

const (
	ChangeEdit   ChangeKind = "edit"
	ChangeSelect ChangeKind = "select"
)

// Change describes one mutation of the store
type Change struct {
	Kind   ChangeKind  `json:"kind"`
	Topic  topic.Topic `json:"topic"`
	File   FileKind    `json:"file,omitempty"`
	Active topic.Topic `json:"active"`
}

// Observer is notified synchronously after every change
type Observer func(Change)
