package topic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrUnknown is returned when a name does not identify any topic
var ErrUnknown = errors.New("unknown topic")

// Topic identifies a teaching subject
type Topic string

const (
	UseState        Topic = "useState"
	UseEffect       Topic = "useEffect"
	UseContext      Topic = "useContext"
	UseReducer      Topic = "useReducer"
	UseRef          Topic = "useRef"
	UseMemoCallback Topic = "useMemoCallback"
	UseTransition   Topic = "useTransition"
	CustomHook      Topic = "customHook"
)

// Default is the topic active when nothing else was selected
const Default = UseState

const (
	exampleSymbol = "Example"
	wrapperSymbol = "App"
)

// Info describes a topic for listings
type Info struct {
	ID          Topic  `json:"id"`
	Label       string `json:"label"`
	ShortLabel  string `json:"short_label"`
	EntrySymbol string `json:"entry_symbol"`
}

var ordered = []Info{
	{ID: UseState, Label: "useState", ShortLabel: "useState"},
	{ID: UseEffect, Label: "useEffect", ShortLabel: "useEffect"},
	{ID: UseContext, Label: "useContext", ShortLabel: "useContext"},
	{ID: UseReducer, Label: "useReducer", ShortLabel: "useReducer"},
	{ID: UseRef, Label: "useRef", ShortLabel: "useRef"},
	{ID: UseMemoCallback, Label: "useMemo & useCallback", ShortLabel: "useMemo"},
	{ID: UseTransition, Label: "useTransition & useDeferredValue", ShortLabel: "useTrans."},
	{ID: CustomHook, Label: "Custom Hook", ShortLabel: "Custom"},
}

var index = func() map[Topic]int {
	m := make(map[Topic]int, len(ordered))
	for i, info := range ordered {
		ordered[i].EntrySymbol = info.ID.EntrySymbol()
		m[info.ID] = i
	}
	return m
}()

// All returns every topic in display order
func All() []Topic {
	out := make([]Topic, len(ordered))
	for i, info := range ordered {
		out[i] = info.ID
	}
	return out
}

// Infos returns display metadata for every topic in display order
func Infos() []Info {
	return append([]Info(nil), ordered...)
}

// Valid reports whether t is one of the known topics
func (t Topic) Valid() bool {
	_, ok := index[t]
	return ok
}

// Info returns display metadata for t
func (t Topic) Info() Info {
	if i, ok := index[t]; ok {
		return ordered[i]
	}
	return Info{ID: t, Label: string(t), ShortLabel: string(t), EntrySymbol: t.EntrySymbol()}
}

// IsContextTopic reports whether t teaches context and therefore resolves the
// wrapper entry symbol instead of the example component.
func (t Topic) IsContextTopic() bool {
	return t == UseContext
}

// EntrySymbol is the name the execution host resolves for t
func (t Topic) EntrySymbol() string {
	if t.IsContextTopic() {
		return wrapperSymbol
	}
	return exampleSymbol
}

func (t Topic) String() string { return string(t) }

// Parse resolves a topic by its exact identifier, falling back to a
// case-insensitive match. Unknown names produce an error wrapping ErrUnknown
// that names the closest topic when one is near enough.
func Parse(name string) (Topic, error) {
	name = strings.TrimSpace(name)
	if t := Topic(name); t.Valid() {
		return t, nil
	}
	for _, info := range ordered {
		if strings.EqualFold(string(info.ID), name) {
			return info.ID, nil
		}
	}
	if suggestion := Suggest(name); suggestion != "" {
		return "", fmt.Errorf("%w %q (did you mean %q?)", ErrUnknown, name, suggestion)
	}
	return "", fmt.Errorf("%w %q", ErrUnknown, name)
}

// Suggest returns the topic closest to name, or "" when nothing is close
func Suggest(name string) Topic {
	if name == "" {
		return ""
	}
	candidates := make([]string, len(ordered))
	for i, info := range ordered {
		candidates[i] = string(info.ID)
	}

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return Topic(ranks[0].Target)
	}

	best, bestDist := "", 4
	for _, c := range candidates {
		d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return Topic(best)
}
