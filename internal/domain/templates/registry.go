package templates

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
)

//go:embed templates.yaml
var builtinYAML []byte

// Template is the default content of one topic
type Template struct {
	Script     string `yaml:"script" toml:"script" json:"script"`
	Stylesheet string `yaml:"stylesheet" toml:"stylesheet" json:"stylesheet"`
}

// file is the on-disk shape shared by the embedded table and overrides
type file struct {
	Templates map[string]Template `yaml:"templates" toml:"templates"`
}

// Registry maps every topic to its template
type Registry struct {
	entries map[topic.Topic]Template
}

var (
	builtin     *Registry
	builtinErr  error
	builtinOnce sync.Once
)

// Builtin returns the registry decoded from the embedded table
func Builtin() (*Registry, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = decode(builtinYAML, ".yaml", nil)
		if builtinErr == nil {
			builtinErr = builtin.complete()
		}
	})
	return builtin, builtinErr
}

// MustBuiltin is Builtin for callers that treat a broken embed as a bug
func MustBuiltin() *Registry {
	reg, err := Builtin()
	if err != nil {
		panic(fmt.Sprintf("templates: embedded table is invalid: %v", err))
	}
	return reg
}

// Load returns the built-in registry with entries from path layered on top.
// An empty path yields the built-in registry unchanged.
func Load(path string) (*Registry, error) {
	base, err := Builtin()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}

	reg, err := decode(data, filepath.Ext(path), base)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates from %s: %w", path, err)
	}
	return reg, nil
}

// decode parses data according to ext and layers it over base (may be nil)
func decode(data []byte, ext string, base *Registry) (*Registry, error) {
	var f file
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("invalid toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported templates format %q", ext)
	}

	reg := &Registry{entries: make(map[topic.Topic]Template, len(topic.All()))}
	if base != nil {
		for t, tpl := range base.entries {
			reg.entries[t] = tpl
		}
	}

	for name, tpl := range f.Templates {
		t := topic.Topic(name)
		if !t.Valid() {
			return nil, fmt.Errorf("%w %q", topic.ErrUnknown, name)
		}
		reg.entries[t] = tpl
	}
	return reg, nil
}

// complete verifies that every topic has an entry
func (r *Registry) complete() error {
	for _, t := range topic.All() {
		if _, ok := r.entries[t]; !ok {
			return fmt.Errorf("missing template for topic %s", t)
		}
	}
	return nil
}

// Get returns the template for t
func (r *Registry) Get(t topic.Topic) (Template, bool) {
	tpl, ok := r.entries[t]
	return tpl, ok
}

// Topics returns the topics covered by the registry in display order
func (r *Registry) Topics() []topic.Topic {
	out := make([]topic.Topic, 0, len(r.entries))
	for _, t := range topic.All() {
		if _, ok := r.entries[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
