package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
)

// lessonPattern matches <topic>.js, <topic>.jsx and <topic>.css
const lessonPattern = "*.{js,jsx,css}"

// LoadResult lists what LoadDir applied and what it passed over
type LoadResult struct {
	Loaded  []string          `json:"loaded"`
	Skipped map[string]string `json:"skipped,omitempty"` // file -> reason
}

// LoadDir feeds lesson files from dir into the store through Update.
// Files that do not name a topic, or that are not text, are skipped.
func LoadDir(s *Store, dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open lesson directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, lessonPattern))
	if err != nil {
		return nil, fmt.Errorf("glob failed: %w", err)
	}
	sort.Strings(matches)

	result := &LoadResult{Skipped: make(map[string]string)}
	for _, path := range matches {
		name := filepath.Base(path)
		ext := filepath.Ext(name)

		t, err := topic.Parse(strings.TrimSuffix(name, ext))
		if err != nil {
			result.Skipped[name] = err.Error()
			continue
		}
		kind, err := ParseFileKind(strings.TrimPrefix(ext, "."))
		if err != nil {
			result.Skipped[name] = err.Error()
			continue
		}

		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			return result, fmt.Errorf("mime detection failed for %s: %w", name, err)
		}
		if !isText(mtype) {
			result.Skipped[name] = "not a text file (" + mtype.String() + ")"
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return result, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := s.Update(t, kind, string(data)); err != nil {
			return result, fmt.Errorf("failed to load %s: %w", name, err)
		}
		result.Loaded = append(result.Loaded, name)
	}
	return result, nil
}

// ReadLesson reads one script or stylesheet file, rejecting non-text content
func ReadLesson(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("mime detection failed: %w", err)
	}
	if !isText(mtype) {
		return "", fmt.Errorf("%s is not a text file (%s)", path, mtype.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") || m.Is("application/javascript") {
			return true
		}
	}
	return strings.HasPrefix(mtype.String(), "text/")
}
