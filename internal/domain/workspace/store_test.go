package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/templates"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/kv"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/resilience"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(templates.MustBuiltin(), nil, nil)
}

func TestSeededFromTemplates(t *testing.T) {
	s := newStore(t)
	assert.Equal(t, topic.Default, s.Active())

	for _, tp := range topic.All() {
		files, err := s.Get(tp)
		require.NoError(t, err)
		tpl, _ := templates.MustBuiltin().Get(tp)
		assert.Equal(t, tpl.Script, files.Script)
		assert.Equal(t, tpl.Stylesheet, files.Stylesheet)
	}
}

func TestUpdateNotifies(t *testing.T) {
	s := newStore(t)

	var changes []Change
	s.Subscribe(func(c Change) {
		// observers run after the lock is released
		files, err := s.Get(c.Topic)
		require.NoError(t, err)
		assert.Equal(t, "p {}", files.Stylesheet)
		changes = append(changes, c)
	})

	require.NoError(t, s.Update(topic.UseRef, Stylesheet, "p {}"))
	require.NoError(t, s.Update(topic.UseRef, Stylesheet, "p {}"))

	want := Change{Kind: ChangeEdit, Topic: topic.UseRef, File: Stylesheet, Active: topic.UseState}
	assert.Equal(t, []Change{want, want}, changes, "identical edits are not de-duplicated")
}

func TestUpdateErrors(t *testing.T) {
	s := newStore(t)
	called := false
	s.Subscribe(func(Change) { called = true })

	err := s.Update("useMagic", Script, "")
	assert.ErrorIs(t, err, ErrUnknownTopic)
	assert.ErrorIs(t, err, topic.ErrUnknown)

	assert.ErrorIs(t, s.Update(topic.UseRef, "ts", ""), ErrUnknownKind)
	assert.Error(t, s.Update(topic.UseRef, Script, "a\x00b"))
	assert.False(t, called)
}

func TestSetActive(t *testing.T) {
	s := newStore(t)

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, s.SetActive(topic.UseReducer))
	require.NoError(t, s.SetActive(topic.UseReducer))
	assert.Equal(t, topic.UseReducer, s.Active())
	assert.Len(t, changes, 2)
	assert.Equal(t, Change{Kind: ChangeSelect, Topic: topic.UseReducer, Active: topic.UseReducer}, changes[0])

	assert.ErrorIs(t, s.SetActive("nope"), ErrUnknownTopic)
	assert.Equal(t, topic.UseReducer, s.Active())

	active, files := s.ActiveFiles()
	assert.Equal(t, topic.UseReducer, active)
	assert.Contains(t, files.Script, "useReducer")
}

func TestUnsubscribe(t *testing.T) {
	s := newStore(t)
	var a, b int
	stopA := s.Subscribe(func(Change) { a++ })
	s.Subscribe(func(Change) { b++ })

	require.NoError(t, s.SetActive(topic.UseRef))
	stopA()
	stopA()
	require.NoError(t, s.SetActive(topic.UseRef))

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestConcurrentUpdates(t *testing.T) {
	s := newStore(t)
	var mu sync.Mutex
	count := 0
	s.Subscribe(func(Change) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(topic.CustomHook, Script, "const Example = () => null;")
			_, _ = s.Get(topic.CustomHook)
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, count)
}

func TestParseFileKind(t *testing.T) {
	for in, want := range map[string]FileKind{"js": Script, "JSX": Script, "script": Script, "css": Stylesheet, "style": Stylesheet} {
		got, err := ParseFileKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFileKind("html")
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.Equal(t, "b", Files{Script: "a", Stylesheet: "b"}.Get(Stylesheet))
}

func TestPreferencesRestoreActiveTopic(t *testing.T) {
	store := kv.NewMemory()
	require.NoError(t, store.Set(context.Background(), activeTopicKey, "useTransition"))

	s := New(templates.MustBuiltin(), NewPreferences(store, nil), nil)
	assert.Equal(t, topic.UseTransition, s.Active())

	require.NoError(t, s.SetActive(topic.UseRef))
	v, err := store.Get(context.Background(), activeTopicKey)
	require.NoError(t, err)
	assert.Equal(t, "useRef", v)
}

func TestPreferencesIgnoreGarbage(t *testing.T) {
	store := kv.NewMemory()
	require.NoError(t, store.Set(context.Background(), activeTopicKey, "jQuery"))

	s := New(templates.MustBuiltin(), NewPreferences(store, nil), nil)
	assert.Equal(t, topic.Default, s.Active())
}

// failingStore always errors
type failingStore struct{ calls int }

func (f *failingStore) Get(context.Context, string) (string, error) {
	f.calls++
	return "", errors.New("disk on fire")
}

func (f *failingStore) Set(context.Context, string, string) error {
	f.calls++
	return errors.New("disk on fire")
}

func (f *failingStore) Close() error { return nil }

func TestPreferencesDegradeToMemory(t *testing.T) {
	store := &failingStore{}
	prefs := NewPreferences(store, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.Error(t, prefs.SetActiveTopic(ctx, topic.UseEffect))
	}
	assert.Equal(t, resilience.StateOpen, prefs.Breaker().State())

	calls := store.calls
	assert.ErrorIs(t, prefs.SetActiveTopic(ctx, topic.UseContext), resilience.ErrCircuitOpen)
	assert.Equal(t, calls, store.calls, "an open breaker must not reach the store")

	got, ok := prefs.ActiveTopic(ctx)
	require.True(t, ok)
	assert.Equal(t, topic.UseContext, got)

	// the store keeps working in memory
	s := New(templates.MustBuiltin(), prefs, nil)
	require.NoError(t, s.SetActive(topic.UseRef))
	assert.Equal(t, topic.UseRef, s.Active())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	write("useRef.jsx", []byte("const Example = () => <p>ref</p>;"))
	write("useref.css", []byte("p { color: teal; }"))
	write("notes.js", []byte("// scratch"))
	write("useState.js", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'})
	write("readme.md", []byte("ignored by the glob"))

	s := newStore(t)
	var edits []Change
	s.Subscribe(func(c Change) { edits = append(edits, c) })

	result, err := LoadDir(s, dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"useRef.jsx", "useref.css"}, result.Loaded)
	assert.Contains(t, result.Skipped, "notes.js")
	assert.True(t, strings.HasPrefix(result.Skipped["useState.js"], "not a text file"))
	assert.NotContains(t, result.Skipped, "readme.md")
	assert.Len(t, edits, 2)

	files, err := s.Get(topic.UseRef)
	require.NoError(t, err)
	assert.Equal(t, "const Example = () => <p>ref</p>;", files.Script)
	assert.Equal(t, "p { color: teal; }", files.Stylesheet)

	_, err = LoadDir(s, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestReadLesson(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	require.NoError(t, os.WriteFile(path, []byte("const Example = 1;"), 0o644))

	got, err := ReadLesson(path)
	require.NoError(t, err)
	assert.Equal(t, "const Example = 1;", got)

	bin := filepath.Join(dir, "b.js")
	require.NoError(t, os.WriteFile(bin, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}, 0o644))
	_, err = ReadLesson(bin)
	assert.ErrorContains(t, err, "not a text file")
}
