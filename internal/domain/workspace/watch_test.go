package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
)

func TestWatcherAppliesWrites(t *testing.T) {
	s := newStore(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "lesson.jsx")
	style := filepath.Join(dir, "lesson.css")
	require.NoError(t, os.WriteFile(script, []byte("const Example = () => <p>one</p>;"), 0o644))
	require.NoError(t, os.WriteFile(style, []byte("p {}"), 0o644))

	w, err := NewWatcher(s, topic.UseRef, map[FileKind]string{Script: script, Stylesheet: style}, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Load())
	files, err := s.Get(topic.UseRef)
	require.NoError(t, err)
	assert.Equal(t, "const Example = () => <p>one</p>;", files.Script)
	assert.Equal(t, "p {}", files.Stylesheet)

	changes := make(chan Change, 16)
	defer s.Subscribe(func(c Change) { changes <- c })()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(script, []byte("const Example = () => <p>two</p>;"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			assert.Equal(t, topic.UseRef, c.Topic)
			assert.Equal(t, Script, c.File)
			files, err := s.Get(topic.UseRef)
			require.NoError(t, err)
			if files.Script != "const Example = () => <p>two</p>;" {
				continue // a truncating write can surface first
			}
			cancel()
			assert.ErrorIs(t, <-done, context.Canceled)
			return
		case <-deadline:
			cancel()
			<-done
			t.Fatal("no change observed")
		}
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	s := newStore(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "lesson.js")
	require.NoError(t, os.WriteFile(script, []byte("const Example = () => null;"), 0o644))

	w, err := NewWatcher(s, topic.UseState, map[FileKind]string{Script: script}, nil)
	require.NoError(t, err)
	defer w.Close()

	changes := make(chan Change, 16)
	defer s.Subscribe(func(c Change) { changes <- c })()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))
	assert.ErrorIs(t, <-done, context.DeadlineExceeded)
	assert.Empty(t, changes)
}

func TestNewWatcherErrors(t *testing.T) {
	s := newStore(t)

	_, err := NewWatcher(s, "useNothing", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownTopic)

	_, err = NewWatcher(s, topic.UseState, map[FileKind]string{Script: "/does/not/exist/lesson.js"}, nil)
	assert.Error(t, err)
}
