package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/internal/testutil"
	"github.com/philipparndt/goslice/pkg/watcher"
)

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "part.stl")
	require.NoError(t, os.WriteFile(file, []byte("solid a"), 0o644))

	fw, err := watcher.NewFileWatcher(200*time.Millisecond, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Close() })

	changed := make(chan string, 10)
	require.NoError(t, fw.Watch([]string{file}, func(path string) { changed <- path }))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	fw.Start(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(file, []byte("solid b"), 0o644))
	}

	select {
	case path := <-changed:
		abs, _ := filepath.Abs(file)
		assert.Equal(t, abs, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case <-changed:
		t.Fatal("writes were not debounced")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatchMissingFile(t *testing.T) {
	fw, err := watcher.NewFileWatcher(time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Close() })

	err = fw.Watch([]string{filepath.Join(t.TempDir(), "missing.stl")}, func(string) {})
	assert.Error(t, err)
}
