package formatter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"github.com/siyuan-infoblox/nice-import-sorting/pkg/importsort"
)

// syncBuffer is a bytes.Buffer safe to read while the watcher writes
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFormatter_Watch(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	testFile := writeTestFile(t, dir, "src/main.ts", sortedSource)

	out := &syncBuffer{}
	g := New(FormatterConfig{
		Sorting: importsort.Config{Roots: []string{"app"}},
		InPlace: true,
		Out:     out,
		ErrOut:  out,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- g.Watch(ctx, dir)
	}()

	req.Eventually(func() bool {
		return strings.Contains(out.String(), "Watching "+dir)
	}, 5*time.Second, 10*time.Millisecond)

	req.NoError(os.WriteFile(testFile, []byte(unsortedSource), 0o644))

	req.Eventually(func() bool {
		content, err := os.ReadFile(testFile)
		return err == nil && string(content) == sortedSource
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestIsRelevantChange(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write to ts file", fsnotify.Event{Name: "a.ts", Op: fsnotify.Write}, true},
		{"create jsx file", fsnotify.Event{Name: "dir/a.jsx", Op: fsnotify.Create}, true},
		{"rename mjs file", fsnotify.Event{Name: "a.mjs", Op: fsnotify.Rename}, true},
		{"remove ts file", fsnotify.Event{Name: "a.ts", Op: fsnotify.Remove}, false},
		{"chmod ts file", fsnotify.Event{Name: "a.ts", Op: fsnotify.Chmod}, false},
		{"write to markdown", fsnotify.Event{Name: "README.md", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, isRelevantChange(tt.event))
		})
	}
}

func TestAddWatchDirs(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	writeTestFile(t, dir, "src/a.ts", sortedSource)
	writeTestFile(t, dir, "node_modules/dep/index.js", sortedSource)
	writeTestFile(t, dir, ".git/config", "")

	watcher, err := fsnotify.NewWatcher()
	req.NoError(err)
	defer watcher.Close()

	req.NoError(addWatchDirs(watcher, dir))
	req.ElementsMatch([]string{dir, filepath.Join(dir, "src")}, watcher.WatchList())
}
