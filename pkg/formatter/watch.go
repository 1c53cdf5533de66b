package formatter

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	errmsg "github.com/siyuan-infoblox/nice-import-sorting/pkg/errors"
	"github.com/siyuan-infoblox/nice-import-sorting/pkg/utils"
)

const debounceInterval = 300 * time.Millisecond

// Watch re-sorts source files below path whenever they change, until ctx
// is cancelled. Files are rewritten in place; rewrites made by the watcher
// itself are recognized through the sorted-content cache and skipped.
func (g *formatter) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errmsg.ErrMsgFailedToCreateWatcher)
	}
	defer watcher.Close()

	isDir, err := utils.IsDirectory(path)
	if err != nil {
		return errors.Wrap(err, errmsg.ErrMsgFailedToCheckPath)
	}

	// A single file is watched through its directory so editors that
	// replace the file on save keep being followed.
	var only string
	if isDir {
		err = addWatchDirs(watcher, path)
	} else {
		only = filepath.Clean(path)
		err = watcher.Add(filepath.Dir(only))
	}
	if err != nil {
		return errors.Wrap(err, errmsg.ErrMsgFailedToWatchPath)
	}

	g.printf(g.config.Out, errmsg.InfoMsgWatching+"\n", path)

	var (
		mu            sync.Mutex
		pending       = make(map[string]bool)
		debounceTimer *time.Timer
	)
	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		clear(pending)
		mu.Unlock()

		slices.Sort(paths)
		g.processChanged(ctx, paths)
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if isDir && event.Has(fsnotify.Create) {
				addIfDirectory(watcher, event.Name)
			}

			if !isRelevantChange(event) {
				continue
			}
			if only != "" && filepath.Clean(event.Name) != only {
				continue
			}

			mu.Lock()
			pending[event.Name] = true
			mu.Unlock()

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, flush)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.printf(g.config.ErrOut, errmsg.InfoMsgWatcherError+"\n", err)
		}
	}
}

// processChanged sorts the given files in place, ignoring files that no
// longer exist
func (g *formatter) processChanged(ctx context.Context, paths []string) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		changed, err := g.processFile(ctx, path, false)
		if err != nil {
			g.printf(g.config.ErrOut, errmsg.InfoMsgErrorProcessing+"\n", path, err)
			continue
		}
		if changed {
			g.printf(g.config.Out, errmsg.InfoMsgProcessedFiles+"\n", path)
		}
	}
}

func isRelevantChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return utils.IsSourceFile(filepath.Base(event.Name))
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && utils.IsSkippedDir(d.Name()) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func addIfDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() && !utils.IsSkippedDir(info.Name()) {
		_ = addWatchDirs(watcher, path)
	}
}
