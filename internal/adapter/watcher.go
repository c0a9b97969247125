package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	m "gest.dev/pkg/gest/internal/model"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher reports changes to script files below a set of roots.
type Watcher interface {
	// Watch emits one signal per batch of script changes until ctx is done.
	// Watch errors are delivered on the error channel.
	Watch(ctx context.Context, roots []m.Path) (<-chan struct{}, <-chan error, error)
}

// FSWatcher implements Watcher with fsnotify. Roots are watched recursively.
type FSWatcher struct {
	fs       SourceFSAdapter
	debounce time.Duration
}

// NewFSWatcher constructs an FSWatcher. A zero debounce uses the default.
func NewFSWatcher(fs SourceFSAdapter, debounce time.Duration) *FSWatcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &FSWatcher{fs: fs, debounce: debounce}
}

// Watch starts watching every directory below roots.
func (w *FSWatcher) Watch(ctx context.Context, roots []m.Path) (<-chan struct{}, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	for _, root := range roots {
		if err := w.addTree(watcher, root); err != nil {
			_ = watcher.Close()
			return nil, nil, err
		}
	}

	changes := make(chan struct{}, 1)
	errs := make(chan error, 1)

	go w.loop(ctx, watcher, changes, errs)

	return changes, errs, nil
}

func (w *FSWatcher) addTree(watcher *fsnotify.Watcher, root m.Path) error {
	return w.fs.Walk(root, true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}

		if !info.IsDir() {
			return nil
		}

		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}

		slog.Debug("Watching directory", "path", path)

		return nil
	})
}

func (w *FSWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- struct{}, errs chan<- error) {
	defer func() {
		_ = watcher.Close()
		close(changes)
		close(errs)
	}()

	var pending <-chan time.Time

	touched := make(map[string]struct{})
	hashes := make(map[string]string)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if w.handleEvent(watcher, event) {
				touched[event.Name] = struct{}{}
				pending = time.After(w.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			select {
			case errs <- err:
			default:
				slog.Error("Dropped watcher error", "error", err)
			}
		case <-pending:
			pending = nil

			if !w.contentChanged(touched, hashes) {
				continue
			}

			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}
}

// handleEvent reports whether event touches a script. New directories are
// added to the watch list.
func (w *FSWatcher) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := w.fs.FileInfo(m.Path(event.Name)); err == nil && info.IsDir() {
			if err := w.addTree(watcher, m.Path(event.Name)); err != nil {
				slog.Error("Failed to watch new directory", "path", event.Name, "error", err)
			}

			return false
		}
	}

	if filepath.Ext(event.Name) != ScriptExtension {
		return false
	}

	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// contentChanged drains touched and reports whether any script was removed
// or now hashes differently. Rewrites with identical content are ignored.
func (w *FSWatcher) contentChanged(touched map[string]struct{}, hashes map[string]string) bool {
	changed := false

	for path := range touched {
		delete(touched, path)

		hash, err := w.fs.HashFile(m.Path(path))
		if err != nil {
			delete(hashes, path)

			changed = true

			continue
		}

		if hashes[path] != hash {
			hashes[path] = hash
			changed = true
		}
	}

	if !changed {
		slog.Debug("Ignoring scripts rewritten without changes")
	}

	return changed
}
