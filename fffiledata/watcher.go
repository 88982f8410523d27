package fffiledata

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/fluxflag/go-server-sdk/fflog"
)

// WatchedFileDataSource wraps a FileDataSource with an fsnotify watch on its source files, calling
// Reload automatically whenever one of them changes.
type WatchedFileDataSource struct {
	source  *FileDataSource
	watcher *fsnotify.Watcher
	loggers fflog.Loggers

	closeOnce sync.Once
	closeCh   chan struct{}
	doneCh    chan struct{}
}

// NewWatchedFileDataSource wraps source with a filesystem watch. It performs an initial Reload
// before watching begins; callers should check the returned error before relying on the Store being
// populated.
func NewWatchedFileDataSource(source *FileDataSource) (*WatchedFileDataSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, path := range source.paths {
		_ = watcher.Add(path) // missing files are tolerated; Reload will report them
	}

	w := &WatchedFileDataSource{
		source:  source,
		watcher: watcher,
		loggers: source.loggers,
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	return w, w.source.Reload()
}

// Start watches for file changes and reloads the Store on each one, until Close is called. It
// blocks the calling goroutine; callers typically invoke it with `go`.
func (w *WatchedFileDataSource) Start() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.closeCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				if err := w.source.Reload(); err != nil {
					w.loggers.Warnf("fffiledata: reload failed after %s: %s", event.Name, err)
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.loggers.Warnf("fffiledata: watcher error: %s", err)
		}
	}
}

// Close stops watching and releases the underlying fsnotify watcher.
func (w *WatchedFileDataSource) Close() error {
	w.closeOnce.Do(func() { close(w.closeCh) })
	return w.watcher.Close()
}
