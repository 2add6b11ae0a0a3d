package overlay

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long a file must be quiet before a change is
// reported. Editors and image tools write in several steps.
const DefaultSettleDelay = 150 * time.Millisecond

// Watcher follows one image file and reports changes through post, which
// hands the callback to the UI goroutine.
//
// The parent directory is watched rather than the file so that tools which
// replace the file by renaming over it are still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	post     func(func()) bool
	onChange func(path string)
	delay    time.Duration
	log      *slog.Logger

	mu    sync.Mutex
	path  string
	dir   string
	timer *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

var _ ImageWatcher = (*Watcher)(nil)

// NewWatcher starts a watcher. onChange is always run through post.
func NewWatcher(post func(func()) bool, onChange func(path string), log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{
		fs:       fsw,
		post:     post,
		onChange: onChange,
		delay:    DefaultSettleDelay,
		log:      log,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Watch switches to path. An empty path stops watching.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	var dir string
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		path = abs
		dir = filepath.Dir(abs)
	}

	if w.dir != "" && w.dir != dir {
		if err := w.fs.Remove(w.dir); err != nil {
			w.log.Debug("unwatch failed", "dir", w.dir, "error", err)
		}
		w.dir = ""
	}
	w.path = path
	if dir == "" || dir == w.dir {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		w.path = ""
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.dir = dir
	return nil
}

// Path returns the watched file, if any.
func (w *Watcher) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.path == "" || filepath.Clean(ev.Name) != w.path {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	path := w.path
	w.timer = time.AfterFunc(w.delay, func() {
		if !w.post(func() { w.onChange(path) }) {
			w.log.Debug("dropped image change, loop stopped", "path", path)
		}
	})
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
