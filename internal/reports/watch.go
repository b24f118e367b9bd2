package reports

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must be quiet before it is uploaded.
const DefaultDebounce = 500 * time.Millisecond

// Watcher uploads report files under a directory whenever they change.
type Watcher struct {
	viewer   *Viewer
	dir      string
	debounce time.Duration
	fsw      *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]time.Time

	results chan UploadResult
}

// NewWatcher watches dir and its non-hidden subdirectories.
func (v *Viewer) NewWatcher(dir string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		viewer:   v,
		dir:      dir,
		debounce: debounce,
		fsw:      fsw,
		pending:  map[string]time.Time{},
		results:  make(chan UploadResult, 64),
	}
	if err := w.addRecursive(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Results yields one entry per upload attempt. It is closed when Run returns.
func (w *Watcher) Results() <-chan UploadResult { return w.results }

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if base := d.Name(); path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.viewer.log.Warn().Err(err).Str("path", path).Msg("failed to watch directory")
			return nil
		}
		w.viewer.log.Debug().Str("path", path).Msg("watching directory")
		return nil
	})
}

// Run processes file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.results)
	defer w.fsw.Close()

	w.viewer.log.Info().Str("dir", w.dir).Dur("debounce", w.debounce).Msg("watching reports")

	tick := w.debounce / 2
	if tick <= 0 {
		tick = w.debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.viewer.log.Error().Err(err).Msg("watcher error")
		case <-ticker.C:
			w.flush(ctx, time.Now())
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(ev.Name)
			return
		}
	}
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return
	}
	if !Importable(ev.Name) || strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return
	}
	w.pendingMu.Lock()
	w.pending[ev.Name] = time.Now()
	w.pendingMu.Unlock()
}

// flush uploads files that have been quiet for the debounce interval.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	w.pendingMu.Lock()
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, path := range ready {
		res := w.viewer.UploadFile(ctx, path)
		if res.Err != nil {
			w.viewer.log.Warn().Err(res.Err).Str("path", path).Msg("report upload failed")
		} else {
			w.viewer.log.Info().Str("path", path).Str("filename", res.Filename).Msg("report uploaded")
		}
		select {
		case w.results <- res:
		default:
			// Nobody is draining results; the log line above is enough.
		}
	}
}
