package catalog

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/tessella/opsq/errors"
	"github.com/tessella/opsq/logger"
)

// Watcher hot-reloads a catalog file into a Catalog. A reload that fails
// validation is logged and dropped; the previously published snapshot
// stays live, so a bad edit never takes the pipeline down.
type Watcher struct {
	path    string
	catalog *Catalog
	watcher *fsnotify.Watcher
	limiter *rate.Limiter

	mu            sync.Mutex
	debounceTimer *time.Timer

	done chan struct{}
}

const debouncePeriod = 500 * time.Millisecond

// NewWatcher watches path and publishes validated reloads into catalog.
func NewWatcher(path string, catalog *Catalog) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "watch catalog file %s", path)
	}

	return &Watcher{
		path:    path,
		catalog: catalog,
		watcher: fw,
		// Editors fire bursts of write events per save; cap reload work
		// at one per second regardless of debounce outcome.
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Logger.Warnw("catalog watcher error",
				logger.FieldCatalogPath, w.path,
				logger.FieldError, err,
			)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debouncePeriod, func() {
		if !w.limiter.Allow() {
			return
		}
		w.reload()
	})
}

func (w *Watcher) reload() {
	snap, err := LoadFile(w.path)
	if err != nil {
		logger.Logger.Errorw("catalog reload rejected, keeping previous snapshot",
			logger.FieldCatalogPath, w.path,
			logger.FieldCatalogVersion, w.catalog.Snapshot().Version,
			logger.FieldError, err,
		)
		return
	}

	w.catalog.swap(snap)
	logger.Logger.Infow("catalog reloaded",
		logger.FieldCatalogPath, w.path,
		logger.FieldSchemaVersion, snap.Version,
	)
}

// Stop ends watching. Safe to call once.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
