package monitor

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DirWatcher signals writes to the log directory so the monitor can poll
// before the interval elapses
type DirWatcher struct {
	watcher *fsnotify.Watcher
	wake    chan struct{}
	logger  zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewDirWatcher starts watching dir
func NewDirWatcher(dir string, logger zerolog.Logger) (*DirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &DirWatcher{
		watcher: watcher,
		wake:    make(chan struct{}, 1),
		logger:  logger,
		done:    make(chan struct{}),
	}
	go w.loop()

	return w, nil
}

// Wake delivers at most one pending signal. It is never closed.
func (w *DirWatcher) Wake() <-chan struct{} {
	return w.wake
}

// Close stops the watcher and waits for its goroutine
func (w *DirWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *DirWatcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Trace().Str("file", event.Name).Str("op", event.Op.String()).Msg("Log directory event")

			// Coalesce bursts into a single pending wake
			select {
			case w.wake <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("Log directory watcher error")
		}
	}
}
