package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/mtrans/scanner"
)

// settle is how long a changed file is left alone before it is read, so
// a burst of writes is translated once.
const settle = 100 * time.Millisecond

// ReportFunc receives the results of a re-translated file.
type ReportFunc func(filename string, results []Result)

// Watcher re-translates expression files under a set of directories
// whenever they are written.
type Watcher struct {
	engine  Translator
	logger  *zap.Logger
	report  ReportFunc
	dirs    []string
	match   *scanner.Scanner
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	watching bool
	done     chan struct{}
}

func NewWatcher(engine Translator, logger *zap.Logger, report ReportFunc, dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		engine:  engine,
		logger:  logger,
		report:  report,
		dirs:    dirs,
		match:   scanner.New("."),
		watcher: fw,
	}, nil
}

// Start adds every directory below the watched roots and begins handling
// events until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watching {
		return errors.New("already watching")
	}
	for _, dir := range w.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	w.watching = true
	w.done = make(chan struct{})
	go w.watchLoop(ctx)
	return nil
}

// Stop closes the underlying watcher and waits for the event loop.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		w.logger.Warn("not watching")
		return nil
	}
	w.watching = false
	done := w.done
	w.mu.Unlock()

	err := w.watcher.Close()
	<-done
	return err
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.match.Match(event.Name) {
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(settle):
	}

	results, err := w.engine.Run(ctx, event.Name)
	if err != nil {
		w.logger.Error("error translating file", zap.String("file", event.Name), zap.Error(err))
		return
	}
	w.reportResults(event.Name, results)
}

func (w *Watcher) reportResults(filename string, results []Result) {
	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	w.logger.Info("translated file",
		zap.String("file", filename),
		zap.Int("expressions", len(results)),
		zap.Int("failed", failed))
	if w.report != nil {
		w.report(filename, results)
	}
}
