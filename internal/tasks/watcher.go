package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/desertthunder/linkreel/internal/metrics"
)

// fileStamp is the part of a file's metadata that changes when the share command rewrites it.
type fileStamp struct {
	exists  bool
	size    int64
	modTime time.Time
}

// Watcher runs the pipeline whenever the queue file changes.
//
// This stands in for the host becoming active: the pipeline runs once at startup and again after every
// rewrite of the queue. The queue is replaced by rename, so the watcher follows its directory rather than
// the file. Events only wake the watcher; the file's size and mtime decide whether anything changed, so
// the drain's own rewrite does not start another run.
//
// Runs are throttled by a token bucket. A change that arrives while throttled is retried every interval.
type Watcher struct {
	run      ForegroundFunc
	path     string
	interval time.Duration
	limiter  *rate.Limiter
	logger   *log.Logger
}

// NewWatcher creates a Watcher for the queue at path. perSecond <= 0 disables throttling.
func NewWatcher(run ForegroundFunc, path string, interval time.Duration, perSecond float64, logger *log.Logger) *Watcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Watcher{
		run:      run,
		path:     path,
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// Watch blocks until ctx is cancelled. Progress from every run is forwarded to progress.
//
// The queue's directory must exist.
func (w *Watcher) Watch(ctx context.Context, progress chan<- ProgressUpdate) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		metrics.WatcherErrors.Inc()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			w.logger.Error("failed to close file watcher", "error", err)
		}
	}()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		metrics.WatcherErrors.Inc()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.trigger(ctx, progress)
	// The startup run rewrites the queue itself.
	last := w.stamp()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()

			if current := w.stamp(); current != last {
				pending = true
				last = current
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			metrics.WatcherErrors.Inc()
			w.logger.Error("file watcher error", "error", err)
			continue

		case <-ticker.C:
		}

		if !pending {
			continue
		}
		if !w.limiter.Allow() {
			metrics.WatcherTriggersTotal.WithLabelValues("throttled").Inc()
			w.logger.Debug("queue change throttled", "path", w.path)
			continue
		}

		pending = false
		w.trigger(ctx, progress)
		last = w.stamp()
	}
}

func (w *Watcher) trigger(ctx context.Context, progress chan<- ProgressUpdate) {
	metrics.WatcherTriggersTotal.WithLabelValues("ran").Inc()

	result, err := w.run(ctx, progress)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.Error("foreground pipeline failed", "error", err)
		}
		return
	}
	if result != nil && result.Drain != nil && result.Drain.Applied > 0 {
		w.logger.Info("imported shared links", "count", result.Drain.Applied)
	}
}

func (w *Watcher) stamp() fileStamp {
	info, err := os.Stat(w.path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{exists: true, size: info.Size(), modTime: info.ModTime()}
}

func eventType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Chmod):
		return "chmod"
	default:
		return "unknown"
	}
}
