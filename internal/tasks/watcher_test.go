package tasks

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/linkreel/internal/handoff"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// replaceQueue rewrites the queue the way the share command does: temp file plus rename.
func replaceQueue(t *testing.T, path, content string) {
	t.Helper()
	if err := handoff.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write queue: %v", err)
	}
}

// settle gives the watcher time to record the queue state after a run.
func settle() { time.Sleep(30 * time.Millisecond) }

func TestWatcher(t *testing.T) {
	t.Run("RunsAtStartupAndOnChange", func(t *testing.T) {
		h := newHarness(t)
		var runs atomic.Int32
		run := func(ctx context.Context, _ chan<- ProgressUpdate) (*PipelineResult, error) {
			runs.Add(1)
			return &PipelineResult{}, nil
		}

		path := filepath.Join(t.TempDir(), "queue.json")
		w := NewWatcher(run, path, 5*time.Millisecond, 0, h.logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Watch(ctx, nil) }()

		waitFor(t, "startup run", func() bool { return runs.Load() == 1 })
		settle()

		replaceQueue(t, path, `[{"type":"addItem"}]`)
		waitFor(t, "run after change", func() bool { return runs.Load() == 2 })

		time.Sleep(50 * time.Millisecond)
		if got := runs.Load(); got != 2 {
			t.Errorf("expected no runs without changes, got %d", got)
		}

		cancel()
		if err := <-done; err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	})

	t.Run("OwnRewriteDoesNotRetrigger", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "queue.json")

		var runs atomic.Int32
		run := func(ctx context.Context, _ chan<- ProgressUpdate) (*PipelineResult, error) {
			runs.Add(1)
			return &PipelineResult{}, handoff.WriteFileAtomic(path, []byte("[]"), 0o644)
		}

		w := NewWatcher(run, path, 5*time.Millisecond, 0, h.logger)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Watch(ctx, nil)

		waitFor(t, "startup run", func() bool { return runs.Load() == 1 })
		settle()

		replaceQueue(t, path, `[{"type":"addItem","label":"shared"}]`)
		waitFor(t, "run after share", func() bool { return runs.Load() == 2 })

		time.Sleep(100 * time.Millisecond)
		if got := runs.Load(); got != 2 {
			t.Errorf("expected the drain's own rewrite to be ignored, got %d runs", got)
		}
	})

	t.Run("ThrottledChangeIsRetried", func(t *testing.T) {
		h := newHarness(t)
		var runs atomic.Int32
		run := func(ctx context.Context, _ chan<- ProgressUpdate) (*PipelineResult, error) {
			runs.Add(1)
			return &PipelineResult{}, nil
		}

		path := filepath.Join(t.TempDir(), "queue.json")
		w := NewWatcher(run, path, 5*time.Millisecond, 10, h.logger)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Watch(ctx, nil)

		waitFor(t, "startup run", func() bool { return runs.Load() == 1 })
		settle()

		replaceQueue(t, path, `[1]`)
		waitFor(t, "first change", func() bool { return runs.Load() == 2 })
		settle()

		// The bucket is empty now; this change waits for the next token instead of being dropped.
		replaceQueue(t, path, `[1,2]`)
		waitFor(t, "throttled change", func() bool { return runs.Load() == 3 })
	})

	t.Run("RunErrorsAreAbsorbed", func(t *testing.T) {
		h := newHarness(t)
		var runs atomic.Int32
		run := func(ctx context.Context, _ chan<- ProgressUpdate) (*PipelineResult, error) {
			runs.Add(1)
			return nil, context.DeadlineExceeded
		}

		path := filepath.Join(t.TempDir(), "queue.json")
		w := NewWatcher(run, path, 5*time.Millisecond, 0, h.logger)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Watch(ctx, nil)

		waitFor(t, "startup run", func() bool { return runs.Load() == 1 })
		settle()

		replaceQueue(t, path, `[1]`)
		waitFor(t, "run after failure", func() bool { return runs.Load() == 2 })
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		h := newHarness(t)
		run := func(ctx context.Context, _ chan<- ProgressUpdate) (*PipelineResult, error) {
			t.Error("expected no run without a watchable directory")
			return nil, nil
		}

		path := filepath.Join(t.TempDir(), "missing", "queue.json")
		if err := NewWatcher(run, path, time.Second, 0, h.logger).Watch(context.Background(), nil); err == nil {
			t.Error("expected an error for a missing inbox directory")
		}
	})
}
