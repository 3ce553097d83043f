package workpool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	tasks := make([]Task, 12)
	for i := range tasks {
		tasks[i] = Task{Name: fmt.Sprintf("task-%d", i), Run: func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		}}
	}

	var reports []Progress
	err := Run(context.Background(), 3, len(tasks), Slice(tasks), func(p Progress) {
		reports = append(reports, p)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := peak.Load(); got > 3 || got < 1 {
		t.Fatalf("peak concurrency = %d, want 1..3", got)
	}
	if len(reports) != len(tasks) {
		t.Fatalf("got %d progress reports, want %d", len(reports), len(tasks))
	}
	for i, p := range reports {
		if p.Done != i+1 || p.Total != len(tasks) {
			t.Fatalf("report %d = %+v", i, p)
		}
	}
}

func TestRunFailFast(t *testing.T) {
	boom := errors.New("boom")
	var started atomic.Int32
	tasks := []Task{
		{Name: "bad", Run: func(context.Context) error { return boom }},
	}
	for i := 0; i < 5; i++ {
		tasks = append(tasks, Task{Name: fmt.Sprintf("slow-%d", i), Run: func(ctx context.Context) error {
			started.Add(1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
				return nil
			}
		}})
	}

	begin := time.Now()
	err := Run(context.Background(), 1, len(tasks), Slice(tasks), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "bad: ") {
		t.Fatalf("expected task name in error, got %q", err)
	}
	if time.Since(begin) > time.Second {
		t.Fatal("remaining tasks were not cancelled")
	}
}

func TestRunHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Int32
	tasks := []Task{{Name: "a", Run: func(context.Context) error { ran.Add(1); return nil }}}
	err := Run(ctx, 2, 1, Slice(tasks), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ran.Load() != 0 {
		t.Fatal("task ran after cancellation")
	}
}

func TestRunEmpty(t *testing.T) {
	if err := Run(context.Background(), 4, 0, Slice(nil), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
