// Package workpool runs independent tasks under a concurrency limit.
//
// The first failing task cancels the context handed to the others and its
// error is returned from Run. Tasks must not depend on each other.
package workpool

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of work. Name is used to label errors.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Progress reports how many tasks have finished.
type Progress struct {
	Done  int
	Total int
	// Last is the task that just finished.
	Last string
}

// Run executes tasks with at most limit running at once. total is only used
// for progress reports and may be 0 when unknown. onProgress is called
// serially after every successful task.
func Run(ctx context.Context, limit int, total int, tasks iter.Seq[Task], onProgress func(Progress)) error {
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var (
		mu   sync.Mutex
		done int
	)
	for task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := task.Run(gctx); err != nil {
				if task.Name == "" {
					return err
				}
				return fmt.Errorf("%s: %w", task.Name, err)
			}
			mu.Lock()
			done++
			if onProgress != nil {
				onProgress(Progress{Done: done, Total: total, Last: task.Name})
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Slice adapts a slice of tasks for Run.
func Slice(tasks []Task) iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, t := range tasks {
			if !yield(t) {
				return
			}
		}
	}
}
