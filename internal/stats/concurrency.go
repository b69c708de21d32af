// Package stats orchestrates a run of the insights tool.
//
// This file (concurrency.go) runs the independent halves of a run (the
// repository report and the branch graph) side by side. Each task runs in its
// own goroutine with panic recovery; the first failure cancels the others.
package stats

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

// task is one independent unit of work.
type task struct {
	name string
	run  func(ctx context.Context) error
}

// runTasks runs tasks concurrently and returns the first error. A task that
// panics is reported as an error carrying the stack.
func runTasks(ctx context.Context, tasks ...task) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		g.Go(func() (err error) {
			// Panic recovery
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					err = fmt.Errorf("%s: panic recovered: %v\nStack:\n%s", t.name, r, stack)
					pterm.Error.Printf("🔥 PANIC in %s: %v\n", t.name, r)
				}
			}()

			// Check for cancellation
			select {
			case <-gctx.Done():
				return fmt.Errorf("%s: %w", t.name, gctx.Err())
			default:
			}

			if err := t.run(gctx); err != nil {
				return fmt.Errorf("%s: %w", t.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
