// Package async runs named tasks concurrently and collects their errors.
// The reconciler uses it to sweep independent clouds in parallel.
package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a named operation run concurrently with its peers.
type Task struct {
	Name string
	Run  func(context.Context) error
}

// RunAll starts every task concurrently and waits for all of them to
// finish. Task errors are wrapped with the task name and joined; one task
// failing never stops the others.
func RunAll(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		i, task := i, task
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := task.Run(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", task.Name, err)
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
