package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a named unit of work.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel runs every task concurrently and waits for all of them.
// A failing task never stops the others. Failures are wrapped with the task
// name and joined in task order.
//
//	err := async.RunParallel(ctx, []async.Task{
//		{Name: "server-or", Func: deleteOr},
//		{Name: "server-eu", Func: deleteEu},
//	})
func RunParallel(ctx context.Context, tasks []Task) error {
	return RunLimited(ctx, tasks, len(tasks))
}

// RunLimited is RunParallel with at most limit tasks in flight.
// A limit below one runs the tasks one at a time.
func RunLimited(ctx context.Context, tasks []Task, limit int) error {
	if len(tasks) == 0 {
		return nil
	}
	if limit < 1 {
		limit = 1
	}

	errs := make([]error, len(tasks))
	slots := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, task := range tasks {
		slots <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				<-slots
				wg.Done()
			}()
			if err := task.Func(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", task.Name, err)
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
