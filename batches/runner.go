package batches

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reusee/loda/bigs"
	"github.com/reusee/loda/lodalang"
	"github.com/reusee/loda/lodavm"
	"github.com/reusee/loda/logs"
	"github.com/reusee/loda/syncs"
)

// Job evaluates Count terms of a program from its offset.
// Program takes precedence, otherwise ID is loaded from the session store.
type Job struct {
	Program *lodalang.Program
	ID      int64
	Count   int
}

func (j Job) Name() string {
	id := j.ID
	if j.Program != nil {
		id = j.Program.ID
	}
	if id == 0 {
		return "anonymous"
	}
	return fmt.Sprintf("A%06d", id)
}

type Result struct {
	Job      Job
	Values   []bigs.Value
	Steps    int64
	Duration time.Duration
	Err      error
}

type Runner struct {
	Session *lodavm.Session
	// Workers bounds concurrent jobs, at least one runs
	Workers int
	// Timeout is the per-job deadline, 0 for none
	Timeout time.Duration
	Logger  logs.Logger
	NewSpan logs.NewSpan
}

// Run evaluates jobs concurrently. Results are in job order.
// A job past its deadline is detached and reports context.DeadlineExceeded.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := make([]Result, len(jobs))
	sem := syncs.NewSemaphore(max(r.Workers, 1))
	wg := new(sync.WaitGroup)
	for i, job := range jobs {
		if err := sem.AcquireContext(ctx); err != nil {
			results[i] = Result{
				Job: job,
				Err: err,
			}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release()

			ctx := ctx
			if r.NewSpan != nil {
				ctx, _ = r.NewSpan(ctx, "", "job", job.Name())
			} else {
				ctx = logs.With(ctx, "job", job.Name())
			}

			result := r.runJob(ctx, job)
			if result.Err != nil {
				logger.WarnContext(ctx, "job failed",
					"error", result.Err,
				)
				result.Err = logs.WrapSpan(ctx, result.Err)
			} else {
				logger.DebugContext(ctx, "job done",
					"steps", result.Steps,
					"duration", result.Duration,
				)
			}
			results[i] = result
		}()
	}
	wg.Wait()
	return results
}

func (r *Runner) runJob(ctx context.Context, job Job) Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	begin := time.Now()
	done := make(chan Result, 1)
	go func() {
		done <- r.evaluate(job)
	}()

	select {
	case result := <-done:
		result.Duration = time.Since(begin)
		return result
	case <-ctx.Done():
		// the evaluation goroutine ends by itself within the step budget
		return Result{
			Job:      job,
			Duration: time.Since(begin),
			Err:      ctx.Err(),
		}
	}
}

func (r *Runner) evaluate(job Job) Result {
	result := Result{
		Job: job,
	}
	if job.Count < 0 {
		result.Err = fmt.Errorf("%s: %w", job.Name(), lodavm.ErrNegativeCount)
		return result
	}
	program := job.Program
	if program == nil {
		var err error
		program, err = r.Session.Lookup(job.ID)
		if err != nil {
			result.Err = err
			return result
		}
	}
	for i := range job.Count {
		input := bigs.FromInt64(program.Offset + int64(i))
		res, err := r.Session.Run(program, input)
		result.Steps += res.Steps
		if err != nil {
			result.Err = err
			return result
		}
		result.Values = append(result.Values, res.Value)
	}
	return result
}

// Failed counts results with errors.
func Failed(results []Result) (n int) {
	for _, result := range results {
		if result.Err != nil {
			n++
		}
	}
	return
}
