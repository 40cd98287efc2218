// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/fileproc/pkg/analysis"
	"github.com/walteh/fileproc/pkg/pool"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Executor accepts jobs for asynchronous execution. *pool.Pool satisfies it.
type Executor interface {
	Execute(job pool.Job) error
}

// 📈 Progress is a snapshot of the batch counters
type Progress struct {
	Completed int `json:"completed"` // jobs that recorded a result
	Skipped   int `json:"skipped"`   // jobs that saw the cancellation flag before starting
	Total     int `json:"total"`
}

// Done reports whether every dispatched job has finished
func (p Progress) Done() bool {
	return p.Completed+p.Skipped >= p.Total
}

// 🧭 Context is the state shared by every job of one batch.
//
// Results are appended under a mutex. The counters and the cancellation flag
// are atomics, so Progress and Cancelled never block the workers.
type Context struct {
	mu      sync.Mutex
	results []analysis.FileAnalysis

	completed atomic.Int64
	skipped   atomic.Int64
	total     atomic.Int64
	cancelled atomic.Bool

	analyze func(path string, cancel *atomic.Bool) analysis.FileAnalysis
}

// 🏭 NewContext creates an empty processing context
func NewContext() *Context {
	return &Context{
		analyze: analysis.Analyze,
	}
}

// 🛑 Cancel sets the cancellation flag. It is never reset.
func (c *Context) Cancel() {
	c.cancelled.Store(true)
}

// Cancelled reports whether the cancellation flag is set
func (c *Context) Cancelled() bool {
	return c.cancelled.Load()
}

// 📈 Progress returns the current counters without taking any lock
func (c *Context) Progress() Progress {
	return Progress{
		Completed: int(c.completed.Load()),
		Skipped:   int(c.skipped.Load()),
		Total:     int(c.total.Load()),
	}
}

// 🚀 Dispatch records the batch size and submits one job per path.
//
// A job that finds the cancellation flag already set does no work and
// records no result; it only bumps the skipped counter so Wait can still
// terminate. If the executor refuses a job, dispatch stops and the paths that
// were never submitted are counted as skipped.
func (c *Context) Dispatch(ctx context.Context, exec Executor, paths []string) error {
	c.total.Store(int64(len(paths)))

	for i, path := range paths {
		if err := exec.Execute(c.job(path)); err != nil {
			c.skipped.Add(int64(len(paths) - i))
			return errors.Errorf("submitting %s: %w", path, err)
		}
	}

	zerolog.Ctx(ctx).Debug().Int("jobs", len(paths)).Msg("dispatched jobs")
	return nil
}

func (c *Context) job(path string) pool.Job {
	return func() {
		if c.cancelled.Load() {
			c.skipped.Add(1)
			return
		}

		result := c.analyze(path, &c.cancelled)

		c.mu.Lock()
		c.results = append(c.results, result)
		c.mu.Unlock()

		c.completed.Add(1)
	}
}

// ⏳ Wait blocks until every dispatched job has finished, polling every
// interval. When ctx ends first the cancellation flag is set and Wait keeps
// polling until the remaining jobs drain, then returns ctx's error.
func (c *Context) Wait(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := ctx.Done()
	var cause error
	stop := func() {
		cause = ctx.Err()
		done = nil
		c.Cancel()
		zerolog.Ctx(ctx).Warn().Err(cause).Msg("cancelling remaining jobs")
	}

	// a context that ended before the wait began cancels even a finished batch
	if ctx.Err() != nil {
		stop()
	}
	for !c.Progress().Done() {
		select {
		case <-done:
			stop()
		case <-ticker.C:
		}
	}

	if cause != nil {
		return errors.Errorf("waiting for jobs: %w", cause)
	}
	return nil
}

// 📋 Results returns a copy of the results recorded so far
func (c *Context) Results() []analysis.FileAnalysis {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]analysis.FileAnalysis, len(c.results))
	copy(out, c.results)
	return out
}

// 🧮 Summarize aggregates the recorded results. wall is the elapsed time of
// the whole batch as measured by the caller.
func (c *Context) Summarize(wall time.Duration) *Summary {
	results := c.Results()
	progress := c.Progress()

	s := &Summary{
		TotalFiles: progress.Total,
		Processed:  len(results),
		Skipped:    progress.Skipped,
		WallTime:   wall,
		Cancelled:  c.Cancelled(),
		Results:    results,
	}

	for _, r := range results {
		s.TotalErrors += len(r.Errors)
		s.TotalProcessingTime += r.ProcessingTime
		if r.OK() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	if len(results) > 0 {
		s.AverageProcessingTime = s.TotalProcessingTime / time.Duration(len(results))
	}

	return s
}
