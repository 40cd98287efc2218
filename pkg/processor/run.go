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
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/fileproc/pkg/pool"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval is how often Wait and the progress observer look at the counters
const DefaultPollInterval = 100 * time.Millisecond

// 🔧 Options configures Run
type Options struct {
	// Workers is the pool size. Zero means runtime.NumCPU().
	Workers int
	// PollInterval is the completion and progress polling period.
	PollInterval time.Duration
	// OnProgress, when set, is called from a separate goroutine every poll
	// interval while the batch runs, and once more after it drains.
	OnProgress func(Progress)
	// Context, when set, is used instead of a fresh one. Callers can keep a
	// handle to it to cancel the batch or read progress from elsewhere.
	Context *Context
}

// 🏃 Run processes every path on a worker pool and returns the aggregate
// summary.
//
// Per-file failures are part of the summary, never an error. Cancelling ctx
// sets the cooperative cancellation flag; Run still waits for the pool to
// drain and returns the partial summary together with ctx's error.
func Run(ctx context.Context, paths []string, opts Options) (*Summary, error) {
	workers := opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	pc := opts.Context
	if pc == nil {
		pc = NewContext()
	}

	runID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	start := time.Now()

	p, err := pool.New(workers, pool.WithName("fileproc"), pool.WithLogger(logger))
	if err != nil {
		return nil, errors.Errorf("creating pool: %w", err)
	}

	logger.Info().Int("files", len(paths)).Int("workers", workers).Msg("starting batch")

	if err := pc.Dispatch(ctx, p, paths); err != nil {
		p.Shutdown()
		return nil, errors.Errorf("dispatching jobs: %w", err)
	}

	// the observer stops as soon as the waiter returns
	observeCtx, stopObserver := context.WithCancel(ctx)
	g := new(errgroup.Group)
	g.Go(func() error {
		defer stopObserver()
		return pc.Wait(ctx, interval)
	})
	if opts.OnProgress != nil {
		g.Go(func() error {
			observe(observeCtx, pc, interval, opts.OnProgress)
			return nil
		})
	}
	waitErr := g.Wait()

	p.Shutdown()

	summary := pc.Summarize(time.Since(start))
	summary.RunID = runID

	if opts.OnProgress != nil {
		opts.OnProgress(pc.Progress())
	}

	logger.Info().
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("errors", summary.TotalErrors).
		Dur("wall_time", summary.WallTime).
		Msg("batch complete")

	if waitErr != nil {
		return summary, waitErr
	}
	return summary, nil
}

func observe(ctx context.Context, pc *Context, interval time.Duration, fn func(Progress)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(pc.Progress())
		}
	}
}
