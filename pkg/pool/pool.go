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

package pool

import (
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrPoolClosed is returned when a job is submitted after Shutdown began.
	ErrPoolClosed = errors.Base("pool closed")
	// ErrInvalidWorkerCount is returned by New for a non-positive worker count.
	ErrInvalidWorkerCount = errors.Base("worker count must be positive")
	// ErrNilJob is returned when Execute is handed a nil job.
	ErrNilJob = errors.Base("nil job")
)

// 📦 Job is a deferred unit of work. All of its effects happen through
// whatever state the closure captured.
type Job func()

// 📊 Stats is a point-in-time view of the pool
type Stats struct {
	Workers   int // persistent workers started by New
	Active    int // workers currently running a job
	Queued    int // jobs waiting in the queue
	Completed int // jobs that returned (or panicked into a handler)
}

// 🔧 Option configures a Pool
type Option func(*Pool)

// 🏷️ WithName sets the name used in log lines
func WithName(name string) Option {
	return func(p *Pool) {
		p.name = name
	}
}

// 📝 WithLogger sets the logger for lifecycle events
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// 🛟 WithPanicHandler recovers panicking jobs and hands the value to fn.
// Without it a panicking job takes the process down with it.
func WithPanicHandler(fn func(any)) Option {
	return func(p *Pool) {
		p.onPanic = fn
	}
}

// 🏊 Pool is a fixed set of persistent workers sharing one job queue.
//
// Workers block on a condition variable while the queue is empty. Execute
// wakes one of them; Shutdown wakes all of them and waits until every worker
// has exited, which only happens once the queue is empty.
type Pool struct {
	name    string
	logger  zerolog.Logger
	onPanic func(any)

	mu          sync.Mutex
	cond        *sync.Cond
	queue       []Job
	terminating bool
	workers     int
	active      int
	completed   int

	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// 🏭 New starts a pool with the given number of workers
func New(workers int, opts ...Option) (*Pool, error) {
	if workers <= 0 {
		return nil, errors.Errorf("%w: %d", ErrInvalidWorkerCount, workers)
	}

	p := &Pool{
		name:    "pool",
		logger:  zerolog.Nop(),
		workers: workers,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cond = sync.NewCond(&p.mu)

	for id := 0; id < workers; id++ {
		p.wg.Add(1)
		go p.work(id)
	}

	p.logger.Debug().Str("pool", p.name).Int("workers", workers).Msg("pool started")
	return p, nil
}

// ➕ Execute enqueues a job and wakes one idle worker
func (p *Pool) Execute(job Job) error {
	if job == nil {
		return ErrNilJob
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.terminating {
		return ErrPoolClosed
	}
	p.queue = append(p.queue, job)
	p.cond.Signal()
	return nil
}

// 🛑 Shutdown stops accepting jobs, drains the queue and waits for every
// worker to exit. Calling it more than once is safe; every caller returns
// only after the drain.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.terminating = true
		queued := len(p.queue)
		p.cond.Broadcast()
		p.mu.Unlock()

		p.logger.Debug().Str("pool", p.name).Int("queued", queued).Msg("shutting down pool")
	})

	p.wg.Wait()
}

// 📊 Stats returns a snapshot of the pool counters
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Workers:   p.workers,
		Active:    p.active,
		Queued:    len(p.queue),
		Completed: p.completed,
	}
}

func (p *Pool) work(id int) {
	defer p.wg.Done()

	for {
		job, ok := p.next()
		if !ok {
			p.logger.Trace().Str("pool", p.name).Int("worker", id).Msg("worker finished")
			return
		}

		p.run(job)

		p.mu.Lock()
		p.active--
		p.completed++
		p.mu.Unlock()
	}
}

// next blocks until a job is available or the pool is terminating with an
// empty queue, in which case ok is false.
func (p *Pool) next() (job Job, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.terminating {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}

	last := len(p.queue) - 1
	job = p.queue[last]
	p.queue[last] = nil
	p.queue = p.queue[:last]
	p.active++
	return job, true
}

func (p *Pool) run(job Job) {
	if p.onPanic != nil {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error().Str("pool", p.name).Interface("panic", r).Msg("job panicked")
				p.onPanic(r)
			}
		}()
	}
	job()
}
