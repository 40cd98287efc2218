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
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		wantErr error
	}{
		{name: "single_worker", workers: 1},
		{name: "many_workers", workers: 16},
		{name: "zero_workers", workers: 0, wantErr: ErrInvalidWorkerCount},
		{name: "negative_workers", workers: -3, wantErr: ErrInvalidWorkerCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.workers)
			if tt.wantErr != nil {
				require.Error(t, err, "new should fail")
				assert.True(t, errors.Is(err, tt.wantErr), "error should wrap %v, got %v", tt.wantErr, err)
				assert.Nil(t, p, "pool should be nil on error")
				return
			}
			require.NoError(t, err, "new should succeed")
			defer p.Shutdown()
			assert.Equal(t, tt.workers, p.Stats().Workers, "worker count should match")
		})
	}
}

func TestExecuteRunsEveryJob(t *testing.T) {
	p, err := New(4, WithName("simple"), WithLogger(zerolog.New(zerolog.NewTestWriter(t))))
	require.NoError(t, err)

	var counter atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, p.Execute(func() {
			defer wg.Done()
			counter.Add(1)
		}), "execute should succeed")
	}

	wg.Wait()
	assert.Equal(t, int64(10), counter.Load(), "all 10 jobs should run")

	p.Shutdown()
	assert.Equal(t, 10, p.Stats().Completed, "stats should count every job")
}

func TestShutdownDrainsQueue(t *testing.T) {
	const size = 4

	p, err := New(size)
	require.NoError(t, err)

	var finished atomic.Int64
	for i := 0; i < size*2; i++ {
		require.NoError(t, p.Execute(func() {
			time.Sleep(50 * time.Millisecond)
			finished.Add(1)
		}))
	}

	p.Shutdown()

	assert.Equal(t, int64(size*2), finished.Load(), "shutdown should wait for queued and in-flight jobs")
	stats := p.Stats()
	assert.Zero(t, stats.Queued, "queue should be empty after shutdown")
	assert.Zero(t, stats.Active, "no worker should be active after shutdown")
}

func TestShutdownDrainsBacklogLargerThanPool(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)

	// hold the only worker so the rest pile up in the queue
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Execute(func() {
		close(started)
		<-release
	}))
	<-started

	var finished atomic.Int64
	for i := 0; i < 25; i++ {
		require.NoError(t, p.Execute(func() { finished.Add(1) }))
	}
	assert.Equal(t, 25, p.Stats().Queued, "jobs should be waiting behind the blocked worker")

	done := make(chan struct{})
	go func() {
		p.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("shutdown returned while a job was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not return")
	}
	assert.Equal(t, int64(25), finished.Load(), "queued jobs should all run before shutdown returns")
}

func TestExecuteAfterShutdown(t *testing.T) {
	p, err := New(2)
	require.NoError(t, err)
	p.Shutdown()

	err = p.Execute(func() { t.Error("job should never run") })
	assert.ErrorIs(t, err, ErrPoolClosed, "execute after shutdown should be rejected")
}

func TestExecuteNilJob(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	defer p.Shutdown()

	assert.ErrorIs(t, p.Execute(nil), ErrNilJob)
}

func TestShutdownIsIdempotent(t *testing.T) {
	p, err := New(3)
	require.NoError(t, err)

	var ran atomic.Int64
	for i := 0; i < 6; i++ {
		require.NoError(t, p.Execute(func() {
			time.Sleep(10 * time.Millisecond)
			ran.Add(1)
		}))
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Shutdown()
			assert.Equal(t, int64(6), ran.Load(), "every concurrent shutdown caller should observe the drain")
		}()
	}
	wg.Wait()

	assert.NotPanics(t, p.Shutdown, "a later shutdown should be a no-op")
}

func TestConcurrentProducers(t *testing.T) {
	p, err := New(5)
	require.NoError(t, err)

	const producers, perProducer = 10, 100

	var executed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				if err := p.Execute(func() { executed.Add(1) }); err != nil {
					t.Errorf("execute failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	p.Shutdown()

	assert.Equal(t, int64(producers*perProducer), executed.Load(), "no job should be lost or run twice")
}

func TestPanicHandler(t *testing.T) {
	var recovered atomic.Value
	p, err := New(1, WithPanicHandler(func(r any) { recovered.Store(r) }))
	require.NoError(t, err)

	var after atomic.Bool
	require.NoError(t, p.Execute(func() { panic("boom") }))
	require.NoError(t, p.Execute(func() { after.Store(true) }))
	p.Shutdown()

	assert.Equal(t, "boom", recovered.Load(), "handler should receive the panic value")
	assert.True(t, after.Load(), "worker should keep serving after a recovered panic")
	assert.Equal(t, 2, p.Stats().Completed)
}
