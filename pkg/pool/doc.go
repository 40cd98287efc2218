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

/*
Package pool runs jobs on a fixed number of long lived worker goroutines.

	 Execute(job)
	      |
	+-----v-----+   Signal    +----------+
	|   queue   +------------>| worker 1 |
	| (mutex +  |             +----------+
	|   cond)   +------------>| worker 2 |
	+-----+-----+             +----------+
	      ^                   |   ...    |
	      |  Broadcast        +----------+
	 Shutdown()

🎯 Purpose:
- Bound concurrency to the worker count given to New
- Accept jobs from any goroutine without blocking on running work
- Drain every queued job before Shutdown returns

🔄 Worker loop:
1. Wait on the condition while the queue is empty and shutdown has not begun
2. Exit when the queue is empty and shutdown has begun
3. Otherwise pop the most recently queued job, unlock, run it, repeat

Jobs run outside the lock. Ordering between jobs is not guaranteed.

🔍 Example:

	p, err := pool.New(4, pool.WithLogger(logger))
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := p.Execute(func() { handle(path) }); err != nil {
			return err
		}
	}
	p.Shutdown()
*/
package pool
