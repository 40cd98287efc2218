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
Package processor fans a batch of file paths out to a worker pool and
collects one analysis per file.

	+-------------+     Dispatch      +-----------+
	|   Context   +------------------>| pool.Pool |
	| results     |                   +-----+-----+
	| counters    |<--- append -------------+ job: analysis.Analyze
	| cancel flag |
	+------+------+
	       |  Wait (poll)      observe (poll)
	       v                          v
	    Summary                 OnProgress

🎯 Purpose:
- Submit one job per path and record every result exactly once
- Count completed and skipped jobs so waiting always terminates
- Turn context cancellation into the cooperative cancel flag

🔄 Flow:
1. Run creates a pool and a Context, then Dispatch submits the jobs
2. Wait polls until completed + skipped equals the batch size
3. The pool is shut down and the results are summarized

A job that sees the cancel flag before starting records nothing and counts
as skipped. A job already reading a file finishes it with a Cancelled error
if the flag is set before its next check.
*/
package processor
