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
	"sort"
	"time"

	"github.com/walteh/fileproc/pkg/analysis"
)

// 📊 Summary is the aggregate outcome of one batch
type Summary struct {
	RunID                 string                  `json:"run_id,omitempty"`
	TotalFiles            int                     `json:"total_files"`
	Processed             int                     `json:"processed"`
	Skipped               int                     `json:"skipped"`
	Passed                int                     `json:"passed"`
	Failed                int                     `json:"failed"`
	TotalErrors           int                     `json:"total_errors"`
	TotalProcessingTime   time.Duration           `json:"total_processing_time"`
	AverageProcessingTime time.Duration           `json:"average_processing_time"`
	WallTime              time.Duration           `json:"wall_time"`
	Cancelled             bool                    `json:"cancelled"`
	Results               []analysis.FileAnalysis `json:"results"`
}

// ByFilename indexes the results by display filename. When two paths share a
// base name the later one in Results wins; use Results for the full list.
func (s *Summary) ByFilename() map[string]analysis.FileAnalysis {
	out := make(map[string]analysis.FileAnalysis, len(s.Results))
	for _, r := range s.Results {
		out[r.Filename] = r
	}
	return out
}

// Failures returns the results that recorded at least one error, sorted by path
func (s *Summary) Failures() []analysis.FileAnalysis {
	var out []analysis.FileAnalysis
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// SortByPath orders Results by path so output is stable across runs
func (s *Summary) SortByPath() {
	sort.Slice(s.Results, func(i, j int) bool { return s.Results[i].Path < s.Results[j].Path })
}
