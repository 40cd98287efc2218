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

package report

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/fileproc/pkg/analysis"
	"github.com/walteh/fileproc/pkg/processor"
	"gitlab.com/tozd/go/errors"
)

// 🧾 JSON writes the summary as one JSON document. Progress goes to the
// context logger only, so the output stream stays parseable.
type JSON struct {
	out io.Writer
	top int
}

var _ Reporter = (*JSON)(nil)

// 🏭 NewJSON creates a JSON reporter
func NewJSON(out io.Writer, top int) *JSON {
	return &JSON{out: out, top: top}
}

type jsonFile struct {
	analysis.FileAnalysis
	State         string               `json:"state"`
	TopCharacters []analysis.CharCount `json:"top_characters,omitempty"`
}

type jsonSummary struct {
	*processor.Summary
	Results []jsonFile `json:"results"`
}

// Progress is a no-op; the observer still logs through zerolog
func (j *JSON) Progress(processor.Progress) {}

// Report encodes the summary with per-file state and top characters
func (j *JSON) Report(ctx context.Context, s *processor.Summary) error {
	s.SortByPath()

	files := make([]jsonFile, 0, len(s.Results))
	for _, r := range s.Results {
		f := jsonFile{FileAnalysis: r, State: r.State().String()}
		if j.top > 0 {
			f.TopCharacters = analysis.TopCharacters(r.Stats.CharFrequencies, j.top)
		}
		files = append(files, f)
	}

	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonSummary{Summary: s, Results: files}); err != nil {
		return errors.Errorf("encoding summary: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int("files", len(files)).Msg("wrote json report")
	return nil
}
