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
	"fmt"

	"github.com/walteh/fileproc/pkg/processor"
)

// 📣 Reporter receives progress while a batch runs and the summary once it
// has drained
type Reporter interface {
	// Progress is called from the observer goroutine; implementations must
	// be safe to call concurrently with Report.
	Progress(p processor.Progress)
	// Report renders the final summary
	Report(ctx context.Context, s *processor.Summary) error
}

// ⏳ FormatProgress formats a progress message with percentage
func FormatProgress(p processor.Progress) string {
	done := p.Completed + p.Skipped

	var percentage float64
	if p.Total == 0 {
		percentage = 100
	} else {
		percentage = float64(done) / float64(p.Total) * 100
	}

	msg := fmt.Sprintf("Progress: %d/%d files completed (%.0f%%)", p.Completed, p.Total, percentage)
	if p.Skipped > 0 {
		msg += fmt.Sprintf(", %d skipped", p.Skipped)
	}

	if p.Done() {
		return "✅ " + msg
	}
	return "⏳ " + msg
}
