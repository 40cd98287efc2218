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
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/walteh/fileproc/pkg/analysis"
	"github.com/walteh/fileproc/pkg/log"
	"github.com/walteh/fileproc/pkg/processor"
	"gitlab.com/tozd/go/errors"
)

// 🖥️ Console renders progress lines, one line per file and a summary table
type Console struct {
	out    io.Writer
	logger *log.Logger
	top    int

	mu   sync.Mutex
	last processor.Progress
	seen bool
}

var _ Reporter = (*Console)(nil)

// 🏭 NewConsole creates a console reporter. top is how many of the most
// frequent characters to show per file; zero hides the column.
func NewConsole(out io.Writer, logger *log.Logger, top int) *Console {
	return &Console{
		out:    out,
		logger: logger,
		top:    top,
	}
}

// Progress prints a progress line whenever the counters changed
func (c *Console) Progress(p processor.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen && p == c.last {
		return
	}
	c.seen = true
	c.last = p
	fmt.Fprintln(c.out, FormatProgress(p))
}

// Report prints every result sorted by path, then the aggregate table
func (c *Console) Report(ctx context.Context, s *processor.Summary) error {
	s.SortByPath()

	c.logger.LogNewline()
	c.logger.Header("detailed analysis summary")
	for _, r := range s.Results {
		c.logger.LogFileAnalysis(ctx, r)
	}
	c.logger.EndBatch(ctx)

	if c.top > 0 && len(s.Results) > 0 {
		table, err := pterm.DefaultTable.WithHasHeader().WithData(c.characterTable(s.Results)).Srender()
		if err != nil {
			return errors.Errorf("rendering character table: %w", err)
		}
		fmt.Fprintf(c.out, "\n%s\n", table)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(totalsTable(s)).Srender()
	if err != nil {
		return errors.Errorf("rendering summary table: %w", err)
	}
	fmt.Fprintf(c.out, "\n%s\n\n", table)

	switch {
	case s.Cancelled:
		c.logger.Warningf("batch cancelled: %d of %d files processed", s.Processed, s.TotalFiles)
	case s.Failed > 0:
		c.logger.Warningf("%d of %d files had errors", s.Failed, s.Processed)
	default:
		c.logger.Successf("all %d files processed", s.Processed)
	}
	return nil
}

func (c *Console) characterTable(results []analysis.FileAnalysis) pterm.TableData {
	data := pterm.TableData{{"File", "Size", "Top characters"}}
	for _, r := range results {
		if !r.OK() {
			continue
		}
		var parts []string
		for _, cc := range analysis.TopCharacters(r.Stats.CharFrequencies, c.top) {
			parts = append(parts, fmt.Sprintf("%s×%d", quoteRune(cc.Char), cc.Count))
		}
		data = append(data, []string{r.Filename, strconv.FormatUint(r.Stats.SizeBytes, 10) + " B", strings.Join(parts, " ")})
	}
	return data
}

func totalsTable(s *processor.Summary) pterm.TableData {
	return pterm.TableData{
		{"Metric", "Value"},
		{"Total files", strconv.Itoa(s.TotalFiles)},
		{"Processed", strconv.Itoa(s.Processed)},
		{"Skipped", strconv.Itoa(s.Skipped)},
		{"Passed", strconv.Itoa(s.Passed)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Total errors", strconv.Itoa(s.TotalErrors)},
		{"Combined processing time", s.TotalProcessingTime.Round(time.Microsecond).String()},
		{"Average processing time", s.AverageProcessingTime.Round(time.Microsecond).String()},
		{"Wall time", s.WallTime.Round(time.Millisecond).String()},
	}
}

// quoteRune makes whitespace visible in the character column
func quoteRune(r rune) string {
	switch r {
	case ' ':
		return "␠"
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	}
	return string(r)
}
