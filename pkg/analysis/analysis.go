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

package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// readFile is swapped in tests to act between the read and the second
// cancellation check
var readFile = os.ReadFile

// 🔬 Analyze computes the statistics for the file at path.
//
// Every failure is recorded on the returned FileAnalysis; Analyze never
// returns an error and never panics on bad input. cancel may be nil. It is
// checked before any I/O and again after the content has been read.
func Analyze(path string, cancel *atomic.Bool) FileAnalysis {
	start := time.Now()
	result := FileAnalysis{
		Filename: filepath.Base(path),
		Path:     path,
	}

	finish := func(state State) FileAnalysis {
		result.state = state
		result.ProcessingTime = time.Since(start)
		return result
	}

	if isCancelled(cancel) {
		result.Errors = append(result.Errors, Cancelled())
		return finish(StateCancelled)
	}

	info, err := os.Stat(path)
	if err != nil {
		result.Errors = append(result.Errors, IoError(fmt.Sprintf("metadata error: %v", err)))
		return finish(StateMetadataFailed)
	}
	if info.Size() > 0 {
		result.Stats.SizeBytes = uint64(info.Size())
	}

	raw, err := readFile(path)
	if err != nil {
		result.Errors = append(result.Errors, IoError(fmt.Sprintf("read error: %v", err)))
		return finish(StateReadFailed)
	}

	content, err := Decode(raw)
	if err != nil {
		result.Errors = append(result.Errors, EncodingError(err.Error()))
		return finish(StateReadFailed)
	}

	if isCancelled(cancel) {
		result.Errors = append(result.Errors, Cancelled())
		return finish(StateCancelled)
	}

	result.Stats.LineCount, result.Stats.WordCount = TextCounts(content)
	result.Stats.CharFrequencies = CharFrequencies(content)

	return finish(StateAnalyzed)
}

func isCancelled(cancel *atomic.Bool) bool {
	return cancel != nil && cancel.Load()
}

// 🔤 Decode turns raw file bytes into text. Content must be valid UTF-8 and
// is kept byte for byte, a leading byte order mark included.
func Decode(raw []byte) (string, error) {
	text, n, err := transform.Bytes(encoding.UTF8Validator, raw)
	if errors.Is(err, encoding.ErrInvalidUTF8) {
		return "", errors.Errorf("content is not valid utf-8 at byte %d", n)
	}
	if err != nil {
		return "", errors.Errorf("decoding utf-8: %w", err)
	}
	return string(text), nil
}

// 📏 TextCounts returns the number of logical lines and whitespace separated
// words in content.
//
// Lines are split on "\n" with an optional preceding "\r". A final segment
// without a terminator counts as a line; the empty segment after a final
// terminator does not.
func TextCounts(content string) (lines, words int) {
	for len(content) > 0 {
		var line string
		if i := strings.IndexByte(content, '\n'); i >= 0 {
			line, content = content[:i], content[i+1:]
		} else {
			line, content = content, ""
		}
		line = strings.TrimSuffix(line, "\r")

		lines++
		words += len(strings.Fields(line))
	}
	return lines, words
}

// 🔠 CharFrequencies counts every code point in content, whitespace and
// punctuation included.
func CharFrequencies(content string) map[rune]int {
	freqs := make(map[rune]int)
	for _, r := range content {
		freqs[r]++
	}
	return freqs
}

// CharCount pairs a code point with its number of occurrences
type CharCount struct {
	Char  rune `json:"char"`
	Count int  `json:"count"`
}

// 🏆 TopCharacters returns the n most frequent code points, highest count
// first and ties broken by code point. n <= 0 returns all of them.
func TopCharacters(freqs map[rune]int, n int) []CharCount {
	counts := make([]CharCount, 0, len(freqs))
	for r, c := range freqs {
		if c > 0 {
			counts = append(counts, CharCount{Char: r, Count: c})
		}
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Char < counts[j].Char
	})

	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
