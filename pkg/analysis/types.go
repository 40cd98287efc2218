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
	"time"
)

// 🏷️ ErrorKind tags a ProcessingError
type ErrorKind int

const (
	KindIO       ErrorKind = iota // metadata or read failure
	KindEncoding                  // content is not valid text
	KindCancelled                 // skipped or aborted by the cancellation flag
)

// String returns a string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindEncoding:
		return "encoding"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON output
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ❌ ProcessingError is a per-file failure recorded as data on a FileAnalysis
type ProcessingError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message,omitempty"`
}

func (e *ProcessingError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IoError records a metadata or read failure
func IoError(msg string) *ProcessingError {
	return &ProcessingError{Kind: KindIO, Message: msg}
}

// EncodingError records content that could not be decoded as text
func EncodingError(msg string) *ProcessingError {
	return &ProcessingError{Kind: KindEncoding, Message: msg}
}

// Cancelled records work skipped because the cancellation flag was set
func Cancelled() *ProcessingError {
	return &ProcessingError{Kind: KindCancelled}
}

// 📊 FileStats holds the text statistics for one file
type FileStats struct {
	WordCount       int          `json:"word_count"`
	LineCount       int          `json:"line_count"`
	CharFrequencies map[rune]int `json:"char_frequencies,omitempty"`
	SizeBytes       uint64       `json:"size_bytes"`
}

// 🚦 State is the terminal state a file reached
type State int

const (
	StateAnalyzed State = iota
	StateCancelled
	StateMetadataFailed
	StateReadFailed
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case StateAnalyzed:
		return "analyzed"
	case StateCancelled:
		return "cancelled"
	case StateMetadataFailed:
		return "metadata_failed"
	case StateReadFailed:
		return "read_failed"
	default:
		return "unknown"
	}
}

// 📄 FileAnalysis is the result record for exactly one input path
type FileAnalysis struct {
	Filename       string             `json:"filename"`
	Path           string             `json:"path"`
	Stats          FileStats          `json:"stats"`
	Errors         []*ProcessingError `json:"errors,omitempty"`
	ProcessingTime time.Duration      `json:"processing_time"`

	state State
}

// OK reports whether the analysis finished without any error
func (a FileAnalysis) OK() bool {
	return len(a.Errors) == 0
}

// HasError reports whether an error of the given kind was recorded
func (a FileAnalysis) HasError(kind ErrorKind) bool {
	for _, err := range a.Errors {
		if err.Kind == kind {
			return true
		}
	}
	return false
}

// State returns the terminal state the analysis reached
func (a FileAnalysis) State() State {
	return a.state
}
