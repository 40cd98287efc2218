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
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextCounts(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantLines int
		wantWords int
	}{
		{name: "empty", content: "", wantLines: 0, wantWords: 0},
		{name: "whitespace_only", content: "   \n \t \n", wantLines: 2, wantWords: 0},
		{name: "two_sentences", content: "The quick brown fox jumps.\nOver the lazy dog.\n", wantLines: 2, wantWords: 9},
		{name: "no_trailing_newline", content: "This is a test file.\nTwo lines, five words.", wantLines: 2, wantWords: 9},
		{name: "crlf_terminators", content: "one two\r\nthree\r\n", wantLines: 2, wantWords: 3},
		{name: "blank_lines_count", content: "a\n\n\nb", wantLines: 4, wantWords: 2},
		{name: "single_newline", content: "\n", wantLines: 1, wantWords: 0},
		{name: "unicode_whitespace", content: "naïve café  日本\tgo", wantLines: 1, wantWords: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, words := TextCounts(tt.content)
			assert.Equal(t, tt.wantLines, lines, "line count should match")
			assert.Equal(t, tt.wantWords, words, "word count should match")
		})
	}
}

func TestCharFrequencies(t *testing.T) {
	freqs := CharFrequencies("aaabbc!")

	assert.Equal(t, map[rune]int{'a': 3, 'b': 2, 'c': 1, '!': 1}, freqs)
	_, ok := freqs['z']
	assert.False(t, ok, "absent characters should have no entry")

	t.Run("whitespace_and_multibyte", func(t *testing.T) {
		freqs := CharFrequencies("é é\n")
		assert.Equal(t, map[rune]int{'é': 2, ' ': 1, '\n': 1}, freqs)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, CharFrequencies(""))
	})
}

func TestTopCharacters(t *testing.T) {
	freqs := map[rune]int{'a': 3, 'b': 2, 'c': 2, '!': 1, 'z': 0}

	assert.Equal(t, []CharCount{{'a', 3}, {'b', 2}, {'c', 2}}, TopCharacters(freqs, 3))
	assert.Len(t, TopCharacters(freqs, 0), 4, "zero counts should be dropped")
	assert.Empty(t, TopCharacters(nil, 5))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		want    string
		wantErr bool
	}{
		{name: "plain", raw: []byte("hello"), want: "hello"},
		{name: "bom_is_kept", raw: []byte("\xef\xbb\xbfhello"), want: "\ufeffhello"},
		{name: "invalid_after_multibyte", raw: []byte("é\xff"), wantErr: true},
		{name: "invalid_utf8", raw: []byte{'o', 'k', 0xff, 0xfe}, wantErr: true},
		{name: "empty", raw: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "byte 2")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()

	write := func(t *testing.T, name string, content []byte) string {
		t.Helper()
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, content, 0644))
		return path
	}

	t.Run("success", func(t *testing.T) {
		path := write(t, "success.txt", []byte("This is a test file.\nTwo lines, five words."))

		got := Analyze(path, &atomic.Bool{})

		assert.Equal(t, "success.txt", got.Filename)
		assert.Equal(t, path, got.Path)
		assert.Empty(t, got.Errors, "successful analysis should have no errors")
		assert.True(t, got.OK())
		assert.Equal(t, StateAnalyzed, got.State())
		assert.Equal(t, 2, got.Stats.LineCount)
		assert.Equal(t, 9, got.Stats.WordCount)
		assert.Equal(t, uint64(43), got.Stats.SizeBytes)
		assert.Equal(t, 1, got.Stats.CharFrequencies['\n'])
		assert.Positive(t, got.ProcessingTime)
	})

	t.Run("missing_file", func(t *testing.T) {
		got := Analyze(filepath.Join(dir, "non_existent_file.txt"), nil)

		require.Len(t, got.Errors, 1)
		assert.Equal(t, KindIO, got.Errors[0].Kind)
		assert.Contains(t, got.Errors[0].Message, "metadata error")
		assert.Equal(t, FileStats{}, got.Stats, "stats should be zero valued")
		assert.Equal(t, StateMetadataFailed, got.State())
		assert.Equal(t, "non_existent_file.txt", got.Filename)
	})

	t.Run("directory", func(t *testing.T) {
		sub := filepath.Join(dir, "an_actual_directory")
		require.NoError(t, os.Mkdir(sub, 0755))

		got := Analyze(sub, nil)

		require.Len(t, got.Errors, 1)
		assert.Equal(t, KindIO, got.Errors[0].Kind)
		assert.Contains(t, got.Errors[0].Message, "read error", "directory should fail in the read phase")
		assert.Equal(t, StateReadFailed, got.State())
		assert.Zero(t, got.Stats.LineCount)
		assert.Nil(t, got.Stats.CharFrequencies)
	})

	t.Run("binary_content", func(t *testing.T) {
		path := write(t, "blob.bin", []byte{0x00, 0xff, 0xfe, 0x80})

		got := Analyze(path, nil)

		require.Len(t, got.Errors, 1)
		assert.Equal(t, KindEncoding, got.Errors[0].Kind)
		assert.True(t, got.HasError(KindEncoding))
		assert.Equal(t, uint64(4), got.Stats.SizeBytes, "size should survive a decode failure")
		assert.Zero(t, got.Stats.WordCount)
	})

	t.Run("cancelled_before_start", func(t *testing.T) {
		path := write(t, "cancel.txt", []byte("some words here"))
		var cancel atomic.Bool
		cancel.Store(true)

		got := Analyze(path, &cancel)

		assert.Equal(t, []*ProcessingError{Cancelled()}, got.Errors)
		assert.Equal(t, FileStats{}, got.Stats)
		assert.Equal(t, StateCancelled, got.State())
	})

	t.Run("byte_order_mark_counted", func(t *testing.T) {
		path := write(t, "bom.txt", []byte("\xef\xbb\xbfab"))

		got := Analyze(path, nil)

		require.True(t, got.OK())
		assert.Equal(t, uint64(5), got.Stats.SizeBytes)
		assert.Equal(t, 1, got.Stats.CharFrequencies['\ufeff'], "the byte order mark is a code point like any other")
		assert.Equal(t, 1, got.Stats.CharFrequencies['a'])
		assert.Equal(t, 1, got.Stats.LineCount)
		assert.Equal(t, 1, got.Stats.WordCount)
	})

	t.Run("byte_order_mark_only", func(t *testing.T) {
		path := write(t, "bom_only.txt", []byte("\xef\xbb\xbf"))

		got := Analyze(path, nil)

		require.True(t, got.OK())
		assert.Equal(t, 1, got.Stats.LineCount)
		assert.Equal(t, 1, got.Stats.WordCount, "U+FEFF is not whitespace")
	})

	t.Run("empty_file", func(t *testing.T) {
		path := write(t, "empty.txt", nil)

		got := Analyze(path, nil)

		assert.True(t, got.OK())
		assert.Zero(t, got.Stats.LineCount)
		assert.Zero(t, got.Stats.WordCount)
		assert.Zero(t, got.Stats.SizeBytes)
		assert.Empty(t, got.Stats.CharFrequencies)
	})
}

func TestAnalyzeCancelledAfterRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.txt")
	require.NoError(t, os.WriteFile(path, []byte("read before the flag was set\n"), 0644))

	var cancel atomic.Bool
	orig := readFile
	readFile = func(name string) ([]byte, error) {
		raw, err := orig(name)
		cancel.Store(true)
		return raw, err
	}
	defer func() { readFile = orig }()

	got := Analyze(path, &cancel)

	assert.Equal(t, []*ProcessingError{Cancelled()}, got.Errors)
	assert.Equal(t, StateCancelled, got.State())
	assert.Equal(t, uint64(29), got.Stats.SizeBytes, "size is recorded before the read")
	assert.Zero(t, got.Stats.LineCount)
	assert.Zero(t, got.Stats.WordCount)
	assert.Nil(t, got.Stats.CharFrequencies)
	assert.Positive(t, got.ProcessingTime)
}

func TestAnalyzeCancelledBatch(t *testing.T) {
	dir := t.TempDir()
	var cancel atomic.Bool
	cancel.Store(true)

	paths := []string{filepath.Join(dir, "missing.txt")}
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("abc def"), 0644))
		paths = append(paths, path)
	}

	for _, path := range paths {
		got := Analyze(path, &cancel)
		assert.Equal(t, []*ProcessingError{Cancelled()}, got.Errors, "%s should only be cancelled", path)
		assert.Equal(t, FileStats{}, got.Stats, "%s should have zero stats", path)
	}
}

func TestProcessingErrorString(t *testing.T) {
	assert.Equal(t, "io: read error: boom", IoError("read error: boom").Error())
	assert.Equal(t, "encoding: bad", EncodingError("bad").Error())
	assert.Equal(t, "cancelled", Cancelled().Error())
}
