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

// Package discover turns user supplied patterns into the flat list of file
// paths handed to the processor. Directories are listed one level deep.
package discover

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrRecursivePattern is returned for patterns using "**"
var ErrRecursivePattern = errors.Base("recursive patterns are not supported")

// 🔍 Expand resolves each pattern to regular files.
//
// A pattern may name a file, a directory (its regular files are listed, not
// its subdirectories) or a glob. Glob matches that are directories are listed
// the same way. Paths matching any ignore glob, by full slash path or by base
// name, are dropped. The result is sorted and free of duplicates.
func Expand(ctx context.Context, patterns, ignore []string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	for _, pattern := range append(append([]string{}, patterns...), ignore...) {
		if strings.Contains(pattern, "**") {
			return nil, errors.Errorf("%w: %s", ErrRecursivePattern, pattern)
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, errors.Errorf("invalid pattern %q", pattern)
		}
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		path = filepath.Clean(path)
		if isIgnored(path, ignore) {
			logger.Trace().Str("path", path).Msg("ignoring file")
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, pattern := range patterns {
		matches, err := resolve(pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			logger.Warn().Str("pattern", pattern).Msg("pattern matched nothing")
		}

		for _, match := range matches {
			files, err := filesAt(match)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		}
	}

	sort.Strings(out)
	logger.Debug().Int("files", len(out)).Int("patterns", len(patterns)).Msg("expanded patterns")
	return out, nil
}

// resolve returns the literal path when pattern has no glob meta characters,
// so missing files still reach the analyzer and get reported.
func resolve(pattern string) ([]string, error) {
	if !hasMeta(pattern) {
		return []string{pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.Errorf("globbing %q: %w", pattern, err)
	}
	return matches, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// filesAt lists the regular files directly inside path when it is a
// directory. Anything else, including paths that do not exist, is returned as
// is.
func filesAt(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Errorf("reading directory %s: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	return files, nil
}

func isIgnored(path string, ignore []string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range ignore {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.Match(pattern, slashed); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
