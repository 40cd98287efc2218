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

// Package testutils holds fixtures shared by the package tests.
package testutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// 🧪 Context returns a context whose zerolog logger writes to the test log
func Context(t testing.TB) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// 📁 WriteFiles creates each name with its content in a fresh temp dir and
// returns the dir
func WriteFiles(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "creating parent of %s", name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing %s", name)
	}
	return dir
}

// 📁 WriteNumbered creates n files named file_000.txt, file_001.txt, ... with
// the same content and returns their paths in order
func WriteNumbered(t testing.TB, n int, content string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("file_%03d.txt", i))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing %s", path)
		paths = append(paths, path)
	}
	return paths
}
