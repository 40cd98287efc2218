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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/fileproc/pkg/analysis"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	countWidth  = 9  // Width for word and line counts
	timeWidth   = 12 // Width for processing time
	statusWidth = 10 // Width for status text
)

// 🎯 Logger writes human facing console lines and mirrors them to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	files   int
	failed  int
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func statusOf(a analysis.FileAnalysis) (symbol string, attr color.Attribute, status string) {
	switch {
	case a.OK():
		return "✓", color.FgGreen, "OK"
	case a.HasError(analysis.KindCancelled):
		return "⊘", color.FgYellow, "CANCELLED"
	default:
		return "✗", color.FgRed, "ERRORS"
	}
}

// 📝 formatFileAnalysis formats one result for display
func (l *Logger) formatFileAnalysis(a analysis.FileAnalysis) string {
	symbol, attr, status := statusOf(a)

	return fmt.Sprintf("%s%s %s %s %s %s %s",
		strings.Repeat(" ", fileIndent),
		color.New(attr).Sprint(symbol),
		fmt.Sprintf("%-*s", nameWidth, a.Filename),
		fmt.Sprintf("%*d words", countWidth, a.Stats.WordCount),
		fmt.Sprintf("%*d lines", countWidth, a.Stats.LineCount),
		color.New(color.Faint).Sprint(fmt.Sprintf("%*s", timeWidth, a.ProcessingTime.Round(time.Microsecond))),
		color.New(attr).Sprint(fmt.Sprintf("%-*s", statusWidth, status)))
}

// 📝 LogFileAnalysis prints one result and its errors
func (l *Logger) LogFileAnalysis(ctx context.Context, a analysis.FileAnalysis) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files++
	if !a.OK() {
		l.failed++
	}

	fmt.Fprintln(l.console, l.formatFileAnalysis(a))
	for _, err := range a.Errors {
		fmt.Fprintf(l.console, "%s%s\n",
			strings.Repeat(" ", fileIndent*2),
			color.New(color.FgRed).Sprint(err.Error()))
	}

	event := l.zlog.Debug()
	if !a.OK() {
		event = l.zlog.Warn()
	}
	event.
		Str("file", a.Path).
		Str("state", a.State().String()).
		Int("words", a.Stats.WordCount).
		Int("lines", a.Stats.LineCount).
		Uint64("size_bytes", a.Stats.SizeBytes).
		Int("errors", len(a.Errors)).
		Dur("processing_time", a.ProcessingTime).
		Msg("file analysis")
}

// 📝 StartBatch prints the batch header
func (l *Logger) StartBatch(ctx context.Context, files, workers int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files = 0
	l.failed = 0

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d files", files),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d workers", workers))

	l.zlog.Info().
		Int("files", files).
		Int("workers", workers).
		Msg("starting batch")
}

// 📝 EndBatch logs how many results were printed since StartBatch
func (l *Logger) EndBatch(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zlog.Info().
		Int("files", l.files).
		Int("failed", l.failed).
		Msg("batch output complete")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("fileproc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
