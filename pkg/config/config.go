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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎛️ Defaults applied by Validate
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultTopChars     = 5
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is the run configuration of a batch
type Config struct {
	// Workers is the pool size
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
	// Paths are files, directories or globs to analyze
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`
	// Ignore are globs matched against each discovered path and base name
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	// PollInterval is a Go duration string, e.g. "250ms"
	PollInterval string `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	// TopChars is how many of the most frequent characters to report per file
	TopChars int `json:"top_chars,omitempty" yaml:"top_chars,omitempty"`
	// JSON switches the report to machine readable output
	JSON bool `json:"json,omitempty" yaml:"json,omitempty"`

	pollInterval time.Duration
	location     string
}

// 🏭 Default returns a validated config with every default applied
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	if cfg.location, err = filepath.Abs(path); err != nil {
		return nil, errors.Errorf("resolving config path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Workers < 0 {
		return errors.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if cfg.TopChars < 0 {
		return errors.Errorf("top_chars must not be negative, got %d", cfg.TopChars)
	}
	if cfg.TopChars == 0 {
		cfg.TopChars = DefaultTopChars
	}

	cfg.pollInterval = DefaultPollInterval
	if cfg.PollInterval != "" {
		d, err := time.ParseDuration(cfg.PollInterval)
		if err != nil {
			return errors.Errorf("parsing poll_interval: %w", err)
		}
		if d <= 0 {
			return errors.Errorf("poll_interval must be positive, got %s", d)
		}
		cfg.pollInterval = d
	}

	for i, p := range cfg.Paths {
		if strings.TrimSpace(p) == "" {
			return errors.Errorf("paths[%d] is empty", i)
		}
		cfg.Paths[i] = cfg.resolve(p)
	}

	return nil
}

// resolve makes relative paths relative to the config file's directory. The
// location is absolute, so resolving twice is a no-op.
func (cfg *Config) resolve(p string) string {
	if cfg.location == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(cfg.location), p)
}

// ⏱️ Poll returns the parsed poll interval
func (cfg *Config) Poll() time.Duration {
	if cfg.pollInterval == 0 {
		return DefaultPollInterval
	}
	return cfg.pollInterval
}

// 📍 Location returns the file the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("workers=%d paths=%d ignore=%d poll=%s top=%d", cfg.Workers, len(cfg.Paths), len(cfg.Ignore), cfg.Poll(), cfg.TopChars)
}
