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

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fileproc/pkg/config"
	"github.com/walteh/fileproc/pkg/discover"
	"github.com/walteh/fileproc/pkg/log"
	"github.com/walteh/fileproc/pkg/processor"
	"github.com/walteh/fileproc/pkg/report"
	"gitlab.com/tozd/go/errors"
)

const defaultConfigFile = ".fileproc.yaml"

// runFlags are the run command overrides for values in the config file
type runFlags struct {
	workers      int
	ignore       []string
	pollInterval time.Duration
	top          int
	json         bool
}

func newRunCommand(root *rootOpts) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [paths or globs...]",
		Short: "Analyze files and print per-file statistics",
		Long: `Run analyzes every file named on the command line or in the config file.
Directories are listed one level deep. It will:
1. Load the config file, if present
2. Expand paths, directories and globs
3. Analyze each file on a worker pool
4. Report per-file results and a summary

Interrupting the run stops files that have not started yet; files already
being read are finished and reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), root.configFile, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg, args); err != nil {
				return err
			}
			return runBatch(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "number of workers (default: number of CPUs)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob of files to skip, matched against path and base name (repeatable)")
	cmd.Flags().DurationVar(&flags.pollInterval, "poll-interval", config.DefaultPollInterval, "how often completion and progress are checked")
	cmd.Flags().IntVar(&flags.top, "top", config.DefaultTopChars, "most frequent characters to show per file")
	cmd.Flags().BoolVar(&flags.json, "json", false, "write the report as json to stdout")

	return cmd
}

// loadConfig reads the config file. A missing default file is not an error,
// a missing file passed explicitly is.
func loadConfig(ctx context.Context, path string, explicit bool) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("no config file, using defaults")
		return config.Default(), nil
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// apply lets explicitly set flags and positional paths override the config
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		// command line paths are relative to the working directory, not the config file
		cfg.Paths = make([]string, 0, len(args))
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return errors.Errorf("resolving %s: %w", arg, err)
			}
			cfg.Paths = append(cfg.Paths, abs)
		}
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = f.workers
		if f.workers <= 0 {
			return errors.Errorf("--workers must be positive, got %d", f.workers)
		}
	}
	if cmd.Flags().Changed("ignore") {
		cfg.Ignore = append(cfg.Ignore, f.ignore...)
	}
	if cmd.Flags().Changed("poll-interval") {
		cfg.PollInterval = f.pollInterval.String()
	}
	if cmd.Flags().Changed("top") {
		if f.top < 0 {
			return errors.Errorf("--top must not be negative, got %d", f.top)
		}
		cfg.TopChars = f.top
	}
	if cmd.Flags().Changed("json") {
		cfg.JSON = f.json
	}

	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating flags: %w", err)
	}
	if len(cfg.Paths) == 0 {
		return errors.New("no paths given on the command line or in the config file")
	}
	return nil
}

// runBatch discovers files, processes them and hands the summary to a reporter
func runBatch(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("config", cfg.String()).Str("location", cfg.Location()).Msg("running batch")

	paths, err := discover.Expand(ctx, cfg.Paths, cfg.Ignore)
	if err != nil {
		return errors.Errorf("discovering files: %w", err)
	}

	var rep report.Reporter
	if cfg.JSON {
		rep = report.NewJSON(stdout, cfg.TopChars)
	} else {
		ctx = log.NewContext(ctx, log.New(stdout, *logger))
		rep = report.NewConsole(stdout, log.FromContext(ctx), cfg.TopChars)

		console := log.FromContext(ctx)
		if len(paths) == 0 {
			console.Infof("no files matched %d patterns", len(cfg.Paths))
		}
		console.StartBatch(ctx, len(paths), cfg.Workers)
	}

	summary, err := processor.Run(ctx, paths, processor.Options{
		Workers:      cfg.Workers,
		PollInterval: cfg.Poll(),
		OnProgress:   rep.Progress,
	})
	if summary == nil {
		return errors.Errorf("running batch: %w", err)
	}
	if err != nil {
		// interrupted runs still report what finished
		if cfg.JSON {
			logger.Warn().Err(err).Msg("batch interrupted")
		} else {
			log.FromContext(ctx).Warningf("interrupted, reporting %d finished of %d files", summary.Processed, summary.TotalFiles)
		}
	}

	if err := rep.Report(ctx, summary); err != nil {
		return errors.Errorf("reporting: %w", err)
	}
	return nil
}
