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
	"runtime"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "fileproc.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// cpus lets a config scale the pool with the machine, e.g. workers = cpus * 2
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"cpus": cty.NumberIntVal(int64(runtime.NumCPU())),
		},
	}

	type hclConfig struct {
		Workers      *int     `hcl:"workers,optional"`
		Paths        []string `hcl:"paths,optional"`
		Ignore       []string `hcl:"ignore,optional"`
		PollInterval *string  `hcl:"poll_interval,optional"`
		TopChars     *int     `hcl:"top_chars,optional"`
		JSON         *bool    `hcl:"json,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Paths:  hclCfg.Paths,
		Ignore: hclCfg.Ignore,
	}
	if hclCfg.Workers != nil {
		cfg.Workers = *hclCfg.Workers
	}
	if hclCfg.PollInterval != nil {
		cfg.PollInterval = *hclCfg.PollInterval
	}
	if hclCfg.TopChars != nil {
		cfg.TopChars = *hclCfg.TopChars
	}
	if hclCfg.JSON != nil {
		cfg.JSON = *hclCfg.JSON
	}

	return cfg, nil
}
