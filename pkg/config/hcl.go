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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/rplc/pkg/operation"
	"github.com/walteh/rplc/pkg/text"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
// Strings are HCL templates: `${env.HOME}` reads the environment, and a
// literal `${` in a replacement template is written `$${`.
type HCLParser struct{}

type hclOperation struct {
	Find              string          `hcl:"find"`
	With              string          `hcl:"with"`
	Literal           bool            `hcl:"literal,optional"`
	IgnoreCase        bool            `hcl:"ignore_case,optional"`
	SmartCase         bool            `hcl:"smart_case,optional"`
	Word              bool            `hcl:"word,optional"`
	Multiline         bool            `hcl:"multiline,optional"`
	DotMatchesNewline bool            `hcl:"dot_matches_newline,optional"`
	NoUnicode         bool            `hcl:"no_unicode,optional"`
	Limit             int             `hcl:"limit,optional"`
	Range             *text.ByteRange `hcl:"range,block"`
}

type hclPolicies struct {
	RequireMatch bool `hcl:"require_match,optional"`
	Expect       *int `hcl:"expect,optional"`
	FailOnChange bool `hcl:"fail_on_change,optional"`
}

type hclManifest struct {
	Operations      []hclOperation `hcl:"operation,block"`
	DryRun          bool           `hcl:"dry_run,optional"`
	ValidateOnly    bool           `hcl:"validate_only,optional"`
	Include         []string       `hcl:"include,optional"`
	Exclude         []string       `hcl:"exclude,optional"`
	Symlinks        string         `hcl:"symlinks,optional"`
	Transaction     string         `hcl:"transaction,optional"`
	ContinueOnError bool           `hcl:"continue_on_error,optional"`
	ProcessBinary   bool           `hcl:"process_binary,optional"`
	Format          string         `hcl:"format,optional"`
	Policies        *hclPolicies   `hcl:"policies,block"`
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the manifest from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Manifest, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "manifest.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("%w: parsing HCL: %s", ErrManifest, diags.Error())
	}

	var hm hclManifest
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &hm)
	if diags.HasErrors() {
		return nil, errors.Errorf("%w: decoding HCL: %s", ErrManifest, diags.Error())
	}

	m := &Manifest{
		DryRun:          hm.DryRun,
		ValidateOnly:    hm.ValidateOnly,
		Include:         hm.Include,
		Exclude:         hm.Exclude,
		Symlinks:        hm.Symlinks,
		Transaction:     hm.Transaction,
		ContinueOnError: hm.ContinueOnError,
		ProcessBinary:   hm.ProcessBinary,
		Format:          hm.Format,
	}
	for _, op := range hm.Operations {
		m.Operations = append(m.Operations, operation.Operation{
			Find:              op.Find,
			With:              op.With,
			Literal:           op.Literal,
			IgnoreCase:        op.IgnoreCase,
			SmartCase:         op.SmartCase,
			Word:              op.Word,
			Multiline:         op.Multiline,
			DotMatchesNewline: op.DotMatchesNewline,
			NoUnicode:         op.NoUnicode,
			Limit:             op.Limit,
			Range:             op.Range,
		})
	}
	if hm.Policies != nil {
		m.Policies = operation.Policies{
			RequireMatch: hm.Policies.RequireMatch,
			Expect:       hm.Policies.Expect,
			FailOnChange: hm.Policies.FailOnChange,
		}
	}

	return m, nil
}

// evalContext exposes the process environment as the env object.
func evalContext() *hcl.EvalContext {
	env := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}
