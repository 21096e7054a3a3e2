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
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/walteh/rplc/pkg/operation"
	"github.com/walteh/rplc/pkg/txn"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// ErrManifest marks every problem with the content of a manifest file.
var ErrManifest = errors.Base("invalid manifest")

// 🔌 Parser is the interface for manifest parsers
type Parser interface {
	// 📝 Parse parses the manifest from bytes
	Parse(ctx context.Context, data []byte) (*Manifest, error)

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

// 📚 Manifest is a pipeline written down in a file
type Manifest struct {
	Operations      []operation.Operation `json:"operations" yaml:"operations"`
	DryRun          bool                  `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	ValidateOnly    bool                  `json:"validate_only,omitempty" yaml:"validate_only,omitempty"`
	Include         []string              `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude         []string              `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Symlinks        string                `json:"symlinks,omitempty" yaml:"symlinks,omitempty"`       // follow or no_follow
	Transaction     string                `json:"transaction,omitempty" yaml:"transaction,omitempty"` // all or file
	ContinueOnError bool                  `json:"continue_on_error,omitempty" yaml:"continue_on_error,omitempty"`
	ProcessBinary   bool                  `json:"process_binary,omitempty" yaml:"process_binary,omitempty"`
	Format          string                `json:"format,omitempty" yaml:"format,omitempty"` // diff or patch
	Policies        operation.Policies    `json:"policies,omitempty" yaml:"policies,omitempty"`
}

// 🔍 Validate checks if the manifest is valid
func (m *Manifest) Validate() error {
	_, err := m.Pipeline()
	return err
}

// 🔧 Pipeline converts the manifest into a runnable pipeline. Patterns are
// compiled later by the engine; only manifest-level values are checked here.
func (m *Manifest) Pipeline() (operation.Pipeline, error) {
	if len(m.Operations) == 0 {
		return operation.Pipeline{}, errors.Errorf("%w: operations: at least one operation is required", ErrManifest)
	}
	for i, op := range m.Operations {
		if op.Find == "" {
			return operation.Pipeline{}, errors.Errorf("%w: operations[%d].find is required", ErrManifest, i)
		}
		if op.Limit < 0 {
			return operation.Pipeline{}, errors.Errorf("%w: operations[%d].limit must not be negative", ErrManifest, i)
		}
		if op.Range != nil {
			if err := op.Range.Validate(); err != nil {
				return operation.Pipeline{}, errors.Errorf("%w: operations[%d].range: %s", ErrManifest, i, err.Error())
			}
		}
	}
	if m.Policies.Expect != nil && *m.Policies.Expect < 0 {
		return operation.Pipeline{}, errors.Errorf("%w: policies.expect must not be negative", ErrManifest)
	}

	symlinks, err := txn.ParseSymlinkPolicy(m.Symlinks)
	if err != nil {
		return operation.Pipeline{}, errors.Errorf("%w: symlinks: %s", ErrManifest, err.Error())
	}
	mode, err := operation.ParseTransactionMode(m.Transaction)
	if err != nil {
		return operation.Pipeline{}, errors.Errorf("%w: transaction: %s", ErrManifest, err.Error())
	}
	format, err := operation.ParseDiffFormat(m.Format)
	if err != nil {
		return operation.Pipeline{}, errors.Errorf("%w: format: %s", ErrManifest, err.Error())
	}

	return operation.Pipeline{
		Operations:      m.Operations,
		DryRun:          m.DryRun || m.ValidateOnly,
		ValidateOnly:    m.ValidateOnly,
		Include:         m.Include,
		Exclude:         m.Exclude,
		Symlinks:        symlinks,
		Transaction:     mode,
		ContinueOnError: m.ContinueOnError,
		ProcessBinary:   m.ProcessBinary,
		DiffFormat:      format,
		Policies:        m.Policies,
	}, nil
}

// 📝 String returns a string representation of the manifest
func (m *Manifest) String() string {
	finds := make([]string, 0, len(m.Operations))
	for _, op := range m.Operations {
		finds = append(finds, fmt.Sprintf("%q", op.Find))
	}
	return fmt.Sprintf("%d operation(s) [%s] transaction=%s", len(m.Operations), strings.Join(finds, ", "), orDefault(m.Transaction, "all"))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses the manifest from YAML bytes
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, errors.Errorf("%w: parsing YAML: %s", ErrManifest, err.Error())
	}
	return &m, nil
}
