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

package operation

import (
	"github.com/google/uuid"
	"github.com/walteh/rplc/pkg/text"
	"github.com/walteh/rplc/pkg/txn"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is one find/replace step. Operations in a pipeline run in
// order, each seeing the output of the one before.
type Operation struct {
	Find              string          `json:"find" yaml:"find"`
	With              string          `json:"with" yaml:"with"`
	Literal           bool            `json:"literal,omitempty" yaml:"literal,omitempty"`
	IgnoreCase        bool            `json:"ignore_case,omitempty" yaml:"ignore_case,omitempty"`
	SmartCase         bool            `json:"smart_case,omitempty" yaml:"smart_case,omitempty"`
	Word              bool            `json:"word,omitempty" yaml:"word,omitempty"`
	Multiline         bool            `json:"multiline,omitempty" yaml:"multiline,omitempty"`
	DotMatchesNewline bool            `json:"dot_matches_newline,omitempty" yaml:"dot_matches_newline,omitempty"`
	NoUnicode         bool            `json:"no_unicode,omitempty" yaml:"no_unicode,omitempty"`
	Limit             int             `json:"limit,omitempty" yaml:"limit,omitempty"` // 0 means unlimited
	Range             *text.ByteRange `json:"range,omitempty" yaml:"range,omitempty"`
}

// Options maps the operation's flags onto matcher options.
func (o Operation) Options() text.Options {
	return text.Options{
		Literal:           o.Literal,
		IgnoreCase:        o.IgnoreCase,
		SmartCase:         o.SmartCase,
		WholeWord:         o.Word,
		Multiline:         o.Multiline,
		DotMatchesNewline: o.DotMatchesNewline,
		NoUnicode:         o.NoUnicode,
		MaxReplacements:   o.Limit,
	}
}

// Replacer compiles the operation.
func (o Operation) Replacer() (*text.Replacer, error) {
	if o.Range != nil {
		if err := o.Range.Validate(); err != nil {
			return nil, err
		}
	}
	return text.NewReplacer(o.Find, o.With, o.Options())
}

// TransactionMode decides which staged files are committed at the end of a run
type TransactionMode int

const (
	TransactionAll  TransactionMode = iota // Commit only when every item succeeded
	TransactionFile                        // Commit every file that staged cleanly
)

// String returns a string representation of TransactionMode
func (m TransactionMode) String() string {
	switch m {
	case TransactionFile:
		return "file"
	default:
		return "all"
	}
}

// ParseTransactionMode parses "all" or "file". The empty string is "all".
func ParseTransactionMode(s string) (TransactionMode, error) {
	switch s {
	case "", "all":
		return TransactionAll, nil
	case "file":
		return TransactionFile, nil
	default:
		return TransactionAll, errors.Errorf("unknown transaction mode %q (want all or file)", s)
	}
}

// DiffFormat selects how dry-run diffs are rendered
type DiffFormat int

const (
	DiffLines   DiffFormat = iota // Every line tagged ' ', '-' or '+'
	DiffUnified                   // ---/+++/@@ patch with context
)

// String returns a string representation of DiffFormat
func (f DiffFormat) String() string {
	switch f {
	case DiffUnified:
		return "patch"
	default:
		return "diff"
	}
}

// ParseDiffFormat parses "diff" or "patch". The empty string is "diff".
func ParseDiffFormat(s string) (DiffFormat, error) {
	switch s {
	case "", "diff":
		return DiffLines, nil
	case "patch":
		return DiffUnified, nil
	default:
		return DiffLines, errors.Errorf("unknown diff format %q (want diff or patch)", s)
	}
}

// 📏 Policies are run-level assertions checked before commit. A violation
// abandons every staged file.
type Policies struct {
	RequireMatch bool `json:"require_match,omitempty" yaml:"require_match,omitempty"`
	Expect       *int `json:"expect,omitempty" yaml:"expect,omitempty"`
	FailOnChange bool `json:"fail_on_change,omitempty" yaml:"fail_on_change,omitempty"`
}

// 🔧 Pipeline is everything a run needs besides its inputs.
type Pipeline struct {
	Operations      []Operation
	DryRun          bool
	ValidateOnly    bool // Implies DryRun
	Include         []string
	Exclude         []string
	Symlinks        txn.SymlinkPolicy
	Transaction     TransactionMode
	ContinueOnError bool
	ProcessBinary   bool
	DiffFormat      DiffFormat
	Policies        Policies
	RunID           uuid.UUID // generated when zero
}
