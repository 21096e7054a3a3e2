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
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rplc/pkg/operation"
	"github.com/walteh/rplc/pkg/text"
	"github.com/walteh/rplc/pkg/txn"
	"gitlab.com/tozd/go/errors"
)

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing manifest")
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, m *Manifest)
	}{
		{
			name: "valid_yaml",
			file: "rplc.yaml",
			config: `
operations:
  - find: 'v(\d+)'
    with: 'version-${1}'
  - find: TODO
    with: DONE
    literal: true
    limit: 1
    range:
      start: 0
      end: 100
include: ["**/*.go"]
exclude: ["vendor/**"]
dry_run: true
symlinks: follow
transaction: file
continue_on_error: true
format: patch
policies:
  require_match: true
  expect: 3
`,
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Operations, 2, "should have 2 operations")
				assert.Equal(t, `v(\d+)`, m.Operations[0].Find, "first find should match")
				assert.Equal(t, "version-${1}", m.Operations[0].With, "first with should match")
				assert.True(t, m.Operations[1].Literal, "second operation should be literal")
				assert.Equal(t, 1, m.Operations[1].Limit, "limit should match")
				assert.Equal(t, &text.ByteRange{Start: 0, End: 100}, m.Operations[1].Range, "range should match")
				assert.Equal(t, []string{"**/*.go"}, m.Include, "include should match")
				assert.Equal(t, []string{"vendor/**"}, m.Exclude, "exclude should match")
				assert.True(t, m.DryRun, "dry_run should be true")
				assert.True(t, m.ContinueOnError, "continue_on_error should be true")
				assert.True(t, m.Policies.RequireMatch, "require_match should be true")
				require.NotNil(t, m.Policies.Expect, "expect should be set")
				assert.Equal(t, 3, *m.Policies.Expect, "expect should match")
			},
		},
		{
			name: "minimal_yaml",
			file: "rplc.yml",
			config: `
operations:
  - find: foo
    with: bar
`,
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Operations, 1, "should have 1 operation")
				assert.Nil(t, m.Operations[0].Range, "range should be unset")
				assert.Nil(t, m.Policies.Expect, "expect should be unset")
				assert.Empty(t, m.Transaction, "transaction should default to empty")
			},
		},
		{
			name: "rplc_file_as_yaml",
			file: ".rplc",
			config: `
operations:
  - find: foo
    with: bar
`,
			check: func(t *testing.T, m *Manifest) {
				assert.Equal(t, "foo", m.Operations[0].Find, "find should match")
			},
		},
		{
			name: "rplc_file_as_hcl",
			file: ".rplc",
			config: `
transaction = "file"

operation {
  find = "foo"
  with = "bar"
}
`,
			check: func(t *testing.T, m *Manifest) {
				assert.Equal(t, "file", m.Transaction, "transaction should match")
				assert.Equal(t, "bar", m.Operations[0].With, "with should match")
			},
		},
		{
			name: "unknown_field",
			file: "rplc.yaml",
			config: `
operations:
  - find: foo
    with: bar
    replace_all: true
`,
			wantErr:     true,
			errContains: "replace_all",
		},
		{
			name:        "no_operations",
			file:        "rplc.yaml",
			config:      "dry_run: true\n",
			wantErr:     true,
			errContains: "at least one operation",
		},
		{
			name: "empty_find",
			file: "rplc.yaml",
			config: `
operations:
  - with: bar
`,
			wantErr:     true,
			errContains: "operations[0].find is required",
		},
		{
			name: "bad_transaction",
			file: "rplc.yaml",
			config: `
operations:
  - find: foo
    with: bar
transaction: sometimes
`,
			wantErr:     true,
			errContains: "unknown transaction mode",
		},
		{
			name: "bad_symlinks",
			file: "rplc.yaml",
			config: `
operations:
  - find: foo
    with: bar
symlinks: maybe
`,
			wantErr:     true,
			errContains: "unknown symlink policy",
		},
		{
			name: "inverted_range",
			file: "rplc.yaml",
			config: `
operations:
  - find: foo
    with: bar
    range: {start: 10, end: 2}
`,
			wantErr:     true,
			errContains: "operations[0].range",
		},
		{
			name:        "unsupported_extension",
			file:        "rplc.toml",
			config:      "operations = []\n",
			wantErr:     true,
			errContains: "unsupported file extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.file, tt.config)

			m, err := Load(testContext(), path)
			if tt.wantErr {
				require.Error(t, err, "Load should fail")
				assert.ErrorIs(t, err, ErrManifest, "error should be a manifest error")
				assert.Contains(t, err.Error(), tt.errContains, "error message should match")
				return
			}

			require.NoError(t, err, "Load should succeed")
			tt.check(t, m)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(testContext(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "Load should fail")
	assert.ErrorIs(t, err, os.ErrNotExist, "error should come from the filesystem")
	assert.False(t, errors.Is(err, ErrManifest), "a missing file is not a manifest error")
}

func TestManifest_Pipeline(t *testing.T) {
	m := &Manifest{
		Operations:   []operation.Operation{{Find: "a", With: "b"}},
		ValidateOnly: true,
		Symlinks:     "follow",
		Transaction:  "file",
		Format:       "patch",
		Include:      []string{"*.go"},
	}

	p, err := m.Pipeline()
	require.NoError(t, err, "Pipeline should succeed")
	assert.True(t, p.DryRun, "validate_only should imply dry run")
	assert.True(t, p.ValidateOnly, "validate_only should carry over")
	assert.Equal(t, txn.SymlinkFollow, p.Symlinks, "symlink policy should match")
	assert.Equal(t, operation.TransactionFile, p.Transaction, "transaction mode should match")
	assert.Equal(t, operation.DiffUnified, p.DiffFormat, "diff format should match")
	assert.Equal(t, []string{"*.go"}, p.Include, "include should match")

	defaults, err := (&Manifest{Operations: m.Operations}).Pipeline()
	require.NoError(t, err, "Pipeline should succeed")
	assert.Equal(t, txn.SymlinkNoFollow, defaults.Symlinks, "symlinks should default to no_follow")
	assert.Equal(t, operation.TransactionAll, defaults.Transaction, "transaction should default to all")
	assert.Equal(t, operation.DiffLines, defaults.DiffFormat, "format should default to diff")

	expect := -1
	_, err = (&Manifest{Operations: m.Operations, Policies: operation.Policies{Expect: &expect}}).Pipeline()
	assert.ErrorIs(t, err, ErrManifest, "negative expect should be rejected")

	_, err = (&Manifest{Operations: m.Operations, Format: "html"}).Pipeline()
	assert.ErrorIs(t, err, ErrManifest, "unknown format should be rejected")
}

func TestManifest_String(t *testing.T) {
	m := &Manifest{Operations: []operation.Operation{{Find: "a"}, {Find: "b"}}}
	assert.Equal(t, `2 operation(s) ["a", "b"] transaction=all`, m.String())
}
