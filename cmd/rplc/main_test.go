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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rplc/pkg/status"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func plainOutput(t *testing.T) {
	t.Helper()
	prevColor := color.NoColor
	prevRaw := pterm.RawOutput
	color.NoColor = true
	pterm.DisableStyling()
	t.Cleanup(func() {
		color.NoColor = prevColor
		pterm.RawOutput = prevRaw
	})
}

func runCLI(t *testing.T, stdin io.Reader, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, stdin, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing %s", name)
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err, "reading %s", path)
	return string(b)
}

func TestRun_Replace(t *testing.T) {
	plainOutput(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "hello world\nworld peace\n")
	b := writeFile(t, dir, "b.txt", "nothing here\n")

	res := runCLI(t, nil, "world", "there", a, b)

	require.Equal(t, exitOK, res.code, "stderr: %s", res.stderr)
	assert.Equal(t, "hello there\nthere peace\n", readFile(t, a), "matches should be replaced")
	assert.Equal(t, "nothing here\n", readFile(t, b), "unmatched file should be untouched")
	assert.Contains(t, res.stdout, "rplc • applying 1 operation(s)")
	assert.Contains(t, res.stdout, "COMMITTED: 1 file(s) written")
}

func TestRun_DryRun(t *testing.T) {
	plainOutput(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "hello world\n")

	res := runCLI(t, nil, "--dry-run", "world", "there", a)

	require.Equal(t, exitOK, res.code, "stderr: %s", res.stderr)
	assert.Equal(t, "hello world\n", readFile(t, a), "dry run should not write")
	assert.Contains(t, res.stdout, "DRY RUN: nothing will be written")
	assert.Contains(t, res.stdout, "-hello world")
	assert.Contains(t, res.stdout, "+hello there")
}

func TestRun_ValidateOnly(t *testing.T) {
	plainOutput(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "hello foo world\n")

	res := runCLI(t, nil, "--validate-only", "foo", "bar", a)

	require.Equal(t, exitOK, res.code, "stderr: %s", res.stderr)
	assert.Equal(t, "hello foo world\n", readFile(t, a), "validate-only implies dry run")
	assert.Contains(t, res.stdout, "VALIDATION RUN")
	assert.Contains(t, res.stdout, "1 file processed")
}

func TestRun_ExitCodes(t *testing.T) {
	plainOutput(t)

	tests := []struct {
		name        string
		args        func(dir string) []string
		stdin       io.Reader
		wantCode    int
		errContains string
	}{
		{
			name:        "missing_replace",
			args:        func(dir string) []string { return []string{"foo"} },
			wantCode:    exitInvalid,
			errContains: "expected FIND and REPLACE",
		},
		{
			name:        "no_inputs",
			args:        func(dir string) []string { return []string{"foo", "bar"} },
			wantCode:    exitInvalid,
			errContains: "no input sources",
		},
		{
			name: "bad_pattern",
			args: func(dir string) []string {
				return []string{"(unclosed", "x", filepath.Join(dir, "a.txt")}
			},
			wantCode:    exitInvalid,
			errContains: "operation 1",
		},
		{
			name: "unknown_flag",
			args: func(dir string) []string {
				return []string{"--frobnicate", "a", "b", filepath.Join(dir, "a.txt")}
			},
			wantCode:    exitInvalid,
			errContains: "frobnicate",
		},
		{
			name: "bad_transaction",
			args: func(dir string) []string {
				return []string{"--transaction", "sometimes", "a", "b", filepath.Join(dir, "a.txt")}
			},
			wantCode:    exitInvalid,
			errContains: "unknown transaction mode",
		},
		{
			name: "two_input_modes",
			args: func(dir string) []string {
				return []string{"--stdin-text", "--files0", "a", "b"}
			},
			stdin:       strings.NewReader(""),
			wantCode:    exitInvalid,
			errContains: "only one input mode",
		},
		{
			name: "mode_with_paths",
			args: func(dir string) []string {
				return []string{"--stdin-paths", "a", "b", filepath.Join(dir, "a.txt")}
			},
			stdin:       strings.NewReader(""),
			wantCode:    exitInvalid,
			errContains: "cannot be combined with path arguments",
		},
		{
			name: "bad_range",
			args: func(dir string) []string {
				return []string{"--range", "9:1", "a", "b", filepath.Join(dir, "a.txt")}
			},
			wantCode:    exitInvalid,
			errContains: "--range",
		},
		{
			name: "missing_file",
			args: func(dir string) []string {
				return []string{"a", "b", filepath.Join(dir, "missing.txt")}
			},
			wantCode: exitFailed,
		},
		{
			name: "require_match_violated",
			args: func(dir string) []string {
				return []string{"--require-match", "zzz", "b", filepath.Join(dir, "a.txt")}
			},
			wantCode: exitFailed,
		},
		{
			name: "expect_met",
			args: func(dir string) []string {
				return []string{"--expect", "1", "--dry-run", "alpha", "beta", filepath.Join(dir, "a.txt")}
			},
			wantCode: exitOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			a := writeFile(t, dir, "a.txt", "alpha\n")

			res := runCLI(t, tt.stdin, tt.args(dir)...)

			assert.Equal(t, tt.wantCode, res.code, "stdout: %s\nstderr: %s", res.stdout, res.stderr)
			if tt.errContains != "" {
				assert.Contains(t, res.stderr, tt.errContains)
			}
			assert.Equal(t, "alpha\n", readFile(t, a), "failed runs should not write")
		})
	}
}

func TestRun_FailedItemAbandonsBatch(t *testing.T) {
	plainOutput(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "foo\n")

	res := runCLI(t, nil, "--continue-on-error", "foo", "bar", a, filepath.Join(dir, "missing.txt"))

	assert.Equal(t, exitFailed, res.code)
	assert.Equal(t, "foo\n", readFile(t, a), "transaction all should abandon every staged file")
	assert.Contains(t, res.stderr, "missing.txt", "structured error lines should go to the run's stderr")

	res = runCLI(t, nil, "--continue-on-error", "--transaction", "file", "foo", "bar", a, filepath.Join(dir, "missing.txt"))

	assert.Equal(t, exitFailed, res.code, "the failed item still fails the run")
	assert.Equal(t, "bar\n", readFile(t, a), "transaction file should commit clean files")
}

func TestRun_StdinText(t *testing.T) {
	plainOutput(t)

	res := runCLI(t, strings.NewReader("hello world\n"), "--stdin-text", "world", "there")

	require.Equal(t, exitOK, res.code, "stderr: %s", res.stderr)
	assert.Equal(t, "hello there\n", res.stdout, "stdout should only carry the transformed text")
	assert.Contains(t, res.stderr, "<stdin>", "console output should move to stderr")
}

func TestRun_StdinText_JSONNeedsDryRun(t *testing.T) {
	res := runCLI(t, strings.NewReader("x"), "--json", "--stdin-text", "x", "y")
	assert.Equal(t, exitInvalid, res.code)
	assert.Contains(t, res.stderr, "--dry-run")
}

func TestRun_StdinPaths(t *testing.T) {
	plainOutput(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "one two\n")
	b := writeFile(t, dir, "b.txt", "two three\n")

	res := runCLI(t, strings.NewReader(a+"\n"+b+"\n"), "two", "2")
	require.Equal(t, exitOK, res.code, "stderr: %s", res.stderr)
	assert.Equal(t, "one 2\n", readFile(t, a))
	assert.Equal(t, "2 three\n", readFile(t, b))

	res = runCLI(t, strings.NewReader(a+"\x00"), "--files0", "2", "II")
	require.Equal(t, exitOK, res.code, "stderr: %s", res.stderr)
	assert.Equal(t, "one II\n", readFile(t, a))
	assert.Equal(t, "2 three\n", readFile(t, b), "only the listed file should change")
}

func TestRun_RipgrepJSON(t *testing.T) {
	plainOutput(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "foo bar foo\n")

	path, err := json.Marshal(a)
	require.NoError(t, err)
	stream := strings.Join([]string{
		`{"type":"begin","data":{"path":{"text":` + string(path) + `}}}`,
		`{"type":"match","data":{"path":{"text":` + string(path) + `},"absolute_offset":0,"submatches":[{"match":{"text":"foo"},"start":8,"end":11}]}}`,
		`{"type":"end","data":{"path":{"text":` + string(path) + `}}}`,
	}, "\n")

	res := runCLI(t, strings.NewReader(stream), "--rg-json", "foo", "baz")

	require.Equal(t, exitOK, res.code, "stderr: %s", res.stderr)
	assert.Equal(t, "foo bar baz\n", readFile(t, a), "only the reported match should change")
}

func TestRun_JSONEvents(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "hello world\n")
	b := writeFile(t, dir, "b.bin", "bin\x00ary world\n")

	res := runCLI(t, nil, "--json", "--dry-run", "world", "there", a, b)
	require.Equal(t, exitOK, res.code, "stderr: %s", res.stderr)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 4, "run_start, two file events, run_end")

	var start status.RunStart
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &start))
	assert.Equal(t, status.EventRunStart, start.Type)
	assert.Equal(t, "cli", start.Mode)
	assert.Equal(t, "args", start.InputMode)
	assert.True(t, start.DryRun)
	assert.NotEmpty(t, start.RunID)

	var modified status.FileEvent
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &modified))
	assert.Equal(t, "success", modified.Status)
	assert.True(t, modified.Modified)
	assert.Equal(t, 1, modified.Replacements)
	assert.Equal(t, "-hello world\n+hello there\n", modified.Diff)

	var skipped status.FileEvent
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &skipped))
	assert.Equal(t, "skipped", skipped.Status)
	assert.Equal(t, "binary", skipped.Reason)

	var end status.RunEnd
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &end))
	assert.Equal(t, status.EventRunEnd, end.Type)
	assert.Equal(t, start.RunID, end.RunID, "events should share the run id")
	assert.Equal(t, 1, end.TotalModified)
	assert.False(t, end.Committed)
	assert.Equal(t, 0, end.ExitCode)
}

func TestRun_Apply(t *testing.T) {
	plainOutput(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "main.go", "package main // TODO TODO\nvar v1 = 1\n")
	skip := writeFile(t, dir, "notes.md", "TODO\n")
	manifest := writeFile(t, dir, "rplc.yaml", `
operations:
  - find: TODO
    with: DONE
    literal: true
    limit: 1
  - find: 'v(\d+)'
    with: 'version${1}'
include: ["*.go"]
`)

	res := runCLI(t, nil, "apply", "--manifest", manifest, a, skip)
	require.Equal(t, exitOK, res.code, "stderr: %s", res.stderr)
	assert.Equal(t, "package main // DONE TODO\nvar version${1} = 1\n", readFile(t, a), "capture references are inserted as written")
	assert.Equal(t, "TODO\n", readFile(t, skip), "excluded by include glob")

	res = runCLI(t, nil, "apply", "--manifest", manifest, "--dry-run", "--include", "*.md", skip)
	require.Equal(t, exitOK, res.code, "stderr: %s", res.stderr)
	assert.Equal(t, "TODO\n", readFile(t, skip), "flag overrides should reach the pipeline")
	assert.Contains(t, res.stdout, "+DONE")

	res = runCLI(t, nil, "apply", "--manifest", filepath.Join(dir, "missing.yaml"), a)
	assert.Equal(t, exitInvalid, res.code)
	assert.Contains(t, res.stderr, "does not exist")

	bad := writeFile(t, dir, "bad.yaml", "operations:\n  - find: x\n    with: y\n    colour: red\n")
	res = runCLI(t, nil, "apply", "--manifest", bad, a)
	assert.Equal(t, exitInvalid, res.code)
	assert.Contains(t, res.stderr, "colour")
}

func TestRun_Version(t *testing.T) {
	res := runCLI(t, nil, "version")
	require.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "🚀 rplc ")
	assert.Contains(t, res.stdout, "events: schema "+status.SchemaVersion)

	res = runCLI(t, nil, "--json", "version")
	require.Equal(t, exitOK, res.code)
	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Equal(t, status.SchemaVersion, info.EventSchema)
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name string
		info VersionInfo
		want string
	}{
		{
			name: "release",
			info: VersionInfo{Version: "v1.2.0", Revision: "0123456789ab", EventSchema: "1", GoVersion: "go1.23.5"},
			want: "🚀 rplc v1.2.0 (0123456789ab)\n   events: schema 1\n   go:     go1.23.5\n",
		},
		{
			name: "no_revision",
			info: VersionInfo{Version: "dev", EventSchema: "1", GoVersion: "go1.23.5"},
			want: "🚀 rplc dev (unknown)\n   events: schema 1\n   go:     go1.23.5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatVersion(&tt.info))
		})
	}
}

func TestCollectInputs(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		flags     inputFlags
		paths     []string
		stdin     io.Reader
		wantMode  string
		wantNames []string
		wantErr   bool
	}{
		{name: "args", paths: []string{"a", "b"}, wantMode: modeArgs, wantNames: []string{"a", "b"}},
		{name: "auto_stdin_paths", stdin: strings.NewReader("a\n\nb\n"), wantMode: modeStdinPaths, wantNames: []string{"a", "b"}},
		{name: "args_beat_stdin", paths: []string{"c"}, stdin: strings.NewReader("a\n"), wantMode: modeArgs, wantNames: []string{"c"}},
		{name: "nothing", wantMode: modeArgs},
		{name: "files0", flags: inputFlags{files0: true}, stdin: strings.NewReader("a b\x00c"), wantMode: modeFiles0, wantNames: []string{"a b", "c"}},
		{name: "stdin_text", flags: inputFlags{stdinText: true}, stdin: strings.NewReader("x"), wantMode: modeStdinText, wantNames: []string{"<stdin>"}},
		{name: "explicit_mode_without_stdin", flags: inputFlags{stdinPaths: true}, wantErr: true},
		{name: "two_modes", flags: inputFlags{rgJSON: true, stdinText: true}, stdin: strings.NewReader(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, mode, err := collectInputs(ctx, tt.flags, tt.paths, tt.stdin)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, mode)

			var names []string
			for _, it := range items {
				names = append(names, it.Name())
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}
