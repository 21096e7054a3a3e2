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
	"bytes"
	"context"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/rplc/pkg/diff"
	"github.com/walteh/rplc/pkg/input"
	"github.com/walteh/rplc/pkg/text"
	"github.com/walteh/rplc/pkg/txn"
	"gitlab.com/tozd/go/errors"
)

// binarySniffLen is how much of a file is checked for NUL bytes.
const binarySniffLen = 8 << 10

// 📥 Reader loads file content for path items.
type Reader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// FileReader reads from the local filesystem.
type FileReader struct{}

func (FileReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// 🔧 Options configures a Runner
type Options struct {
	// Reader loads path items. Defaults to FileReader.
	Reader Reader
	// Output receives the content of inline text items on live runs.
	// Defaults to io.Discard.
	Output io.Writer
	// OnResult, when set, is called after each item is recorded.
	OnResult func(FileResult)
}

// 🏃 Runner executes pipelines
type Runner struct {
	reader   Reader
	output   io.Writer
	onResult func(FileResult)
}

// 🏗️ NewRunner creates a new runner
func NewRunner(opts Options) *Runner {
	r := &Runner{
		reader:   opts.Reader,
		output:   opts.Output,
		onResult: opts.OnResult,
	}
	if r.reader == nil {
		r.reader = FileReader{}
	}
	if r.output == nil {
		r.output = io.Discard
	}
	return r
}

// 🏃 Execute runs p over items and reports what happened to each.
//
// Validation problems (no inputs after filtering, no operations, a bad
// pattern or glob) are returned before any item is read. Otherwise a report
// is always returned; the error is non-nil only when the run was interrupted
// or the commit failed.
func (r *Runner) Execute(ctx context.Context, p Pipeline, items []input.Item) (*Report, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	items, err := input.Filter(items, p.Include, p.Exclude)
	if err != nil {
		return nil, classify(ErrValidation, err)
	}
	if len(items) == 0 {
		return nil, validationf("no input sources specified (or all filtered out)")
	}
	if deduped := input.Dedupe(items); len(deduped) != len(items) {
		logger.Debug().Int("duplicates", len(items)-len(deduped)).Msg("collapsed duplicate paths")
		items = deduped
	}
	if len(p.Operations) == 0 {
		return nil, validationf("no operations specified")
	}

	replacers, err := compile(ctx, p.Operations)
	if err != nil {
		return nil, classify(ErrValidation, err)
	}

	if p.ValidateOnly {
		p.DryRun = true
	}

	report := newReport(p.RunID, p.DryRun, p.ValidateOnly)
	report.Inputs = len(items)

	logger.Debug().
		Str("run_id", report.RunID.String()).
		Int("inputs", len(items)).
		Int("operations", len(p.Operations)).
		Bool("dry_run", p.DryRun).
		Bool("validate_only", p.ValidateOnly).
		Msg("starting run")

	mgr := txn.NewManager()
	defer func() {
		if err := mgr.Rollback(); err != nil {
			logger.Warn().Err(err).Msg("cleaning up staged files")
		}
	}()

	var runErr error
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			runErr = errors.Errorf("run interrupted: %w", err)
			break
		}

		res := r.process(ctx, p, replacers, it, mgr)
		report.add(res)
		if r.onResult != nil {
			r.onResult(res)
		}

		if res.Status == ResultError && !p.ContinueOnError {
			logger.Debug().Str("path", res.Path).Msg("stopping after first error")
			break
		}
	}

	report.PolicyViolation = p.Policies.Check(report)

	if !p.DryRun && runErr == nil {
		switch {
		case report.PolicyViolation != "":
			logger.Info().Str("policy", report.PolicyViolation).Msg("policy violated, abandoning staged files")
		case p.Transaction == TransactionAll && report.HasErrors():
			logger.Info().Int("errors", report.Errors()).Msg("errors during run, abandoning staged files")
		default:
			if err := mgr.Commit(ctx); err != nil {
				runErr = errors.Errorf("committing: %w", err)
			} else {
				report.Committed = true
			}
		}
	}

	report.Duration = time.Since(start)

	logger.Debug().
		Str("run_id", report.RunID.String()).
		Int("modified", report.Modified()).
		Int("replacements", report.Replacements()).
		Bool("committed", report.Committed).
		Dur("duration", report.Duration).
		Msg("run finished")

	return report, runErr
}

// process handles one item. It never returns an error; failures are
// recorded in the result.
func (r *Runner) process(ctx context.Context, p Pipeline, replacers []*text.Replacer, it input.Item, mgr *txn.Manager) FileResult {
	logger := zerolog.Ctx(ctx).With().Str("path", it.Name()).Logger()

	res := FileResult{
		Path:    it.Name(),
		Virtual: it.Virtual(),
	}
	fail := func(err error) FileResult {
		logger.Debug().Err(err).Msg("item failed")
		res.Status = ResultError
		res.Err = err
		res.Modified = false
		res.Replacements = 0
		res.Diff = ""
		return res
	}

	original := it.Content
	if !it.Virtual() {
		b, err := r.reader.ReadFile(ctx, it.Path)
		if err != nil {
			return fail(classify(ErrIO, errors.Errorf("reading %s: %w", it.Path, err)))
		}
		original = b

		if !p.ProcessBinary && isBinary(original) {
			logger.Debug().Msg("skipping binary file")
			res.Status = ResultSkipped
			res.SkipReason = SkipBinary
			return res
		}
	}

	var hints []text.ByteRange
	if it.Kind == input.KindMatches {
		hints = it.Ranges
		if hints == nil {
			hints = []text.ByteRange{}
		}
	}

	current := original
	for i, rep := range replacers {
		var sets [][]text.ByteRange
		if hints != nil {
			sets = append(sets, hints)
		}
		if rg := p.Operations[i].Range; rg != nil {
			sets = append(sets, []text.ByteRange{*rg})
		}

		var (
			next []byte
			n    int
		)
		if len(sets) == 0 {
			next, n = rep.ReplaceWithCount(current)
		} else {
			next, n = rep.ReplaceInRanges(current, sets...)
		}

		// hint offsets describe the original bytes only
		if n > 0 && hints != nil && !bytes.Equal(next, current) {
			hints = nil
		}

		res.Replacements += n
		current = next
	}

	res.Modified = !bytes.Equal(current, original)

	if res.Modified && utf8.Valid(original) && !utf8.Valid(current) {
		return fail(classify(ErrEncoding, errors.Errorf("replacement produced invalid UTF-8 in %s", it.Name())))
	}

	if p.DryRun {
		if res.Modified {
			d, err := renderDiff(p.DiffFormat, it.Name(), original, current)
			if err != nil {
				return fail(errors.Errorf("rendering diff: %w", err))
			}
			res.Diff = d
		}
	} else if it.Virtual() {
		if _, err := r.output.Write(current); err != nil {
			return fail(classify(ErrIO, errors.Errorf("writing output: %w", err)))
		}
	} else if res.Modified {
		entry, err := txn.NewEntry(it.Path, current, p.Symlinks)
		if err != nil {
			return fail(classify(ErrIO, errors.Errorf("staging %s: %w", it.Path, err)))
		}
		if err := mgr.Stage(entry); err != nil {
			_ = entry.Discard()
			return fail(classify(ErrIO, errors.Errorf("staging %s: %w", it.Path, err)))
		}
	}

	logger.Debug().
		Bool("modified", res.Modified).
		Int("replacements", res.Replacements).
		Msg("processed")

	res.Status = ResultSuccess
	return res
}

func renderDiff(format DiffFormat, name string, old, new []byte) (string, error) {
	if format == DiffUnified {
		return diff.Unified("a/"+name, "b/"+name, old, new, 3)
	}
	d, _ := diff.Lines(old, new)
	return d, nil
}

func isBinary(b []byte) bool {
	if len(b) > binarySniffLen {
		b = b[:binarySniffLen]
	}
	return bytes.IndexByte(b, 0) >= 0
}
