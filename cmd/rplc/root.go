package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/walteh/rplc/pkg/operation"
	"github.com/walteh/rplc/pkg/text"
	"github.com/walteh/rplc/pkg/txn"
	"gitlab.com/tozd/go/errors"
)

// streams are the process's standard streams, swapped out in tests
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// globalFlags are shared by every command
type globalFlags struct {
	debug   bool
	jsonOut bool
}

// operationFlags describe the single operation built from FIND and REPLACE
type operationFlags struct {
	literal    bool
	ignoreCase bool
	smartCase  bool
	word       bool
	multiline  bool
	dotAll     bool
	noUnicode  bool
	limit      int
	byteRange  string
}

// runFlags mirror the Pipeline fields
type runFlags struct {
	dryRun          bool
	validateOnly    bool
	include         []string
	exclude         []string
	followSymlinks  bool
	transaction     string
	continueOnError bool
	binary          bool
	format          string
	requireMatch    bool
	expect          int
	failOnChange    bool
}

// inputFlags pick where items come from; at most one may be set
type inputFlags struct {
	stdinText  bool
	stdinPaths bool
	files0     bool
	rgJSON     bool
}

// 🌳 newRootCmd builds the rplc command tree
func newRootCmd(s *streams) *cobra.Command {
	var (
		global globalFlags
		opf    operationFlags
		rf     runFlags
		inf    inputFlags
	)

	cmd := &cobra.Command{
		Use:   "rplc FIND REPLACE [PATH...]",
		Short: "Batch find and replace across files",
		Long: `rplc replaces every match of FIND with REPLACE in each input.

FIND is a regular expression unless --literal is set. REPLACE is inserted
exactly as written: $1, ${1} and ${name} are not expanded.

Inputs come from PATH arguments, or from stdin: newline separated paths
when stdin is piped, or the mode picked by --stdin-text, --stdin-paths,
--files0 or --rg-json.

Every changed file is staged next to its target and only renamed into
place once the whole run has succeeded (see --transaction).`,
		Example: `  rplc 'colou?r' 'hue' src/*.go
  rg -l TODO | rplc --literal TODO DONE --dry-run
  rg --json 'colou?r' | rplc --rg-json 'colou?r' 'hue'
  echo "hello world" | rplc --stdin-text world there`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.Errorf("%w: expected FIND and REPLACE, got %d argument(s)", errUsage, len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := setupLogging(s.err, global.debug)
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := opf.operation(args[0], args[1])
			if err != nil {
				return err
			}

			p := operation.Pipeline{Operations: []operation.Operation{op}}
			if err := rf.apply(cmd.Flags(), &p); err != nil {
				return err
			}

			return execute(cmd, s, global, inf, "cli", p, args[2:])
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.Errorf("%w: %s", errUsage, err.Error())
	})

	cmd.PersistentFlags().BoolVarP(&global.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&global.jsonOut, "json", false, "write run events as JSON lines to stdout")

	addOperationFlags(cmd.Flags(), &opf)
	addRunFlags(cmd.Flags(), &rf)
	addInputFlags(cmd.Flags(), &inf)

	cmd.AddCommand(
		newApplyCmd(s, &global),
		newVersionCmd(s, &global),
	)

	return cmd
}

func addOperationFlags(fs *pflag.FlagSet, f *operationFlags) {
	fs.BoolVarP(&f.literal, "literal", "F", false, "treat FIND as a literal string")
	fs.BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "match case-insensitively")
	fs.BoolVarP(&f.smartCase, "smart-case", "S", false, "ignore case unless FIND contains an uppercase letter")
	fs.BoolVarP(&f.word, "word", "w", false, "only match whole words")
	fs.BoolVarP(&f.multiline, "multiline", "U", false, "^ and $ match at line boundaries")
	fs.BoolVar(&f.dotAll, "dot-all", false, ". also matches newlines")
	fs.BoolVar(&f.noUnicode, "no-unicode", false, "ASCII-only case folding and classes")
	fs.IntVar(&f.limit, "limit", 0, "replace at most this many matches per input (0 means all)")
	fs.StringVar(&f.byteRange, "range", "", "only replace matches inside the byte range START:END")
}

func addRunFlags(fs *pflag.FlagSet, f *runFlags) {
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "show diffs without writing anything")
	fs.BoolVar(&f.validateOnly, "validate-only", false, "check operations and inputs, then stop (implies --dry-run)")
	fs.StringArrayVar(&f.include, "include", nil, "only process paths matching this glob (repeatable)")
	fs.StringArrayVar(&f.exclude, "exclude", nil, "skip paths matching this glob (repeatable)")
	fs.BoolVar(&f.followSymlinks, "follow-symlinks", false, "write through symbolic links instead of refusing them")
	fs.StringVar(&f.transaction, "transaction", "all", "commit mode: all (nothing unless every input succeeded) or file")
	fs.BoolVar(&f.continueOnError, "continue-on-error", false, "keep going after an input fails")
	fs.BoolVar(&f.binary, "binary", false, "process files that look binary")
	fs.StringVar(&f.format, "format", "diff", "dry-run diff format: diff or patch")
	fs.BoolVar(&f.requireMatch, "require-match", false, "fail unless at least one replacement is made")
	fs.IntVar(&f.expect, "expect", 0, "fail unless exactly this many replacements are made")
	fs.BoolVar(&f.failOnChange, "fail-on-change", false, "fail if any input would change")
}

func addInputFlags(fs *pflag.FlagSet, f *inputFlags) {
	fs.BoolVar(&f.stdinText, "stdin-text", false, "transform stdin itself and write the result to stdout")
	fs.BoolVar(&f.stdinPaths, "stdin-paths", false, "read newline separated paths from stdin")
	fs.BoolVar(&f.files0, "files0", false, "read NUL separated paths from stdin")
	fs.BoolVar(&f.rgJSON, "rg-json", false, "read ripgrep --json output from stdin and only touch its matches")
}

// operation builds the operation described by the flags
func (f operationFlags) operation(find, with string) (operation.Operation, error) {
	if f.limit < 0 {
		return operation.Operation{}, errors.Errorf("%w: --limit must not be negative", errUsage)
	}

	op := operation.Operation{
		Find:              find,
		With:              with,
		Literal:           f.literal,
		IgnoreCase:        f.ignoreCase,
		SmartCase:         f.smartCase,
		Word:              f.word,
		Multiline:         f.multiline,
		DotMatchesNewline: f.dotAll,
		NoUnicode:         f.noUnicode,
		Limit:             f.limit,
	}
	if f.byteRange != "" {
		r, err := text.ParseByteRange(f.byteRange)
		if err != nil {
			return operation.Operation{}, errors.Errorf("%w: --range: %s", errUsage, err.Error())
		}
		op.Range = &r
	}
	return op, nil
}

// apply copies every flag the user set onto p. Flags left at their default
// keep whatever p already holds, so manifests can be overridden piecemeal.
func (f runFlags) apply(fs *pflag.FlagSet, p *operation.Pipeline) error {
	if fs.Changed("dry-run") {
		p.DryRun = f.dryRun
	}
	if fs.Changed("validate-only") {
		p.ValidateOnly = f.validateOnly
	}
	if fs.Changed("include") {
		p.Include = f.include
	}
	if fs.Changed("exclude") {
		p.Exclude = f.exclude
	}
	if fs.Changed("follow-symlinks") {
		p.Symlinks = txn.SymlinkNoFollow
		if f.followSymlinks {
			p.Symlinks = txn.SymlinkFollow
		}
	}
	if fs.Changed("transaction") {
		mode, err := operation.ParseTransactionMode(f.transaction)
		if err != nil {
			return errors.Errorf("%w: --transaction: %s", errUsage, err.Error())
		}
		p.Transaction = mode
	}
	if fs.Changed("continue-on-error") {
		p.ContinueOnError = f.continueOnError
	}
	if fs.Changed("binary") {
		p.ProcessBinary = f.binary
	}
	if fs.Changed("format") {
		format, err := operation.ParseDiffFormat(f.format)
		if err != nil {
			return errors.Errorf("%w: --format: %s", errUsage, err.Error())
		}
		p.DiffFormat = format
	}
	if fs.Changed("require-match") {
		p.Policies.RequireMatch = f.requireMatch
	}
	if fs.Changed("expect") {
		if f.expect < 0 {
			return errors.Errorf("%w: --expect must not be negative", errUsage)
		}
		expect := f.expect
		p.Policies.Expect = &expect
	}
	if fs.Changed("fail-on-change") {
		p.Policies.FailOnChange = f.failOnChange
	}
	if p.ValidateOnly {
		p.DryRun = true
	}
	return nil
}
