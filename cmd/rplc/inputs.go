package main

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/walteh/rplc/pkg/input"
	"gitlab.com/tozd/go/errors"
)

// Input modes, as reported in the run_start event
const (
	modeArgs       = "args"
	modeStdinPaths = "stdin-paths"
	modeFiles0     = "files0"
	modeStdinText  = "stdin-text"
	modeRgJSON     = "rg-json"
)

// 📥 collectInputs resolves the input mode and reads every item.
//
// An explicit mode flag always reads stdin and cannot be mixed with path
// arguments. Without one, path arguments win; with none, piped stdin is read
// as newline separated paths.
func collectInputs(ctx context.Context, f inputFlags, paths []string, stdin io.Reader) ([]input.Item, string, error) {
	mode, err := f.mode()
	if err != nil {
		return nil, "", err
	}

	if mode != "" {
		if len(paths) > 0 {
			return nil, "", errors.Errorf("%w: --%s cannot be combined with path arguments", errUsage, mode)
		}
		if stdin == nil {
			return nil, "", errors.Errorf("%w: --%s needs stdin", errUsage, mode)
		}
	} else {
		switch {
		case len(paths) > 0:
			mode = modeArgs
		case stdinPiped(stdin):
			mode = modeStdinPaths
		default:
			// Nothing to read; the engine reports the empty input set.
			return nil, modeArgs, nil
		}
	}

	zerolog.Ctx(ctx).Debug().Str("input_mode", mode).Msg("collecting inputs")

	var items []input.Item
	switch mode {
	case modeArgs:
		items = make([]input.Item, 0, len(paths))
		for _, p := range paths {
			items = append(items, input.Path(p))
		}
	case modeStdinPaths:
		items, err = input.ReadPaths(stdin, input.DelimNewline)
	case modeFiles0:
		items, err = input.ReadPaths(stdin, input.DelimNUL)
	case modeStdinText:
		var it input.Item
		it, err = input.ReadText(stdin)
		items = []input.Item{it}
	case modeRgJSON:
		items, err = input.ReadRipgrep(ctx, stdin)
	}
	if err != nil {
		return nil, "", errors.Errorf("reading %s input: %w", mode, err)
	}

	return items, mode, nil
}

// mode returns the explicitly requested input mode, or "" for auto.
func (f inputFlags) mode() (string, error) {
	var set []string
	if f.stdinText {
		set = append(set, modeStdinText)
	}
	if f.stdinPaths {
		set = append(set, modeStdinPaths)
	}
	if f.files0 {
		set = append(set, modeFiles0)
	}
	if f.rgJSON {
		set = append(set, modeRgJSON)
	}

	switch len(set) {
	case 0:
		return "", nil
	case 1:
		return set[0], nil
	default:
		return "", errors.Errorf("%w: only one input mode may be given, got --%s and --%s", errUsage, set[0], set[1])
	}
}

// stdinPiped reports whether stdin carries data rather than a terminal.
// Readers that are not files (tests, pipes wrapped by callers) count as piped.
func stdinPiped(stdin io.Reader) bool {
	if stdin == nil {
		return false
	}
	f, ok := stdin.(*os.File)
	if !ok {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}
