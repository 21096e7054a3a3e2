package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rplc/pkg/log"
	"github.com/walteh/rplc/pkg/operation"
	"github.com/walteh/rplc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🏃 execute collects the inputs, runs p over them and reports the outcome
// either as console output or as JSON events.
func execute(cmd *cobra.Command, s *streams, global globalFlags, inf inputFlags, mode string, p operation.Pipeline, paths []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	items, inputMode, err := collectInputs(ctx, inf, paths, s.in)
	if err != nil {
		return err
	}

	textMode := inputMode == modeStdinText
	if global.jsonOut && textMode && !p.DryRun && !p.ValidateOnly {
		return errors.Errorf("%w: --json cannot share stdout with --stdin-text output; add --dry-run", errUsage)
	}

	if p.RunID == uuid.Nil {
		p.RunID = uuid.New()
	}

	// Text output owns stdout, so people get their messages on stderr.
	console := s.out
	if textMode {
		console = s.err
	}

	opts := operation.Options{}
	if textMode {
		opts.Output = s.out
	}

	var (
		emitter *status.Emitter
		ulog    *log.Logger
		started bool
	)
	start := func() {
		if started {
			return
		}
		started = true
		if emitter != nil {
			emit(ctx, emitter, status.NewRunStart(GetVersionInfo().Version, mode, inputMode, p))
		} else {
			ulog.RunHeader(p)
		}
	}

	if global.jsonOut {
		emitter = status.NewEmitter(s.out)
		opts.OnResult = func(res operation.FileResult) {
			start()
			emit(ctx, emitter, status.NewFileEvent(res))
		}
	} else {
		ulog = log.New(console, *logger)
		opts.OnResult = func(res operation.FileResult) {
			start()
			ulog.LogResult(ctx, res, p.DryRun || p.ValidateOnly)
		}
	}

	report, runErr := operation.NewRunner(opts).Execute(ctx, p, items)
	if report == nil {
		return runErr
	}
	start()

	if emitter != nil {
		emit(ctx, emitter, status.NewRunEnd(report, runErr))
		if runErr != nil {
			fmt.Fprintln(s.err, status.NewDefaultFileFormatter().FormatError(runErr))
		}
	} else {
		ulog.Summary(report, runErr)
	}

	if status.ExitCode(report, runErr) != exitOK {
		if runErr != nil {
			return errors.Errorf("%w: %s", errRunFailed, runErr.Error())
		}
		return errRunFailed
	}
	return nil
}

func emit(ctx context.Context, em *status.Emitter, ev any) {
	if err := em.Emit(ev); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("writing event")
	}
}
