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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/rplc/pkg/operation"
	"github.com/walteh/rplc/pkg/status"
)

// diffIndent prefixes every rendered diff line
const diffIndent = "      "

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	formatter status.FileFormatter
	mu        sync.Mutex
}

// 🏭 New creates a new logger. Console lines go to console, structured
// lines go to zlog.
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:      zlog,
		console:   console,
		formatter: status.NewDefaultFileFormatter(),
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 RunHeader prints the header for a pipeline and its mode banner
func (l *Logger) RunHeader(p operation.Pipeline) {
	l.Header(fmt.Sprintf("applying %d operation(s)", len(p.Operations)))

	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case p.ValidateOnly:
		l.printer(pterm.Warning, "VALIDATION RUN").Println("nothing will be written")
	case p.DryRun:
		l.printer(pterm.Warning, "DRY RUN").Println("nothing will be written")
	}
}

// 📝 LogResult prints one processed input and mirrors it to zerolog
func (l *Logger) LogResult(ctx context.Context, res operation.FileResult, dryRun bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, status.FormatLine(res))
	if res.Diff != "" {
		l.writeDiff(res.Diff)
	}

	ev := l.zlog.Info()
	if res.Status == operation.ResultError {
		ev = l.zlog.Error().Err(res.Err)
	}
	ev.Str("path", res.Path).
		Str("status", status.FromResult(res).String()).
		Int("replacements", res.Replacements).
		Bool("dry_run", dryRun).
		Msg(l.formatter.FormatResult(res, dryRun))
}

func (l *Logger) writeDiff(diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			body = color.New(color.Bold).Sprint(body)
		case strings.HasPrefix(body, "@@"):
			body = color.CyanString("%s", body)
		case strings.HasPrefix(body, "+"):
			body = color.GreenString("%s", body)
		case strings.HasPrefix(body, "-"):
			body = color.RedString("%s", body)
		}
		fmt.Fprintln(l.console, diffIndent+body)
	}
}

// 📊 Summary prints the totals of a finished run
func (l *Logger) Summary(report *operation.Report, runErr error) {
	if report == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console)
	l.printer(pterm.Info, "SUMMARY").Println(l.formatter.FormatSummary(report))

	if report.PolicyViolation != "" {
		l.printer(pterm.Error, "POLICY").Println(report.PolicyViolation)
	}
	if runErr != nil {
		pterm.Error.WithWriter(l.console).Println(runErr.Error())
	}

	switch {
	case report.ValidateOnly:
		l.printer(pterm.Success, "VALID").Println("operations and inputs are valid")
	case report.Committed:
		l.printer(pterm.Success, "COMMITTED").Printfln("%d file(s) written", report.Modified())
	case report.DryRun:
		l.printer(pterm.Info, "DRY RUN").Println("no files were written")
	}

	l.zlog.Info().
		Str("run_id", report.RunID.String()).
		Int("files", len(report.Results)).
		Int("modified", report.Modified()).
		Int("replacements", report.Replacements()).
		Int("errors", report.Errors()).
		Bool("committed", report.Committed).
		Dur("duration", report.Duration).
		Msg("run complete")
}

// printer keeps the style of base while swapping its label and writer
func (l *Logger) printer(base pterm.PrefixPrinter, label string) *pterm.PrefixPrinter {
	return base.WithWriter(l.console).WithPrefix(pterm.Prefix{Text: label, Style: base.Prefix.Style})
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("rplc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
