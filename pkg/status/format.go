package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/rplc/pkg/operation"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 35 // Base width for filename
	statusWidth  = 15 // Width for status text
	replaceWidth = 6  // Width for the replacement count
)

// FileFormatter defines how results and summaries are rendered
type FileFormatter interface {
	// FormatResult formats one processed input
	FormatResult(res operation.FileResult, dryRun bool) string

	// FormatSummary formats the totals of a finished run
	FormatSummary(report *operation.Report) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter renders plain one-line messages with emojis
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatResult formats a result message with emojis
func (f *DefaultFileFormatter) FormatResult(res operation.FileResult, dryRun bool) string {
	switch FromResult(res) {
	case StatusModified:
		verb := "Modified"
		if dryRun {
			verb = "Would modify"
		}
		return fmt.Sprintf("📝 %s %s (%s)", verb, res.Path, plural(res.Replacements, "replacement"))
	case StatusSkipped:
		return fmt.Sprintf("⏭️  Skipped %s (%s)", res.Path, res.SkipReason)
	case StatusError:
		return fmt.Sprintf("❌ Failed %s: %v", res.Path, res.Err)
	default:
		return fmt.Sprintf("👍 Unchanged %s", res.Path)
	}
}

// FormatSummary formats the run totals
func (f *DefaultFileFormatter) FormatSummary(report *operation.Report) string {
	if report == nil {
		return ""
	}

	parts := []string{
		plural(len(report.Results), "file") + " processed",
		fmt.Sprintf("%d modified", report.Modified()),
		plural(report.Replacements(), "replacement"),
	}
	if n := report.Skipped(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	if n := report.Errors(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}

	prefix := "✅"
	if report.Failed() {
		prefix = "❌"
	}
	return prefix + " " + strings.Join(parts, ", ")
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

// 🎯 FormatLine formats a result as an aligned, colored table row
func FormatLine(res operation.FileResult) string {
	st := FromResult(res)

	var prefix string
	switch st {
	case StatusModified:
		prefix = color.YellowString("⟳")
	case StatusSkipped:
		prefix = color.HiBlackString("↷")
	case StatusError:
		prefix = color.RedString("✗")
	default:
		prefix = color.HiBlackString("-")
	}

	detail := ""
	switch st {
	case StatusSkipped:
		detail = string(res.SkipReason)
	case StatusError:
		detail = color.RedString("%v", res.Err)
	}

	return strings.TrimRight(fmt.Sprintf("%s%s %-*s %-*s %*d %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		nameWidth, res.Path,
		statusWidth, st.String(),
		replaceWidth, res.Replacements,
		detail,
	), " ")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
