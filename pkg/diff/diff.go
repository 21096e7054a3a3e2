// Package diff renders line-oriented differences between two versions of a file.
//
// Lines produces the full tagged rendering reported for every modified input.
// Unified produces a classic ---/+++/@@ patch for callers that want hunks.
package diff

import (
	"bytes"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Line markers used by Lines.
const (
	MarkEqual  = " "
	MarkDelete = "-"
	MarkInsert = "+"
)

// Lines renders every line of old and new, each prefixed with MarkEqual,
// MarkDelete or MarkInsert and terminated exactly as in its source. The
// second result is false when old and new are equal.
//
// The edit script is minimal over lines. diffmatchpatch is run in line mode
// with no timeout, which keeps it on the exact Myers path.
func Lines(old, new []byte) (string, bool) {
	if bytes.Equal(old, new) {
		return "", false
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lines := dmp.DiffLinesToChars(string(old), string(new))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	out.Grow(len(old) + len(new))
	for _, d := range diffs {
		mark := MarkEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			mark = MarkDelete
		case diffmatchpatch.DiffInsert:
			mark = MarkInsert
		}
		for _, line := range SplitLines(d.Text) {
			out.WriteString(mark)
			out.WriteString(line)
		}
	}

	return out.String(), true
}

// Unified produces a unified patch for old -> new with the given number of
// context lines. It returns "" when the inputs are equal.
func Unified(oldName, newName string, old, new []byte, context int) (string, error) {
	if bytes.Equal(old, new) {
		return "", nil
	}
	if context <= 0 {
		context = 3
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        SplitLines(string(old)),
		B:        SplitLines(string(new)),
		FromFile: oldName,
		ToFile:   newName,
		Context:  context,
	})
}

// SplitLines splits s after every "\n", keeping terminators. A final line
// without a newline is kept as is; an empty string yields no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
