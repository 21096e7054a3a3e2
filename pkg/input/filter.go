package input

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/rplc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

var ErrBadGlob = errors.Base("malformed glob pattern")

// 🧹 Filter keeps the file items matching at least one include pattern (all
// of them when include is empty) and none of the exclude patterns. Inline
// text items always pass. Patterns without a '/' are also tried against the
// base name, so "*.go" matches "pkg/a.go".
func Filter(items []Item, include, exclude []string) ([]Item, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("%w: %q", ErrBadGlob, p)
		}
	}

	if len(include) == 0 && len(exclude) == 0 {
		return items, nil
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Virtual() {
			out = append(out, it)
			continue
		}
		name := path.Clean(filepath.ToSlash(it.Path))
		if len(include) > 0 && !matchAny(include, name) {
			continue
		}
		if matchAny(exclude, name) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func matchAny(patterns []string, name string) bool {
	base := path.Base(name)
	for _, p := range patterns {
		if doublestar.MatchUnvalidated(p, name) {
			return true
		}
		if !strings.Contains(p, "/") && doublestar.MatchUnvalidated(p, base) {
			return true
		}
	}
	return false
}

// Dedupe collapses items naming the same cleaned path into the first of them,
// so a file is read and staged once per run. Match hints of the duplicates are
// merged; a plain path item lifts every restriction. Inline text items are
// kept as they are.
func Dedupe(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, it := range items {
		if it.Virtual() {
			out = append(out, it)
			continue
		}
		key := filepath.Clean(it.Path)
		idx, ok := seen[key]
		if !ok {
			seen[key] = len(out)
			out = append(out, it)
			continue
		}

		first := &out[idx]
		switch {
		case first.Kind == KindPath || first.Ranges == nil:
		case it.Kind == KindPath || it.Ranges == nil:
			first.Kind = KindPath
			first.Ranges = nil
		default:
			first.Ranges = append(append([]text.ByteRange{}, first.Ranges...), it.Ranges...)
		}
	}
	return out
}
