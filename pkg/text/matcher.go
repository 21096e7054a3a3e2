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

// Package text turns find/replace rules into byte-level edits.
package text

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrEmptyPattern   = errors.Base("pattern must not be empty")
	ErrInvalidPattern = errors.Base("invalid pattern")
)

// MatcherKind names the variant a Matcher was built as.
type MatcherKind int

const (
	MatcherRegex MatcherKind = iota
	MatcherLiteral
)

// String returns a string representation of MatcherKind
func (k MatcherKind) String() string {
	switch k {
	case MatcherLiteral:
		return "literal"
	default:
		return "regex"
	}
}

// 🔍 Matcher locates non-overlapping, leftmost-first matches in a byte buffer.
//
// The set of implementations is closed: a compiled-pattern matcher and a
// literal-substring matcher, picked once by NewMatcher.
type Matcher interface {
	// FindAll returns up to n match spans as [start, end) pairs. n < 0 means all.
	FindAll(b []byte, n int) [][2]int
	// Kind reports which variant this is.
	Kind() MatcherKind

	sealed()
}

// regexMatcher is the compiled-pattern variant. With word set, a match must
// also start and end on a word boundary.
type regexMatcher struct {
	re        *regexp.Regexp
	word      bool
	asciiWord bool
}

func (m *regexMatcher) FindAll(b []byte, n int) [][2]int {
	if m.word {
		return m.findWords(b, n)
	}
	locs := m.re.FindAllIndex(b, n)
	out := make([][2]int, len(locs))
	for i, loc := range locs {
		out[i] = [2]int{loc[0], loc[1]}
	}
	return out
}

// findWords walks the leftmost matches and keeps those bounded by word
// boundaries. A rejected candidate restarts the search one character past
// its start.
func (m *regexMatcher) findWords(b []byte, n int) [][2]int {
	var out [][2]int
	pos, lastEnd := 0, -1
	for pos <= len(b) && (n < 0 || len(out) < n) {
		loc := m.re.FindIndex(b[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]

		// an empty match may not touch the previous match
		adjacent := start == end && start == lastEnd
		if !adjacent && m.boundary(b, start) && m.boundary(b, end) {
			out = append(out, [2]int{start, end})
			lastEnd = end
			if end > start {
				pos = end
				continue
			}
		}

		if start >= len(b) {
			break
		}
		_, size := utf8.DecodeRune(b[start:])
		pos = start + size
	}
	return out
}

// boundary reports whether exactly one side of offset i is a word character.
func (m *regexMatcher) boundary(b []byte, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRune(b[:i])
		before = isWordRune(r, m.asciiWord)
	}
	if i < len(b) {
		r, _ := utf8.DecodeRune(b[i:])
		after = isWordRune(r, m.asciiWord)
	}
	return before != after
}

// isWordRune matches \w: letters, marks, decimal digits and connector
// punctuation, or only [0-9A-Za-z_] with asciiOnly.
func isWordRune(r rune, asciiOnly bool) bool {
	if r < utf8.RuneSelf {
		return r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
	}
	if asciiOnly || r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || unicode.Is(unicode.Pc, r)
}

func (m *regexMatcher) Kind() MatcherKind { return MatcherRegex }
func (m *regexMatcher) sealed()           {}

// literalMatcher is the raw byte search variant
type literalMatcher struct {
	needle []byte
}

func (m *literalMatcher) FindAll(b []byte, n int) [][2]int {
	var out [][2]int
	offset := 0
	for n < 0 || len(out) < n {
		idx := bytes.Index(b[offset:], m.needle)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(m.needle)
		out = append(out, [2]int{start, end})
		offset = end
	}
	return out
}

func (m *literalMatcher) Kind() MatcherKind { return MatcherLiteral }
func (m *literalMatcher) sealed()           {}

// 🏭 NewMatcher builds the matcher for pattern under opts.
//
// The literal variant is used only when it is equivalent to the compiled one:
// literal mode without ignore-case, smart-case or whole-word. Word boundaries
// follow Unicode word characters unless NoUnicode restricts them to ASCII.
func NewMatcher(pattern string, opts Options) (Matcher, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	if opts.Literal && !opts.IgnoreCase && !opts.SmartCase && !opts.WholeWord {
		return &literalMatcher{needle: []byte(pattern)}, nil
	}

	expr := pattern
	if opts.Literal {
		expr = regexp.QuoteMeta(expr)
	}

	var flags strings.Builder
	if opts.IgnoreCase || (opts.SmartCase && !hasUpper(pattern, opts.NoUnicode)) {
		flags.WriteString("i")
	}
	if opts.Multiline {
		flags.WriteString("m")
	}
	if opts.DotMatchesNewline {
		flags.WriteString("s")
	}
	if flags.Len() > 0 {
		expr = "(?" + flags.String() + ")" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalidPattern, err)
	}

	return &regexMatcher{re: re, word: opts.WholeWord, asciiWord: opts.NoUnicode}, nil
}

// hasUpper reports whether pattern contains an uppercase character.
// With asciiOnly only A-Z count.
func hasUpper(pattern string, asciiOnly bool) bool {
	for _, r := range pattern {
		if asciiOnly {
			if r >= 'A' && r <= 'Z' {
				return true
			}
			continue
		}
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
