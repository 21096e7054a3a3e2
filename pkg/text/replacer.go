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

package text

import (
	"bytes"

	"gitlab.com/tozd/go/errors"
)

// 🔧 Options controls how a pattern is matched and how many matches are replaced
type Options struct {
	Literal           bool // Treat the pattern as raw bytes
	IgnoreCase        bool // Case-insensitive matching
	SmartCase         bool // Case-insensitive unless the pattern has an uppercase character
	WholeWord         bool // Only match on word boundaries
	Multiline         bool // ^ and $ match at line boundaries
	DotMatchesNewline bool // . also matches \n
	NoUnicode         bool // Smart-case only considers ASCII uppercase
	MaxReplacements   int  // 0 means unlimited
}

// 🔄 Replacer applies one matcher with a verbatim replacement and a cap.
//
// A Replacer holds no per-call state and may be shared between goroutines.
type Replacer struct {
	matcher     Matcher
	replacement []byte
	max         int
}

// 🏭 NewReplacer validates the replacement and compiles the pattern.
func NewReplacer(pattern, replacement string, opts Options) (*Replacer, error) {
	if err := ValidateReplacement(replacement); err != nil {
		return nil, err
	}
	if opts.MaxReplacements < 0 {
		return nil, errors.Errorf("max replacements must not be negative, got %d", opts.MaxReplacements)
	}

	matcher, err := NewMatcher(pattern, opts)
	if err != nil {
		return nil, err
	}

	return &Replacer{
		matcher:     matcher,
		replacement: []byte(replacement),
		max:         opts.MaxReplacements,
	}, nil
}

// Matcher returns the matcher selected at construction.
func (r *Replacer) Matcher() Matcher {
	return r.matcher
}

// CountMatches returns the number of matches in b, ignoring the cap.
func (r *Replacer) CountMatches(b []byte) int {
	return len(r.matcher.FindAll(b, -1))
}

// ReplaceWithCount replaces up to the cap of leftmost matches in b and returns
// the new content with the number of replacements made. With no match the
// input slice itself is returned.
func (r *Replacer) ReplaceWithCount(b []byte) ([]byte, int) {
	n := -1
	if r.max > 0 {
		n = r.max
	}
	return r.splice(b, r.matcher.FindAll(b, n))
}

// ReplaceInRanges is ReplaceWithCount restricted to matches that lie entirely
// inside a range of every non-nil set. A nil set places no restriction.
func (r *Replacer) ReplaceInRanges(b []byte, sets ...[]ByteRange) ([]byte, int) {
	all := r.matcher.FindAll(b, -1)
	eligible := all[:0]
	for _, m := range all {
		if r.max > 0 && len(eligible) == r.max {
			break
		}
		if allowed(sets, m[0], m[1]) {
			eligible = append(eligible, m)
		}
	}
	return r.splice(b, eligible)
}

// CountInRanges counts the matches ReplaceInRanges would consider, ignoring the cap.
func (r *Replacer) CountInRanges(b []byte, sets ...[]ByteRange) int {
	count := 0
	for _, m := range r.matcher.FindAll(b, -1) {
		if allowed(sets, m[0], m[1]) {
			count++
		}
	}
	return count
}

func (r *Replacer) splice(b []byte, spans [][2]int) ([]byte, int) {
	if len(spans) == 0 {
		return b, 0
	}

	var buf bytes.Buffer
	buf.Grow(len(b) + len(spans)*len(r.replacement))

	last := 0
	for _, s := range spans {
		buf.Write(b[last:s[0]])
		buf.Write(r.replacement)
		last = s[1]
	}
	buf.Write(b[last:])

	return buf.Bytes(), len(spans)
}

func allowed(sets [][]ByteRange, start, end int) bool {
	for _, set := range sets {
		if set == nil {
			continue
		}
		if !inAnyRange(set, start, end) {
			return false
		}
	}
	return true
}
