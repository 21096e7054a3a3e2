package text

import (
	"gitlab.com/tozd/go/errors"
)

var ErrInvalidReplacement = errors.Base("invalid replacement")

// ValidateReplacement pre-checks a replacement template for malformed
// capture-group syntax.
//
// Replacements are never expanded: a well formed "$1" or "${name}" is
// accepted and inserted as written. Only an unterminated or empty "${...}"
// is rejected. "$$" is treated as an escaped dollar.
func ValidateReplacement(replacement string) error {
	for i := 0; i < len(replacement); i++ {
		if replacement[i] != '$' || i+1 >= len(replacement) {
			continue
		}
		switch replacement[i+1] {
		case '$':
			i++
		case '{':
			end := i + 2
			for end < len(replacement) && replacement[end] != '}' {
				end++
			}
			if end >= len(replacement) {
				return errors.Errorf("%w: unterminated group reference at byte %d", ErrInvalidReplacement, i)
			}
			name := replacement[i+2 : end]
			if name == "" || !isGroupName(name) {
				return errors.Errorf("%w: bad group reference %q at byte %d", ErrInvalidReplacement, replacement[i:end+1], i)
			}
			i = end
		}
	}
	return nil
}

// CaptureReferences returns every "$name" or "${name}" reference in
// replacement, in order. These are inserted verbatim, so callers use this
// to warn about templates that look like they expect expansion.
func CaptureReferences(replacement string) []string {
	var refs []string
	for i := 0; i < len(replacement); i++ {
		if replacement[i] != '$' || i+1 >= len(replacement) {
			continue
		}
		switch c := replacement[i+1]; {
		case c == '$':
			i++
		case c == '{':
			end := i + 2
			for end < len(replacement) && replacement[end] != '}' {
				end++
			}
			if end < len(replacement) && isGroupName(replacement[i+2:end]) {
				refs = append(refs, replacement[i:end+1])
				i = end
			}
		case isNameByte(c):
			end := i + 1
			for end < len(replacement) && isNameByte(replacement[end]) {
				end++
			}
			refs = append(refs, replacement[i:end])
			i = end - 1
		}
	}
	return refs
}

func isGroupName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
