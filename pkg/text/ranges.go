package text

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// ByteRange is a half-open span [Start, End) of byte offsets into a buffer.
type ByteRange struct {
	Start int `json:"start" yaml:"start" hcl:"start"`
	End   int `json:"end" yaml:"end" hcl:"end"`
}

// String returns the range as "start:end"
func (r ByteRange) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// Validate checks that the range is well formed.
func (r ByteRange) Validate() error {
	if r.Start < 0 {
		return errors.Errorf("range start %d is negative", r.Start)
	}
	if r.End < r.Start {
		return errors.Errorf("range end %d is before start %d", r.End, r.Start)
	}
	return nil
}

// Contains reports whether the span [start, end) lies entirely inside r.
func (r ByteRange) Contains(start, end int) bool {
	return start >= r.Start && end <= r.End
}

// ParseByteRange parses "start:end" as produced by ByteRange.String.
func ParseByteRange(s string) (ByteRange, error) {
	var r ByteRange
	if _, err := fmt.Sscanf(s, "%d:%d", &r.Start, &r.End); err != nil {
		return ByteRange{}, errors.Errorf("parsing range %q: %w", s, err)
	}
	if err := r.Validate(); err != nil {
		return ByteRange{}, err
	}
	return r, nil
}

func inAnyRange(ranges []ByteRange, start, end int) bool {
	for _, r := range ranges {
		if r.Contains(start, end) {
			return true
		}
	}
	return false
}
