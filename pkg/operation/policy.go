package operation

import (
	"fmt"
)

// Check returns a description of the first violated policy, or "".
func (p Policies) Check(r *Report) string {
	total := r.Replacements()
	if p.RequireMatch && total == 0 {
		return "require_match: no replacements were made"
	}
	if p.Expect != nil && total != *p.Expect {
		return fmt.Sprintf("expect: expected %d replacements, got %d", *p.Expect, total)
	}
	if p.FailOnChange {
		if n := r.Modified(); n > 0 {
			return fmt.Sprintf("fail_on_change: %d file(s) changed", n)
		}
	}
	return ""
}

// Enabled reports whether any policy is set.
func (p Policies) Enabled() bool {
	return p.RequireMatch || p.Expect != nil || p.FailOnChange
}
