package operation

import (
	"time"

	"github.com/google/uuid"
)

// ResultStatus is the outcome of processing one item
type ResultStatus int

const (
	ResultSuccess ResultStatus = iota
	ResultSkipped
	ResultError
)

// String returns a string representation of ResultStatus
func (s ResultStatus) String() string {
	switch s {
	case ResultSuccess:
		return "success"
	case ResultSkipped:
		return "skipped"
	case ResultError:
		return "error"
	default:
		return "unknown"
	}
}

// SkipReason explains a skipped item.
type SkipReason string

const (
	SkipBinary SkipReason = "binary"
)

// 📄 FileResult describes what happened to one input.
type FileResult struct {
	Path         string
	Status       ResultStatus
	Modified     bool
	Replacements int
	Diff         string // only in dry runs, only when modified
	Err          error
	SkipReason   SkipReason
	Virtual      bool // inline text, no file behind it
}

// 📊 Report collects results in input order. DryRun and ValidateOnly are
// fixed when the run starts.
type Report struct {
	RunID           uuid.UUID
	DryRun          bool
	ValidateOnly    bool
	Inputs          int // items admitted after filtering
	Results         []FileResult
	Committed       bool
	PolicyViolation string
	Duration        time.Duration
}

func newReport(runID uuid.UUID, dryRun, validateOnly bool) *Report {
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	return &Report{
		RunID:        runID,
		DryRun:       dryRun,
		ValidateOnly: validateOnly,
	}
}

func (r *Report) add(res FileResult) {
	r.Results = append(r.Results, res)
}

// Modified counts results that changed content.
func (r *Report) Modified() int {
	n := 0
	for _, res := range r.Results {
		if res.Modified {
			n++
		}
	}
	return n
}

// Replacements sums replacements across results.
func (r *Report) Replacements() int {
	n := 0
	for _, res := range r.Results {
		n += res.Replacements
	}
	return n
}

// Errors counts error results.
func (r *Report) Errors() int {
	return r.count(ResultError)
}

// Skipped counts skipped results.
func (r *Report) Skipped() int {
	return r.count(ResultSkipped)
}

// HasErrors reports whether any item failed.
func (r *Report) HasErrors() bool {
	return r.Errors() > 0
}

// Failed reports whether the run as a whole failed: an item errored or a
// policy was violated.
func (r *Report) Failed() bool {
	return r.HasErrors() || r.PolicyViolation != ""
}

func (r *Report) count(s ResultStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}
