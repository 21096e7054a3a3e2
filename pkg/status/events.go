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

package status

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/walteh/rplc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// SchemaVersion is bumped whenever an event field changes meaning.
const SchemaVersion = "1"

// Event types, written in each event's "type" field.
const (
	EventRunStart = "run_start"
	EventFile     = "file"
	EventRunEnd   = "run_end"
)

// PolicyInfo echoes the configured policies in RunStart.
type PolicyInfo struct {
	RequireMatch bool `json:"require_match"`
	Expect       *int `json:"expect"`
	FailOnChange bool `json:"fail_on_change"`
}

// 🚀 RunStart is the first event of a run
type RunStart struct {
	Type            string     `json:"type"`
	SchemaVersion   string     `json:"schema_version"`
	ToolVersion     string     `json:"tool_version"`
	RunID           string     `json:"run_id"`
	Mode            string     `json:"mode"`       // "cli" or "apply"
	InputMode       string     `json:"input_mode"` // "args", "stdin-paths", "files0", "stdin-text", "rg-json"
	TransactionMode string     `json:"transaction_mode"`
	DryRun          bool       `json:"dry_run"`
	ValidateOnly    bool       `json:"validate_only"`
	Policies        PolicyInfo `json:"policies"`
}

// 📄 FileEvent reports one processed input
type FileEvent struct {
	Type         string `json:"type"`
	Status       string `json:"status"` // "success", "skipped" or "error"
	Path         string `json:"path"`
	Modified     bool   `json:"modified"`
	Replacements int    `json:"replacements"`
	Diff         string `json:"diff,omitempty"`
	Virtual      bool   `json:"is_virtual,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Code         string `json:"code,omitempty"`
	Message      string `json:"message,omitempty"`
}

// 🏁 RunEnd is the last event of a run
type RunEnd struct {
	Type              string  `json:"type"`
	RunID             string  `json:"run_id"`
	TotalFiles        int     `json:"total_files"`
	TotalProcessed    int     `json:"total_processed"`
	TotalModified     int     `json:"total_modified"`
	TotalReplacements int     `json:"total_replacements"`
	HasErrors         bool    `json:"has_errors"`
	PolicyViolation   *string `json:"policy_violation"`
	Committed         bool    `json:"committed"`
	DurationMS        int64   `json:"duration_ms"`
	ExitCode          int     `json:"exit_code"`
}

// NewRunStart describes p before it runs.
func NewRunStart(toolVersion, mode, inputMode string, p operation.Pipeline) RunStart {
	return RunStart{
		Type:            EventRunStart,
		SchemaVersion:   SchemaVersion,
		ToolVersion:     toolVersion,
		RunID:           p.RunID.String(),
		Mode:            mode,
		InputMode:       inputMode,
		TransactionMode: p.Transaction.String(),
		DryRun:          p.DryRun || p.ValidateOnly,
		ValidateOnly:    p.ValidateOnly,
		Policies: PolicyInfo{
			RequireMatch: p.Policies.RequireMatch,
			Expect:       p.Policies.Expect,
			FailOnChange: p.Policies.FailOnChange,
		},
	}
}

// NewFileEvent converts a result.
func NewFileEvent(res operation.FileResult) FileEvent {
	ev := FileEvent{
		Type:         EventFile,
		Status:       res.Status.String(),
		Path:         res.Path,
		Modified:     res.Modified,
		Replacements: res.Replacements,
		Diff:         res.Diff,
		Virtual:      res.Virtual,
	}
	switch res.Status {
	case operation.ResultSkipped:
		ev.Reason = string(res.SkipReason)
	case operation.ResultError:
		ev.Code = operation.Code(res.Err)
		if res.Err != nil {
			ev.Message = res.Err.Error()
		}
	}
	return ev
}

// NewRunEnd summarises a finished run.
func NewRunEnd(report *operation.Report, runErr error) RunEnd {
	ev := RunEnd{
		Type:     EventRunEnd,
		ExitCode: ExitCode(report, runErr),
	}
	if report == nil {
		ev.HasErrors = true
		return ev
	}

	ev.RunID = report.RunID.String()
	ev.TotalFiles = report.Inputs
	ev.TotalProcessed = len(report.Results) - report.Skipped()
	ev.TotalModified = report.Modified()
	ev.TotalReplacements = report.Replacements()
	ev.HasErrors = report.HasErrors() || runErr != nil
	ev.Committed = report.Committed
	ev.DurationMS = report.Duration.Milliseconds()
	if report.PolicyViolation != "" {
		v := report.PolicyViolation
		ev.PolicyViolation = &v
	}
	return ev
}

// 📣 Emitter writes events as JSON lines. It is safe for concurrent use.
type Emitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewEmitter creates an emitter writing to w
func NewEmitter(w io.Writer) *Emitter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Emitter{enc: enc}
}

// Emit writes one event followed by a newline.
func (e *Emitter) Emit(ev any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enc.Encode(ev); err != nil {
		return errors.Errorf("encoding event: %w", err)
	}
	return nil
}
