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
	"github.com/walteh/rplc/pkg/operation"
)

// 📊 FileStatus is the display state of a processed input
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusModified             // Content changed (or would change in a dry run)
	StatusUnchanged            // No replacement changed the content
	StatusSkipped              // Not processed, see the skip reason
	StatusError                // Processing failed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// FromResult derives the display state of res.
func FromResult(res operation.FileResult) FileStatus {
	switch res.Status {
	case operation.ResultError:
		return StatusError
	case operation.ResultSkipped:
		return StatusSkipped
	case operation.ResultSuccess:
		if res.Modified {
			return StatusModified
		}
		return StatusUnchanged
	default:
		return StatusUnknown
	}
}

// ExitCode maps a finished run onto the process exit status: 0 when
// everything succeeded, 1 when an item failed, a policy was violated or the
// commit failed.
func ExitCode(report *operation.Report, runErr error) int {
	if runErr != nil || report == nil || report.Failed() {
		return 1
	}
	return 0
}
