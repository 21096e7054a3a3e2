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

package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/walteh/rplc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// VersionInfo is what rplc reports about its own build. Version is also the
// tool_version of every run_start event.
type VersionInfo struct {
	Version     string `json:"version"`
	Revision    string `json:"revision,omitempty"`
	EventSchema string `json:"event_schema"`
	GoVersion   string `json:"go_version"`
}

// GetVersionInfo reads the module version and short VCS revision from the
// build info. A revision built from a dirty tree ends in "+dirty".
func GetVersionInfo() *VersionInfo {
	info := &VersionInfo{
		Version:     "dev",
		EventSchema: status.SchemaVersion,
		GoVersion:   runtime.Version(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}

	dirty := false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
			if len(info.Revision) > 12 {
				info.Revision = info.Revision[:12]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && info.Revision != "" {
		info.Revision += "+dirty"
	}

	return info
}

// FormatVersion renders v for the terminal
func FormatVersion(v *VersionInfo) string {
	rev := v.Revision
	if rev == "" {
		rev = "unknown"
	}
	return fmt.Sprintf("🚀 rplc %s (%s)\n   events: schema %s\n   go:     %s\n", v.Version, rev, v.EventSchema, v.GoVersion)
}

func newVersionCmd(s *streams, global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := GetVersionInfo()
			if global.jsonOut {
				if err := json.NewEncoder(s.out).Encode(info); err != nil {
					return errors.Errorf("encoding version: %w", err)
				}
				return nil
			}
			fmt.Fprint(s.out, FormatVersion(info))
			return nil
		},
	}
}
