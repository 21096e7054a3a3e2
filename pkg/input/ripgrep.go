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

package input

import (
	"bufio"
	"context"
	"encoding/base64"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/walteh/rplc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// maxRipgrepLine bounds a single NDJSON message. Match messages carry the
// matched lines, which can be long for minified files.
const maxRipgrepLine = 64 << 20

// 🔍 ReadRipgrep reads the output of `rg --json` and returns one item per
// file, in order of first appearance.
//
// Each submatch becomes the byte range [absolute_offset+start,
// absolute_offset+end) of the file. Ranges for a path seen more than once are
// merged into a single item. A file announced by a begin message with no
// submatches becomes a plain path item. Lines that are not ripgrep messages
// are skipped.
func ReadRipgrep(ctx context.Context, r io.Reader) ([]Item, error) {
	logger := zerolog.Ctx(ctx)

	var (
		order  []string
		ranges = map[string][]text.ByteRange{}
	)
	see := func(path string) {
		if _, ok := ranges[path]; !ok {
			order = append(order, path)
			ranges[path] = nil
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRipgrepLine)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			logger.Debug().Int("line", lineNo).Msg("skipping non-json ripgrep line")
			continue
		}

		msg := gjson.Parse(line)
		kind := msg.Get("type").String()
		if kind != "begin" && kind != "match" {
			continue
		}

		path, ok := ripgrepPath(msg.Get("data.path"))
		if !ok {
			logger.Debug().Int("line", lineNo).Str("type", kind).Msg("skipping ripgrep message without path")
			continue
		}
		see(path)

		if kind != "match" {
			continue
		}

		base := int(msg.Get("data.absolute_offset").Int())
		msg.Get("data.submatches").ForEach(func(_, sub gjson.Result) bool {
			start, end := sub.Get("start"), sub.Get("end")
			if !start.Exists() || !end.Exists() {
				return true
			}
			ranges[path] = append(ranges[path], text.ByteRange{
				Start: base + int(start.Int()),
				End:   base + int(end.Int()),
			})
			return true
		})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Errorf("reading ripgrep json: %w", err)
	}

	items := make([]Item, 0, len(order))
	for _, path := range order {
		if rs := ranges[path]; len(rs) > 0 {
			items = append(items, Matches(path, rs))
		} else {
			items = append(items, Path(path))
		}
	}

	logger.Debug().Int("files", len(items)).Msg("collected ripgrep items")
	return items, nil
}

// ripgrepPath decodes ripgrep's arbitrary-data object: {"text": ...} for
// valid UTF-8 or {"bytes": base64} otherwise.
func ripgrepPath(v gjson.Result) (string, bool) {
	if t := v.Get("text"); t.Exists() {
		return t.String(), t.String() != ""
	}
	if b := v.Get("bytes"); b.Exists() {
		raw, err := base64.StdEncoding.DecodeString(b.String())
		if err != nil || len(raw) == 0 {
			return "", false
		}
		return string(raw), true
	}
	return "", false
}
