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

package txn

import (
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// tempPattern names staged files; they live next to their target so the
// final rename never crosses a filesystem.
const tempPattern = ".rplc-*.tmp"

var ErrSymlink = errors.Base("target is a symbolic link")

// 🔗 SymlinkPolicy decides what happens when a target is a symbolic link
type SymlinkPolicy int

const (
	SymlinkNoFollow SymlinkPolicy = iota // Refuse to stage through a link
	SymlinkFollow                        // Write to the file the link resolves to
)

// String returns a string representation of SymlinkPolicy
func (p SymlinkPolicy) String() string {
	switch p {
	case SymlinkFollow:
		return "follow"
	default:
		return "no_follow"
	}
}

// ParseSymlinkPolicy parses "follow" or "no_follow". The empty string is
// "no_follow".
func ParseSymlinkPolicy(s string) (SymlinkPolicy, error) {
	switch s {
	case "", "no_follow":
		return SymlinkNoFollow, nil
	case "follow":
		return SymlinkFollow, nil
	default:
		return SymlinkNoFollow, errors.Errorf("unknown symlink policy %q (want follow or no_follow)", s)
	}
}

// 📦 Entry is new content waiting in a temp file next to its target.
type Entry struct {
	path   string // path as requested
	target string // file the rename will replace
	temp   string
	policy SymlinkPolicy
}

// 🏭 NewEntry writes content to a temp file beside path and returns the
// staged entry. The temp file carries the target's permission bits. On any
// failure nothing is left on disk.
func NewEntry(path string, content []byte, policy SymlinkPolicy) (*Entry, error) {
	target, err := resolveTarget(path, policy)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, errors.Errorf("checking target: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Errorf("target %s is not a regular file", target)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), tempPattern)
	if err != nil {
		return nil, errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	fail := func(err error) (*Entry, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, err
	}

	if _, err := tmp.Write(content); err != nil {
		return fail(errors.Errorf("writing temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(errors.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return fail(errors.Errorf("setting permissions: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, errors.Errorf("closing temp file: %w", err)
	}

	return &Entry{
		path:   path,
		target: target,
		temp:   tmpPath,
		policy: policy,
	}, nil
}

// Path returns the path the entry was staged for.
func (e *Entry) Path() string { return e.path }

// Target returns the file that will be replaced on commit.
func (e *Entry) Target() string { return e.target }

// TempPath returns where the staged content currently lives.
func (e *Entry) TempPath() string { return e.temp }

// Discard removes the temp file. A missing temp file is not an error.
func (e *Entry) Discard() error {
	if err := os.Remove(e.temp); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("removing temp file %s: %w", e.temp, err)
	}
	return nil
}

// verify checks the temp file is still present and the target still honours
// the symlink policy it was staged under.
func (e *Entry) verify() error {
	if _, err := os.Lstat(e.temp); err != nil {
		return errors.Errorf("staged content for %s: %w", e.path, err)
	}
	target, err := resolveTarget(e.path, e.policy)
	if err != nil {
		return err
	}
	if target != e.target {
		return errors.Errorf("target of %s changed since staging: %s != %s", e.path, target, e.target)
	}
	return nil
}

func (e *Entry) commit() error {
	if err := os.Rename(e.temp, e.target); err != nil {
		return errors.Errorf("renaming temp file onto %s: %w", e.target, err)
	}
	return nil
}

func resolveTarget(path string, policy SymlinkPolicy) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", errors.Errorf("checking target: %w", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return path, nil
	}
	if policy != SymlinkFollow {
		return "", errors.Errorf("%w: %s", ErrSymlink, path)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", errors.Errorf("resolving symlink %s: %w", path, err)
	}
	return resolved, nil
}
