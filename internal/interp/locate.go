// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"io/fs"
	"path/filepath"
	"slices"
)

// DefaultPrune lists pseudo filesystems that never hold a shared library and
// are skipped when the walk starts at the filesystem root.
var DefaultPrune = []string{"/proc", "/sys", "/dev"}

// FindFile walks root and returns the first file named name.
// Traversal follows filesystem order; if several candidates exist any of them may be returned.
// Unreadable subtrees are skipped. A missing file is reported with ok == false, never as an error.
func FindFile(root, name string) (path string, ok bool) {
	return FindAny(root, nil, name)
}

// FindAny is like FindFile but stops at the first file matching any of names,
// and never descends into the directories listed in prune.
func FindAny(root string, prune []string, names ...string) (path string, ok bool) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directory or vanished entry: skip it and keep walking.
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != root && (slices.Contains(prune, p) || !searchable(p)) {
				return fs.SkipDir
			}
			return nil
		}
		if slices.Contains(names, d.Name()) {
			path, ok = p, true
			return fs.SkipAll
		}
		return nil
	})
	return
}
