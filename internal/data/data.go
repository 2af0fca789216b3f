// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package data maps the data directories of a source tree onto their
// destinations in the installed package.
package data

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/qiniu/x/log"
)

// Defaults of the packaged project.
const (
	DefaultNamespace = "rdkit"
	DefaultLibDir    = "lib"
)

// DefaultDirs are the top-level directories shipped with the package.
var DefaultDirs = []string{"lib", "Data", "Projects", "Docs", "Scripts"}

// Entry is one destination directory and the files installed into it.
type Entry struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

// Manifest is the ordered list of entries handed to the packaging step.
type Manifest []Entry

// Lookup returns the files of destination dir.
func (m Manifest) Lookup(dir string) ([]string, bool) {
	for _, e := range m {
		if e.Dir == dir {
			return e.Files, true
		}
	}
	return nil, false
}

// Len returns the total number of files in m.
func (m Manifest) Len() int {
	n := 0
	for _, e := range m {
		n += len(e.Files)
	}
	return n
}

// Aggregator groups data files by destination directory.
type Aggregator struct {
	Root      string   // source root; file paths are reported joined to it
	Dirs      []string // data directories, relative to Root
	Namespace string   // package directory most destinations are nested under
	LibDir    string   // the one directory installed bare, outside Namespace
}

// Aggregate is a shorthand for Aggregator.Run.
func Aggregate(root string, dirs []string, namespace, libDir string) Manifest {
	a := &Aggregator{Root: root, Dirs: dirs, Namespace: namespace, LibDir: libDir}
	return a.Run()
}

// Run walks every data directory. Missing or unreadable directories
// contribute nothing. Groups appear in the order their first file was found,
// and files keep discovery order within a group.
func (a *Aggregator) Run() Manifest {
	var m Manifest
	index := make(map[string]int)
	for _, dir := range a.Dirs {
		base := filepath.Join(a.Root, filepath.FromSlash(dir))
		filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Debugf("skipping %s: %v", p, err)
				if d != nil && d.IsDir() && p != base {
					return fs.SkipDir
				}
				return nil
			}
			if !isFile(p, d) {
				return nil
			}
			dest := a.Destination(filepath.Dir(p))
			i, ok := index[dest]
			if !ok {
				i = len(m)
				index[dest] = i
				m = append(m, Entry{Dir: dest})
			}
			m[i].Files = append(m[i].Files, p)
			return nil
		})
	}
	return m
}

// isFile reports whether d is a regular file or a symlink resolving to one.
// Symlinked directories are not descended into.
func isFile(p string, d fs.DirEntry) bool {
	switch t := d.Type(); {
	case t.IsRegular():
		return true
	case t&fs.ModeSymlink != 0:
		fi, err := os.Stat(p)
		return err == nil && fi.Mode().IsRegular()
	}
	return false
}

// Destination maps a directory of the source tree to its install directory.
func (a *Aggregator) Destination(dir string) string {
	rel := dir
	if r, err := filepath.Rel(a.Root, dir); err == nil {
		rel = r
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		rel = ""
	}
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimSuffix(rel, "/")
	if a.LibDir != "" && rel == a.LibDir {
		return rel
	}
	return path.Join(a.Namespace, rel)
}
