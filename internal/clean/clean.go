// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clean removes compiled byproducts and the vendored or generated
// sources a native build leaves behind in the source tree.
package clean

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/qiniu/x/log"
)

// Suffixes classifies compiled, log and archive byproducts by file name ending.
var Suffixes = []string{
	"tar.gz",
	".so.1",
	".so",
	".log",
	".a",
}

// Targets lists downloaded, vendored and generated artifacts, relative to the
// source root. Each one is removed whether it is a file or a directory.
var Targets = []string{
	"build",
	"External/rapidjson-1.1.0",
	"External/catch/catch",
	"External/YAeHMOP/tmp",
	"External/YAeHMOP/src",
	"External/CoordGen/maeparser",
	"External/CoordGen/coordgen",
	"External/YAeHMOP/yaehmop",
	"lib",
	"rdkit/Chem/inchi.py",
	"Code/GraphMol/SLNParse/lex.yysln.cpp",
	"Code/GraphMol/SLNParse/sln.tab.cpp",
	"Code/GraphMol/SLNParse/sln.tab.hpp",
	"Code/GraphMol/SmilesParse/lex.yysmarts.cpp",
	"Code/GraphMol/SmilesParse/lex.yysmiles.cpp",
	"Code/GraphMol/SmilesParse/smarts.tab.cpp",
	"Code/GraphMol/SmilesParse/smarts.tab.hpp",
	"Code/GraphMol/SmilesParse/smiles.tab.cpp",
	"Code/GraphMol/SmilesParse/smiles.tab.hpp",
	"Code/RDGeneral/RDConfig.h",
	"Code/RDGeneral/export.h",
	"Code/RDGeneral/test.h",
	"Code/RDGeneral/versions.cpp",
	"Code/RDGeneral/versions.h",
	"rdkit/RDPaths.py",
	"Data/eht_parms.dat",
	"Data/templates.mae",
}

// Kind is what a cleanup target turned out to be on disk.
type Kind int

const (
	Missing Kind = iota
	File
	Directory
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	}
	return "missing"
}

// Stat resolves path once. Symlinks are reported as files so that removing
// them never follows into their target.
func Stat(path string) Kind {
	fi, err := os.Lstat(path)
	if err != nil {
		return Missing
	}
	if fi.IsDir() {
		return Directory
	}
	return File
}

// Report collects what a sweep removed and what it failed to remove.
type Report struct {
	Removed []string
	Errors  []error
}

// Err joins the recorded failures, or returns nil.
func (r *Report) Err() error {
	return errors.Join(r.Errors...)
}

func (r *Report) merge(o *Report) {
	r.Removed = append(r.Removed, o.Removed...)
	r.Errors = append(r.Errors, o.Errors...)
}

// Cleaner sweeps Root. Zero-valued Suffixes/Targets fall back to the package defaults.
type Cleaner struct {
	Root     string
	Suffixes []string
	Targets  []string
	DryRun   bool

	// OnRemove, when set, is called with the absolute path of every removal.
	OnRemove func(path string)
}

// New returns a Cleaner for root with the default suffixes and targets.
func New(root string) *Cleaner {
	return &Cleaner{Root: root, Suffixes: Suffixes, Targets: Targets}
}

// Run performs the suffix sweep and then the fixed-list sweep. Failures are
// collected in the report and never stop the remaining items.
func (c *Cleaner) Run() *Report {
	rep := c.SweepSuffixes()
	rep.merge(c.SweepTargets())
	return rep
}

// HasSuffix reports whether name ends with any of suffixes.
func HasSuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// SweepSuffixes deletes every file under Root whose name matches a suffix.
// A symlink to a regular file counts as a file; the link itself is removed
// and its target is left alone unless it matches on its own.
func (c *Cleaner) SweepSuffixes() *Report {
	suffixes := c.Suffixes
	if suffixes == nil {
		suffixes = Suffixes
	}
	rep := &Report{}
	root := c.absRoot()
	var matches []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				rep.Errors = append(rep.Errors, err)
			}
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if HasSuffix(d.Name(), suffixes) && isFile(path, d) {
			matches = append(matches, path)
		}
		return nil
	})
	// Removal waits for the walk so a link is matched before its target goes.
	for _, path := range matches {
		c.remove(rep, path, os.Remove)
	}
	return rep
}

// isFile reports whether d is a regular file or a symlink resolving to one.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// SweepTargets removes each fixed target that exists. Missing targets are skipped.
func (c *Cleaner) SweepTargets() *Report {
	targets := c.Targets
	if targets == nil {
		targets = Targets
	}
	rep := &Report{}
	root := c.absRoot()
	for _, rel := range targets {
		path := filepath.Join(root, filepath.FromSlash(rel))
		kind := Stat(path)
		log.Debugf("target %s: %v", path, kind)
		switch kind {
		case Directory:
			c.remove(rep, path, os.RemoveAll)
		case File:
			c.remove(rep, path, os.Remove)
		}
	}
	return rep
}

func (c *Cleaner) remove(rep *Report, path string, rm func(string) error) {
	if !c.DryRun {
		if err := rm(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				rep.Errors = append(rep.Errors, fmt.Errorf("delete %s: %w", path, err))
			}
			return
		}
	}
	rep.Removed = append(rep.Removed, path)
	if c.OnRemove != nil {
		c.OnRemove(path)
	}
}

func (c *Cleaner) absRoot() string {
	if abs, err := filepath.Abs(c.Root); err == nil {
		return abs
	}
	return c.Root
}
