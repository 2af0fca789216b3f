// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package interp locates the host Python runtime that the native extension is
// built against and turns it into cmake configure arguments.
package interp

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/qiniu/x/log"
	"golang.org/x/mod/semver"
)

// DefaultExecutable is the runtime looked up in PATH when none is configured.
const DefaultExecutable = "python3"

const versionScript = "import sys; print('%d.%d.%d' % sys.version_info[:3])"

var (
	ErrNoRuntime     = errors.New("runtime executable not found")
	ErrBadVersion    = errors.New("unrecognized runtime version")
	ErrRuntimeTooOld = errors.New("runtime older than required")
)

// Runtime describes a resolved interpreter.
type Runtime struct {
	Executable string // absolute path
	Version    string // canonical semver, e.g. "v3.11.4"
}

// Paths is what the configure step needs to know about the runtime.
// Library is empty when no shared library was found, which is a normal outcome.
type Paths struct {
	Library    string
	Executable string
}

// HasLibrary reports whether the shared library was found.
func (p Paths) HasLibrary() bool {
	return p.Library != ""
}

// Options controls Locate.
type Options struct {
	Executable string   // name or path of the runtime; DefaultExecutable if empty
	Root       string   // where to search for the shared library; "/" if empty
	Prune      []string // directories never descended into; DefaultPrune if nil
	MinVersion string   // optional lower bound, e.g. "3.8"
}

// Probe resolves exe and asks it for its version.
func Probe(ctx context.Context, exe string) (*Runtime, error) {
	if exe == "" {
		exe = DefaultExecutable
	}
	path, err := exec.LookPath(exe)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRuntime, exe)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	out, err := exec.CommandContext(ctx, path, "-c", versionScript).Output()
	if err != nil {
		return nil, fmt.Errorf("query %s version: %w", path, err)
	}
	version, err := canonical(strings.TrimSpace(string(out)))
	if err != nil {
		return nil, err
	}
	return &Runtime{Executable: path, Version: version}, nil
}

func canonical(v string) (string, error) {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrBadVersion, strings.TrimPrefix(v, "v"))
	}
	return semver.Canonical(v), nil
}

// CheckVersion fails when rt is older than min. An empty min accepts anything.
func CheckVersion(rt *Runtime, min string) error {
	if min == "" {
		return nil
	}
	want, err := canonical(min)
	if err != nil {
		return err
	}
	if semver.Compare(rt.Version, want) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrRuntimeTooOld, rt.Version, want)
	}
	return nil
}

// LibraryNames returns the shared library file names a runtime of the given
// version may ship, most specific first.
func LibraryNames(version string) []string {
	v, err := canonical(version)
	if err != nil {
		return nil
	}
	mm := strings.TrimPrefix(semver.MajorMinor(v), "v")
	ext := ".so"
	if runtime.GOOS == "darwin" {
		ext = ".dylib"
	}
	return []string{
		"libpython" + mm + ext,
		"libpython" + strings.ReplaceAll(mm, ".", "") + ext,
	}
}

// Locate resolves the runtime and searches opts.Root for its shared library.
// Only a missing executable is an error.
func Locate(ctx context.Context, opts Options) (Paths, *Runtime, error) {
	rt, err := Probe(ctx, opts.Executable)
	if err != nil {
		return Paths{}, nil, err
	}
	if err := CheckVersion(rt, opts.MinVersion); err != nil {
		return Paths{}, rt, err
	}
	root := opts.Root
	if root == "" {
		root = string(filepath.Separator)
	}
	prune := opts.Prune
	if prune == nil {
		prune = DefaultPrune
	}
	names := LibraryNames(rt.Version)
	log.Debugf("searching %s for %s", root, strings.Join(names, ", "))

	paths := Paths{Executable: rt.Executable}
	if lib, ok := FindAny(root, prune, names...); ok {
		paths.Library = lib
	}
	return paths, rt, nil
}
