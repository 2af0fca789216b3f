// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package build runs the configure and build/install steps of the native
// extension inside its build directory.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goplus/extbuild/internal/backend"
	"github.com/goplus/extbuild/pkgs/buildsys"
	"github.com/goplus/extbuild/pkgs/buildsys/cmake"
	"github.com/qiniu/x/log"
)

var (
	ErrConfigure = errors.New("configure step failed")
	ErrBuild     = errors.New("build step failed")
)

// Plan is everything one configure+build run needs.
type Plan struct {
	SourceDir  string // directory holding the top CMakeLists.txt; parent of BuildDir if empty
	BuildDir   string
	LibDir     string
	ConfigArgs []string
	Backend    backend.Choice
	Jobs       int  // make -j factor, 0 for none
	NoInstall  bool // make builds the default target instead of install

	BuildType string
	Defines   map[string]string // extra -D cache entries
	Env       map[string]string // set for cmake and the backend only
}

// Executor runs a Plan. Commands run with the build directory as their own
// working directory; the process working directory is left alone.
type Executor struct {
	Runner buildsys.Runner
}

// NewExecutor returns an Executor spawning real processes.
func NewExecutor() *Executor {
	return &Executor{Runner: buildsys.DefaultRunner}
}

// Prepare creates the build directory and the nested library output
// directory when they are absent.
func Prepare(buildDir, libDir string) error {
	for _, dir := range []string{buildDir, libDir} {
		if dir == "" {
			continue
		}
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Run configures and then builds. The first failing step aborts the run;
// later steps are not attempted.
func (e *Executor) Run(ctx context.Context, plan Plan) error {
	if err := Prepare(plan.BuildDir, plan.LibDir); err != nil {
		return err
	}

	c := cmake.New(plan.BuildDir, e.Runner).
		Generator(plan.Backend.Generator()).
		BuildType(plan.BuildType).
		Jobs(plan.Jobs).
		InstallTarget(!plan.NoInstall).
		OutputTo(plan.LibDir)
	if plan.SourceDir != "" {
		c.Source(sourceArg(plan.BuildDir, plan.SourceDir))
	}
	for k, v := range plan.Defines {
		c.Define(k, v)
	}
	for k, v := range plan.Env {
		c.Env(k, v)
	}

	if err := e.resetGenerator(c, plan.Backend); err != nil {
		return err
	}
	if err := c.Configure(ctx, plan.ConfigArgs...); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigure, err)
	}
	if err := c.Build(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrBuild, err)
	}

	rec := &buildRecord{
		Backend:    plan.Backend.String(),
		Generator:  plan.Backend.Generator(),
		ConfigArgs: plan.ConfigArgs,
		OutputDir:  c.OutputDir(),
		BuildTime:  time.Now(),
	}
	if err := saveRecord(plan.BuildDir, rec); err != nil {
		log.Warnf("failed to save build record: %v", err)
	}
	return nil
}

// sourceArg expresses sourceDir relative to buildDir, where cmake runs, so the
// default layout still configures with "cmake ..".
func sourceArg(buildDir, sourceDir string) string {
	absBuild, err1 := filepath.Abs(buildDir)
	absSource, err2 := filepath.Abs(sourceDir)
	if err1 != nil || err2 != nil {
		return sourceDir
	}
	if rel, err := filepath.Rel(absBuild, absSource); err == nil {
		return rel
	}
	return absSource
}

// resetGenerator drops cmake's cache when the build directory was configured
// for the other backend, since cmake refuses to change generators in place.
func (e *Executor) resetGenerator(c *cmake.CMake, choice backend.Choice) error {
	prev, ok := previousGenerator(c.BuildDir())
	if !ok {
		return nil
	}
	if (prev == cmake.Ninja) == (choice == backend.Parallel) {
		return nil
	}
	log.Infof("switching %s from %q to %s, resetting cmake cache", c.BuildDir(), prev, choice)
	for _, p := range append(c.CachePaths(), filepath.Join(c.BuildDir(), recordFile)) {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}
