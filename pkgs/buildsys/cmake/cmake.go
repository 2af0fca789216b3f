// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmake wraps the cmake configure step and the make/ninja build step
// that follows it.
package cmake

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/goplus/extbuild/pkgs/buildsys"
)

// Ninja is the cmake -G name of the ninja generator.
const Ninja = "Ninja"

// CMake drives an out-of-tree CMake build rooted at a dedicated build directory.
type CMake struct {
	runner     buildsys.Runner
	sourceDir  string
	buildDir   string
	outputDir  string
	generator  string
	buildType  string
	jobs       int
	installTgt bool
	defines    map[string]string
	env        map[string]string
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New creates a CMake helper for buildDir. The source directory defaults to
// the parent of buildDir, matching "cmake .." run from inside it.
func New(buildDir string, runner buildsys.Runner) *CMake {
	if runner == nil {
		runner = buildsys.DefaultRunner
	}
	return &CMake{
		runner:     runner,
		sourceDir:  "..",
		buildDir:   buildDir,
		installTgt: true,
		defines:    map[string]string{},
		env:        map[string]string{},
	}
}

// Source overrides the source directory. Relative paths are resolved against the build directory.
func (c *CMake) Source(dir string) {
	c.sourceDir = dir
}

func (c *CMake) BuildDir() string {
	return c.buildDir
}

// OutputTo records where the build installs its libraries.
func (c *CMake) OutputTo(dir string) *CMake {
	c.outputDir = dir
	return c
}

// Generator sets the CMake generator. An empty name leaves the choice to cmake.
func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

func (c *CMake) BuildType(name string) *CMake {
	c.buildType = name
	return c
}

// Jobs sets the make parallelism factor; 0 passes no -j flag.
// Ninja parallelizes on its own and ignores it.
func (c *CMake) Jobs(n int) *CMake {
	c.jobs = n
	return c
}

// InstallTarget controls whether the make build runs the install target.
func (c *CMake) InstallTarget(on bool) *CMake {
	c.installTgt = on
	return c
}

// Define adds -Dkey=value to the configure step. A later call for the same key wins.
func (c *CMake) Define(key, value string) *CMake {
	if c.defines == nil {
		c.defines = map[string]string{}
	}
	c.defines[key] = value
	return c
}

// Env sets a variable for every spawned tool without touching the process environment.
func (c *CMake) Env(key, value string) {
	if c.env == nil {
		c.env = map[string]string{}
	}
	c.env[key] = value
}

// ConfigureArgs returns the argument list of the configure step.
func (c *CMake) ConfigureArgs(args ...string) []string {
	cmakeArgs := []string{}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	cmakeArgs = append(cmakeArgs, c.sourceDir)
	if c.buildType != "" {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	return append(cmakeArgs, args...)
}

// Configure runs cmake inside the build directory.
func (c *CMake) Configure(ctx context.Context, args ...string) error {
	if err := os.MkdirAll(c.buildDir, 0o755); err != nil {
		return err
	}
	return c.runner.Run(ctx, c.buildDir, c.environ(), "cmake", c.ConfigureArgs(args...)...)
}

// BuildCommand returns the program and arguments of the build step for the
// configured generator.
func (c *CMake) BuildCommand(args ...string) (string, []string) {
	if c.generator == Ninja {
		return "ninja", args
	}
	var makeArgs []string
	if c.jobs > 0 {
		makeArgs = append(makeArgs, "-j"+strconv.Itoa(c.jobs))
	}
	if c.installTgt {
		makeArgs = append(makeArgs, "install")
	}
	return makeProgram(), append(makeArgs, args...)
}

// Build runs make (with its install target) or ninja inside the build directory.
func (c *CMake) Build(ctx context.Context, args ...string) error {
	name, cmdArgs := c.BuildCommand(args...)
	return c.runner.Run(ctx, c.buildDir, c.environ(), name, cmdArgs...)
}

// OutputDir returns the library output dir if set, otherwise the build dir.
func (c *CMake) OutputDir() string {
	if c.outputDir != "" {
		return c.outputDir
	}
	return c.buildDir
}

// CachePaths lists the files cmake keeps between runs of the same build
// directory. They pin the generator of the first configure.
func (c *CMake) CachePaths() []string {
	return []string{
		filepath.Join(c.buildDir, "CMakeCache.txt"),
		filepath.Join(c.buildDir, "CMakeFiles"),
	}
}

// definesArgs renders the defines in key order so configure lines are reproducible.
func (c *CMake) definesArgs() []string {
	var args []string
	for _, k := range slices.Sorted(maps.Keys(c.defines)) {
		args = append(args, "-D"+k+"="+c.defines[k])
	}
	return args
}

func (c *CMake) environ() []string {
	if len(c.env) == 0 {
		return nil
	}
	return mergeEnv(os.Environ(), c.env)
}

// makeProgram returns the make program for the platform, honouring $MAKE.
func makeProgram() string {
	if prog := os.Getenv("MAKE"); prog != "" {
		return prog
	}
	if runtime.GOOS == "freebsd" {
		return "gmake"
	}
	return "make"
}

// mergeEnv drops every base entry shadowed by override and appends the
// overrides in key order.
func mergeEnv(base []string, override map[string]string) []string {
	out := slices.DeleteFunc(slices.Clone(base), func(kv string) bool {
		k, _, _ := strings.Cut(kv, "=")
		_, shadowed := override[k]
		return shadowed
	})
	for _, k := range slices.Sorted(maps.Keys(override)) {
		out = append(out, k+"="+override[k])
	}
	return out
}
