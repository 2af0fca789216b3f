// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backend decides between the make and ninja build backends.
package backend

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/goplus/extbuild/pkgs/buildsys/cmake"
	"github.com/qiniu/x/log"
)

// Choice is the build backend used for one invocation.
type Choice int

const (
	// Sequential runs make, which only parallelizes when given -j.
	Sequential Choice = iota
	// Parallel runs ninja, which parallelizes by default.
	Parallel
)

// DefaultHelperModule is the runtime package whose presence enables Parallel.
const DefaultHelperModule = "ninja"

func (c Choice) String() string {
	if c == Parallel {
		return "ninja"
	}
	return "make"
}

// Generator returns the cmake generator matching c. Sequential leaves the
// generator to cmake's platform default.
func (c Choice) Generator() string {
	if c == Parallel {
		return cmake.Ninja
	}
	return ""
}

// Override forces a Choice instead of probing.
type Override string

const (
	Auto  Override = "auto"
	Make  Override = "make"
	Ninja Override = "ninja"
)

// ParseOverride accepts "", "auto", "make"/"sequential" and "ninja"/"parallel".
func ParseOverride(s string) (Override, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "make", "sequential":
		return Make, nil
	case "ninja", "parallel":
		return Ninja, nil
	}
	return "", fmt.Errorf("unknown backend %q (want auto, make or ninja)", s)
}

// Prober answers whether the parallel build helper can be used.
type Prober interface {
	Available(ctx context.Context) bool
}

// ModuleProber checks that Module is importable by the runtime at Executable.
type ModuleProber struct {
	Executable string
	Module     string
}

func (p ModuleProber) Available(ctx context.Context) bool {
	mod := p.Module
	if mod == "" {
		mod = DefaultHelperModule
	}
	err := exec.CommandContext(ctx, p.Executable, "-c", "import "+mod).Run()
	if err != nil {
		log.Debugf("%s cannot import %s: %v", p.Executable, mod, err)
		return false
	}
	return true
}

// Select probes once and returns Parallel if the helper resolves, Sequential otherwise.
// A nil prober means nothing can be resolved.
func Select(ctx context.Context, p Prober) Choice {
	if p != nil && p.Available(ctx) {
		return Parallel
	}
	return Sequential
}

// Resolve applies o, probing only for Auto.
func Resolve(ctx context.Context, o Override, p Prober) Choice {
	switch o {
	case Make:
		return Sequential
	case Ninja:
		return Parallel
	}
	return Select(ctx, p)
}
