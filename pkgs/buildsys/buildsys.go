// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buildsys

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/qiniu/x/log"
)

// BuildSystem captures shared capabilities of native build helpers.
// It keeps the common configure/build/install lifecycle; implementations add their own extras.
type BuildSystem interface {
	// Basic paths.
	Source(dir string)
	BuildDir() string

	// Environment helper.
	Env(key, val string)

	// Lifecycle.
	Configure(ctx context.Context, args ...string) error
	Build(ctx context.Context, args ...string) error

	// Where artifacts land.
	OutputDir() string
}

// Runner spawns external build tools. dir is the working directory of the
// child process only; the caller's working directory is never touched.
type Runner interface {
	Run(ctx context.Context, dir string, env []string, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, streaming output to Stdout/Stderr.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultRunner writes child output to the process stdout/stderr.
var DefaultRunner Runner = &ExecRunner{}

func (r *ExecRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if len(env) > 0 {
		cmd.Env = env
	}
	log.Debugf("(cd %s && %s %s)", dir, name, strings.Join(args, " "))
	return cmd.Run()
}
