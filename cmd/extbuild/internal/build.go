// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"fmt"

	"github.com/goplus/extbuild/internal/backend"
	"github.com/goplus/extbuild/internal/build"
	"github.com/goplus/extbuild/internal/config"
	"github.com/goplus/extbuild/internal/interp"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	buildBackend    string
	buildJobs       int
	buildRuntime    string
	buildSearchRoot string
)

// Replaced in tests.
var (
	locateRuntime = interp.Locate
	newExecutor   = build.NewExecutor
	newProber     = func(exe, module string) backend.Prober {
		return backend.ModuleProber{Executable: exe, Module: module}
	}
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Configure, build and install the native extension",
	Long: `Build locates the Python runtime and its shared library, picks ninja when the
runtime can import it (make otherwise), then runs cmake and the backend inside
the build directory.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildBackend, "backend", "", "Build backend: auto, make or ninja")
	buildCmd.Flags().IntVarP(&buildJobs, "jobs", "j", 0, "Parallel jobs for make (0 disables -j)")
	buildCmd.Flags().StringVar(&buildRuntime, "runtime", "", "Python executable to build against")
	buildCmd.Flags().StringVar(&buildSearchRoot, "search-root", "", "Directory searched for the Python shared library")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyBuildFlags(cmd, cfg); err != nil {
		return err
	}
	ctx := contextOf(cmd)

	paths, rt, err := locateRuntime(ctx, interp.Options{
		Executable: cfg.Runtime,
		Root:       cfg.SearchRoot,
		MinVersion: cfg.MinRuntime,
	})
	if err != nil {
		return fmt.Errorf("failed to locate runtime: %w", err)
	}
	configArgs, advisory := interp.ConfigArgs(paths)
	if advisory != "" {
		log.Warn(advisory)
	}

	override, err := backend.ParseOverride(cfg.Backend)
	if err != nil {
		return err
	}
	choice := backend.Resolve(ctx, override, newProber(rt.Executable, cfg.HelperModule))
	log.Infof("building against %s (%s) with %s", rt.Executable, rt.Version, choice)

	plan := build.Plan{
		SourceDir:  cfg.SourceRoot(),
		BuildDir:   cfg.BuildPath(),
		LibDir:     cfg.LibPath(),
		ConfigArgs: configArgs,
		Backend:    choice,
		Jobs:       cfg.Jobs,
		NoInstall:  !cfg.Install,
		BuildType:  cfg.BuildType,
		Defines:    cfg.Defines,
		Env:        cfg.Env,
	}
	if err := newExecutor().Run(ctx, plan); err != nil {
		return fmt.Errorf("failed to build %s: %w", cfg.SourceRoot(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Built %s with %s\n", cfg.BuildPath(), choice)
	return nil
}

func applyBuildFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = buildBackend
	}
	if flags.Changed("jobs") {
		cfg.Jobs = buildJobs
	}
	if flags.Changed("runtime") {
		cfg.Runtime = buildRuntime
	}
	if flags.Changed("search-root") {
		cfg.SearchRoot = buildSearchRoot
	}
	return cfg.Validate()
}
