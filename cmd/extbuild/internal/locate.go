// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"fmt"

	"github.com/goplus/extbuild/internal/backend"
	"github.com/goplus/extbuild/internal/interp"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show the runtime, shared library and backend a build would use",
	Args:  cobra.NoArgs,
	RunE:  runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
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
	override, err := backend.ParseOverride(cfg.Backend)
	if err != nil {
		return err
	}
	choice := backend.Resolve(ctx, override, newProber(rt.Executable, cfg.HelperModule))

	lib := paths.Library
	if !paths.HasLibrary() {
		lib = "(not found)"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "runtime:  %s\n", paths.Executable)
	fmt.Fprintf(out, "version:  %s\n", rt.Version)
	fmt.Fprintf(out, "library:  %s\n", lib)
	fmt.Fprintf(out, "backend:  %s\n", choice)
	cmakeArgs, _ := interp.ConfigArgs(paths)
	for _, arg := range cmakeArgs {
		fmt.Fprintf(out, "cmake:    %s\n", arg)
	}
	return nil
}
