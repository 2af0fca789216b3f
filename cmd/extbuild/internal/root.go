// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"context"

	"github.com/goplus/extbuild/internal/config"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	projectDir string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "extbuild",
	Short: "extbuild builds a native Python extension and lays out its package",
	Long: `extbuild locates the host Python runtime, drives the CMake build of a native
extension with make or ninja, and maps the built libraries and data directories
onto the installable package layout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		} else {
			log.SetOutputLevel(log.Linfo)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "Project directory containing extbuild.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(projectDir)
}

// contextOf returns the command context, which is unset when a RunE is called directly.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
