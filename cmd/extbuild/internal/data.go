// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"fmt"
	"os"

	"github.com/goplus/extbuild/internal/build"
	"github.com/goplus/extbuild/internal/config"
	"github.com/goplus/extbuild/internal/data"
	"github.com/goplus/extbuild/internal/stage"
	"github.com/spf13/cobra"
)

var dataOutput string

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Print the data files manifest of the package",
	Long: `Data walks the declared data directories and prints, as JSON, the package
directory each file is installed into. Every directory except the library
directory is nested under the package namespace.`,
	Args: cobra.NoArgs,
	RunE: runData,
}

func init() {
	dataCmd.Flags().StringVarP(&dataOutput, "output", "o", "", "Write the manifest to a file instead of stdout")
	rootCmd.AddCommand(dataCmd)
}

func runData(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := collectData(cfg)
	if err != nil {
		return err
	}

	if dataOutput == "" {
		return stage.WriteManifest(cmd.OutOrStdout(), m)
	}
	f, err := os.Create(dataOutput)
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := stage.WriteManifest(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// collectData prepares the build directories, so the library directory exists
// even before the first build, and aggregates the data directories.
func collectData(cfg *config.Config) (data.Manifest, error) {
	if err := build.Prepare(cfg.BuildPath(), cfg.LibPath()); err != nil {
		return nil, fmt.Errorf("failed to prepare build directory: %w", err)
	}
	a := &data.Aggregator{
		Root:      cfg.SourceRoot(),
		Dirs:      cfg.DataDirs,
		Namespace: cfg.Namespace,
		LibDir:    cfg.DataLibDir,
	}
	return a.Run(), nil
}
