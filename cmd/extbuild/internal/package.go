// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"fmt"
	"path/filepath"

	"github.com/goplus/extbuild/internal/stage"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var packageOutput string

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Lay out the data files as they will be installed",
	Long:  `Package copies every manifest file into its package directory under the output path (directory or .zip file).`,
	Args:  cobra.NoArgs,
	RunE:  runPackage,
}

func init() {
	packageCmd.Flags().StringVarP(&packageOutput, "output", "o", "", "Output path (directory or .zip file)")
	packageCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(packageCmd)
}

func runPackage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Resolve before anything relative to the project directory happens.
	dest, err := filepath.Abs(packageOutput)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	m, err := collectData(cfg)
	if err != nil {
		return err
	}
	if _, ok := m.Lookup(cfg.DataLibDir); !ok && cfg.DataLibDir != "" {
		log.Warnf("no built libraries under %s, run extbuild build first", cfg.DataLibDir)
	}
	if err := stage.Write(m, dest); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Packaged %d files into %s\n", m.Len(), dest)
	return nil
}
