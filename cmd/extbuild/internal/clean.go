// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"fmt"

	"github.com/goplus/extbuild/internal/clean"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var cleanDryRun bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build byproducts and downloaded or generated sources",
	Long: `Clean deletes compiled libraries, archives and logs anywhere under the source
root, then removes the fixed list of vendored and generated artifacts.
Missing artifacts are skipped; failures are reported after everything else was tried.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "n", false, "Print what would be deleted without deleting it")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	c := clean.New(cfg.SourceRoot())
	c.Suffixes = cfg.Suffixes
	c.Targets = cfg.Targets
	c.DryRun = cleanDryRun
	c.OnRemove = func(path string) {
		fmt.Fprintln(out, "Deleting", path)
	}
	rep := c.Run()
	if rep.Err() == nil {
		return nil
	}
	for _, err := range rep.Errors {
		log.Error(err)
	}
	return fmt.Errorf("clean finished with %d error(s)", len(rep.Errors))
}
