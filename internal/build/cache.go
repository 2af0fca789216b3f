// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Build directory layout:
//
//	build/
//	  .extbuild.json    # record of the last successful build
//	  CMakeCache.txt    # cmake's own cache, pins the generator
//	  CMakeFiles/
//	  lib/              # library output directory
const recordFile = ".extbuild.json"

// buildRecord describes the last successful build of a build directory.
type buildRecord struct {
	Backend    string    `json:"backend"`
	Generator  string    `json:"generator"`
	ConfigArgs []string  `json:"config_args"`
	OutputDir  string    `json:"output_dir"`
	BuildTime  time.Time `json:"build_time"`
}

func loadRecord(buildDir string) (*buildRecord, error) {
	data, err := os.ReadFile(filepath.Join(buildDir, recordFile))
	if err != nil {
		return nil, err
	}
	var rec buildRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func saveRecord(buildDir string, rec *buildRecord) error {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(buildDir, recordFile), data, 0o644)
}

// cachedGenerator returns the generator recorded by cmake in CMakeCache.txt.
func cachedGenerator(buildDir string) (string, bool) {
	f, err := os.Open(filepath.Join(buildDir, "CMakeCache.txt"))
	if err != nil {
		return "", false
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		if v, ok := strings.CutPrefix(s.Text(), "CMAKE_GENERATOR:INTERNAL="); ok {
			return v, true
		}
	}
	return "", false
}

// previousGenerator reports the generator the build directory was configured
// with, preferring our own record over cmake's cache.
func previousGenerator(buildDir string) (string, bool) {
	if rec, err := loadRecord(buildDir); err == nil {
		return rec.Generator, true
	}
	return cachedGenerator(buildDir)
}
