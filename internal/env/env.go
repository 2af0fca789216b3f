// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package env reads process environment overrides, optionally seeded from a
// .env file in the project directory.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted on top of the project file.
const (
	Runtime    = "EXTBUILD_RUNTIME"
	Backend    = "EXTBUILD_BACKEND"
	Jobs       = "EXTBUILD_JOBS"
	SearchRoot = "EXTBUILD_SEARCH_ROOT"
)

// DotEnv is the file loaded by Load.
const DotEnv = ".env"

// Load reads dir/.env if it exists. Variables already set in the process win.
func Load(dir string) error {
	path := filepath.Join(dir, DotEnv)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// String returns the trimmed value of key, or def when unset or blank.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Int returns key parsed as an integer, or def when unset or blank.
func Int(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
