// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the project description from extbuild.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/goplus/extbuild/internal/backend"
	"github.com/goplus/extbuild/internal/clean"
	"github.com/goplus/extbuild/internal/data"
	"github.com/goplus/extbuild/internal/env"
	"github.com/goplus/extbuild/internal/interp"
)

// FileName is the project file looked up in the project directory.
const FileName = "extbuild.json"

// Config describes where the native sources live and how to package them.
// Relative paths are resolved against the project directory.
type Config struct {
	Source     string   `json:"source"`       // native source root
	BuildDir   string   `json:"build_dir"`    // relative to Source
	LibDir     string   `json:"lib_dir"`      // relative to BuildDir
	Namespace  string   `json:"namespace"`    // package directory for data files
	DataDirs   []string `json:"data_dirs"`    // relative to Source
	DataLibDir string   `json:"data_lib_dir"` // data dir installed outside Namespace
	Suffixes   []string `json:"suffixes"`
	Targets    []string `json:"targets"`

	Runtime      string `json:"runtime"`
	MinRuntime   string `json:"min_runtime"`
	SearchRoot   string `json:"search_root"`
	HelperModule string `json:"helper_module"`
	Backend      string `json:"backend"`
	Jobs         int    `json:"jobs"`
	Install      bool   `json:"install"` // false builds the default make target only

	BuildType string            `json:"build_type"`
	Defines   map[string]string `json:"defines"` // extra cmake -D entries
	Env       map[string]string `json:"env"`     // environment of cmake and the backend

	dir string
}

// Default returns the configuration of a project without extbuild.json.
func Default() *Config {
	return &Config{
		Source:       "src",
		BuildDir:     "build",
		LibDir:       "lib",
		Namespace:    data.DefaultNamespace,
		DataDirs:     slices.Clone(data.DefaultDirs),
		DataLibDir:   data.DefaultLibDir,
		Suffixes:     slices.Clone(clean.Suffixes),
		Targets:      slices.Clone(clean.Targets),
		Runtime:      interp.DefaultExecutable,
		SearchRoot:   string(filepath.Separator),
		HelperModule: backend.DefaultHelperModule,
		Backend:      string(backend.Auto),
		Jobs:         2,
		Install:      true,
		dir:          ".",
	}
}

// Load reads dir/.env and dir/extbuild.json on top of Default, then applies
// environment overrides. A missing project file is not an error.
func Load(dir string) (*Config, error) {
	if err := env.Load(dir); err != nil {
		return nil, err
	}
	cfg := Default()
	cfg.dir = dir

	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.Runtime = env.String(env.Runtime, cfg.Runtime)
	cfg.Backend = env.String(env.Backend, cfg.Backend)
	cfg.SearchRoot = env.String(env.SearchRoot, cfg.SearchRoot)
	if cfg.Jobs, err = env.Int(env.Jobs, cfg.Jobs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations that would scatter files outside the package.
func (c *Config) Validate() error {
	switch {
	case c.Source == "":
		return errors.New("source must not be empty")
	case c.BuildDir == "":
		return errors.New("build_dir must not be empty")
	case c.Namespace == "":
		return errors.New("namespace must not be empty")
	case c.Jobs < 0:
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if _, err := backend.ParseOverride(c.Backend); err != nil {
		return err
	}
	return nil
}

// Dir returns the project directory the configuration was loaded from.
func (c *Config) Dir() string {
	return c.dir
}

// SourceRoot returns the native source root.
func (c *Config) SourceRoot() string {
	return c.resolve(c.dir, c.Source)
}

// BuildPath returns the cmake build directory.
func (c *Config) BuildPath() string {
	return c.resolve(c.SourceRoot(), c.BuildDir)
}

// LibPath returns the library output directory inside the build directory.
func (c *Config) LibPath() string {
	if c.LibDir == "" {
		return ""
	}
	return c.resolve(c.BuildPath(), c.LibDir)
}

func (c *Config) resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, filepath.FromSlash(p))
}
