// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stage lays out a data manifest as an installable directory tree or zip archive.
package stage

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goplus/extbuild/internal/data"
)

// Write materializes m at dest. If dest ends with ".zip" a zip archive is
// created, otherwise files are copied below the dest directory.
func Write(m data.Manifest, dest string) error {
	if strings.HasSuffix(dest, ".zip") {
		return writeZip(m, dest)
	}
	return writeDir(m, dest)
}

// WriteManifest encodes m as indented JSON.
func WriteManifest(w io.Writer, m data.Manifest) error {
	if m == nil {
		m = data.Manifest{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func writeDir(m data.Manifest, dest string) error {
	for _, e := range m {
		dir := filepath.Join(dest, filepath.FromSlash(e.Dir))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		for _, src := range e.Files {
			if err := copyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeZip(m data.Manifest, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range m {
		for _, src := range e.Files {
			if err := addFile(w, src, path.Join(e.Dir, filepath.Base(src))); err != nil {
				w.Close()
				return err
			}
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

func addFile(w *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	writer, err := w.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(writer, in)
	return err
}
