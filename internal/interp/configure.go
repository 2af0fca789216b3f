// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

// CMake cache variables consumed by FindPythonLibs/FindPythonInterp.
const (
	LibraryVar    = "PYTHON_LIBRARY"
	ExecutableVar = "PYTHON_EXECUTABLE"
)

// MissingLibraryAdvisory is reported when the configure step has to proceed
// without a shared library.
const MissingLibraryAdvisory = "could not find any installed python-dev (libpython.so) library, proceeding with the executable only"

// ConfigArgs turns p into cmake -D arguments. The library argument, when
// present, always precedes the executable one. If the library is absent,
// advisory explains why the build may pick up a different libpython.
func ConfigArgs(p Paths) (args []string, advisory string) {
	if !p.HasLibrary() {
		return []string{"-D" + ExecutableVar + "=" + p.Executable}, MissingLibraryAdvisory
	}
	return []string{
		"-D" + LibraryVar + "=" + p.Library,
		"-D" + ExecutableVar + "=" + p.Executable,
	}, ""
}
