// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package interp

import "golang.org/x/sys/unix"

// searchable reports whether the current user may list and enter dir.
func searchable(dir string) bool {
	return unix.Access(dir, unix.R_OK|unix.X_OK) == nil
}
