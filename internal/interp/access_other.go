// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package interp

// searchable always succeeds; WalkDir reports unreadable directories itself.
func searchable(dir string) bool {
	return true
}
