// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

// UI receives progress messages while files are written.
type UI interface {
	Printf(string, ...interface{})
	Debugf(string, ...interface{})
}
