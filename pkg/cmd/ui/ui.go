// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"io"

	"carvel.dev/tempita/pkg/files"
)

type UI interface {
	files.UI

	Warnf(str string, args ...interface{})
	DebugWriter() io.Writer
}
