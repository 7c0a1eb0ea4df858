// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package files reads templates and data values from file-like Sources
(bytes, stdin, local paths, HTTP URLs) and writes rendered output.

It also provides Loaders that resolve {{inherit}} targets: DirLoader
reads them from disk relative to the referencing template and
MemoryLoader serves them from a map.
*/
package files
