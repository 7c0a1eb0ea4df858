// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package render implements the "render" command: it reads templates
(files, directories, URLs, stdin or a JSON bulk payload), builds the
namespace from data values flags and writes rendered output to stdout,
a file, a directory or back as JSON.

Data values are layered in this order, later sources winning:
bulk input values, --data-values-file, --data-values-env(-yaml),
--data-value(-yaml), --data-value-file.
*/
package render
