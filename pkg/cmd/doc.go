// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd holds tempita's cobra commands (not to be confused with
./cmd, which contains the binaries that execute them).

For a list of commands run:

	$ tempita help

The root command behaves like "render".
*/
package cmd
