// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package ui is the only output facility of the tempita commands: results
go to stdout, warnings and --debug lines (timings, data values, which
templates were rendered) go to stderr.
*/
package ui
