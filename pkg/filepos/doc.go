// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filepos provides the concept of Position: a source name (usually a
template name), and a line and column within that source.

File positions are crucial when reporting errors to the user. Every error
produced while lexing, parsing or rendering a template carries the Position
of the directive that caused it.

Not all Positions point within a source (e.g. an inheritance failure that
happens after rendering). The zero-value of Position (can be created using
NewUnknownPosition()) represents this case.
*/
package filepos
