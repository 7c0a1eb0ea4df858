// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of tempita.

Packages are layered so that each depends on the others only as far as it
must. In the inventory below, individual packages are named alongside their
coupling with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

# Entry Point

tempita is built into two executable formats:

	./cmd/tempita                  // a command-line tool
	./cmd/tempita-lambda-website   // an AWS Lambda function

Both serve the "Playground", a small website that renders posted templates.

	(2) => pkg/website => (0)

# Commands

	(2) => pkg/cmd => (4)
	(1) => pkg/cmd/render => (5)

# Template Library API

Most callers only need Sub, SubHTML or FromFile. They bind together the
template language, the Starlark evaluator and the standard builtins.

	(2) => pkg/tempita => (4)

# Templating

A template source is lexed into {{ }} directives, trimmed of whitespace around
block directives and parsed into a tree that is interpreted against a
namespace. The language itself knows nothing about Starlark; expressions and
py blocks are handed to an Evaluator.

	(5) => pkg/texttemplate => (1)
	(2) => pkg/starlarkeval => (3)

# Standard Library

Builtins visible to every template: looper, html helpers, and modules for
serialization and version comparison that py blocks may also load().

	(1) => pkg/tmpllibrary => (4)

# Files

Template sources (local, stdin, HTTP), inheritance loaders and output.

	(3) => pkg/files => (1)

# Utilities

	(1) => pkg/cmd/ui => (1)
	(3) => pkg/orderedmap => (0)
	(2) => pkg/version => (0)
	(1) => pkg/filepos => (0)
	(1) => pkg/spell => (0)

# Dependencies

Each package's dependencies on other packages within this module are as follows
(if a package is not listed, it has no dependencies on other packages within
this module):

	pkg/cmd:
	- pkg/cmd/render
	- pkg/cmd/ui
	- pkg/version
	- pkg/website
	pkg/cmd/render:
	- pkg/cmd/ui
	- pkg/files
	- pkg/orderedmap
	- pkg/tempita
	- pkg/texttemplate
	pkg/tempita:
	- pkg/files
	- pkg/starlarkeval
	- pkg/texttemplate
	- pkg/tmpllibrary
	pkg/tmpllibrary:
	- pkg/orderedmap
	- pkg/starlarkeval
	- pkg/texttemplate
	- pkg/version
	pkg/starlarkeval:
	- pkg/orderedmap
	- pkg/spell
	- pkg/texttemplate
	pkg/files:
	- pkg/texttemplate
	pkg/cmd/ui:
	- pkg/files
	pkg/texttemplate:
	- pkg/filepos
*/
package pkg
