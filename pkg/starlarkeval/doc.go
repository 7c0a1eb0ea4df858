// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package starlarkeval evaluates the code inside template directives
using Starlark.

Expressions are evaluated with starlark.EvalExpr; py blocks run as a
small Starlark file whose top-level bindings are copied back into the
template namespace. Recursion is not enabled and Starlark has no while
loop, so every evaluation terminates.

Go values in the namespace (strings, numbers, maps, slices, *orderedmap.Map
and plain Go functions) are converted to Starlark values on first use.
*/
package starlarkeval
