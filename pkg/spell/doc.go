// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package spell suggests the intended spelling of a word from a set of
known candidates.

Templates use it to point at a similarly named variable when an
expression references an undefined one.
*/
package spell
