// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package orderedmap provides a map implementation where the order of keys is
maintained (unlike the native Go map).

Data values handed to templates are kept in this form so that iterating
over a dict in a template produces the same output on every run.
*/
package orderedmap
