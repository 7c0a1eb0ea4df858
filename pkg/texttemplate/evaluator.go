// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"sort"
)

// Value is any value produced or consumed by an Evaluator.
type Value = interface{}

// Namespace maps variable names to values for a single substitution.
type Namespace map[string]Value

func (ns Namespace) Copy() Namespace {
	result := make(Namespace, len(ns))
	for k, v := range ns {
		result[k] = v
	}
	return result
}

func (ns Namespace) SortedNames() []string {
	var result []string
	for k := range ns {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Evaluator runs the code embedded in directives. Implementations keep
// their own built-in names separately from ns and must not retain ns
// beyond a call.
type Evaluator interface {
	// Eval evaluates a single expression against ns.
	Eval(code string, ns Namespace) (Value, error)
	// Exec runs statements, writes every name they bind into ns
	// and returns those names.
	Exec(code string, ns Namespace) ([]string, error)

	Truth(val Value) (bool, error)
	String(val Value) (string, error)
	Iterate(val Value) ([]Value, error)
	Call(fn Value, arg Value) (Value, error)
}

// Escaper post-processes the printed form of every expression result.
type Escaper interface {
	Escape(val Value, str string) string
}
