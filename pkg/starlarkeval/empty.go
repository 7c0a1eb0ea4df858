// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkeval

import (
	"carvel.dev/tempita/pkg/texttemplate"
	"github.com/k14s/starlark-go/starlark"
)

// StarlarkEmpty is the Starlark face of texttemplate.Empty.
type StarlarkEmpty struct{}

// Empty is shared; it holds no state.
var Empty = &StarlarkEmpty{}

var _ starlark.Value = &StarlarkEmpty{}
var _ starlark.HasAttrs = &StarlarkEmpty{}
var _ starlark.Iterable = &StarlarkEmpty{}
var _ starlark.Callable = &StarlarkEmpty{}

func (s *StarlarkEmpty) String() string        { return "" }
func (s *StarlarkEmpty) Type() string          { return "empty" }
func (s *StarlarkEmpty) Freeze()               {}
func (s *StarlarkEmpty) Truth() starlark.Bool  { return false }
func (s *StarlarkEmpty) Hash() (uint32, error) { return 0, nil }
func (s *StarlarkEmpty) Name() string          { return "empty" }

func (s *StarlarkEmpty) Attr(string) (starlark.Value, error) { return s, nil }
func (s *StarlarkEmpty) AttrNames() []string                 { return nil }
func (s *StarlarkEmpty) Iterate() starlark.Iterator          { return emptyIterator{} }

func (s *StarlarkEmpty) CallInternal(*starlark.Thread, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return s, nil
}

func (s *StarlarkEmpty) AsGoValue() (interface{}, error) { return texttemplate.Empty, nil }

type emptyIterator struct{}

func (emptyIterator) Next(*starlark.Value) bool { return false }
func (emptyIterator) Done()                     {}
