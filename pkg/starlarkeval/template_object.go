// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkeval

import (
	"fmt"

	"carvel.dev/tempita/pkg/texttemplate"
	"github.com/k14s/starlark-go/starlark"
)

// StarlarkTemplateObject exposes a child template to its parent as `self`.
// Every attribute lookup succeeds; undefined ones yield Empty.
type StarlarkTemplateObject struct {
	obj *texttemplate.TemplateObject
}

func NewStarlarkTemplateObject(obj *texttemplate.TemplateObject) *StarlarkTemplateObject {
	return &StarlarkTemplateObject{obj}
}

var _ starlark.Value = (*StarlarkTemplateObject)(nil)
var _ starlark.HasAttrs = (*StarlarkTemplateObject)(nil)

func (s *StarlarkTemplateObject) String() string {
	return fmt.Sprintf("<TemplateObject %s>", s.obj.Name)
}
func (s *StarlarkTemplateObject) Type() string         { return "template_object" }
func (s *StarlarkTemplateObject) Freeze()              {}
func (s *StarlarkTemplateObject) Truth() starlark.Bool { return true }
func (s *StarlarkTemplateObject) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: template_object")
}

func (s *StarlarkTemplateObject) Attr(name string) (starlark.Value, error) {
	return NewGoValue(s.obj.Attr(name)).AsStarlarkValue()
}

// callers must not modify the result.
func (s *StarlarkTemplateObject) AttrNames() []string { return s.obj.AttrNames() }

func (s *StarlarkTemplateObject) AsGoValue() (interface{}, error) { return s.obj, nil }
