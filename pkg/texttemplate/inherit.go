// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"sort"
)

const (
	// TemplateNameVar is bound to the name of the template being substituted
	TemplateNameVar = "__template_name__"
	// SelfVar is bound to the child template inside its parent
	SelfVar = "self"

	maxInheritDepth = 32
)

// TemplateObject is what a parent template sees as `self`: the child's
// rendered body plus every top-level name its py blocks bound.
type TemplateObject struct {
	Name  string
	Body  string
	Attrs map[string]Value
}

// Attr never fails; unknown names resolve to Empty.
func (o *TemplateObject) Attr(name string) Value {
	if name == "body" {
		return o.Body
	}
	if val, found := o.Attrs[name]; found {
		return val
	}
	// self.get.x reads like self.x since lookups never fail
	if name == "get" {
		return o
	}
	return Empty
}

func (o *TemplateObject) AttrNames() []string {
	result := []string{"body"}
	for name := range o.Attrs {
		if name != "body" {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// EmptyValue stands in for attributes a child template did not define.
// It prints as "", iterates as nothing, is falsy, and returns itself
// when called or when any attribute is accessed.
type EmptyValue struct{}

var Empty = EmptyValue{}

func (EmptyValue) String() string        { return "" }
func (EmptyValue) Truth() bool           { return false }
func (EmptyValue) Iterate() []Value      { return nil }
func (e EmptyValue) Call(...Value) Value { return e }
func (e EmptyValue) Attr(string) Value   { return e }
