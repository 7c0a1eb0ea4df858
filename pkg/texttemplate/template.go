// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"fmt"
)

// TemplateGetter resolves an inheritance target named by from.
type TemplateGetter func(name string, from *Template) (*Template, error)

type TemplateOpts struct {
	Name string
	// Namespace is the base set of variables every substitution starts from
	Namespace Namespace
	// GetTemplate is required to use {{inherit}} or DefaultInherit
	GetTemplate TemplateGetter
	// DefaultInherit is the parent used when the template has no {{inherit}}
	DefaultInherit string

	Evaluator Evaluator
	Escaper   Escaper

	KeepWhitespace bool
	LineOffset     int
}

// Template is immutable once constructed and may be substituted
// concurrently by multiple goroutines.
type Template struct {
	content string
	root    *NodeRoot
	opts    TemplateOpts
}

// NewTemplate parses content eagerly; any lex or parse error is
// returned here rather than at substitution time.
func NewTemplate(content string, opts TemplateOpts) (*Template, error) {
	if opts.Evaluator == nil {
		return nil, fmt.Errorf("Expected evaluator to be specified for template '%s'", opts.Name)
	}

	root, err := NewParser(ParserOpts{
		KeepWhitespace: opts.KeepWhitespace,
		LineOffset:     opts.LineOffset,
	}).Parse([]byte(content), opts.Name)
	if err != nil {
		return nil, err
	}

	opts.Namespace = opts.Namespace.Copy()

	return &Template{content: content, root: root, opts: opts}, nil
}

func (t *Template) Name() string    { return t.opts.Name }
func (t *Template) Content() string { return t.content }
func (t *Template) AST() *NodeRoot  { return t.root }

// Opts returns a copy of the options the template was built with, so
// that resolvers can construct related templates the same way.
func (t *Template) Opts() TemplateOpts {
	opts := t.opts
	opts.Namespace = t.opts.Namespace.Copy()
	return opts
}

// Substitute renders the template with bindings layered on top of its
// base namespace, following {{inherit}} to parent templates.
func (t *Template) Substitute(bindings Namespace) (string, error) {
	return t.substitute(bindings, 0)
}

func (t *Template) substitute(bindings Namespace, depth int) (string, error) {
	ns := t.opts.Namespace.Copy()
	for k, v := range bindings {
		ns[k] = v
	}
	ns[TemplateNameVar] = t.opts.Name

	result, err := Render(t.root, ns, RenderOpts{
		Name:      t.opts.Name,
		Evaluator: t.opts.Evaluator,
		Escaper:   t.opts.Escaper,
	})
	if err != nil {
		return "", err
	}

	parentName, err := t.inheritTarget(result)
	if err != nil {
		return "", err
	}
	if len(parentName) == 0 {
		return result.Output, nil
	}

	return t.substituteParent(parentName, result, ns, depth)
}

func (t *Template) inheritTarget(result RenderResult) (string, error) {
	if result.HasInherit {
		truth, err := t.opts.Evaluator.Truth(result.Inherit)
		if err != nil {
			return "", t.inheritError(err)
		}
		if truth {
			name, err := t.opts.Evaluator.String(result.Inherit)
			if err != nil {
				return "", t.inheritError(err)
			}
			return name, nil
		}
	}
	return t.opts.DefaultInherit, nil
}

func (t *Template) substituteParent(parentName string, result RenderResult, ns Namespace, depth int) (string, error) {
	if t.opts.GetTemplate == nil {
		return "", newError(InheritanceError, nil, t.opts.Name,
			"You cannot use inheritance without passing in get_template")
	}
	if depth >= maxInheritDepth {
		return "", newError(InheritanceError, nil, t.opts.Name,
			"inheritance chain too deep (more than %d templates)", maxInheritDepth)
	}

	parent, err := t.opts.GetTemplate(parentName, t)
	if err != nil {
		if _, ok := err.(*Error); ok {
			return "", err
		}
		return "", t.inheritError(fmt.Errorf("Loading template %s: %s", quoteRepr(parentName), err))
	}

	parentNs := ns.Copy()
	parentNs[SelfVar] = &TemplateObject{
		Name:  t.opts.Name,
		Body:  result.Output,
		Attrs: result.Defs,
	}

	return parent.substitute(parentNs, depth+1)
}

func (t *Template) inheritError(err error) error {
	return &Error{Kind: InheritanceError, Msg: err.Error(), Pos: nil, Name: t.opts.Name, Err: err}
}
