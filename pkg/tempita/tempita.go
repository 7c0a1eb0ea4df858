// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package tempita

import (
	"fmt"
	"os"

	"carvel.dev/tempita/pkg/files"
	"carvel.dev/tempita/pkg/starlarkeval"
	"carvel.dev/tempita/pkg/texttemplate"
	"carvel.dev/tempita/pkg/tmpllibrary"
)

// NameKey in the values given to Sub or SubHTML names the template
// (in error messages) instead of being bound as a variable.
const NameKey = "__name"

type Opts struct {
	Name string
	// Namespace holds Go values (or Starlark values) visible to every
	// substitution of the template
	Namespace map[string]interface{}
	// Loader resolves {{inherit}}; FromFile defaults it to a DirLoader
	Loader         files.Loader
	DefaultInherit string

	KeepWhitespace bool
	LineOffset     int

	// Print receives output of print() in py blocks
	Print func(msg string)
}

// New builds a plain text template backed by the Starlark evaluator
// and the default template library.
func New(content string, opts Opts) (*texttemplate.Template, error) {
	return newTemplate(content, opts, false)
}

// NewHTML builds a template whose expression results are HTML escaped
// unless they are produced by html(...).
func NewHTML(content string, opts Opts) (*texttemplate.Template, error) {
	return newTemplate(content, opts, true)
}

// FromFile reads a template from path. Inheritance targets are loaded
// relative to it unless opts.Loader says otherwise. Files ending in
// .html or .htm (optionally followed by .tmpl) are HTML templates.
func FromFile(path string, opts Opts) (*texttemplate.Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Reading template '%s': %s", path, err)
	}

	if len(opts.Name) == 0 {
		opts.Name = path
	}
	if opts.Loader == nil {
		opts.Loader = files.DirLoader{}
	}

	file := files.MustNewFileFromSource(files.NewLocalSource(path, ""))

	return newTemplate(string(content), opts, file.Type() == files.TypeHTML)
}

// Sub renders content once with values.
func Sub(content string, values map[string]interface{}) (string, error) {
	return sub(content, values, false)
}

// SubHTML renders content once as an HTML template with values.
func SubHTML(content string, values map[string]interface{}) (string, error) {
	return sub(content, values, true)
}

func sub(content string, values map[string]interface{}, html bool) (string, error) {
	bindings := texttemplate.Namespace{}
	var opts Opts

	for k, v := range values {
		if k == NameKey {
			name, ok := v.(string)
			if !ok {
				return "", fmt.Errorf("Expected '%s' to be a string, but was %T", NameKey, v)
			}
			opts.Name = name
			continue
		}
		bindings[k] = v
	}

	tpl, err := newTemplate(content, opts, html)
	if err != nil {
		return "", err
	}
	return tpl.Substitute(bindings)
}

func newTemplate(content string, opts Opts, html bool) (*texttemplate.Template, error) {
	api := tmpllibrary.NewAPI()
	builtins := api.Namespace()
	var escaper texttemplate.Escaper

	if html {
		builtins = api.HTMLNamespace()
		escaper = tmpllibrary.HTMLEscaper{}
	}

	evalName := opts.Name
	if len(evalName) == 0 {
		evalName = "<template>"
	}

	evaluator := starlarkeval.NewEvaluator(starlarkeval.EvaluatorOpts{
		Name:     evalName,
		Builtins: builtins,
		Print:    opts.Print,
		Load:     api.FindModule,
	})

	var getTemplate texttemplate.TemplateGetter
	if opts.Loader != nil {
		getTemplate = files.Getter(opts.Loader)
	}

	return texttemplate.NewTemplate(content, texttemplate.TemplateOpts{
		Name:           opts.Name,
		Namespace:      texttemplate.Namespace(opts.Namespace),
		GetTemplate:    getTemplate,
		DefaultInherit: opts.DefaultInherit,
		Evaluator:      evaluator,
		Escaper:        escaper,
		KeepWhitespace: opts.KeepWhitespace,
		LineOffset:     opts.LineOffset,
	})
}
