// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"carvel.dev/tempita/pkg/texttemplate"
)

// ErrTemplateNotFound is returned by loaders for unknown names.
var ErrTemplateNotFound = errors.New("not found")

// Loader builds the parent template named by an {{inherit}} directive.
type Loader interface {
	Load(name string, from *texttemplate.Template) (*texttemplate.Template, error)
}

var _ []Loader = []Loader{DirLoader{}, MemoryLoader{}, MultiLoader{}}

// Getter adapts a Loader to texttemplate.TemplateOpts.GetTemplate.
func Getter(l Loader) texttemplate.TemplateGetter {
	return l.Load
}

// DirLoader reads inheritance targets from the filesystem. Relative
// names resolve against the directory of the referencing template, and
// the loaded template shares its namespace, evaluator and getter.
type DirLoader struct {
	Symlinks SymlinkAllowOpts
	// Ext is appended to names without an extension
	Ext string
}

func (l DirLoader) Load(name string, from *texttemplate.Template) (*texttemplate.Template, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from.Name()), name)
	}
	if len(l.Ext) > 0 && len(filepath.Ext(path)) == 0 {
		path += l.Ext
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	err := CheckSymlink(path, l.Symlinks)
	if err != nil {
		return nil, err
	}

	content, err := NewLocalSource(path, "").Bytes()
	if err != nil {
		return nil, fmt.Errorf("Reading file '%s': %s", path, err)
	}

	return newInheritedTemplate(string(content), path, from)
}

// MemoryLoader serves templates from a name to content map.
type MemoryLoader map[string]string

func (l MemoryLoader) Load(name string, from *texttemplate.Template) (*texttemplate.Template, error) {
	content, found := l[name]
	if !found {
		return nil, ErrTemplateNotFound
	}
	return newInheritedTemplate(content, name, from)
}

func newInheritedTemplate(content, name string, from *texttemplate.Template) (*texttemplate.Template, error) {
	opts := from.Opts()
	opts.Name = name
	opts.DefaultInherit = ""
	opts.LineOffset = 0
	return texttemplate.NewTemplate(content, opts)
}

// MultiLoader asks each loader in turn until one knows the name.
type MultiLoader []Loader

func (l MultiLoader) Load(name string, from *texttemplate.Template) (*texttemplate.Template, error) {
	for _, loader := range l {
		tpl, err := loader.Load(name, from)
		if errors.Is(err, ErrTemplateNotFound) {
			continue
		}
		return tpl, err
	}
	return nil, ErrTemplateNotFound
}
