// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpllibrary

import (
	"fmt"
	"strings"

	"carvel.dev/tempita/pkg/starlarkeval"
	"github.com/k14s/starlark-go/starlark"
)

const modulePrefix = "@tempita:"

type API struct {
	modules map[string]starlark.StringDict
}

func NewAPI() API {
	return API{map[string]starlark.StringDict{
		// Serializations
		"json": JSONAPI,
		"toml": TOMLAPI,
		"yaml": YAMLAPI,
		"url":  URLAPI,

		// Versioning
		"version": VersionAPI,
	}}
}

// Namespace holds the builtins of plain text templates.
func (a API) Namespace() starlark.StringDict {
	result := starlark.StringDict{
		"start_braces": starlark.String("{{"),
		"end_braces":   starlark.String("}}"),
		"looper":       starlark.NewBuiltin("looper", starlarkeval.ErrWrapper(looperModule{}.Looper)),
	}
	for _, module := range a.modules {
		for name, val := range module {
			result[name] = val
		}
	}
	return result
}

// HTMLNamespace adds the HTML helpers to Namespace.
func (a API) HTMLNamespace() starlark.StringDict {
	result := a.Namespace()
	for name, val := range HTMLAPI {
		result[name] = val
	}
	return result
}

// FindModule resolves load("@tempita:<name>", ...) statements.
func (a API) FindModule(module string) (starlark.StringDict, error) {
	if !strings.HasPrefix(module, modulePrefix) {
		return nil, fmt.Errorf("cannot load '%s' (hint: only builtin modules such as '%sjson' can be loaded)", module, modulePrefix)
	}
	name := strings.TrimPrefix(module, modulePrefix)
	if name == "html" {
		return HTMLAPI, nil
	}
	if found, ok := a.modules[name]; ok {
		return found, nil
	}
	return nil, fmt.Errorf("builtin tempita library does not have module '%s'", name)
}
