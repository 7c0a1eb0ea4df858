// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpllibrary

import (
	"fmt"

	"carvel.dev/tempita/pkg/orderedmap"
	"carvel.dev/tempita/pkg/starlarkeval"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
)

var (
	// YAMLAPI contains the definition of the yaml module
	YAMLAPI = starlark.StringDict{
		"yaml": &starlarkstruct.Module{
			Name: "yaml",
			Members: starlark.StringDict{
				"encode": starlark.NewBuiltin("yaml.encode", starlarkeval.ErrWrapper(yamlModule{}.Encode)),
				"decode": starlark.NewBuiltin("yaml.decode", starlarkeval.ErrWrapper(yamlModule{}.Decode)),
			},
		},
	}
)

type yamlModule struct{}

// Encode is a starlarkeval.StarlarkFunc that renders the provided input into a YAML formatted string.
// Dict key order is preserved.
func (b yamlModule) Encode(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}
	allowedKWArgs := map[string]struct{}{
		"indent": {},
	}
	if err := starlarkeval.CheckArgNames(kwargs, allowedKWArgs); err != nil {
		return starlark.None, err
	}

	val, err := starlarkeval.NewStarlarkValue(args.Index(0)).AsGoValue()
	if err != nil {
		return starlark.None, err
	}

	indent, err := indentArg(kwargs)
	if err != nil {
		return starlark.None, err
	}
	if indent == 0 {
		indent = 2
	}

	valBs, err := orderedmap.ToYAML(val, indent)
	if err != nil {
		return starlark.None, err
	}

	return starlark.String(string(valBs)), nil
}

// Decode is a starlarkeval.StarlarkFunc that parses the provided input from YAML format into dicts, lists, and scalars
func (b yamlModule) Decode(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}

	valEncoded, err := starlarkeval.NewStarlarkValue(args.Index(0)).AsString()
	if err != nil {
		return starlark.None, err
	}

	valDecoded, err := orderedmap.FromYAML([]byte(valEncoded))
	if err != nil {
		return starlark.None, err
	}

	return starlarkeval.NewGoValue(valDecoded).AsStarlarkValue()
}
