// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpllibrary

import (
	"bytes"
	"fmt"
	"strings"

	"carvel.dev/tempita/pkg/orderedmap"
	"carvel.dev/tempita/pkg/starlarkeval"
	"github.com/BurntSushi/toml"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
)

var (
	// TOMLAPI contains the definition of the toml module
	TOMLAPI = starlark.StringDict{
		"toml": &starlarkstruct.Module{
			Name: "toml",
			Members: starlark.StringDict{
				"encode": starlark.NewBuiltin("toml.encode", starlarkeval.ErrWrapper(tomlModule{}.Encode)),
				"decode": starlark.NewBuiltin("toml.decode", starlarkeval.ErrWrapper(tomlModule{}.Decode)),
			},
		},
	}
)

type tomlModule struct{}

// Encode is a starlarkeval.StarlarkFunc that renders the provided input into a TOML formatted string
func (b tomlModule) Encode(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}
	allowedKWArgs := map[string]struct{}{
		"indent": {},
	}
	if err := starlarkeval.CheckArgNames(kwargs, allowedKWArgs); err != nil {
		return starlark.None, err
	}

	val, err := plainGoValue(args.Index(0))
	if err != nil {
		return starlark.None, err
	}

	indent, err := indentArg(kwargs)
	if err != nil {
		return starlark.None, err
	}

	var buffer bytes.Buffer
	encoder := toml.NewEncoder(&buffer)
	if indent > 0 {
		encoder.Indent = strings.Repeat(" ", indent)
	}

	err = encoder.Encode(val)
	if err != nil {
		return starlark.None, err
	}

	return starlark.String(buffer.String()), nil
}

// Decode is a starlarkeval.StarlarkFunc that parses the provided input from TOML format into dicts, lists, and scalars
func (b tomlModule) Decode(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}

	valEncoded, err := starlarkeval.NewStarlarkValue(args.Index(0)).AsString()
	if err != nil {
		return starlark.None, err
	}

	valDecoded, err := DecodeTOML([]byte(valEncoded))
	if err != nil {
		return starlark.None, err
	}

	return starlarkeval.NewGoValue(valDecoded).AsStarlarkValue()
}

// DecodeTOML parses a TOML document into an *orderedmap.Map with sorted keys.
func DecodeTOML(data []byte) (interface{}, error) {
	var valDecoded interface{}

	err := toml.Unmarshal(data, &valDecoded)
	if err != nil {
		return nil, err
	}

	return orderedmap.Conversion{Object: normalizeTOML(valDecoded)}.FromUnorderedMaps(), nil
}

// normalizeTOML turns the []map[string]interface{} used for arrays of
// tables into []interface{} and dates into strings.
func normalizeTOML(val interface{}) interface{} {
	switch typedVal := val.(type) {
	case map[string]interface{}:
		result := map[string]interface{}{}
		for k, v := range typedVal {
			result[k] = normalizeTOML(v)
		}
		return result
	case []map[string]interface{}:
		result := make([]interface{}, len(typedVal))
		for i, v := range typedVal {
			result[i] = normalizeTOML(v)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(typedVal))
		for i, v := range typedVal {
			result[i] = normalizeTOML(v)
		}
		return result
	case fmt.Stringer:
		// dates and times
		return typedVal.String()
	default:
		return typedVal
	}
}
