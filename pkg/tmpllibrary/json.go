// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpllibrary

import (
	"encoding/json"
	"fmt"
	"strings"

	"carvel.dev/tempita/pkg/orderedmap"
	"carvel.dev/tempita/pkg/starlarkeval"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
)

var (
	// JSONAPI contains the definition of the json module
	JSONAPI = starlark.StringDict{
		"json": &starlarkstruct.Module{
			Name: "json",
			Members: starlark.StringDict{
				"encode": starlark.NewBuiltin("json.encode", starlarkeval.ErrWrapper(jsonModule{}.Encode)),
				"decode": starlark.NewBuiltin("json.decode", starlarkeval.ErrWrapper(jsonModule{}.Decode)),
			},
		},
	}
)

type jsonModule struct{}

// Encode is a starlarkeval.StarlarkFunc that renders the provided input into a JSON formatted string
func (b jsonModule) Encode(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
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

	var valBs []byte
	if indent > 0 {
		valBs, err = json.MarshalIndent(val, "", strings.Repeat(" ", indent))
	} else {
		valBs, err = json.Marshal(val)
	}
	if err != nil {
		return starlark.None, err
	}

	return starlark.String(string(valBs)), nil
}

// Decode is a starlarkeval.StarlarkFunc that parses the provided input from JSON format into dicts, lists, and scalars
func (b jsonModule) Decode(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}

	valEncoded, err := starlarkeval.NewStarlarkValue(args.Index(0)).AsString()
	if err != nil {
		return starlark.None, err
	}

	var valDecoded interface{}

	err = json.Unmarshal([]byte(valEncoded), &valDecoded)
	if err != nil {
		return starlark.None, err
	}

	valDecoded = orderedmap.Conversion{Object: valDecoded}.FromUnorderedMaps()

	return starlarkeval.NewGoValue(valDecoded).AsStarlarkValue()
}

// plainGoValue converts a Starlark value into maps, slices and scalars
// that encoders accept.
func plainGoValue(val starlark.Value) (interface{}, error) {
	goVal, err := starlarkeval.NewStarlarkValue(val).AsGoValue()
	if err != nil {
		return nil, err
	}
	return orderedmap.Conversion{Object: goVal}.AsUnorderedStringMaps()
}

func indentArg(kwargs []starlark.Tuple) (int, error) {
	indent, err := starlarkeval.Int64Arg(kwargs, "indent")
	if err != nil {
		return 0, err
	}
	if indent < 0 || indent > 8 {
		// mitigate https://cwe.mitre.org/data/definitions/409.html
		return 0, fmt.Errorf("indent value must be between 0 and 8")
	}
	return int(indent), nil
}
