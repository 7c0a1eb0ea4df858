// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpllibrary

import (
	"fmt"
	"net/url"
	"sort"

	"carvel.dev/tempita/pkg/orderedmap"
	"carvel.dev/tempita/pkg/starlarkeval"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
)

var (
	urlMembers = starlark.StringDict{
		"path_segment_encode": starlark.NewBuiltin("url.path_segment_encode", starlarkeval.ErrWrapper(stringFunc(noErr(url.PathEscape)))),
		"path_segment_decode": starlark.NewBuiltin("url.path_segment_decode", starlarkeval.ErrWrapper(stringFunc(url.PathUnescape))),

		"query_param_value_encode": starlark.NewBuiltin("url.query_param_value_encode", starlarkeval.ErrWrapper(stringFunc(noErr(url.QueryEscape)))),
		"query_param_value_decode": starlark.NewBuiltin("url.query_param_value_decode", starlarkeval.ErrWrapper(stringFunc(url.QueryUnescape))),

		"query_params_encode": starlark.NewBuiltin("url.query_params_encode", starlarkeval.ErrWrapper(urlModule{}.QueryParamsEncode)),
		"query_params_decode": starlark.NewBuiltin("url.query_params_decode", starlarkeval.ErrWrapper(urlModule{}.QueryParamsDecode)),
	}

	// URLAPI contains the definition of the url module
	URLAPI = starlark.StringDict{
		"url": &starlarkstruct.Module{Name: "url", Members: urlMembers},
	}
)

type urlModule struct{}

func noErr(fn func(string) string) func(string) (string, error) {
	return func(s string) (string, error) { return fn(s), nil }
}

// stringFunc adapts a string transformation to a single argument builtin.
func stringFunc(fn func(string) (string, error)) starlarkeval.StarlarkFunc {
	return func(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if args.Len() != 1 {
			return starlark.None, fmt.Errorf("expected exactly one argument")
		}

		val, err := starlarkeval.NewStarlarkValue(args.Index(0)).AsString()
		if err != nil {
			return starlark.None, err
		}

		val, err = fn(val)
		if err != nil {
			return starlark.None, err
		}

		return starlark.String(val), nil
	}
}

func (b urlModule) QueryParamsEncode(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}

	val, err := starlarkeval.NewStarlarkValue(args.Index(0)).AsGoValue()
	if err != nil {
		return starlark.None, err
	}

	typedVal, ok := val.(*orderedmap.Map)
	if !ok {
		return starlark.None, fmt.Errorf("expected argument to be a map, but was %T", val)
	}

	urlVals := url.Values{}

	err = typedVal.IterateErr(func(key, val interface{}) error {
		keyStr, ok := key.(string)
		if !ok {
			return fmt.Errorf("expected map key to be string, but was %T", key)
		}

		valArray, ok := val.([]interface{})
		if !ok {
			return fmt.Errorf("expected map value to be array, but was %T", val)
		}

		urlVals[keyStr] = []string{}
		for _, valItem := range valArray {
			valItemStr, ok := valItem.(string)
			if !ok {
				return fmt.Errorf("expected array value to be string, but was %T", valItem)
			}
			urlVals[keyStr] = append(urlVals[keyStr], valItemStr)
		}
		return nil
	})
	if err != nil {
		return starlark.None, err
	}

	return starlark.String(urlVals.Encode()), nil
}

func (b urlModule) QueryParamsDecode(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}

	encodedVal, err := starlarkeval.NewStarlarkValue(args.Index(0)).AsString()
	if err != nil {
		return starlark.None, err
	}

	urlVals, err := url.ParseQuery(encodedVal)
	if err != nil {
		return starlark.None, err
	}

	var keys []string
	for k := range urlVals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := orderedmap.NewMap()
	for _, key := range keys {
		val := []interface{}{}
		for _, v := range urlVals[key] {
			val = append(val, v)
		}
		result.Set(key, val)
	}

	return starlarkeval.NewGoValue(result).AsStarlarkValue()
}
