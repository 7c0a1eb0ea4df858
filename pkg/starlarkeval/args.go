// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkeval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/k14s/starlark-go/starlark"
)

func BoolArg(kwargs []starlark.Tuple, keyToFind string) (bool, error) {
	for _, arg := range kwargs {
		key, err := NewStarlarkValue(arg.Index(0)).AsString()
		if err != nil {
			return false, err
		}
		if key == keyToFind {
			return NewStarlarkValue(arg.Index(1)).AsBool()
		}
	}
	return false, nil
}

func Int64Arg(kwargs []starlark.Tuple, keyToFind string) (int64, error) {
	for _, arg := range kwargs {
		key, err := NewStarlarkValue(arg.Index(0)).AsString()
		if err != nil {
			return 0, err
		}
		if key == keyToFind {
			return NewStarlarkValue(arg.Index(1)).AsInt64()
		}
	}
	return 0, nil
}

// CheckArgNames fails on the first keyword argument not in validKeys.
func CheckArgNames(kwargs []starlark.Tuple, validKeys map[string]struct{}) error {
	for _, arg := range kwargs {
		key, err := NewStarlarkValue(arg.Index(0)).AsString()
		if err != nil {
			return err
		}
		if _, found := validKeys[key]; !found {
			var names []string
			for name := range validKeys {
				names = append(names, name)
			}
			sort.Strings(names)
			return fmt.Errorf("invalid argument name: %s (expected one of: %s)", key, strings.Join(names, ", "))
		}
	}
	return nil
}
