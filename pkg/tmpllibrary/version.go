// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpllibrary

import (
	"fmt"

	"carvel.dev/tempita/pkg/starlarkeval"
	"carvel.dev/tempita/pkg/version"
	goversion "github.com/hashicorp/go-version"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
)

var (
	VersionAPI = starlark.StringDict{
		"version": &starlarkstruct.Module{
			Name: "version",
			Members: starlark.StringDict{
				"require_at_least": starlark.NewBuiltin("version.require_at_least", starlarkeval.ErrWrapper(versionModule{version.Version}.RequireAtLeast)),
				"current":          starlark.String(version.Version),
			},
		},
	}
)

type versionModule struct {
	current string
}

func (b versionModule) RequireAtLeast(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}

	val, err := starlarkeval.NewStarlarkValue(args.Index(0)).AsString()
	if err != nil {
		return starlark.None, err
	}

	userConstraint, err := goversion.NewConstraint(">=" + val)
	if err != nil {
		return starlark.None, err
	}

	currVersion, err := goversion.NewVersion(b.current)
	if err != nil {
		return starlark.None, err
	}

	if !userConstraint.Check(currVersion) {
		return starlark.None, fmt.Errorf("tempita version %s does not meet the minimum required version %s", b.current, val)
	}

	return starlark.None, nil
}
