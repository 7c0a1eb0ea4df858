// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"strings"

	"carvel.dev/tempita/pkg/cmd/render"
	"carvel.dev/tempita/pkg/version"
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type TempitaOptions struct{}

func NewDefaultTempitaOptions() *TempitaOptions {
	return &TempitaOptions{}
}

func NewDefaultTempitaCmd() *cobra.Command {
	return NewTempitaCmd(NewDefaultTempitaOptions())
}

func NewTempitaCmd(o *TempitaOptions) *cobra.Command {
	cmd := render.NewCmd(render.NewOptions())

	cmd.Use = "tempita"
	cmd.Aliases = nil
	cmd.Version = version.Version
	cmd.Short = "tempita renders {{ }} text templates"
	cmd.Long = `tempita renders {{ }} text templates.

Expressions and py blocks are Starlark. Data values passed with
--data-value, --data-values-file and friends become template variables.`

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(render.NewCmd(render.NewOptions()))
	cmd.AddCommand(NewWebsiteCmd(NewWebsiteOptions()))

	// --data_value is accepted as --data-value
	cmd.SetGlobalNormalizationFunc(normalizeFlagName)

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
