// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"strings"
)

type RenderOpts struct {
	Name      string
	Evaluator Evaluator
	Escaper   Escaper
}

// RenderResult is the outcome of walking a tree once. Defs holds the
// final value of every name bound by a py block.
type RenderResult struct {
	Output     string
	Defs       map[string]Value
	Inherit    Value
	HasInherit bool
}

// Render interprets root against ns, which it mutates. On error no
// output is returned.
func Render(root *NodeRoot, ns Namespace, opts RenderOpts) (RenderResult, error) {
	ctx := &EvaluationCtx{
		name:      opts.Name,
		evaluator: opts.Evaluator,
		escaper:   opts.Escaper,
		ns:        ns,
		out:       &strings.Builder{},
		defs:      map[string]struct{}{},
	}

	control, err := ctx.evalNodes(root.Items)
	if err != nil {
		return RenderResult{}, err
	}
	if control != loopNormal {
		return RenderResult{}, newError(ParseError, ctx.controlPos, ctx.name, "%s outside of for loop", control)
	}

	result := RenderResult{
		Output:     ctx.out.String(),
		Defs:       map[string]Value{},
		Inherit:    ctx.inherit,
		HasInherit: ctx.hasInherit,
	}
	for name := range ctx.defs {
		if val, found := ns[name]; found {
			result.Defs[name] = val
		}
	}
	return result, nil
}
