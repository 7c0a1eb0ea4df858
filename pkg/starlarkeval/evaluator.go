// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkeval

import (
	"fmt"
	"strings"

	"carvel.dev/tempita/pkg/spell"
	"carvel.dev/tempita/pkg/texttemplate"
	"github.com/k14s/starlark-go/resolve"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/syntax"
)

func init() {
	resolve.AllowFloat = true
	resolve.AllowSet = true
	resolve.AllowLambda = true
	resolve.AllowNestedDef = true
	resolve.AllowBitwise = true
	// top-level if/for in py blocks and repeated assignment
	resolve.AllowGlobalReassign = true
	// recursion stays disabled so that evaluation always terminates
}

type EvaluatorOpts struct {
	// Name shows up in Starlark backtraces
	Name string
	// Builtins are visible to every evaluation and are never modified
	Builtins starlark.StringDict
	// Print receives output of the print() builtin; discarded when nil
	Print func(msg string)
	// Load resolves load() statements in py blocks; load fails when nil
	Load func(module string) (starlark.StringDict, error)
}

// Evaluator implements texttemplate.Evaluator on top of Starlark. It
// holds no per-evaluation state, so one Evaluator may serve concurrent
// substitutions.
type Evaluator struct {
	opts EvaluatorOpts
}

var _ texttemplate.Evaluator = &Evaluator{}

func NewEvaluator(opts EvaluatorOpts) *Evaluator {
	if len(opts.Name) == 0 {
		opts.Name = "<template>"
	}
	return &Evaluator{opts}
}

func (e *Evaluator) Eval(code string, ns texttemplate.Namespace) (texttemplate.Value, error) {
	expr, err := syntax.ParseExpr(e.opts.Name, code, 0)
	if err != nil {
		return nil, newEvalError(fmt.Sprintf("invalid syntax in expression %q", code), err)
	}

	env, err := e.env(ns, referencedNames(expr))
	if err != nil {
		return nil, err
	}

	val, err := starlark.EvalExpr(e.newThread(), expr, env)
	if err != nil {
		return nil, e.suggestName(newEvalError("", err), ns)
	}
	return val, nil
}

func (e *Evaluator) Exec(code string, ns texttemplate.Namespace) ([]string, error) {
	f, err := syntax.Parse(e.opts.Name, code, 0)
	if err != nil {
		return nil, newEvalError("invalid syntax in py block", err)
	}

	bound := boundNames(f)

	var seeds []string
	for _, name := range bound {
		if _, found := ns[name]; found {
			seeds = append(seeds, name)
		}
	}
	if len(seeds) > 0 {
		f, err = syntax.Parse(e.opts.Name, seedPreamble(seeds)+code, 0)
		if err != nil {
			return nil, newEvalError("invalid syntax in py block", err)
		}
	}

	env, err := e.env(ns, referencedNames(f))
	if err != nil {
		return nil, err
	}

	if len(seeds) > 0 {
		seedDict := starlark.NewDict(len(seeds))
		for _, name := range seeds {
			if err := seedDict.SetKey(starlark.String(name), env[name]); err != nil {
				return nil, err
			}
		}
		env[seedVar] = seedDict
	}

	prog, err := starlark.FileProgram(f, env.Has)
	if err != nil {
		return nil, e.suggestName(newEvalError("", err), ns)
	}

	globals, err := prog.Init(e.newThread(), env)
	if err != nil {
		return nil, e.suggestName(newEvalError("", err), ns)
	}

	var result []string
	for _, name := range bound {
		if val, found := globals[name]; found {
			ns[name] = val
			result = append(result, name)
		}
	}
	return result, nil
}

func (e *Evaluator) Truth(val texttemplate.Value) (bool, error) {
	starlarkVal, err := NewGoValue(val).AsStarlarkValue()
	if err != nil {
		return false, err
	}
	return bool(starlarkVal.Truth()), nil
}

func (e *Evaluator) String(val texttemplate.Value) (string, error) {
	switch typedVal := val.(type) {
	case nil:
		return "", nil
	case string:
		return typedVal, nil
	case fmt.Stringer:
		if _, isStarlark := val.(starlark.Value); !isStarlark {
			return typedVal.String(), nil
		}
	}

	starlarkVal, err := NewGoValue(val).AsStarlarkValue()
	if err != nil {
		return fmt.Sprintf("%v", val), nil
	}

	switch typedVal := starlarkVal.(type) {
	case starlark.NoneType:
		return "", nil
	case starlark.String:
		return string(typedVal), nil
	default:
		return typedVal.String(), nil
	}
}

func (e *Evaluator) Iterate(val texttemplate.Value) ([]texttemplate.Value, error) {
	starlarkVal, err := NewGoValue(val).AsStarlarkValue()
	if err != nil {
		return nil, err
	}

	if str, ok := starlarkVal.(starlark.String); ok {
		var result []texttemplate.Value
		for _, ch := range string(str) {
			result = append(result, starlark.String(string(ch)))
		}
		return result, nil
	}

	iterable, ok := starlarkVal.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("%s value is not iterable", starlarkVal.Type())
	}

	iter := iterable.Iterate()
	defer iter.Done()

	var result []texttemplate.Value
	var x starlark.Value
	for iter.Next(&x) {
		result = append(result, x)
	}
	return result, nil
}

func (e *Evaluator) Call(fn texttemplate.Value, arg texttemplate.Value) (texttemplate.Value, error) {
	fnVal, err := NewGoValue(fn).AsStarlarkValue()
	if err != nil {
		return nil, err
	}
	argVal, err := NewGoValue(arg).AsStarlarkValue()
	if err != nil {
		return nil, err
	}

	result, err := starlark.Call(e.newThread(), fnVal, starlark.Tuple{argVal}, nil)
	if err != nil {
		return nil, newEvalError("", err)
	}
	return result, nil
}

// env builds the predeclared names for one evaluation: builtins, then
// the namespace entries the code actually mentions. Converted values are
// stored back into ns so that mutations made by later code stay visible.
func (e *Evaluator) env(ns texttemplate.Namespace, names map[string]struct{}) (starlark.StringDict, error) {
	env := make(starlark.StringDict, len(e.opts.Builtins)+len(names))
	for k, v := range e.opts.Builtins {
		env[k] = v
	}

	for name := range names {
		val, found := ns[name]
		if !found {
			continue
		}
		starlarkVal, err := NewGoValue(val).AsStarlarkValue()
		if err != nil {
			return nil, fmt.Errorf("Converting value of '%s': %s", name, err)
		}
		if _, isStarlark := val.(starlark.Value); !isStarlark {
			ns[name] = starlarkVal
		}
		env[name] = starlarkVal
	}

	return env, nil
}

// suggestName replaces the generic undefined-name hint when a
// similarly spelled name is visible.
func (e *Evaluator) suggestName(err error, ns texttemplate.Namespace) error {
	evalErr, ok := err.(EvalError)
	if !ok || evalErr.Hint != undefinedHint {
		return err
	}

	word := strings.SplitN(strings.TrimPrefix(evalErr.Msg, undefinedPrefix), ";", 2)[0]

	names := make([]string, 0, len(e.opts.Builtins)+len(ns))
	for name := range e.opts.Builtins {
		names = append(names, name)
	}
	for name := range ns {
		names = append(names, name)
	}

	if suggestion := spell.Suggest(word, names); len(suggestion) > 0 {
		evalErr.Hint = fmt.Sprintf("did you mean '%s'?", suggestion)
	}
	return evalErr
}

func (e *Evaluator) newThread() *starlark.Thread {
	thread := &starlark.Thread{Name: e.opts.Name}
	thread.Print = func(_ *starlark.Thread, msg string) {
		if e.opts.Print != nil {
			e.opts.Print(msg)
		}
	}
	thread.Load = func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
		if e.opts.Load == nil {
			return nil, fmt.Errorf("cannot load '%s': loading modules is not enabled", module)
		}
		return e.opts.Load(module)
	}
	return thread
}
