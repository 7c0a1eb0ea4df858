// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkeval

import (
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/k14s/starlark-go/resolve"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/syntax"
)

type StarlarkFunc func(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

func ErrWrapper(wrappedFunc StarlarkFunc) StarlarkFunc {
	return func(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, resultErr error) {
		// Catch any panics to give a better contextual information
		defer func() {
			if err := recover(); err != nil {
				if typedErr, ok := err.(error); ok {
					resultErr = fmt.Errorf("%s (backtrace: %s)", typedErr, debug.Stack())
				} else {
					resultErr = fmt.Errorf("(p) %s (backtrace: %s)", err, debug.Stack())
				}
			}
		}()

		val, err := wrappedFunc(thread, f, args, kwargs)
		if err != nil {
			return val, fmt.Errorf("%s: %s", f.Name(), err)
		}

		return val, nil
	}
}

func ErrDescWrapper(desc string, wrappedFunc StarlarkFunc) StarlarkFunc {
	return func(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		val, err := wrappedFunc(thread, f, args, kwargs)
		if err != nil {
			return val, fmt.Errorf("%s: %s", desc, err)
		}
		return val, nil
	}
}

// EvalError is a Starlark failure flattened into a single message.
type EvalError struct {
	Msg  string
	Hint string
	err  error
}

var _ error = EvalError{}

func (e EvalError) Error() string {
	if len(e.Hint) > 0 {
		return fmt.Sprintf("%s (hint: %s)", e.Msg, e.Hint)
	}
	return e.Msg
}

func (e EvalError) Unwrap() error { return e.err }

func newEvalError(prefix string, err error) error {
	var msgs []string

	switch typedErr := err.(type) {
	case syntax.Error:
		msgs = append(msgs, typedErr.Msg)

	case resolve.ErrorList:
		for _, resolveErr := range typedErr {
			msgs = append(msgs, resolveErr.Msg)
		}

	case *starlark.EvalError:
		msgs = append(msgs, typedErr.Msg)

	default:
		msgs = append(msgs, err.Error())
	}

	result := EvalError{Msg: strings.Join(msgs, "; "), err: err}
	if len(msgs) > 0 {
		result.Hint = hintMsg(msgs[0])
	}
	if len(prefix) > 0 {
		result.Msg = prefix + ": " + result.Msg
	}
	return result
}

const (
	undefinedPrefix = "undefined: "
	undefinedHint   = "make sure the variable is passed in or set with {{default}} or a py block"
)

var (
	bitwiseOrRe  = regexp.MustCompile(`^unknown binary op: .+ \| .+$`)
	bitwiseAndRe = regexp.MustCompile(`^unknown binary op: .+ & .+$`)
)

func hintMsg(msg string) string {
	switch {
	case msg == "undefined: true":
		return "use 'True' instead of 'true' for boolean values"
	case msg == "undefined: false":
		return "use 'False' instead of 'false' for boolean values"
	case msg == "got newline, want ':'":
		return "missing colon at the end of 'if/for/def' statement?"
	case msg == "undefined: null", msg == "undefined: nil", msg == "undefined: none":
		return "use 'None' instead of '" + strings.TrimPrefix(msg, "undefined: ") + "' to indicate no value"
	case msg == "got '&', want primary expression":
		return "use 'and' instead of '&&' for logical-and"
	case msg == "got '|', want primary expression":
		return "use 'or' instead of '||' for logical-or"
	case bitwiseOrRe.MatchString(msg):
		return "use 'or' instead of '|' for logical-or"
	case bitwiseAndRe.MatchString(msg):
		return "use 'and' instead of '&' for logical-and"
	case strings.HasPrefix(msg, undefinedPrefix):
		return undefinedHint
	}
	return ""
}
