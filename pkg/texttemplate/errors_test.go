// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate_test

import (
	"errors"
	"testing"

	"carvel.dev/tempita/pkg/starlarkeval"
	"carvel.dev/tempita/pkg/texttemplate"
	"carvel.dev/tempita/pkg/tmpllibrary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrTemplate(t *testing.T, name, content string) *texttemplate.Template {
	evaluator := starlarkeval.NewEvaluator(starlarkeval.EvaluatorOpts{
		Builtins: tmpllibrary.NewAPI().Namespace(),
	})
	tpl, err := texttemplate.NewTemplate(content, texttemplate.TemplateOpts{Name: name, Evaluator: evaluator})
	require.NoError(t, err)
	return tpl
}

func TestSubstituteErrorKinds(t *testing.T) {
	cases := []struct {
		Desc    string
		Content string
		Kind    texttemplate.ErrorKind
		Err     string
	}{
		{
			Desc:    "second item fails to unpack",
			Content: "{{for a, b in [(1, 2), (3,)]}}{{a}}{{b}}{{endfor}}",
			Kind:    texttemplate.StructuralError,
			Err:     "Need 2 items to unpack (got 1 items) at line 1 column 3 in loop.txt",
		},
		{
			Desc:    "inherit without resolver",
			Content: "{{inherit 'base'}}",
			Kind:    texttemplate.InheritanceError,
			Err:     "You cannot use inheritance without passing in get_template in loop.txt",
		},
	}

	for _, tc := range cases {
		out, err := newErrTemplate(t, "loop.txt", tc.Content).Substitute(nil)
		require.Error(t, err, tc.Desc)
		assert.Equal(t, "", out, tc.Desc)
		assert.True(t, texttemplate.IsKind(err, tc.Kind), "%s: kind of %s", tc.Desc, err)
		assert.Equal(t, tc.Err, err.Error(), tc.Desc)
	}
}

func TestSubstituteRuntimeErrorWrapsEvaluatorError(t *testing.T) {
	out, err := newErrTemplate(t, "div.txt", "before {{1 // 0}} after").Substitute(nil)
	require.Error(t, err)
	assert.Equal(t, "", out)

	assert.True(t, texttemplate.IsKind(err, texttemplate.RuntimeError))
	assert.False(t, texttemplate.IsKind(err, texttemplate.StructuralError))
	assert.Contains(t, err.Error(), "division by zero")
	assert.Contains(t, err.Error(), " at line 1 column 10 in div.txt")

	var tplErr *texttemplate.Error
	require.True(t, errors.As(err, &tplErr))
	assert.Equal(t, 1, tplErr.Pos.LineNum())
	assert.Equal(t, 10, tplErr.Pos.ColNum())

	var evalErr starlarkeval.EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Contains(t, evalErr.Msg, "division by zero")
}
