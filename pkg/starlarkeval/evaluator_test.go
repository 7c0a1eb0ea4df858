// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkeval_test

import (
	"fmt"
	"strings"
	"testing"

	"carvel.dev/tempita/pkg/orderedmap"
	"carvel.dev/tempita/pkg/starlarkeval"
	"carvel.dev/tempita/pkg/texttemplate"
	"github.com/k14s/starlark-go/starlark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvaluator() *starlarkeval.Evaluator {
	return starlarkeval.NewEvaluator(starlarkeval.EvaluatorOpts{
		Builtins: starlark.StringDict{"greeting": starlark.String("hi")},
	})
}

func evalString(t *testing.T, e *starlarkeval.Evaluator, code string, ns texttemplate.Namespace) string {
	val, err := e.Eval(code, ns)
	require.NoError(t, err, "code %q", code)
	str, err := e.String(val)
	require.NoError(t, err)
	return str
}

func TestEvaluatorEval(t *testing.T) {
	e := newEvaluator()
	ns := texttemplate.Namespace{"x": 2, "name": "bob"}

	assert.Equal(t, "5", evalString(t, e, "x * 2 + 1", ns))
	assert.Equal(t, "hi BOB", evalString(t, e, `greeting + " " + name.upper()`, ns))
	assert.Equal(t, "", evalString(t, e, "None", ns))
	assert.Equal(t, "[1, 2]", evalString(t, e, "[1, 2]", ns))
}

func TestEvaluatorConvertsGoValues(t *testing.T) {
	e := newEvaluator()

	om := orderedmap.NewMap()
	om.Set("z", 1)
	om.Set("a", 2)

	ns := texttemplate.Namespace{
		"ordered": om,
		"plain":   map[string]interface{}{"b": true, "a": []interface{}{"x"}},
		"ints":    []int{3, 4},
		"double":  func(i int) int { return i * 2 },
		"fails":   func() (string, error) { return "", fmt.Errorf("nope") },
	}

	assert.Equal(t, `["z", "a"]`, evalString(t, e, "list(ordered.keys())", ns))
	assert.Equal(t, `["a", "b"]`, evalString(t, e, "list(plain.keys())", ns))
	assert.Equal(t, "7", evalString(t, e, "ints[0] + ints[1]", ns))
	assert.Equal(t, "8", evalString(t, e, "double(4)", ns))

	_, err := e.Eval("fails()", ns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	// converted values replace the originals so later evaluations share them
	_, isStarlark := ns["ordered"].(*starlark.Dict)
	assert.True(t, isStarlark)
}

func TestEvaluatorExec(t *testing.T) {
	e := newEvaluator()
	ns := texttemplate.Namespace{"count": 1}

	names, err := e.Exec(`
count = count + 1
def twice(v):
    return v * 2
if count > 1:
    big = True
for i in range(3):
    last = i
`, ns)
	require.NoError(t, err)

	assert.Equal(t, []string{"count", "twice", "big", "i", "last"}, names)
	assert.Equal(t, "2", evalString(t, e, "count", ns))
	assert.Equal(t, "6", evalString(t, e, "twice(3)", ns))
	assert.Equal(t, "True", evalString(t, e, "big", ns))
	assert.Equal(t, "2", evalString(t, e, "last", ns))

	_, found := ns["greeting"]
	assert.False(t, found, "expected builtins to stay out of the namespace")
}

func TestEvaluatorExecLeavesUnboundNames(t *testing.T) {
	e := newEvaluator()
	ns := texttemplate.Namespace{"items": []interface{}{1}}

	names, err := e.Exec("items.append(2)", ns)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, "[1, 2]", evalString(t, e, "items", ns))
}

func TestEvaluatorHelpers(t *testing.T) {
	e := newEvaluator()

	for val, expected := range map[interface{}]bool{"": false, "x": true, 0: false, 3: true, nil: false} {
		truth, err := e.Truth(val)
		require.NoError(t, err)
		assert.Equal(t, expected, truth, "value %#v", val)
	}

	truth, err := e.Truth(texttemplate.Empty)
	require.NoError(t, err)
	assert.False(t, truth)

	items, err := e.Iterate("ab")
	require.NoError(t, err)
	assert.Equal(t, []texttemplate.Value{starlark.String("a"), starlark.String("b")}, items)

	items, err = e.Iterate(texttemplate.Empty)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = e.Iterate(3)
	require.EqualError(t, err, "int value is not iterable")

	upper, err := e.Eval("lambda s: s.upper()", texttemplate.Namespace{})
	require.NoError(t, err)
	result, err := e.Call(upper, "abc")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("ABC"), result)
}

func TestEvaluatorTemplateObject(t *testing.T) {
	e := newEvaluator()
	ns := texttemplate.Namespace{"self": &texttemplate.TemplateObject{
		Name:  "child",
		Body:  "text",
		Attrs: map[string]texttemplate.Value{"title": "T"},
	}}

	assert.Equal(t, "text|T||T", evalString(t, e, `"|".join([self.body, self.title, str(self.nothing.deeper()), self.get.title])`, ns))
	assert.Equal(t, "<TemplateObject child>", evalString(t, e, "self", ns))
}

func TestEvaluatorErrors(t *testing.T) {
	e := newEvaluator()

	cases := []struct {
		Code string
		Err  string
	}{
		{"true", "undefined: true (hint: use 'True' instead of 'true' for boolean values)"},
		{"missing", "undefined: missing (hint: make sure the variable is passed in or set with {{default}} or a py block)"},
	}

	for _, tc := range cases {
		_, err := e.Eval(tc.Code, texttemplate.Namespace{})
		require.Error(t, err)
		assert.Equal(t, tc.Err, err.Error())
	}

	_, err := e.Eval("greting.upper()", texttemplate.Namespace{})
	require.Error(t, err)
	assert.Equal(t, "undefined: greting (hint: did you mean 'greeting'?)", err.Error())

	_, err = e.Exec("total = itemz + 1", texttemplate.Namespace{"items": 1})
	require.Error(t, err)
	assert.Equal(t, "undefined: itemz (hint: did you mean 'items'?)", err.Error())

	_, err = e.Exec("def f(n):\n    return f(n)\nf(1)", texttemplate.Namespace{})
	require.Error(t, err, "expected recursion to be rejected")

	_, err = e.Exec(`load("@tempita:json", "json")`, texttemplate.Namespace{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading modules is not enabled")
}

func TestEvaluatorLoadAndPrint(t *testing.T) {
	var printed []string

	e := starlarkeval.NewEvaluator(starlarkeval.EvaluatorOpts{
		Print: func(msg string) { printed = append(printed, msg) },
		Load: func(module string) (starlark.StringDict, error) {
			if module != "mod" {
				return nil, fmt.Errorf("unknown module %s", module)
			}
			return starlark.StringDict{"answer": starlark.MakeInt(42)}, nil
		},
	})

	ns := texttemplate.Namespace{}
	_, err := e.Exec("load(\"mod\", \"answer\")\nresult = answer\nprint(\"got\", answer)", ns)
	require.NoError(t, err)

	assert.Equal(t, "42", evalString(t, e, "result", ns))
	assert.Equal(t, "got 42", strings.Join(printed, "\n"))
}
