// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpllibrary

import (
	"fmt"
	"sort"
	"strings"

	"carvel.dev/tempita/pkg/starlarkeval"
	"carvel.dev/tempita/pkg/texttemplate"
	"github.com/k14s/starlark-go/starlark"
)

var (
	// HTMLAPI holds the helpers available to HTML templates
	HTMLAPI = starlark.StringDict{
		"html":       starlark.NewBuiltin("html", starlarkeval.ErrWrapper(htmlModule{}.HTML)),
		"html_quote": starlark.NewBuiltin("html_quote", starlarkeval.ErrWrapper(htmlModule{}.Quote)),
		"attr":       starlark.NewBuiltin("attr", starlarkeval.ErrWrapper(htmlModule{}.Attr)),
		"url":        &urlValue{},
	}

	htmlReplacer = strings.NewReplacer("&", "&amp;", `"`, "&quot;", ">", "&gt;", "<", "&lt;")
)

// HTMLQuote escapes & " < > and turns newlines into <br>.
func HTMLQuote(s string) string {
	return strings.ReplaceAll(htmlReplacer.Replace(s), "\n", "<br>")
}

// URLQuote only encodes spaces, which is all attribute values need.
func URLQuote(s string) string {
	return strings.ReplaceAll(s, " ", "%20")
}

// HTMLEscaper escapes every printed expression except html values.
type HTMLEscaper struct{}

var _ texttemplate.Escaper = HTMLEscaper{}

func (HTMLEscaper) Escape(val texttemplate.Value, str string) string {
	if _, ok := val.(*HTMLValue); ok {
		return str
	}
	return HTMLQuote(str)
}

// HTMLValue is markup that must not be escaped again.
type HTMLValue struct {
	value string
}

var _ starlark.Value = &HTMLValue{}
var _ starlarkeval.StarlarkValueToGoValueConversion = &HTMLValue{}

func NewHTMLValue(value string) *HTMLValue { return &HTMLValue{value} }

func (s *HTMLValue) String() string       { return s.value }
func (s *HTMLValue) Type() string         { return "html" }
func (s *HTMLValue) Freeze()              {}
func (s *HTMLValue) Truth() starlark.Bool { return len(s.value) > 0 }

func (s *HTMLValue) Hash() (uint32, error)           { return starlark.String(s.value).Hash() }
func (s *HTMLValue) AsGoValue() (interface{}, error) { return s.value, nil }

type htmlModule struct{}

func (b htmlModule) HTML(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}
	return NewHTMLValue(toString(args.Index(0))), nil
}

// Quote escapes its argument; html values are passed through
// only when force=False.
func (b htmlModule) Quote(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}
	if err := starlarkeval.CheckArgNames(kwargs, map[string]struct{}{"force": {}}); err != nil {
		return starlark.None, err
	}

	force := true
	if len(kwargs) > 0 {
		var err error
		force, err = starlarkeval.BoolArg(kwargs, "force")
		if err != nil {
			return starlark.None, err
		}
	}

	val := args.Index(0)
	if htmlVal, ok := val.(*HTMLValue); ok && !force {
		return starlark.String(htmlVal.value), nil
	}
	return starlark.String(HTMLQuote(toString(val))), nil
}

// Attr renders keyword arguments as sorted name="value" pairs. None
// values are skipped and a trailing underscore is dropped from names
// so that reserved words such as class_ can be used.
func (b htmlModule) Attr(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 0 {
		return starlark.None, fmt.Errorf("expected only keyword arguments")
	}

	type pair struct{ name, value string }
	var pairs []pair

	for _, kwarg := range kwargs {
		name, err := starlarkeval.NewStarlarkValue(kwarg.Index(0)).AsString()
		if err != nil {
			return starlark.None, err
		}
		if kwarg.Index(1) == starlark.None {
			continue
		}
		pairs = append(pairs, pair{name, toString(kwarg.Index(1))})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })

	var parts []string
	for _, p := range pairs {
		name := strings.TrimSuffix(p.name, "_")
		parts = append(parts, fmt.Sprintf(`%s="%s"`, HTMLQuote(name), HTMLQuote(p.value)))
	}

	return NewHTMLValue(strings.Join(parts, " ")), nil
}

// urlValue is callable as url(v) and also carries the url module functions.
type urlValue struct{}

var _ starlark.Callable = &urlValue{}
var _ starlark.HasAttrs = &urlValue{}

func (s *urlValue) String() string        { return "<built-in function url>" }
func (s *urlValue) Type() string          { return "builtin_function_or_method" }
func (s *urlValue) Freeze()               {}
func (s *urlValue) Truth() starlark.Bool  { return true }
func (s *urlValue) Hash() (uint32, error) { return starlark.String("url").Hash() }
func (s *urlValue) Name() string          { return "url" }

func (s *urlValue) CallInternal(thread *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 || len(kwargs) != 0 {
		return starlark.None, fmt.Errorf("url: expected exactly one argument")
	}
	return starlark.String(URLQuote(toString(args.Index(0)))), nil
}

func (s *urlValue) Attr(name string) (starlark.Value, error) {
	if val, found := urlMembers[name]; found {
		return val, nil
	}
	return nil, nil
}

func (s *urlValue) AttrNames() []string {
	var result []string
	for name := range urlMembers {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// toString prints None as "" and strings without quotes.
func toString(val starlark.Value) string {
	switch typedVal := val.(type) {
	case starlark.NoneType:
		return ""
	case starlark.String:
		return string(typedVal)
	default:
		return val.String()
	}
}
