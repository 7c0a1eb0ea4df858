// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpllibrary_test

import (
	"testing"

	"carvel.dev/tempita/pkg/starlarkeval"
	"carvel.dev/tempita/pkg/texttemplate"
	"carvel.dev/tempita/pkg/tmpllibrary"
	"github.com/k14s/starlark-go/starlark"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type LibrarySuite struct {
	evaluator *starlarkeval.Evaluator
}

var _ = Suite(&LibrarySuite{})

func (s *LibrarySuite) SetUpTest(c *C) {
	api := tmpllibrary.NewAPI()
	s.evaluator = starlarkeval.NewEvaluator(starlarkeval.EvaluatorOpts{
		Builtins: api.HTMLNamespace(),
		Load:     api.FindModule,
	})
}

func (s *LibrarySuite) eval(c *C, code string) string {
	val, err := s.evaluator.Eval(code, texttemplate.Namespace{})
	c.Assert(err, IsNil, Commentf("code %q", code))
	str, err := s.evaluator.String(val)
	c.Assert(err, IsNil)
	return str
}

func (s *LibrarySuite) evalErr(c *C, code string) string {
	_, err := s.evaluator.Eval(code, texttemplate.Namespace{})
	c.Assert(err, NotNil, Commentf("code %q", code))
	return err.Error()
}

func (s *LibrarySuite) TestBraces(c *C) {
	c.Assert(s.eval(c, "start_braces + end_braces"), Equals, "{{}}")
}

func (s *LibrarySuite) TestHTMLQuote(c *C) {
	c.Assert(s.eval(c, `html_quote('<a href="x">&</a>')`), Equals, "&lt;a href=&quot;x&quot;&gt;&amp;&lt;/a&gt;")
	c.Assert(s.eval(c, `html_quote("a\nb")`), Equals, "a<br>b")
	c.Assert(s.eval(c, "html_quote(None)"), Equals, "")
	c.Assert(s.eval(c, "html_quote(12)"), Equals, "12")
	c.Assert(s.eval(c, `html_quote(html("<b>"))`), Equals, "&lt;b&gt;")
	c.Assert(s.eval(c, `html_quote(html("<b>"), force=False)`), Equals, "<b>")
	c.Assert(s.evalErr(c, `html_quote("x", strict=True)`), Matches, ".*invalid argument name: strict.*")
}

func (s *LibrarySuite) TestAttr(c *C) {
	c.Assert(s.eval(c, `attr(src="a.png", alt="<x>", class_="c", title=None)`), Equals, `alt="&lt;x&gt;" class="c" src="a.png"`)
	c.Assert(s.eval(c, "attr()"), Equals, "")
	c.Assert(s.evalErr(c, `attr("positional")`), Matches, ".*expected only keyword arguments.*")
}

func (s *LibrarySuite) TestURL(c *C) {
	c.Assert(s.eval(c, `url("a b/c")`), Equals, "a%20b/c")
	c.Assert(s.eval(c, `url.path_segment_encode("a b/c")`), Equals, "a%20b%2Fc")
	c.Assert(s.eval(c, `url.query_params_encode({"y": ["1", "2"], "x": ["a b"]})`), Equals, "x=a+b&y=1&y=2")
}

func (s *LibrarySuite) TestHTMLValue(c *C) {
	val, err := s.evaluator.Eval(`html("<b>")`, texttemplate.Namespace{})
	c.Assert(err, IsNil)

	escaper := tmpllibrary.HTMLEscaper{}
	c.Assert(escaper.Escape(val, "<b>"), Equals, "<b>")
	c.Assert(escaper.Escape("<b>", "<b>"), Equals, "&lt;b&gt;")

	goVal, err := starlarkeval.NewStarlarkValue(val.(starlark.Value)).AsGoValue()
	c.Assert(err, IsNil)
	c.Assert(goVal, Equals, "<b>")
}

func (s *LibrarySuite) TestLooper(c *C) {
	c.Assert(s.eval(c, `[(l.index, l.number, l.first, l.last, l.even, l.item) for l, _ in looper("ab")]`),
		Equals, `[(0, 1, True, False, False, "a"), (1, 2, False, True, True, "b")]`)
	c.Assert(s.eval(c, `[l.next for l, _ in looper([1, 2])]`), Equals, "[2, None]")
	c.Assert(s.eval(c, `[l.previous for l, _ in looper([1, 2])]`), Equals, "[None, 1]")
	c.Assert(s.eval(c, `[l.length for l, _ in looper([])]`), Equals, "[]")
	c.Assert(s.evalErr(c, "looper(1)"), Matches, ".*expected iterable, but was int.*")
}

func (s *LibrarySuite) TestLooperGroups(c *C) {
	code := `[l.first_group(g) for l, _ in looper([{"k": 1}, {"k": 1}, {"k": 2}])]`
	c.Assert(s.eval(c, "(lambda g: "+code+`)("k")`), Equals, "[True, False, True]")
	c.Assert(s.eval(c, "(lambda g: "+code+`)(lambda i: i["k"] > 1)`), Equals, "[True, False, True]")

	c.Assert(s.eval(c, `[l.last_group(".upper") for l, _ in looper(["a", "a", "b"])]`), Equals, "[False, True, True]")
	c.Assert(s.eval(c, `[l.last_group(0) for l, _ in looper([(1, "x"), (2, "y")])]`), Equals, "[True, True]")
	c.Assert(s.evalErr(c, `[l.first_group(".nope") for l, _ in looper([1, 2])]`), Matches, ".*has no attribute 'nope'.*")
}

func (s *LibrarySuite) TestSerialization(c *C) {
	c.Assert(s.eval(c, `json.encode({"b": 1, "a": [True, None]})`), Equals, `{"a":[true,null],"b":1}`)
	c.Assert(s.eval(c, `json.decode('{"x": ["a", "b"]}')["x"][1]`), Equals, "b")
	c.Assert(s.eval(c, `yaml.encode({"z": 1, "a": {"b": "c"}})`), Equals, "z: 1\na:\n  b: c\n")
	c.Assert(s.eval(c, `list(yaml.decode("z: 1\na: 2").keys())`), Equals, `["z", "a"]`)
	c.Assert(s.eval(c, `toml.decode('[t]\nk = "v"')["t"]["k"]`), Equals, "v")
	c.Assert(s.eval(c, `toml.encode({"k": "v"})`), Equals, "k = \"v\"\n")
}

func (s *LibrarySuite) TestVersion(c *C) {
	c.Assert(s.eval(c, `version.require_at_least("0.0.1")`), Equals, "")
	c.Assert(s.evalErr(c, `version.require_at_least("1000.0.0")`), Matches, ".*does not meet the minimum required version 1000.0.0.*")
	c.Assert(s.evalErr(c, `version.require_at_least("not a version")`), Matches, ".*Malformed constraint.*")
}

func (s *LibrarySuite) TestFindModule(c *C) {
	api := tmpllibrary.NewAPI()

	mod, err := api.FindModule("@tempita:html")
	c.Assert(err, IsNil)
	c.Assert(mod["attr"], NotNil)

	_, err = api.FindModule("@tempita:nope")
	c.Assert(err, ErrorMatches, "builtin tempita library does not have module 'nope'")

	_, err = api.FindModule("other.star")
	c.Assert(err, ErrorMatches, "cannot load 'other.star'.*")
}

func (s *LibrarySuite) TestPlainNamespaceHasNoHTMLHelpers(c *C) {
	ns := tmpllibrary.NewAPI().Namespace()
	_, found := ns["attr"]
	c.Assert(found, Equals, false)
	_, found = ns["looper"]
	c.Assert(found, Equals, true)
}
