// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkeval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/k14s/starlark-go/syntax"
)

const seedVar = "__tempita_seed__"

// boundNames lists, in order of first appearance, the global names that
// the top-level statements of f assign (including inside top-level if
// and for statements, but not inside function bodies). Names bound by
// load statements are local to the block and are not included.
func boundNames(f *syntax.File) []string {
	collector := nameCollector{seen: map[string]struct{}{}}
	collector.stmts(f.Stmts)
	return collector.names
}

type nameCollector struct {
	names []string
	seen  map[string]struct{}
}

func (c *nameCollector) add(name string) {
	if _, found := c.seen[name]; !found {
		c.seen[name] = struct{}{}
		c.names = append(c.names, name)
	}
}

func (c *nameCollector) stmts(stmts []syntax.Stmt) {
	for _, stmt := range stmts {
		switch typedStmt := stmt.(type) {
		case *syntax.AssignStmt:
			c.lhs(typedStmt.LHS)
		case *syntax.DefStmt:
			c.add(typedStmt.Name.Name)
		case *syntax.ForStmt:
			c.lhs(typedStmt.Vars)
			c.stmts(typedStmt.Body)
		case *syntax.IfStmt:
			c.stmts(typedStmt.True)
			c.stmts(typedStmt.False)
		}
	}
}

func (c *nameCollector) lhs(expr syntax.Expr) {
	switch typedExpr := expr.(type) {
	case *syntax.Ident:
		c.add(typedExpr.Name)
	case *syntax.TupleExpr:
		for _, item := range typedExpr.List {
			c.lhs(item)
		}
	case *syntax.ListExpr:
		for _, item := range typedExpr.List {
			c.lhs(item)
		}
	case *syntax.ParenExpr:
		c.lhs(typedExpr.X)
	}
}

// referencedNames lists every identifier mentioned anywhere under node.
func referencedNames(node syntax.Node) map[string]struct{} {
	result := map[string]struct{}{}
	syntax.Walk(node, func(n syntax.Node) bool {
		if ident, ok := n.(*syntax.Ident); ok {
			result[ident.Name] = struct{}{}
		}
		return true
	})
	return result
}

// seedPreamble rebinds names that already exist in the template
// namespace as globals, so that code such as `x = x + 1` reads the
// current value before assigning. It occupies a single line.
func seedPreamble(names []string) string {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)

	var stmts []string
	for _, name := range sorted {
		stmts = append(stmts, fmt.Sprintf("%s = %s[%q]", name, seedVar, name))
	}
	return strings.Join(stmts, "; ") + "\n"
}
