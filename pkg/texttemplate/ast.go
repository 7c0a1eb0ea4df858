// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"strings"

	"carvel.dev/tempita/pkg/filepos"
)

// Node is implemented by every AST node.
type Node interface {
	GetPosition() *filepos.Position
}

type NodeRoot struct {
	Items []Node
}

type NodeText struct {
	Content string
}

// NodeExpr prints the result of Code passed through Filters.
type NodeExpr struct {
	Position *filepos.Position
	Code     string
	Filters  []Filter
}

// Filter is either a quoted fallback used when the value prints as
// blank, or an expression evaluating to a one-argument callable.
type Filter struct {
	Literal bool
	Content string
}

type NodePy struct {
	Position *filepos.Position
	Code     string
}

type NodeFor struct {
	Position *filepos.Position
	Vars     []string
	Iterable string
	Body     []Node
}

type NodeCond struct {
	Position *filepos.Position
	Branches []*NodeBranch
}

type BranchKind int

const (
	BranchIf BranchKind = iota
	BranchElif
	BranchElse
)

func (k BranchKind) String() string {
	switch k {
	case BranchIf:
		return "if"
	case BranchElif:
		return "elif"
	default:
		return "else"
	}
}

type NodeBranch struct {
	Kind     BranchKind
	Position *filepos.Position
	Cond     string // empty for else
	Body     []Node
}

type NodeDefault struct {
	Position *filepos.Position
	Var      string
	Code     string
}

type NodeInherit struct {
	Position *filepos.Position
	Code     string
}

type NodeComment struct {
	Position *filepos.Position
	Content  string
}

type NodeContinue struct {
	Position *filepos.Position
}

type NodeBreak struct {
	Position *filepos.Position
}

var _ = []Node{&NodeRoot{}, &NodeText{}, &NodeExpr{}, &NodePy{}, &NodeFor{}, &NodeCond{},
	&NodeBranch{}, &NodeDefault{}, &NodeInherit{}, &NodeComment{}, &NodeContinue{}, &NodeBreak{}}

func (n *NodeRoot) GetPosition() *filepos.Position     { return filepos.NewPosition(1, 1) }
func (n *NodeText) GetPosition() *filepos.Position     { return filepos.NewUnknownPosition() }
func (n *NodeExpr) GetPosition() *filepos.Position     { return n.Position }
func (n *NodePy) GetPosition() *filepos.Position       { return n.Position }
func (n *NodeFor) GetPosition() *filepos.Position      { return n.Position }
func (n *NodeCond) GetPosition() *filepos.Position     { return n.Position }
func (n *NodeBranch) GetPosition() *filepos.Position   { return n.Position }
func (n *NodeDefault) GetPosition() *filepos.Position  { return n.Position }
func (n *NodeInherit) GetPosition() *filepos.Position  { return n.Position }
func (n *NodeComment) GetPosition() *filepos.Position  { return n.Position }
func (n *NodeContinue) GetPosition() *filepos.Position { return n.Position }
func (n *NodeBreak) GetPosition() *filepos.Position    { return n.Position }

// AsString reproduces template source from the tree. Whitespace trimmed
// during lexing is not restored.
func (n *NodeRoot) AsString() string {
	return nodesAsString(n.Items)
}

func nodesAsString(nodes []Node) string {
	var result string
	for _, node := range nodes {
		switch typedNode := node.(type) {
		case *NodeText:
			result += typedNode.Content
		case *NodeExpr:
			code := typedNode.Code
			for _, filter := range typedNode.Filters {
				if filter.Literal {
					code += " | " + quoteRepr(filter.Content)
				} else {
					code += " | " + filter.Content
				}
			}
			result += "{{" + code + "}}"
		case *NodePy:
			if strings.Contains(typedNode.Code, "\n") {
				result += "{{py:\n" + typedNode.Code + "}}"
			} else {
				result += "{{py:" + typedNode.Code + "}}"
			}
		case *NodeFor:
			result += "{{for " + strings.Join(typedNode.Vars, ", ") + " in " + typedNode.Iterable + "}}"
			result += nodesAsString(typedNode.Body) + "{{endfor}}"
		case *NodeCond:
			for _, branch := range typedNode.Branches {
				if branch.Kind == BranchElse {
					result += "{{else}}"
				} else {
					result += "{{" + branch.Kind.String() + " " + branch.Cond + "}}"
				}
				result += nodesAsString(branch.Body)
			}
			result += "{{endif}}"
		case *NodeDefault:
			result += "{{default " + typedNode.Var + " = " + typedNode.Code + "}}"
		case *NodeInherit:
			result += "{{inherit " + typedNode.Code + "}}"
		case *NodeComment:
			result += "{{" + typedNode.Content + "}}"
		case *NodeContinue:
			result += "{{continue}}"
		case *NodeBreak:
			result += "{{break}}"
		}
	}
	return result
}
