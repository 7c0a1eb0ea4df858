// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package texttemplate

import (
	"strings"

	"carvel.dev/tempita/pkg/filepos"
)

// loopControl travels up from continue/break to the nearest for loop.
type loopControl int

const (
	loopNormal loopControl = iota
	loopContinue
	loopBreak
)

func (c loopControl) String() string {
	switch c {
	case loopContinue:
		return "continue"
	case loopBreak:
		return "break"
	default:
		return "normal"
	}
}

// EvaluationCtx holds the state of a single Render call.
type EvaluationCtx struct {
	name      string
	evaluator Evaluator
	escaper   Escaper

	ns  Namespace
	out *strings.Builder

	defs       map[string]struct{}
	inherit    Value
	hasInherit bool

	controlPos *filepos.Position
}

func (e *EvaluationCtx) evalNodes(nodes []Node) (loopControl, error) {
	for _, node := range nodes {
		control, err := e.evalNode(node)
		if err != nil {
			return loopNormal, err
		}
		if control != loopNormal {
			return control, nil
		}
	}
	return loopNormal, nil
}

func (e *EvaluationCtx) evalNode(node Node) (loopControl, error) {
	switch typedNode := node.(type) {
	case *NodeText:
		e.out.WriteString(typedNode.Content)

	case *NodeExpr:
		return loopNormal, e.evalExpr(typedNode)

	case *NodePy:
		names, err := e.evaluator.Exec(typedNode.Code, e.ns)
		if err != nil {
			return loopNormal, e.runtimeError(typedNode.Position, err)
		}
		for _, name := range names {
			e.defs[name] = struct{}{}
		}

	case *NodeFor:
		return loopNormal, e.evalFor(typedNode)

	case *NodeCond:
		return e.evalCond(typedNode)

	case *NodeDefault:
		if _, found := e.ns[typedNode.Var]; !found {
			val, err := e.eval(typedNode.Code, typedNode.Position)
			if err != nil {
				return loopNormal, err
			}
			e.ns[typedNode.Var] = val
		}

	case *NodeInherit:
		val, err := e.eval(typedNode.Code, typedNode.Position)
		if err != nil {
			return loopNormal, err
		}
		e.inherit = val
		e.hasInherit = true

	case *NodeComment:
		// nothing to do

	case *NodeContinue:
		e.controlPos = typedNode.Position
		return loopContinue, nil

	case *NodeBreak:
		e.controlPos = typedNode.Position
		return loopBreak, nil

	default:
		return loopNormal, newError(RuntimeError, node.GetPosition(), e.name, "Unknown node type %T", node)
	}

	return loopNormal, nil
}

func (e *EvaluationCtx) evalExpr(node *NodeExpr) error {
	val, err := e.eval(node.Code, node.Position)
	if err != nil {
		return err
	}

	for _, filter := range node.Filters {
		if filter.Literal {
			str, err := e.str(val, node.Position)
			if err != nil {
				return err
			}
			if len(strings.TrimSpace(str)) == 0 {
				val = filter.Content
			}
			continue
		}

		fn, err := e.eval(filter.Content, node.Position)
		if err != nil {
			return err
		}
		val, err = e.evaluator.Call(fn, val)
		if err != nil {
			return e.runtimeError(node.Position, err)
		}
	}

	str, err := e.str(val, node.Position)
	if err != nil {
		return err
	}
	if e.escaper != nil {
		str = e.escaper.Escape(val, str)
	}
	e.out.WriteString(str)
	return nil
}

func (e *EvaluationCtx) evalFor(node *NodeFor) error {
	iterable, err := e.eval(node.Iterable, node.Position)
	if err != nil {
		return err
	}

	items, err := e.evaluator.Iterate(iterable)
	if err != nil {
		return e.runtimeError(node.Position, err)
	}

	for _, item := range items {
		if len(node.Vars) == 1 {
			e.ns[node.Vars[0]] = item
		} else {
			parts, err := e.evaluator.Iterate(item)
			if err != nil {
				return e.runtimeError(node.Position, err)
			}
			if len(parts) != len(node.Vars) {
				return newError(StructuralError, node.Position, e.name,
					"Need %d items to unpack (got %d items)", len(node.Vars), len(parts))
			}
			for i, name := range node.Vars {
				e.ns[name] = parts[i]
			}
		}

		control, err := e.evalNodes(node.Body)
		if err != nil {
			return err
		}
		if control == loopBreak {
			break
		}
	}

	return nil
}

func (e *EvaluationCtx) evalCond(node *NodeCond) (loopControl, error) {
	for _, branch := range node.Branches {
		if branch.Kind != BranchElse {
			val, err := e.eval(branch.Cond, branch.Position)
			if err != nil {
				return loopNormal, err
			}
			truth, err := e.evaluator.Truth(val)
			if err != nil {
				return loopNormal, e.runtimeError(branch.Position, err)
			}
			if !truth {
				continue
			}
		}
		return e.evalNodes(branch.Body)
	}
	return loopNormal, nil
}

func (e *EvaluationCtx) eval(code string, pos *filepos.Position) (Value, error) {
	val, err := e.evaluator.Eval(code, e.ns)
	if err != nil {
		return nil, e.runtimeError(pos, err)
	}
	return val, nil
}

func (e *EvaluationCtx) str(val Value, pos *filepos.Position) (string, error) {
	str, err := e.evaluator.String(val)
	if err != nil {
		return "", e.runtimeError(pos, err)
	}
	return str, nil
}

func (e *EvaluationCtx) runtimeError(pos *filepos.Position, err error) error {
	if tplErr, ok := err.(*Error); ok {
		return tplErr
	}
	return &Error{Kind: RuntimeError, Msg: err.Error(), Pos: pos, Name: e.name, Err: err}
}
