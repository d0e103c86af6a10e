package template

import (
	"fmt"
	"strings"

	starctx "github.com/leapstack-labs/featdesign/internal/starlark"
	"go.starlark.net/starlark"
)

// Render evaluates tmpl against ctx.
func Render(tmpl *Template, ctx *starctx.ExecutionContext) (string, error) {
	r := &renderer{ctx: ctx, file: tmpl.File}
	var sb strings.Builder
	if err := r.renderNodes(&sb, tmpl.Nodes, nil); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderString parses and renders input in one step.
func RenderString(input, file string, ctx *starctx.ExecutionContext) (string, error) {
	tmpl, err := ParseString(input, file)
	if err != nil {
		return "", err
	}
	return Render(tmpl, ctx)
}

type renderer struct {
	ctx  *starctx.ExecutionContext
	file string
}

func (r *renderer) renderNodes(sb *strings.Builder, nodes []Node, locals starlark.StringDict) error {
	for _, node := range nodes {
		switch n := node.(type) {
		case *TextNode:
			sb.WriteString(n.Text)

		case *ExprNode:
			out, err := r.ctx.EvalExprStringWithLocals(n.Expr, r.file, n.Pos().Line, locals)
			if err != nil {
				return WrapRenderError(n.Pos(), "expression failed", err)
			}
			sb.WriteString(out)

		case *ForBlock:
			if err := r.renderFor(sb, n, locals); err != nil {
				return err
			}

		case *IfBlock:
			if err := r.renderIf(sb, n, locals); err != nil {
				return err
			}

		default:
			return NewRenderErrorf(node.Pos(), "unexpected node %T", node)
		}
	}
	return nil
}

func (r *renderer) renderFor(sb *strings.Builder, n *ForBlock, locals starlark.StringDict) error {
	seq, err := r.ctx.EvalExprWithLocals(n.IterExpr, r.file, n.Pos().Line, locals)
	if err != nil {
		return WrapRenderError(n.Pos(), "for iterator failed", err)
	}
	if _, ok := seq.(starlark.Iterable); !ok {
		return NewRenderErrorf(n.Pos(), "cannot iterate over %s", seq.Type())
	}

	iter := starlark.Iterate(seq)
	defer iter.Done()

	var elem starlark.Value
	for iter.Next(&elem) {
		inner := make(starlark.StringDict, len(locals)+len(n.Vars))
		for k, v := range locals {
			inner[k] = v
		}
		if err := bindLoopVars(inner, n.Vars, elem); err != nil {
			return WrapRenderError(n.Pos(), "for loop", err)
		}
		if err := r.renderNodes(sb, n.Body, inner); err != nil {
			return err
		}
	}
	return nil
}

func bindLoopVars(locals starlark.StringDict, vars []string, elem starlark.Value) error {
	if len(vars) == 1 {
		locals[vars[0]] = elem
		return nil
	}

	seq, ok := elem.(starlark.Indexable)
	if !ok {
		return fmt.Errorf("cannot unpack %s into %d loop variables", elem.Type(), len(vars))
	}
	if seq.Len() != len(vars) {
		return fmt.Errorf("cannot unpack %d values into %d loop variables", seq.Len(), len(vars))
	}
	for i, name := range vars {
		locals[name] = seq.Index(i)
	}
	return nil
}

func (r *renderer) renderIf(sb *strings.Builder, n *IfBlock, locals starlark.StringDict) error {
	ok, err := r.truth(n.Condition, n.Pos(), locals)
	if err != nil {
		return err
	}
	if ok {
		return r.renderNodes(sb, n.Body, locals)
	}

	for _, branch := range n.ElseIfs {
		ok, err := r.truth(branch.Condition, branch.pos, locals)
		if err != nil {
			return err
		}
		if ok {
			return r.renderNodes(sb, branch.Body, locals)
		}
	}

	return r.renderNodes(sb, n.Else, locals)
}

func (r *renderer) truth(cond string, pos Position, locals starlark.StringDict) (bool, error) {
	v, err := r.ctx.EvalExprWithLocals(cond, r.file, pos.Line, locals)
	if err != nil {
		return false, WrapRenderError(pos, "condition failed", err)
	}
	return bool(v.Truth()), nil
}
