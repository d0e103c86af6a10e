package starlark

import (
	"fmt"

	"github.com/leapstack-labs/featdesign/internal/design"
	"go.starlark.net/starlark"
)

// ExecutionContext provides the globals for design template execution.
// Globals are frozen: a template can read the namespace but never change it.
type ExecutionContext struct {
	globals starlark.StringDict
}

// NewExecutionContext builds a context whose globals are the entries of ns.
func NewExecutionContext(ns design.Namespace) (*ExecutionContext, error) {
	globals, err := Predeclared(ns)
	if err != nil {
		return nil, err
	}
	globals.Freeze()
	return &ExecutionContext{globals: globals}, nil
}

// Globals returns the global dictionary for Starlark execution.
func (ctx *ExecutionContext) Globals() starlark.StringDict {
	return ctx.globals
}

// EvalExpr evaluates a single Starlark expression and returns the result.
// This is used for {{ expr }} template expressions.
func (ctx *ExecutionContext) EvalExpr(expr string, filename string, line int) (starlark.Value, error) {
	return ctx.EvalExprWithLocals(expr, filename, line, nil)
}

// EvalExprWithLocals evaluates a Starlark expression with additional local variables.
// This is used for expressions inside loops where loop variables need to be in scope.
func (ctx *ExecutionContext) EvalExprWithLocals(expr string, filename string, line int, locals starlark.StringDict) (starlark.Value, error) {
	thread := ctx.newThread(filename)

	// Combine globals with locals (locals take precedence)
	globals := ctx.globals
	if len(locals) > 0 {
		combined := make(starlark.StringDict, len(globals)+len(locals))
		for k, v := range globals {
			combined[k] = v
		}
		for k, v := range locals {
			combined[k] = v
		}
		globals = combined
	}

	result, err := starlark.Eval(thread, filename, expr, globals) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err != nil {
		return nil, &EvalError{
			File:    filename,
			Line:    line,
			Expr:    expr,
			Message: err.Error(),
		}
	}

	return result, nil
}

// EvalExprString evaluates a Starlark expression and returns the string result.
func (ctx *ExecutionContext) EvalExprString(expr string, filename string, line int) (string, error) {
	return ctx.EvalExprStringWithLocals(expr, filename, line, nil)
}

// EvalExprStringWithLocals evaluates a Starlark expression with local variables and returns the string result.
// Strings are emitted raw, None as the empty string, and everything else in
// Starlark notation (so a float weight prints as 1.0).
func (ctx *ExecutionContext) EvalExprStringWithLocals(expr string, filename string, line int, locals starlark.StringDict) (string, error) {
	result, err := ctx.EvalExprWithLocals(expr, filename, line, locals)
	if err != nil {
		return "", err
	}

	switch v := result.(type) {
	case starlark.String:
		return string(v), nil
	case starlark.NoneType:
		return "", nil
	default:
		return result.String(), nil
	}
}

// newThread creates a new Starlark thread for execution.
func (ctx *ExecutionContext) newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, _ string) {
			// Template execution should not print
		},
	}
}

// EvalError represents an error during Starlark expression evaluation.
type EvalError struct {
	File    string
	Line    int
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: error evaluating %q: %s", e.File, e.Line, e.Expr, e.Message)
	}
	return fmt.Sprintf("%s: error evaluating %q: %s", e.File, e.Expr, e.Message)
}
