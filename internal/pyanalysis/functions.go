package pyanalysis

import (
	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/location"
	"github.com/pymodel/langcore/internal/pyast"
	"github.com/pymodel/langcore/internal/pytype"
)

// newStructuralDiag wraps an internal invariant violation (an inconsistent
// MRO, a malformed declaration) as a reportable diagnostic rather than a Go
// panic — analysis must stay best-effort and keep producing a usable
// Analysis even when one class/function's detail pass fails.
func newStructuralDiag(file string, span location.SourceSpan, msg string) *diagnostics.Diagnostic {
	return diagnostics.New(file, span, diagnostics.CodeStructuralError, diagnostics.SeverityError, "%s", msg)
}

// buildFunctionDetail fills in the signature detail for a module-level
// function: replaces its predeclared placeholder overload with one built
// from the real parameter/return annotations.
func (r *run) buildFunctionDetail(scope *Scope, s *pyast.FunctionDef) {
	fn, ok := r.mod.Functions[s.Name]
	if !ok {
		return
	}
	fn.Overloads = []pytype.FunctionOverload{r.buildOverload(scope, s)}
}

// buildOverload builds one FunctionOverload from a FunctionDef's params
// and return annotation.
func (r *run) buildOverload(scope *Scope, s *pyast.FunctionDef) pytype.FunctionOverload {
	params := make([]pytype.Parameter, 0, len(s.Params))
	for _, p := range s.Params {
		param := pytype.Parameter{Name: p.Name, Kind: p.Kind}
		if p.Annotation != nil {
			param.Annotated = r.resolveAnnotation(scope, p.Annotation)
		}
		if p.Default != nil {
			param.HasDefault = true
			param.DefaultValue = pytype.Value{Type: r.inferExpr(scope, p.Default), Literal: literalOf(p.Default)}
		}
		params = append(params, param)
	}

	ret := pytype.Type(pytype.Unknown)
	if s.Returns != nil {
		ret = r.resolveAnnotation(scope, s.Returns)
	}

	return pytype.FunctionOverload{Params: params, ReturnType: ret, Decl: s}
}
