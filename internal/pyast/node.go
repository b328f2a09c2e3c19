// Package pyast defines the minimal Python AST surface the analysis pipeline,
// stub generator, and module resolver need. The actual lexer and parser are
// treated as an external collaborator, assumed available as a library that
// yields an AST and new-line table; this package is the contract that
// collaborator must satisfy, not a parser implementation.
package pyast

import "github.com/pymodel/langcore/internal/location"

// Node is the base interface every AST node implements.
type Node interface {
	Pos() location.SourceSpan
	Accept(v Visitor)
}

// Statement is a Node that appears in a statement list.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Base gives every concrete node its span and Pos() without repeating the
// boilerplate; embed it first so Pos() is inherited. It's exported so that
// packages outside pyast — any "library that yields an AST" per the package
// doc above — can populate a node's span directly in a composite literal
// instead of needing a constructor for every node type.
type Base struct {
	Span location.SourceSpan
}

func (b Base) Pos() location.SourceSpan { return b.Span }

// Module is the root node of a single parsed file. A package (a multi-file
// module represented by its dotted prefix with an __init__ entry) is
// modeled one level up, in modresolver, as a set of Modules sharing a
// directory.
type Module struct {
	Base
	File       string
	Docstring  string
	Body       []Statement
	DunderAll  []string // nil if __all__ is absent; set by the analysis pass, not the parser
}

func (m *Module) Accept(v Visitor) { v.VisitModule(m) }
