package pyast

import "github.com/pymodel/langcore/internal/location"

func (s *ImportStatement) statementNode()     {}
func (s *ImportFromStatement) statementNode() {}
func (s *ClassDef) statementNode()            {}
func (s *FunctionDef) statementNode()         {}
func (s *AssignStatement) statementNode()     {}
func (s *AnnAssignStatement) statementNode()  {}
func (s *AugAssignStatement) statementNode()  {}
func (s *IfStatement) statementNode()         {}
func (s *ForStatement) statementNode()        {}
func (s *WhileStatement) statementNode()      {}
func (s *WithStatement) statementNode()       {}
func (s *TryStatement) statementNode()        {}
func (s *ReturnStatement) statementNode()     {}
func (s *ExprStatement) statementNode()       {}
func (s *PassStatement) statementNode()       {}
func (s *AssertStatement) statementNode()     {}

// ImportAlias is one `name as asname` entry of an import statement.
type ImportAlias struct {
	Name   string
	AsName string // empty if no "as" clause
}

// ImportStatement represents `import a.b.c [as x], d [as y]`.
type ImportStatement struct {
	Base
	Names []ImportAlias
}

func (s *ImportStatement) Accept(v Visitor) { v.VisitImportStatement(s) }

// ImportFromStatement represents `from .pkg.mod import a as b, *`.
type ImportFromStatement struct {
	Base
	Level      int // number of leading dots for relative imports
	Module     string
	Names      []ImportAlias // empty + IsStar for "from x import *"
	IsStar     bool
}

func (s *ImportFromStatement) Accept(v Visitor) { v.VisitImportFromStatement(s) }

// ClassDef represents a class statement.
type ClassDef struct {
	Base
	Name       string
	Bases      []Expression
	Keywords   []Keyword // e.g. metaclass=...
	Body       []Statement
	Docstring  string
	Decorators []Expression
}

func (s *ClassDef) Accept(v Visitor) { v.VisitClassDef(s) }

// Keyword is a `name=value` call/class argument.
type Keyword struct {
	Name  string // empty for **kwargs spread
	Value Expression
}

// Parameter is one function parameter.
type ParamKind int

const (
	ParamPositional ParamKind = iota
	ParamKeywordOnly
	ParamVarPositional
	ParamVarKeyword
)

type Parameter struct {
	Name       string
	Annotation Expression // nil if unannotated
	Default    Expression // nil if no default
	Kind       ParamKind
}

// FunctionDef represents def/async def, including @overload-decorated
// stubs. The analysis pass builds one single-overload FunctionType per def;
// a later def of the same name replaces an earlier one, so consecutive
// @overload defs are not grouped.
type FunctionDef struct {
	Base
	Name       string
	Params     []Parameter
	Returns    Expression // return annotation, nil if absent
	Body       []Statement
	Docstring  string
	Decorators []Expression
	IsAsync    bool
	Receiver   *Parameter // self/cls, nil for module-level functions
}

func (s *FunctionDef) Accept(v Visitor) { v.VisitFunctionDef(s) }

// AssignStatement represents `a = b = value`.
type AssignStatement struct {
	Base
	Targets []Expression
	Value   Expression
}

func (s *AssignStatement) Accept(v Visitor) { v.VisitAssignStatement(s) }

// AnnAssignStatement represents `name: Type = value` or `name: Type` alone.
type AnnAssignStatement struct {
	Base
	Target     Expression
	Annotation Expression
	Value      Expression // nil if annotation-only
}

func (s *AnnAssignStatement) Accept(v Visitor) { v.VisitAnnAssignStatement(s) }

// AugAssignStatement represents `a += b`.
type AugAssignStatement struct {
	Base
	Target Expression
	Op     string
	Value  Expression
}

func (s *AugAssignStatement) Accept(v Visitor) { v.VisitAugAssignStatement(s) }

// IfStatement represents if/elif/else. When Test is an IsInstanceExpr on a
// plain name, the analyzer narrows that name inside Body.
type IfStatement struct {
	Base
	Test   Expression
	Body   []Statement
	Orelse []Statement
}

func (s *IfStatement) Accept(v Visitor) { v.VisitIfStatement(s) }

type ForStatement struct {
	Base
	Target Expression
	Iter   Expression
	Body   []Statement
	Orelse []Statement
}

func (s *ForStatement) Accept(v Visitor) { v.VisitForStatement(s) }

type WhileStatement struct {
	Base
	Test   Expression
	Body   []Statement
	Orelse []Statement
}

func (s *WhileStatement) Accept(v Visitor) { v.VisitWhileStatement(s) }

type WithItem struct {
	Context Expression
	Vars    Expression // nil if no "as" clause
}

type WithStatement struct {
	Base
	Items []WithItem
	Body  []Statement
}

func (s *WithStatement) Accept(v Visitor) { v.VisitWithStatement(s) }

type ExceptHandler struct {
	Type location.SourceSpan
	Exc  Expression // nil for bare except
	Name string
	Body []Statement
}

type TryStatement struct {
	Base
	Body     []Statement
	Handlers []ExceptHandler
	Orelse   []Statement
	Finally  []Statement
}

func (s *TryStatement) Accept(v Visitor) { v.VisitTryStatement(s) }

type ReturnStatement struct {
	Base
	Value Expression // nil for bare return
}

func (s *ReturnStatement) Accept(v Visitor) { v.VisitReturnStatement(s) }

// ExprStatement wraps a bare expression statement; also used by the stub
// generator to recognize string-literal docstring statements.
type ExprStatement struct {
	Base
	Expression Expression
}

func (s *ExprStatement) Accept(v Visitor) { v.VisitExprStatement(s) }

// PassStatement models `pass`, which the stub generator collapses to `...`
// inside empty function/class bodies.
type PassStatement struct {
	Base
}

func (s *PassStatement) Accept(v Visitor) { v.VisitPassStatement(s) }

type AssertStatement struct {
	Base
	Test Expression
	Msg  Expression
}

func (s *AssertStatement) Accept(v Visitor) { v.VisitAssertStatement(s) }
