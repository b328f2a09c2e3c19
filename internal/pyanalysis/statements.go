package pyanalysis

import (
	"github.com/pymodel/langcore/internal/pyast"
	"github.com/pymodel/langcore/internal/pytype"
)

// execBlock walks module-level statements:
// evaluate assignment-shaped statements, descend into control-flow bodies
// (Python has no block scoping, so for/while/try/with share the enclosing
// scope), finish class/function detail, and narrow isinstance guards.
//
// Nested function bodies are only used to build their signature (already
// done by buildFunctionDetail); their own statements are not walked here —
// a deliberate scope limit matching "best-effort, not a
// runtime": inference only needs module and class surface shape, not what
// a function's body does internally.
func (r *run) execBlock(scope *Scope, body []pyast.Statement) {
	for _, stmt := range body {
		r.execStatement(scope, stmt)
	}
}

func (r *run) execStatement(scope *Scope, stmt pyast.Statement) {
	switch s := stmt.(type) {
	case *pyast.ImportStatement, *pyast.ImportFromStatement:
		// Already handled by the dedicated import pass.
	case *pyast.ClassDef:
		r.buildClassDetail(scope, s)
	case *pyast.FunctionDef:
		r.buildFunctionDetail(scope, s)
	case *pyast.AssignStatement:
		r.evalAssign(scope, s, scope.Define)
	case *pyast.AnnAssignStatement:
		r.evalAnnAssign(scope, s, scope.Define)
	case *pyast.AugAssignStatement:
		r.evalAugAssign(scope, s)
	case *pyast.ForStatement:
		r.evalFor(scope, s)
	case *pyast.WhileStatement:
		r.execBlock(scope, s.Body)
		r.execBlock(scope, s.Orelse)
	case *pyast.WithStatement:
		r.evalWith(scope, s)
	case *pyast.TryStatement:
		r.evalTry(scope, s)
	case *pyast.IfStatement:
		r.evalIf(scope, s)
	case *pyast.ExprStatement, *pyast.ReturnStatement, *pyast.PassStatement, *pyast.AssertStatement:
		// No scope-affecting behaviour modeled at module level.
	}
}

func (r *run) evalAssign(scope *Scope, s *pyast.AssignStatement, define func(string, pytype.Member)) {
	val := r.inferExpr(scope, s.Value)
	for _, target := range s.Targets {
		r.bindTarget(scope, target, val, define)
	}
}

// bindTarget binds t to value, recursing through tuple/list unpacking
// targets by index against a sequence-shaped value where possible.
func (r *run) bindTarget(scope *Scope, t pyast.Expression, value pytype.Type, define func(string, pytype.Member)) {
	switch target := t.(type) {
	case *pyast.Identifier:
		define(target.Value, pytype.NewVariable(target.Value, r.loc(target), value, pytype.SourceAssignment))
	case *pyast.TupleExpr:
		r.bindUnpack(scope, target.Elements, value, define)
	case *pyast.ListExpr:
		r.bindUnpack(scope, target.Elements, value, define)
	case *pyast.StarredExpr:
		r.bindTarget(scope, target.Value, value, define)
	case *pyast.Attribute, *pyast.SubscriptExpr:
		// Attribute/subscript assignment targets don't introduce a new
		// scope name; nothing to bind here at module level.
	}
}

func (r *run) bindUnpack(scope *Scope, elements []pyast.Expression, value pytype.Type, define func(string, pytype.Member)) {
	inst := &pytype.Instance{TypeRef: value}
	for i, elem := range elements {
		elemType := pytype.Unknown
		if member, err := value.Index(inst, []pytype.Value{{Literal: i}}); err == nil {
			if v, ok := member.(*pytype.Variable); ok {
				elemType = v.Val
			}
		}
		r.bindTarget(scope, elem, elemType, define)
	}
}

func (r *run) evalAnnAssign(scope *Scope, s *pyast.AnnAssignStatement, define func(string, pytype.Member)) {
	annType := r.resolveAnnotation(scope, s.Annotation)
	// Annotations without values still bind the annotated type to the name
	//.
	r.bindTarget(scope, s.Target, annType, define)
}

func (r *run) evalAugAssign(scope *Scope, s *pyast.AugAssignStatement) {
	id, ok := s.Target.(*pyast.Identifier)
	if !ok {
		return
	}
	if _, ok := scope.Lookup(id.Value); ok {
		return // type unchanged by `+=` etc — best-effort, no widening modeled
	}
	val := r.inferExpr(scope, s.Value)
	scope.Define(id.Value, pytype.NewVariable(id.Value, r.loc(s), val, pytype.SourceAssignment))
}

func (r *run) evalFor(scope *Scope, s *pyast.ForStatement) {
	iterType := r.inferExpr(scope, s.Iter)
	elemType := pytype.Type(pytype.Unknown)
	switch it := iterType.(type) {
	case *pytype.ListType:
		elemType = it.ElementType
	case *pytype.SetType:
		elemType = it.ElementType
	case *pytype.IteratorType:
		elemType = it.ElementType
	}
	if elemType == nil {
		elemType = pytype.Unknown
	}
	r.bindTarget(scope, s.Target, elemType, scope.Define)
	r.execBlock(scope, s.Body)
	r.execBlock(scope, s.Orelse)
}

func (r *run) evalWith(scope *Scope, s *pyast.WithStatement) {
	for _, item := range s.Items {
		ctxType := r.inferExpr(scope, item.Context)
		if item.Vars != nil {
			r.bindTarget(scope, item.Vars, ctxType, scope.Define)
		}
	}
	r.execBlock(scope, s.Body)
}

func (r *run) evalTry(scope *Scope, s *pyast.TryStatement) {
	r.execBlock(scope, s.Body)
	for _, h := range s.Handlers {
		if h.Name != "" {
			excType := pytype.Type(pytype.Unknown)
			if h.Exc != nil {
				if t := r.inferExpr(scope, h.Exc); t != nil {
					excType = t
				}
			}
			scope.Define(h.Name, pytype.NewVariable(h.Name, r.loc(s), excType, pytype.SourceAssignment))
		}
		r.execBlock(scope, h.Body)
	}
	r.execBlock(scope, s.Orelse)
	r.execBlock(scope, s.Finally)
}

// evalIf handles guarded narrowing: an `isinstance(name, T)` test
// pushes a scope narrowing `name` to `T` for the contained suite only.
func (r *run) evalIf(scope *Scope, s *pyast.IfStatement) {
	if isi, ok := s.Test.(*pyast.IsInstanceExpr); ok {
		if id, ok := isi.Target.(*pyast.Identifier); ok {
			narrowed := scope.Child()
			narrowType := r.resolveAnnotation(scope, isi.Type)
			narrowed.Define(id.Value, pytype.NewVariable(id.Value, r.loc(s), narrowType, pytype.SourceNarrowed))
			r.execBlock(narrowed, s.Body)
			r.execBlock(scope, s.Orelse)
			return
		}
	}
	r.execBlock(scope, s.Body)
	r.execBlock(scope, s.Orelse)
}
