package pyanalysis

import (
	"github.com/pymodel/langcore/internal/pyast"
	"github.com/pymodel/langcore/internal/pytype"
)

// overview is the predeclaration pass: a shallow pass over top-level
// statements that predeclares every class/function name into scope before
// any statement is evaluated, so a class referencing a sibling defined
// later in the file still resolves.
func (r *run) overview(scope *Scope, body []pyast.Statement) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *pyast.ClassDef:
			ct := pytype.NewClassType(s.Name, r.moduleName)
			ct.Abstract = hasAbcMetaDecorator(s)
			ct.DeclLocation = r.loc(s)
			r.mod.Classes[s.Name] = ct
			scope.Define(s.Name, pytype.NewVariable(s.Name, r.loc(s), ct, pytype.SourceDeclaration))
		case *pyast.FunctionDef:
			fn := pytype.NewFunctionType(s.Name, r.moduleName, pytype.FunctionOverload{Decl: s})
			fn.IsAsync = s.IsAsync
			fn.DeclLocation = r.loc(s)
			r.mod.Functions[s.Name] = fn
			scope.Define(s.Name, pytype.NewVariable(s.Name, r.loc(s), fn, pytype.SourceDeclaration))
		}
	}
}

func hasAbcMetaDecorator(c *pyast.ClassDef) bool {
	for _, dec := range c.Decorators {
		if id, ok := dec.(*pyast.Identifier); ok && id.Value == "abstractmethod" {
			return true
		}
	}
	return false
}

// buildClassDetail fills in class detail: resolves
// declared bases against already-predeclared scope entries, computes MRO,
// and attaches members declared in the class body.
func (r *run) buildClassDetail(scope *Scope, s *pyast.ClassDef) {
	ct, ok := r.mod.Classes[s.Name]
	if !ok {
		return
	}

	var bases []*pytype.ClassType
	for _, baseExpr := range s.Bases {
		id, ok := baseExpr.(*pyast.Identifier)
		if !ok {
			continue
		}
		if base, ok := r.mod.Classes[id.Value]; ok {
			bases = append(bases, base)
		}
	}
	if err := ct.SetBases(bases); err != nil {
		r.mroError(s, err)
	}

	classScope := scope.Child()
	for _, stmt := range s.Body {
		switch member := stmt.(type) {
		case *pyast.FunctionDef:
			fn := pytype.NewFunctionType(member.Name, r.moduleName, r.buildOverload(classScope, member))
			fn.IsMethod = true
			fn.DeclLocation = r.loc(member)
			ct.AddMember(member.Name, &pytype.FunctionCallable{
				LocatedMember: pytype.NewLocatedMember(member.Name, r.loc(member)),
				Fn:            fn,
			})
		case *pyast.AssignStatement:
			r.evalAssign(classScope, member, func(name string, m pytype.Member) { ct.AddMember(name, m) })
		case *pyast.AnnAssignStatement:
			r.evalAnnAssign(classScope, member, func(name string, m pytype.Member) { ct.AddMember(name, m) })
		}
	}
}

func (r *run) mroError(s *pyast.ClassDef, err error) {
	r.addDiag(newStructuralDiag(r.filePath, s.Pos(), err.Error()))
}
