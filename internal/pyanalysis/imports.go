package pyanalysis

import (
	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/pyast"
	"github.com/pymodel/langcore/internal/pytype"
)

// ModuleProvider is the analyzer's one collaborator: resolving a dotted
// import name to the Document backing it (creating/locking it in the RDT
// as needed), and requeuing a dependent module for re-analysis once this
// module's public surface changes. Defined here rather than importing
// internal/rdt directly so pyanalysis stays agnostic of refcounting and
// factory wiring — it only needs "give me the module named X".
type ModuleProvider interface {
	ResolveImport(name string) (*document.Document, error)
	RequestReanalysis(uri string)
	// ResolveStub returns the attached .pyi stub Document for name, or
	// (nil, nil) if the module has no stub — used to implement 
	// the stub-attachment merge (stub members override matched
	// non-stub members; the non-stub analysis remains reachable under
	// its own module name as PrimaryModule).
	ResolveStub(name string) (*document.Document, error)
}

func (r *run) processImport(scope *Scope, stmt *pyast.ImportStatement) {
	for _, alias := range stmt.Names {
		bindName := bindingName(alias)
		dep, err := r.modules.ResolveImport(alias.Name)
		if err != nil || dep == nil {
			r.addDiag(diagnostics.UnresolvedImport(r.filePath, stmt.Pos(), alias.Name))
			scope.Define(bindName, pytype.NewVariable(bindName, r.loc(stmt), pytype.Unknown, pytype.SourceDeclaration))
			continue
		}
		r.mod.Dependencies = append(r.mod.Dependencies, alias.Name)
		scope.Define(bindName, pytype.NewVariable(bindName, r.loc(stmt), r.moduleNamespaceType(dep), pytype.SourceDeclaration))
	}
}

func (r *run) processImportFrom(scope *Scope, stmt *pyast.ImportFromStatement) {
	dep, err := r.modules.ResolveImport(stmt.Module)
	if err != nil || dep == nil {
		r.addDiag(diagnostics.UnresolvedImport(r.filePath, stmt.Pos(), stmt.Module))
		for _, alias := range stmt.Names {
			bindName := bindingName(alias)
			scope.Define(bindName, pytype.NewVariable(bindName, r.loc(stmt), pytype.Unknown, pytype.SourceDeclaration))
		}
		return
	}
	r.mod.Dependencies = append(r.mod.Dependencies, stmt.Module)

	depAnalysis, _ := dep.GetAnalysis().(*Analysis)
	if depAnalysis == nil {
		// Dependency hasn't finished analyzing yet; bind Unknown rather
		// than blocking — once it completes it will requeue us
		// for a refined re-analysis.
		for _, alias := range stmt.Names {
			bindName := bindingName(alias)
			scope.Define(bindName, pytype.NewVariable(bindName, r.loc(stmt), pytype.Unknown, pytype.SourceDeclaration))
		}
		return
	}

	if stmt.IsStar {
		for name, member := range starExports(depAnalysis) {
			scope.Define(name, member)
		}
		return
	}

	for _, alias := range stmt.Names {
		bindName := bindingName(alias)
		member, ok := depAnalysis.Globals[alias.Name]
		if !ok {
			r.addDiag(diagnostics.New(r.filePath, stmt.Pos(), diagnostics.CodeUnresolvedImport,
				diagnostics.SeverityWarning, "cannot find name %q in module %q", alias.Name, stmt.Module))
			member = pytype.NewVariable(bindName, r.loc(stmt), pytype.Unknown, pytype.SourceDeclaration)
		}
		scope.Define(bindName, member)
	}
}

func bindingName(alias pyast.ImportAlias) string {
	if alias.AsName != "" {
		return alias.AsName
	}
	return alias.Name
}

// starExports computes the set of names `from mod import *` actually
// imports: exactly dep.dunderAll when present (supplemented
// __all__-aware re-export rule), else every non-private global name.
func starExports(dep *Analysis) map[string]pytype.Member {
	out := make(map[string]pytype.Member)
	if len(dep.dunderAll) > 0 {
		for _, name := range dep.dunderAll {
			if m, ok := dep.Globals[name]; ok {
				out[name] = m
			}
		}
		return out
	}
	for name, member := range dep.Globals {
		if !isPrivate(name, dep.dunderAll) {
			out[name] = member
		}
	}
	return out
}

// moduleNamespaceType wraps an imported module as an opaque namespace type
// whose members are that module's published globals, so `mod.attr` resolves
// via Type.Member the same way any other attribute access does.
func (r *run) moduleNamespaceType(dep *document.Document) pytype.Type {
	ns := &moduleNamespace{Base: pytype.NewBase(dep.ModuleName, dep.ModuleName)}
	if a, ok := dep.GetAnalysis().(*Analysis); ok {
		ns.MemberMap = a.Globals
	}
	return ns
}

type moduleNamespace struct {
	pytype.Base
}

func (m *moduleNamespace) CreateInstance(args []pytype.Value) (*pytype.Instance, error) {
	return &pytype.Instance{TypeRef: m}, nil
}

func (m *moduleNamespace) Call(instance *pytype.Instance, memberName string, args []pytype.Value) (pytype.Member, error) {
	return pytype.NewVariable(memberName, m.DeclLocation, pytype.Unknown, pytype.SourceBuiltin), nil
}

func (m *moduleNamespace) Index(instance *pytype.Instance, args []pytype.Value) (pytype.Member, error) {
	return pytype.NewVariable("[]", m.DeclLocation, pytype.Unknown, pytype.SourceBuiltin), nil
}
