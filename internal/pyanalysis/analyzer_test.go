package pyanalysis

import (
	"fmt"
	"testing"

	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/location"
	"github.com/pymodel/langcore/internal/pyast"
	"github.com/pymodel/langcore/internal/pytype"
)

type fakeModules struct {
	docs       map[string]*document.Document
	stubs      map[string]*document.Document
	reanalyzed []string
}

func newFakeModules() *fakeModules {
	return &fakeModules{docs: map[string]*document.Document{}, stubs: map[string]*document.Document{}}
}

func (f *fakeModules) ResolveImport(name string) (*document.Document, error) {
	d, ok := f.docs[name]
	if !ok {
		return nil, fmt.Errorf("module %q not found", name)
	}
	return d, nil
}

func (f *fakeModules) RequestReanalysis(uri string) { f.reanalyzed = append(f.reanalyzed, uri) }

func (f *fakeModules) ResolveStub(name string) (*document.Document, error) {
	return f.stubs[name], nil
}

// publishedDoc builds a Document whose GetAnalysis() immediately returns a,
// without ever running a real parse.
func publishedDoc(uri, moduleName string, a *Analysis) *document.Document {
	d := document.New(uri, moduleName, moduleName+".py", document.TypeUser, 1, "", nil)
	v := d.NotifyAnalysisPending()
	d.NotifyAnalysisComplete(a, v)
	return d
}

func id(name string) *pyast.Identifier { return &pyast.Identifier{Value: name} }

func intConst(v int) *pyast.Constant { return &pyast.Constant{Kind: pyast.ConstInt, Value: v} }

func strConst(v string) *pyast.Constant { return &pyast.Constant{Kind: pyast.ConstStr, Value: v} }

func TestOverviewPredeclaresClassAndFunction(t *testing.T) {
	mods := newFakeModules()
	mod := &pyast.Module{Body: []pyast.Statement{
		&pyast.ClassDef{Name: "Widget"},
		&pyast.FunctionDef{Name: "make"},
	}}
	a := New(mods)
	result := a.Analyze("pkg.widget", "widget.py", mod)

	if _, ok := result.Classes["Widget"]; !ok {
		t.Fatal("expected Widget to be predeclared")
	}
	if _, ok := result.Functions["make"]; !ok {
		t.Fatal("expected make to be predeclared")
	}
	if _, ok := result.Globals["Widget"]; !ok {
		t.Fatal("expected Widget to be bound in module globals")
	}
}

// Importing a module that can't be resolved produces a warning-level
// unresolved-import diagnostic, and the imported name still binds (to
// Unknown) so later statements don't cascade-fail.
func TestUnresolvedImportProducesDiagnostic(t *testing.T) {
	mods := newFakeModules()
	mod := &pyast.Module{Body: []pyast.Statement{
		&pyast.ImportStatement{Names: []pyast.ImportAlias{{Name: "no_such_module"}}},
	}}
	a := New(mods)
	result := a.Analyze("m", "m.py", mod)

	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d", len(result.Diagnostics))
	}
	if result.Diagnostics[0].Code != diagnostics.CodeUnresolvedImport {
		t.Fatalf("expected CodeUnresolvedImport, got %s", result.Diagnostics[0].Code)
	}
	if _, ok := result.Globals["no_such_module"]; !ok {
		t.Fatal("expected the unresolved import name to still bind in globals")
	}
}

func TestStarImportRespectsDunderAll(t *testing.T) {
	mods := newFakeModules()

	dep := newAnalysis("dep")
	dep.dunderAll = []string{"Public"}
	dep.Globals["Public"] = pytype.NewVariable("Public", location.Info{}, pytype.Unknown, pytype.SourceDeclaration)
	dep.Globals["_hidden"] = pytype.NewVariable("_hidden", location.Info{}, pytype.Unknown, pytype.SourceDeclaration)
	dep.Globals["AlsoPublicButNotExported"] = pytype.NewVariable("AlsoPublicButNotExported", location.Info{}, pytype.Unknown, pytype.SourceDeclaration)
	mods.docs["dep"] = publishedDoc("dep-uri", "dep", dep)

	mod := &pyast.Module{Body: []pyast.Statement{
		&pyast.ImportFromStatement{Module: "dep", IsStar: true},
	}}
	a := New(mods)
	result := a.Analyze("m", "m.py", mod)

	if _, ok := result.Globals["Public"]; !ok {
		t.Fatal("expected Public (listed in __all__) to be star-imported")
	}
	if _, ok := result.Globals["AlsoPublicButNotExported"]; ok {
		t.Fatal("did not expect a public name omitted from __all__ to be star-imported")
	}
	if _, ok := result.Globals["_hidden"]; ok {
		t.Fatal("did not expect a private name to be star-imported")
	}
}

func TestIsinstanceNarrowingIsSuiteLocalOnly(t *testing.T) {
	mods := newFakeModules()
	mod := &pyast.Module{Body: []pyast.Statement{
		&pyast.AssignStatement{Targets: []pyast.Expression{id("x")}, Value: strConst("hi")},
		&pyast.IfStatement{
			Test: &pyast.IsInstanceExpr{Target: id("x"), Type: id("int")},
			Body: []pyast.Statement{},
		},
	}}
	a := New(mods)
	result := a.Analyze("m", "m.py", mod)

	x, ok := result.Globals["x"]
	if !ok {
		t.Fatal("expected x to be bound")
	}
	v, ok := x.(*pytype.Variable)
	if !ok {
		t.Fatal("expected x to be a Variable")
	}
	if v.Val.Name() != "str" {
		t.Fatalf("expected the module-level binding of x to remain str after the guard, got %s", v.Val.Name())
	}
}

func TestTupleUnpackAssignsElementTypes(t *testing.T) {
	mods := newFakeModules()
	mod := &pyast.Module{Body: []pyast.Statement{
		&pyast.AssignStatement{
			Targets: []pyast.Expression{&pyast.TupleExpr{Elements: []pyast.Expression{id("a"), id("b")}}},
			Value:   &pyast.TupleExpr{Elements: []pyast.Expression{intConst(1), strConst("x")}},
		},
	}}
	a := New(mods)
	result := a.Analyze("m", "m.py", mod)

	av := result.Globals["a"].(*pytype.Variable)
	bv := result.Globals["b"].(*pytype.Variable)
	if av.Val.Name() != "int" {
		t.Fatalf("expected a to be int, got %s", av.Val.Name())
	}
	if bv.Val.Name() != "str" {
		t.Fatalf("expected b to be str, got %s", bv.Val.Name())
	}
}

// A stub's members override the primary module's matching members, and
// the merged analysis stays reachable under the primary's own module name.
func TestStubAttachmentOverridesMatchingMembers(t *testing.T) {
	primary := newAnalysis("pkg.mod")
	primary.Globals["value"] = pytype.NewVariable("value", location.Info{}, pytype.NewOpaqueType("int", "builtins"), pytype.SourceAssignment)
	primary.Globals["untouched"] = pytype.NewVariable("untouched", location.Info{}, pytype.NewOpaqueType("str", "builtins"), pytype.SourceAssignment)

	stub := newAnalysis("pkg.mod")
	stub.Globals["value"] = pytype.NewVariable("value", location.Info{}, pytype.NewOpaqueType("float", "builtins"), pytype.SourceDeclaration)

	mergeStub(primary, stub)

	if primary.Globals["value"].(*pytype.Variable).Val.Name() != "float" {
		t.Fatal("expected stub's declared type to override the primary's")
	}
	if primary.Globals["untouched"].(*pytype.Variable).Val.Name() != "str" {
		t.Fatal("expected a primary-only member to survive the merge")
	}
	if primary.PrimaryModule != "pkg.mod" {
		t.Fatalf("expected PrimaryModule to point back at the non-stub module, got %q", primary.PrimaryModule)
	}
}

func TestIsPrivateRule(t *testing.T) {
	cases := []struct {
		name      string
		dunderAll []string
		want      bool
	}{
		{"public", nil, false},
		{"_private", nil, true},
		{"_exported", []string{"_exported"}, false},
		{"__init__", nil, false},
		{"__some_internal_dunder__", nil, true},
	}
	for _, c := range cases {
		if got := isPrivate(c.name, c.dunderAll); got != c.want {
			t.Errorf("isPrivate(%q, %v) = %v, want %v", c.name, c.dunderAll, got, c.want)
		}
	}
}
