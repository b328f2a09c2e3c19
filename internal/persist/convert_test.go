package persist

import (
	"context"
	"testing"

	"github.com/pymodel/langcore/internal/location"
	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyast"
	"github.com/pymodel/langcore/internal/pytype"
)

// buildAnalysis assembles a small live member tree the way the analyzer
// would: a base class, a subclass, a two-param function returning the
// subclass, and a plain annotated variable.
func buildAnalysis(t *testing.T) *pyanalysis.Analysis {
	t.Helper()
	a := pyanalysis.New(nil).Analyze("pkg.mod", "mod.py", nil)

	base := pytype.NewClassType("Base", "pkg.mod")
	widget := pytype.NewClassType("Widget", "pkg.mod")
	if err := widget.SetBases([]*pytype.ClassType{base}); err != nil {
		t.Fatal(err)
	}

	fn := pytype.NewFunctionType("make", "pkg.mod", pytype.FunctionOverload{
		Params: []pytype.Parameter{
			{Name: "name", Annotated: pytype.NewOpaqueType("str", ""), Kind: pyast.ParamPositional},
			{Name: "count", HasDefault: true, Kind: pyast.ParamPositional},
		},
		ReturnType: widget,
	})

	a.Globals["Base"] = pytype.NewVariable("Base", location.Info{}, base, pytype.SourceDeclaration)
	a.Globals["Widget"] = pytype.NewVariable("Widget", location.Info{}, widget, pytype.SourceDeclaration)
	a.Globals["make"] = pytype.NewVariable("make", location.Info{}, fn, pytype.SourceDeclaration)
	a.Globals["limit"] = pytype.NewVariable("limit", location.Info{}, pytype.NewOpaqueType("int", ""), pytype.SourceAssignment)
	a.Dependencies = []string{"pkg.base"}
	return a
}

// Persist-then-restore: lowering a live analysis, saving it, loading it
// back, and running declare+finalize yields a model with identical public
// member names, class bases by qualified name, overload arities, and
// return qualified names.
func TestFromAnalysisPersistRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	model := FromAnalysis(buildAnalysis(t), nil)
	if err := store.SaveModule(ctx, model); err != nil {
		t.Fatal(err)
	}

	factory := NewModuleFactory(store)
	restored, err := factory.Module("pkg.mod")
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.Finalize(factory); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"Base", "Widget"} {
		if _, ok := restored.Classes[name]; !ok {
			t.Fatalf("class %s missing after restore: %+v", name, restored.Classes)
		}
	}
	if _, ok := restored.Variables["limit"]; !ok {
		t.Fatalf("variable limit missing after restore: %+v", restored.Variables)
	}

	widget := restored.Classes["Widget"]
	if len(widget.BaseQuals) != 1 || widget.BaseQuals[0] != "pkg.mod.Base" {
		t.Fatalf("Widget bases = %v, want [pkg.mod.Base]", widget.BaseQuals)
	}

	fn, ok := restored.Functions["make"]
	if !ok {
		t.Fatalf("function make missing after restore: %+v", restored.Functions)
	}
	if len(fn.Overloads) != 1 || len(fn.Overloads[0].Params) != 2 {
		t.Fatalf("make overloads = %+v, want one overload of arity 2", fn.Overloads)
	}
	if fn.Overloads[0].ReturnQual != "pkg.mod.Widget" {
		t.Fatalf("make return = %q, want pkg.mod.Widget", fn.Overloads[0].ReturnQual)
	}
	if fn.Overloads[0].Params[1].HasDefault != true {
		t.Fatal("count's default was lost in the round trip")
	}

	if len(restored.Dependencies) != 1 || restored.Dependencies[0] != "pkg.base" {
		t.Fatalf("dependencies = %v, want [pkg.base]", restored.Dependencies)
	}
}

func TestFromAnalysisUnknownSerializesEmpty(t *testing.T) {
	a := pyanalysis.New(nil).Analyze("m", "m.py", nil)
	a.Globals["x"] = pytype.NewVariable("x", location.Info{}, pytype.Unknown, pytype.SourceAssignment)

	model := FromAnalysis(a, nil)
	v, ok := model.Variables["x"]
	if !ok {
		t.Fatalf("variable x missing: %+v", model.Variables)
	}
	if v.AnnotatedQual != "" {
		t.Fatalf("Unknown should serialize to an empty qualname, got %q", v.AnnotatedQual)
	}
}
