package persist

import "testing"

func TestClassModelDeclareRegistersMethodsAndForwardBase(t *testing.T) {
	base := &ClassModel{Module: "pkg.base", Name: "Base"}
	derived := &ClassModel{
		Module:    "pkg.mod",
		Name:      "Derived",
		BaseQuals: []string{"pkg.base.Base"},
		Methods: map[string]*FunctionModel{
			"greet": {Module: "pkg.mod", Name: "greet", Overloads: []OverloadModel{{ReturnQual: "builtins.str"}}},
		},
	}

	factory := NewModuleFactory(nil)
	factory.modules["pkg.base"] = &ModuleModel{Name: "pkg.base", Classes: map[string]*ClassModel{"Base": base}}
	factory.modules["pkg.mod"] = &ModuleModel{Name: "pkg.mod", Classes: map[string]*ClassModel{"Derived": derived}}

	global := NewScope()
	if _, err := derived.Declare(factory, nil, global); err != nil {
		t.Fatal(err)
	}
	if _, ok := global.Lookup("Derived"); !ok {
		t.Fatal("expected Derived registered in global scope")
	}
	if _, ok := global.Lookup("greet"); ok {
		t.Fatal("methods must not leak into the module's global scope")
	}

	bases := derived.Bases(factory)
	if len(bases) != 1 || bases[0].QualifiedName() != "pkg.base.Base" {
		t.Fatalf("expected Base resolved as a forward reference, got %v", bases)
	}
}

func TestConstructTypeFallsBackToUnknownForUnresolvedName(t *testing.T) {
	factory := NewModuleFactory(nil)
	if got := factory.ConstructType("nonexistent.module.Thing"); got != Unknown {
		t.Fatalf("expected Unknown for an unresolved qualified name, got %v", got)
	}
	if got := factory.ConstructType("not-a-qualified-name"); got != Unknown {
		t.Fatalf("expected Unknown for a malformed qualified name, got %v", got)
	}
}

func TestFunctionModelResolveOverloadDefaultsUnannotatedToUnknown(t *testing.T) {
	fn := &FunctionModel{
		Module: "pkg.mod",
		Name:   "f",
		Overloads: []OverloadModel{{
			Params: []ParameterModel{
				{Name: "a", AnnotatedQual: "builtins.int"},
				{Name: "b"},
			},
		}},
	}
	factory := NewModuleFactory(nil)
	factory.modules["builtins"] = &ModuleModel{
		Name:      "builtins",
		Classes:   map[string]*ClassModel{"int": {Module: "builtins", Name: "int"}},
		Functions: map[string]*FunctionModel{},
	}

	params, ret := fn.ResolveOverload(factory, 0)
	if len(params) != 2 {
		t.Fatalf("expected 2 resolved params, got %d", len(params))
	}
	if params[0].QualifiedName() != "builtins.int" {
		t.Fatalf("expected a resolved annotation, got %v", params[0])
	}
	if params[1] != Unknown {
		t.Fatalf("expected unannotated param to resolve to Unknown, got %v", params[1])
	}
	if ret != Unknown {
		t.Fatalf("expected unannotated return to resolve to Unknown, got %v", ret)
	}
}

func TestClassModelFinalizeIsReentrancySafe(t *testing.T) {
	// A class whose own method return type refers back to the class itself
	// (a common shape for classmethod constructors) must not deadlock or
	// double-finalize when Finalize recurses through ResolveOverload-style
	// lookups during a later pass.
	self := &ClassModel{Module: "pkg.mod", Name: "Self"}
	self.Methods = map[string]*FunctionModel{
		"make": {Module: "pkg.mod", Name: "make", Overloads: []OverloadModel{{ReturnQual: "pkg.mod.Self"}}},
	}
	factory := NewModuleFactory(nil)
	factory.modules["pkg.mod"] = &ModuleModel{Name: "pkg.mod", Classes: map[string]*ClassModel{"Self": self}}

	if err := self.Finalize(factory); err != nil {
		t.Fatal(err)
	}
	if err := self.Finalize(factory); err != nil {
		t.Fatalf("expected a second Finalize call to be a guarded no-op, got error: %v", err)
	}
	if !self.finalized {
		t.Fatal("expected finalized flag set")
	}
}
