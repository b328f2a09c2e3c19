package persist

import (
	"context"
	"testing"
)

func TestStoreRoundTripsAModule(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	original := &ModuleModel{
		Name:         "pkg.mod",
		Dependencies: []string{"pkg.base"},
		Classes: map[string]*ClassModel{
			"Widget": {Module: "pkg.mod", Name: "Widget", BaseQuals: []string{"pkg.base.Base"}},
		},
		Functions: map[string]*FunctionModel{
			"make": {Module: "pkg.mod", Name: "make", Overloads: []OverloadModel{{ReturnQual: "pkg.mod.Widget"}}},
		},
	}

	if err := store.SaveModule(ctx, original); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadModule("pkg.mod")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "pkg.mod" {
		t.Fatalf("expected name round-tripped, got %q", loaded.Name)
	}
	widget, ok := loaded.Classes["Widget"]
	if !ok || len(widget.BaseQuals) != 1 || widget.BaseQuals[0] != "pkg.base.Base" {
		t.Fatalf("expected Widget's base qualname round-tripped, got %+v", loaded.Classes)
	}
	make, ok := loaded.Functions["make"]
	if !ok || len(make.Overloads) != 1 || make.Overloads[0].ReturnQual != "pkg.mod.Widget" {
		t.Fatalf("expected make's return qualname round-tripped, got %+v", loaded.Functions)
	}
}

func TestStoreSaveModuleIsAnUpsert(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	v1 := &ModuleModel{Name: "pkg.mod", Classes: map[string]*ClassModel{"A": {Module: "pkg.mod", Name: "A"}}}
	if err := store.SaveModule(ctx, v1); err != nil {
		t.Fatal(err)
	}
	v2 := &ModuleModel{Name: "pkg.mod", Classes: map[string]*ClassModel{"B": {Module: "pkg.mod", Name: "B"}}}
	if err := store.SaveModule(ctx, v2); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadModule("pkg.mod")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loaded.Classes["A"]; ok {
		t.Fatal("expected the first save's class replaced by the second")
	}
	if _, ok := loaded.Classes["B"]; !ok {
		t.Fatal("expected the second save's class present")
	}
}

func TestDependentsOfFindsModulesDependingOnTarget(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.SaveModule(ctx, &ModuleModel{Name: "pkg.a", Dependencies: []string{"pkg.base"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveModule(ctx, &ModuleModel{Name: "pkg.b", Dependencies: []string{"pkg.other"}}); err != nil {
		t.Fatal(err)
	}

	dependents, err := store.DependentsOf(ctx, "pkg.base")
	if err != nil {
		t.Fatal(err)
	}
	if len(dependents) != 1 || dependents[0] != "pkg.a" {
		t.Fatalf("expected only pkg.a to depend on pkg.base, got %v", dependents)
	}
}

func TestModuleFactoryLoadsFromStoreOnCacheMiss(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.SaveModule(ctx, &ModuleModel{
		Name:    "pkg.mod",
		Classes: map[string]*ClassModel{"Widget": {Module: "pkg.mod", Name: "Widget"}},
	}); err != nil {
		t.Fatal(err)
	}

	factory := NewModuleFactory(store)
	got := factory.ConstructType("pkg.mod.Widget")
	if got.QualifiedName() != "pkg.mod.Widget" {
		t.Fatalf("expected Widget resolved through the store, got %v", got)
	}
}
