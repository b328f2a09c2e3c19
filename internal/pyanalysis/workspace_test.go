package pyanalysis_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/tools/txtar"

	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/modresolver"
	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyparse"
	"github.com/pymodel/langcore/internal/pyresolve"
	"github.com/pymodel/langcore/internal/rdt"
)

// extractWorkspace materializes a txtar archive into a temp dir, returning
// its root.
func extractWorkspace(t *testing.T, archive string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(root, f.Name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// buildPipeline wires the same stack cmd/pyls composes, minus the wire
// protocol: path resolver rooted at the workspace, module resolver, RDT,
// analyzer hook.
func buildPipeline(t *testing.T, root string) (*rdt.Table, *modresolver.Provider) {
	t.Helper()
	res := pyresolve.New(false)
	res.SetRoot(root)
	resolver := modresolver.New(res, nil, pyparse.New(), nil)
	table := rdt.New(resolver)
	provider := modresolver.NewProvider(table, resolver)
	analyzer := pyanalysis.New(provider)
	table.SetOnNewAst(pyanalysis.Hook(analyzer))
	return table, provider
}

func awaitAnalysis(t *testing.T, doc *document.Document) *pyanalysis.Analysis {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if a, ok := doc.GetAnalysis().(*pyanalysis.Analysis); ok {
			return a
		}
		if time.Now().After(deadline) {
			t.Fatalf("analysis of %s did not complete", doc.ModuleName)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWorkspaceImportResolution(t *testing.T) {
	root := extractWorkspace(t, `
-- app.py --
from helper import greet

message = greet
-- helper.py --
def greet(name: str) -> str:
    return "hi"
`)
	table, _ := buildPipeline(t, root)

	doc, err := table.AddModule(rdt.AddModuleOptions{ModuleName: "app"})
	if err != nil {
		t.Fatal(err)
	}
	analysis := awaitAnalysis(t, doc)

	if len(analysis.Dependencies) != 1 || analysis.Dependencies[0] != "helper" {
		t.Fatalf("Dependencies = %v, want [helper]", analysis.Dependencies)
	}
	if _, ok := analysis.Globals["greet"]; !ok {
		t.Fatalf("imported name greet missing from globals: %v", analysis.Globals)
	}
	for _, d := range analysis.Diagnostics {
		if d.Code == diagnostics.CodeUnresolvedImport {
			t.Fatalf("unexpected unresolved-import diagnostic: %v", d)
		}
	}

	helper := table.GetDocumentByName("helper")
	if helper == nil {
		t.Fatal("helper module was not added to the table")
	}
	// Dependent registration happens just after the analysis publishes;
	// poll briefly rather than racing it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		found := false
		for _, dep := range helper.Dependents() {
			if dep == doc.URI {
				found = true
			}
		}
		if found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("app not recorded as dependent of helper: %v", helper.Dependents())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWorkspacePackageImport(t *testing.T) {
	root := extractWorkspace(t, `
-- app.py --
import pkg.mod
-- pkg/__init__.py --
-- pkg/mod.py --
value = 1
`)
	table, _ := buildPipeline(t, root)

	doc, err := table.AddModule(rdt.AddModuleOptions{ModuleName: "app"})
	if err != nil {
		t.Fatal(err)
	}
	analysis := awaitAnalysis(t, doc)

	for _, d := range analysis.Diagnostics {
		if d.Code == diagnostics.CodeUnresolvedImport {
			t.Fatalf("pkg.mod should resolve: %v", d)
		}
	}
	if table.GetDocumentByName("pkg.mod") == nil {
		t.Fatal("pkg.mod was not added to the table")
	}
}

func TestWorkspaceUnresolvedImportDiagnostic(t *testing.T) {
	root := extractWorkspace(t, `
-- a.py --
import no_such_module
`)
	table, _ := buildPipeline(t, root)

	doc, err := table.AddModule(rdt.AddModuleOptions{ModuleName: "a"})
	if err != nil {
		t.Fatal(err)
	}
	analysis := awaitAnalysis(t, doc)

	var diag *diagnostics.Diagnostic
	for _, d := range analysis.Diagnostics {
		if d.Code == diagnostics.CodeUnresolvedImport {
			diag = d
		}
	}
	if diag == nil {
		t.Fatalf("expected unresolved-import diagnostic, got %v", analysis.Diagnostics)
	}
	if diag.Severity != diagnostics.SeverityWarning {
		t.Fatalf("severity = %v, want Warning", diag.Severity)
	}
}

func TestWorkspaceStubAttachment(t *testing.T) {
	root := extractWorkspace(t, `
-- pkg/__init__.py --
-- pkg/mod.py --
def compute(a, b):
    return a + b
-- pkg/mod.pyi --
def compute(a: int, b: int) -> int: ...
`)
	table, provider := buildPipeline(t, root)

	doc, err := table.AddModule(rdt.AddModuleOptions{ModuleName: "pkg.mod"})
	if err != nil {
		t.Fatal(err)
	}
	analysis := awaitAnalysis(t, doc)

	if analysis.PrimaryModule != "pkg.mod" {
		t.Fatalf("PrimaryModule = %q, want pkg.mod", analysis.PrimaryModule)
	}

	stub, err := provider.ResolveStub("pkg.mod")
	if err != nil || stub == nil {
		t.Fatalf("ResolveStub(pkg.mod) = %v, %v", stub, err)
	}
	if filepath.Ext(stub.FilePath) != ".pyi" {
		t.Fatalf("stub path %q does not end in .pyi", stub.FilePath)
	}
}
