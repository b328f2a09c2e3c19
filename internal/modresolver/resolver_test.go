package modresolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/pyast"
	"github.com/pymodel/langcore/internal/pyresolve"
	"github.com/pymodel/langcore/internal/rdt"
)

func noopParse(ctx context.Context, text string) (*pyast.Module, []*diagnostics.Diagnostic) {
	return &pyast.Module{}, nil
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateDocumentResolvesUserModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mod.py"), "x = 1\n")

	main := pyresolve.New(true)
	main.SetRoot(dir)
	r := New(main, nil, noopParse, nil)

	doc, err := r.CreateDocument(rdt.AddModuleOptions{ModuleName: "mod"})
	if err != nil {
		t.Fatal(err)
	}
	if doc.ModuleType != document.TypeUser {
		t.Fatalf("ModuleType = %v, want TypeUser", doc.ModuleType)
	}
	if doc.Text() != "x = 1\n" {
		t.Fatalf("Text() = %q", doc.Text())
	}
}

func TestCreateDocumentFallsBackToTypeshed(t *testing.T) {
	workDir := t.TempDir()
	typeshedDir := t.TempDir()
	writeFile(t, filepath.Join(typeshedDir, "requests.pyi"), "def get(url: str) -> object: ...\n")

	main := pyresolve.New(true)
	main.SetRoot(workDir)
	typeshed := pyresolve.New(true)
	typeshed.SetRoot(typeshedDir)

	r := New(main, typeshed, noopParse, nil)
	doc, err := r.CreateDocument(rdt.AddModuleOptions{ModuleName: "requests"})
	if err != nil {
		t.Fatal(err)
	}
	if doc.ModuleType != document.TypeStub {
		t.Fatalf("ModuleType = %v, want TypeStub", doc.ModuleType)
	}
}

func TestCreateDocumentUnresolvedReturnsErrModuleNotFound(t *testing.T) {
	main := pyresolve.New(true)
	r := New(main, nil, noopParse, nil)
	_, err := r.CreateDocument(rdt.AddModuleOptions{ModuleName: "nonexistent"})
	if err != ErrModuleNotFound {
		t.Fatalf("err = %v, want ErrModuleNotFound", err)
	}
}

type stubScraper struct{ out string }

func (s stubScraper) Scrape(ctx context.Context, modulePath string) (string, error) {
	return s.out, nil
}

func TestCreateDocumentCompiledModuleUsesScraper(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "native.so"), "")

	main := pyresolve.New(true)
	main.SetRoot(dir)
	r := New(main, nil, noopParse, stubScraper{out: "def f() -> int: ...\n"})

	doc, err := r.CreateDocument(rdt.AddModuleOptions{ModuleName: "native"})
	if err != nil {
		t.Fatal(err)
	}
	if doc.ModuleType != document.TypeCompiled {
		t.Fatalf("ModuleType = %v, want TypeCompiled", doc.ModuleType)
	}
	if doc.Text() != "def f() -> int: ...\n" {
		t.Fatalf("Text() = %q, want scraped content", doc.Text())
	}
}

func TestCreateDocumentCompiledModuleWithoutScraperErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "native.so"), "")

	main := pyresolve.New(true)
	main.SetRoot(dir)
	r := New(main, nil, noopParse, nil)

	_, err := r.CreateDocument(rdt.AddModuleOptions{ModuleName: "native"})
	if err != ErrNoScraperConfigured {
		t.Fatalf("err = %v, want ErrNoScraperConfigured", err)
	}
}

func TestCreateDocumentExplicitFilePathUsesProvidedModuleType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "explicit.py")
	writeFile(t, path, "y = 2\n")

	r := New(pyresolve.New(true), nil, noopParse, nil)
	doc, err := r.CreateDocument(rdt.AddModuleOptions{FilePath: path, ModuleType: document.TypeLibrary})
	if err != nil {
		t.Fatal(err)
	}
	if doc.ModuleType != document.TypeLibrary {
		t.Fatalf("ModuleType = %v, want TypeLibrary", doc.ModuleType)
	}
}
