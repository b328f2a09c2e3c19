// Package modresolver implements the Module resolver:
// the rdt.Factory strategy that turns an add_module request into a
// Document by resolving a dotted name (or explicit path) against a main
// resolver and a typeshed resolver, then loading that module's content
// according to its kind (source, stub, compiled).
//
// This package owns "the polymorphic parts (how
// content is obtained for Compiled vs User)" that the RDT itself stays
// ignorant of — this is the concrete implementation of that design note.
package modresolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/pyresolve"
	"github.com/pymodel/langcore/internal/rdt"
)

// ErrModuleNotFound is returned when neither the main nor the typeshed
// resolver can locate the requested module.
var ErrModuleNotFound = fmt.Errorf("modresolver: module not found")

// ErrNoScraperConfigured is returned when a compiled module must be
// resolved but no Scraper strategy was wired in.
var ErrNoScraperConfigured = fmt.Errorf("modresolver: compiled module requires a scraper")

// Scraper extracts a synthetic stub source for a compiled extension module
// (.so/.pyd) or a C builtin, matching ModuleType.Compiled /
// CompiledBuiltin cases. internal/scraper provides the real implementation;
// this interface exists so modresolver never imports it directly unless a
// caller opts in, keeping the dependency optional.
type Scraper interface {
	Scrape(ctx context.Context, modulePath string) (string, error)
}

// Resolver is the rdt.Factory for this language server: it wires together
// the main (interpreter+user+workspace) path resolver, a dedicated
// typeshed resolver, the parser collaborator, and an optional scraper.
type Resolver struct {
	Main     *pyresolve.Resolver
	Typeshed *pyresolve.Resolver
	ParseFn  document.ParseFunc
	Scraper  Scraper

	// ReadFile loads a resolved module's content; overridable for tests.
	ReadFile func(path string) (string, error)
}

var _ rdt.Factory = (*Resolver)(nil)

// New builds a Resolver. typeshed may be nil if no stub roots are
// configured (stub resolution then only ever succeeds via sibling .pyi
// files discovered by main).
func New(main, typeshed *pyresolve.Resolver, parseFn document.ParseFunc, scraper Scraper) *Resolver {
	return &Resolver{
		Main:     main,
		Typeshed: typeshed,
		ParseFn:  parseFn,
		Scraper:  scraper,
		ReadFile: defaultReadFile,
	}
}

func defaultReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CreateDocument implements rdt.Factory. It resolves opts into a concrete
// file (or explicit FilePath, if the caller already knows it), classifies
// the module kind, loads its content via the matching strategy, and
// returns a ready (but not yet parsed — the RDT triggers that) Document.
func (r *Resolver) CreateDocument(opts rdt.AddModuleOptions) (*document.Document, error) {
	imp, mtype, err := r.resolve(opts)
	if err != nil {
		return nil, err
	}

	content, err := r.load(mtype, imp)
	if err != nil {
		return nil, err
	}

	uri := opts.URI
	if uri == "" {
		uri = "file://" + imp.ModulePath
	}

	return document.New(uri, imp.FullName, imp.ModulePath, mtype, 0, content, r.ParseFn), nil
}

func (r *Resolver) resolve(opts rdt.AddModuleOptions) (*pyresolve.ModuleImport, document.ModuleType, error) {
	if opts.FilePath != "" {
		// An explicit path carries no resolver metadata to infer a kind
		// from, so the caller's ModuleType is authoritative here.
		imp := &pyresolve.ModuleImport{FullName: opts.ModuleName, ModulePath: opts.FilePath}
		return imp, opts.ModuleType, nil
	}

	if opts.ModuleName == "" {
		return nil, 0, ErrModuleNotFound
	}

	if imp := r.Main.GetModuleImportFromName(opts.ModuleName); imp != nil {
		return imp, classify(imp), nil
	}
	if r.Typeshed != nil {
		if imp := r.Typeshed.GetModuleImportFromName(opts.ModuleName); imp != nil {
			return imp, document.TypeStub, nil
		}
	}
	return nil, 0, ErrModuleNotFound
}

// classify maps a resolved import to a ModuleType purely from what the
// path resolver observed about it (the resolver, not the
// caller, determines a name's kind once it has been located).
func classify(imp *pyresolve.ModuleImport) document.ModuleType {
	switch {
	case imp.IsCompiled:
		return document.TypeCompiled
	case filepath.Ext(imp.ModulePath) == pyresolve.StubExtension:
		return document.TypeStub
	case imp.IsLibrary:
		return document.TypeLibrary
	default:
		return document.TypeUser
	}
}

func (r *Resolver) load(mtype document.ModuleType, imp *pyresolve.ModuleImport) (string, error) {
	switch mtype {
	case document.TypeCompiled, document.TypeCompiledBuiltin:
		if r.Scraper == nil {
			return "", ErrNoScraperConfigured
		}
		// The scraper imports the module by its dotted name in a
		// subprocess, so it is handed the full name, not a file path.
		return r.Scraper.Scrape(context.Background(), imp.FullName)
	default:
		return r.ReadFile(imp.ModulePath)
	}
}
