package modresolver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/pyresolve"
	"github.com/pymodel/langcore/internal/rdt"
)

// SpecializeFunc constructs a synthetic module for a reserved name,
// used for built-in overrides that shadow whatever the path
// resolver would otherwise find.
type SpecializeFunc func(name string) *document.Document

// Provider is the pyanalysis.ModuleProvider implementation shared by the
// LSP front end and the offline cache tool: it resolves a dotted import
// name to a Document through the RDT (locking it there so refcounts stay
// honest), caches the association in a per-name ModuleRef, and requeues
// dependents for re-analysis when asked.
type Provider struct {
	Table    *rdt.Table
	Resolver *Resolver

	mu          sync.Mutex
	refs        map[string]*ModuleRef
	specialized map[string]*document.Document
	ctors       map[string]SpecializeFunc

	// StubWait bounds how long ResolveStub waits for a freshly added
	// stub document's analysis before returning it anyway. Zero means
	// don't wait.
	StubWait time.Duration
}

// NewProvider wires a Provider over the given table and resolver.
func NewProvider(table *rdt.Table, resolver *Resolver) *Provider {
	return &Provider{
		Table:       table,
		Resolver:    resolver,
		refs:        make(map[string]*ModuleRef),
		specialized: make(map[string]*document.Document),
		ctors:       make(map[string]SpecializeFunc),
		StubWait:    2 * time.Second,
	}
}

func (p *Provider) ref(name string) *ModuleRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.refs[name]
	if !ok {
		r = &ModuleRef{}
		p.refs[name] = r
	}
	return r
}

// SpecializeModule registers a synthetic module constructor for name. The
// constructor runs lazily on first lookup and its result is final until a
// Reload.
func (p *Provider) SpecializeModule(name string, ctor SpecializeFunc) {
	p.mu.Lock()
	p.ctors[name] = ctor
	delete(p.specialized, name)
	p.mu.Unlock()
}

// GetSpecializedModule returns the synthetic module registered under name,
// constructing it on first use, or nil if none is registered.
func (p *Provider) GetSpecializedModule(name string) *document.Document {
	p.mu.Lock()
	if doc, ok := p.specialized[name]; ok {
		p.mu.Unlock()
		return doc
	}
	ctor, ok := p.ctors[name]
	p.mu.Unlock()
	if !ok {
		return nil
	}
	doc := ctor(name)
	p.mu.Lock()
	p.specialized[name] = doc
	p.mu.Unlock()
	return doc
}

// ResolveImport implements pyanalysis.ModuleProvider. A (nil, nil) return
// means the module's creation is already in flight on another (or this
// very) goroutine — the caller binds Unknown and will be requeued once the
// dependency's own analysis completes.
func (p *Provider) ResolveImport(name string) (*document.Document, error) {
	if name == "" {
		return nil, nil
	}
	if doc := p.GetSpecializedModule(name); doc != nil {
		return doc, nil
	}

	doc, final := p.ref(name).GetOrCreate(func() *document.Document {
		if existing := p.Table.GetDocumentByName(name); existing != nil {
			p.Table.LockDocument(existing.URI)
			return existing
		}
		d, err := p.Table.AddModule(rdt.AddModuleOptions{ModuleName: name})
		if err != nil {
			return nil
		}
		return d
	})
	if !final {
		return nil, nil
	}
	if doc == nil {
		return nil, ErrModuleNotFound
	}
	return doc, nil
}

// RequestReanalysis implements pyanalysis.ModuleProvider: re-fires the
// dependent document's analysis hook against its current AST.
func (p *Provider) RequestReanalysis(uri string) {
	doc := p.Table.GetDocumentByURI(uri)
	if doc == nil || doc.OnNewAst == nil {
		return
	}
	go doc.OnNewAst(doc)
}

// ResolveStub implements pyanalysis.ModuleProvider: first a sibling .pyi
// (or parallel Stubs/ tree) found by the main resolver, then the typeshed
// resolver. Returns (nil, nil) when the module has no stub, or when the
// stub *is* the module (a .pyi resolved as the module itself needs no
// second attachment).
func (p *Provider) ResolveStub(name string) (*document.Document, error) {
	if name == "" {
		return nil, nil
	}

	var modulePath string
	if imp := p.Resolver.Main.GetModuleImportFromName(name); imp != nil {
		modulePath = imp.ModulePath
	}

	stubPath := ""
	for _, candidate := range p.Resolver.Main.GetPossibleModuleStubPaths(name) {
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			stubPath = candidate
			break
		}
	}
	if stubPath == "" && p.Resolver.Typeshed != nil {
		if imp := p.Resolver.Typeshed.GetModuleImportFromName(name); imp != nil {
			stubPath = imp.ModulePath
		}
	}
	if stubPath == "" || stubPath == modulePath {
		return nil, nil
	}

	stub, err := p.Table.AddModule(rdt.AddModuleOptions{
		URI:        "file://" + filepath.ToSlash(stubPath),
		FilePath:   stubPath,
		ModuleType: document.TypeStub,
	})
	if err != nil {
		return nil, err
	}
	if p.StubWait > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), p.StubWait)
		stub.GetAnalysisWithTimeout(ctx)
		cancel()
	}
	return stub, nil
}

// Reload tears down the module cache, re-queries interpreter search paths
// through queryInterpreterPaths (nil keeps the current ones), and
// re-enumerates module files under each newly added root. Every module the
// cache tracked is unlocked in the RDT, so modules nothing else holds open
// are disposed.
func (p *Provider) Reload(queryInterpreterPaths func() []string) {
	p.mu.Lock()
	refs := p.refs
	p.refs = make(map[string]*ModuleRef)
	p.specialized = make(map[string]*document.Document)
	p.mu.Unlock()

	for _, ref := range refs {
		if doc, ok := ref.Final(); ok && doc != nil {
			p.Table.UnlockDocument(doc.URI)
		}
	}

	if queryInterpreterPaths != nil {
		added := p.Resolver.Main.SetInterpreterSearchPaths(queryInterpreterPaths())
		for _, root := range added {
			p.IndexRoot(root)
		}
	}
}

// IndexRoot walks a search root and registers every Python module file it
// contains with the path resolver (TryAddModulePath). Name lookups scan the
// file system directly and do not read these registrations.
func (p *Provider) IndexRoot(root string) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if isModuleFile(d.Name()) {
			p.Resolver.Main.TryAddModulePath(path)
		}
		return nil
	})
}

func isModuleFile(name string) bool {
	if strings.HasSuffix(name, pyresolve.SourceExtension) || strings.HasSuffix(name, pyresolve.StubExtension) {
		return true
	}
	for _, ext := range pyresolve.CompiledExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
