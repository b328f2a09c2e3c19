// Package rdt implements the Running Document Table: the
// process-wide registry of live modules, indexed by URI and by dotted
// module name, with reference counting and open/close lifecycle.
package rdt

import (
	"fmt"
	"sync"

	"github.com/pymodel/langcore/internal/document"
)

// ModuleType mirrors document.ModuleType to keep this package's public API
// readable without forcing every caller to import document for the enum.
type ModuleType = document.ModuleType

// AddModuleOptions is the options bag for add_module.
type AddModuleOptions struct {
	URI         string
	ModuleName  string
	FilePath    string
	ModuleType  ModuleType
	ParseOnly  bool // when true, add implies parse-only, not parse+analyze
}

// ErrUnsupportedModuleType is the Structural error raised when
// add_module is asked to dispatch a module type no factory strategy knows
// how to construct.
var ErrUnsupportedModuleType = fmt.Errorf("rdt: unsupported module type")

// Factory constructs the Document for a module being added via add_module.
// The polymorphic parts — how content
// is obtained for Compiled vs User modules — become strategies owned by the
// module resolver: the resolver (internal/modresolver) implements this interface
// and is handed to New, so the RDT itself stays ignorant of scraping,
// path resolution, or parsing.
type Factory interface {
	CreateDocument(opts AddModuleOptions) (*document.Document, error)
}

type entry struct {
	doc       *document.Document
	lockCount int
}

// Table is the Running Document Table.
type Table struct {
	mu      sync.Mutex
	byURI   map[string]*entry
	byName  map[string]*entry
	factory Factory

	// onNewAst, when set, is wired onto every Document this table creates
	// before its first parse is triggered — the table's one hook into the
	// analysis pipeline (internal/pyanalysis), kept as a callback rather
	// than an import to avoid rdt -> pyanalysis -> rdt cycles.
	onNewAst func(*document.Document)

	listenersMu sync.Mutex
	listeners   []func(Event)
}

// New creates an empty table backed by the given module factory.
func New(factory Factory) *Table {
	return &Table{
		byURI:   make(map[string]*entry),
		byName:  make(map[string]*entry),
		factory: factory,
	}
}

// SetOnNewAst wires the analysis-pipeline hook applied to every Document
// this table creates from now on (existing documents are unaffected).
func (t *Table) SetOnNewAst(fn func(*document.Document)) {
	t.mu.Lock()
	t.onNewAst = fn
	t.mu.Unlock()
}

// Subscribe registers a listener invoked for every published event, outside
// the table mutex.
func (t *Table) Subscribe(fn func(Event)) {
	t.listenersMu.Lock()
	t.listeners = append(t.listeners, fn)
	t.listenersMu.Unlock()
}

func (t *Table) publish(ev Event) {
	t.listenersMu.Lock()
	listeners := append([]func(Event){}, t.listeners...)
	t.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// OpenDocument implements open_document: creates the
// document if absent (type User), or resets its buffer if it had been
// closed and fresh content is supplied, then increments lock_count.
func (t *Table) OpenDocument(uri, filePath string, version uint32, content string, parseFn document.ParseFunc) *document.Document {
	t.mu.Lock()
	e, ok := t.byURI[uri]
	onNewAst := t.onNewAst
	if !ok {
		doc := document.New(uri, "", filePath, document.TypeUser, version, content, parseFn)
		doc.OnNewAst = onNewAst
		doc.TriggerInitialParse()
		e = &entry{doc: doc}
		t.byURI[uri] = e
	} else if !e.doc.IsOpen() {
		e.doc.ResetContent(version, content)
	}
	e.doc.SetOpen(true)
	e.lockCount++
	t.mu.Unlock()

	t.publish(Event{Kind: EventOpened, URI: uri})
	return e.doc
}

// AddModule implements add_module: look up by URI then by
// name; on miss, dispatch construction through the configured Factory.
func (t *Table) AddModule(opts AddModuleOptions) (*document.Document, error) {
	t.mu.Lock()
	if opts.URI != "" {
		if e, ok := t.byURI[opts.URI]; ok {
			e.lockCount++
			t.mu.Unlock()
			return e.doc, nil
		}
	}
	if opts.ModuleName != "" {
		if e, ok := t.byName[opts.ModuleName]; ok {
			e.lockCount++
			t.mu.Unlock()
			return e.doc, nil
		}
	}
	t.mu.Unlock()

	doc, err := t.factory.CreateDocument(opts)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if !opts.ParseOnly {
		doc.OnNewAst = t.onNewAst
	}
	e := &entry{doc: doc, lockCount: 1}
	if doc.URI != "" {
		t.byURI[doc.URI] = e
	}
	if doc.ModuleName != "" {
		t.byName[doc.ModuleName] = e
	}
	t.mu.Unlock()

	doc.TriggerInitialParse()
	return doc, nil
}

// CloseDocument implements close_document: if the document is open,
// clears is_open and fires Closed; then decrements lock_count, removing
// and disposing the document if it reaches zero, firing Removed. A close
// of an already-closed document (a duplicate didClose, or a dependency
// unlock arriving after the editor's close) still drops a lock but must
// not fire a second Closed event.
func (t *Table) CloseDocument(uri string) {
	t.mu.Lock()
	e, ok := t.byURI[uri]
	if !ok {
		t.mu.Unlock()
		return
	}
	wasOpen := e.doc.IsOpen()
	if wasOpen {
		e.doc.SetOpen(false)
	}
	t.mu.Unlock()
	if wasOpen {
		t.publish(Event{Kind: EventClosed, URI: uri})
	}

	t.unlockAndMaybeRemove(uri)
}

// LockDocument increments lock_count and returns the new count, or -1 if
// the document is absent.
func (t *Table) LockDocument(uri string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byURI[uri]
	if !ok {
		return -1
	}
	e.lockCount++
	return e.lockCount
}

// UnlockDocument decrements lock_count, removing+disposing the document on
// reaching zero, and returns the new count (or -1 if absent).
func (t *Table) UnlockDocument(uri string) int {
	return t.unlockAndMaybeRemove(uri)
}

func (t *Table) unlockAndMaybeRemove(uri string) int {
	t.mu.Lock()
	e, ok := t.byURI[uri]
	if !ok {
		t.mu.Unlock()
		return -1
	}
	e.lockCount--
	count := e.lockCount
	var removed bool
	var name string
	if count <= 0 {
		delete(t.byURI, uri)
		name = e.doc.ModuleName
		if name != "" {
			if byName, ok := t.byName[name]; ok && byName == e {
				delete(t.byName, name)
			}
		}
		removed = true
	}
	t.mu.Unlock()

	if removed {
		e.doc.Dispose()
		t.publish(Event{Kind: EventRemoved, URI: uri, Name: name})
	}
	return count
}

// GetDocumentByURI is a nullable lookup by URI.
func (t *Table) GetDocumentByURI(uri string) *document.Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.byURI[uri]; ok {
		return e.doc
	}
	return nil
}

// GetDocumentByName is a nullable lookup by dotted module name.
func (t *Table) GetDocumentByName(name string) *document.Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.byName[name]; ok {
		return e.doc
	}
	return nil
}

// LockCount returns the current lock_count for a URI, or -1 if absent.
func (t *Table) LockCount(uri string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.byURI[uri]; ok {
		return e.lockCount
	}
	return -1
}

// Documents snapshots every live document for safe iteration.
func (t *Table) Documents() []*document.Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*document.Document, 0, len(t.byURI))
	for _, e := range t.byURI {
		out = append(out, e.doc)
	}
	return out
}
