package modresolver

import (
	"sync"

	"github.com/pymodel/langcore/internal/document"
)

// ModuleRef is the lazy single-initializer cell stored per dotted name:
// the first caller acquires the creation token and runs the constructor;
// any caller arriving while creation is still in flight observes
// creating=true and gets (nil, false) back instead of blocking, which is
// what breaks the re-entrant deadlock during cyclic imports (module A's
// analysis imports B, whose analysis imports A again on the same
// goroutine). Once created the reference is final; only a resolver Reload
// discards it.
type ModuleRef struct {
	mu       sync.Mutex
	creating bool
	created  bool
	doc      *document.Document
}

// GetOrCreate returns the cell's document once it is final. The first
// caller runs create outside the lock; a caller that arrives mid-creation
// gets (nil, false) without blocking.
func (r *ModuleRef) GetOrCreate(create func() *document.Document) (*document.Document, bool) {
	r.mu.Lock()
	if r.created {
		doc := r.doc
		r.mu.Unlock()
		return doc, true
	}
	if r.creating {
		r.mu.Unlock()
		return nil, false
	}
	r.creating = true
	r.mu.Unlock()

	doc := create()

	r.mu.Lock()
	r.doc = doc
	r.created = true
	r.creating = false
	r.mu.Unlock()
	return doc, true
}

// Final returns the document and whether creation has completed, without
// ever triggering creation.
func (r *ModuleRef) Final() (*document.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc, r.created
}
