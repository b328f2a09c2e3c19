// Package persist implements the Persistence models: a
// family of serializable records paralleling internal/pytype's live member
// model, reconstructed through a two-phase declare/finalize protocol so
// forward references between models (a class referencing a not-yet-loaded
// base, a function returning a not-yet-loaded class) resolve regardless of
// load order.
//
// declare() builds the skeletal member and registers it with its parent so
// later qualified-name lookups succeed even before finalize() runs; finalize()
// fills in the member's body (methods, fields, overloads, bases). A member
// may trigger another member's declare/finalize while resolving a reference;
// the embedded declareGuard guards against the resulting reentrancy.
package persist

import "fmt"

// Member is anything a persisted model can register under a qualified name:
// a module, class, function, property, variable, type var, or named tuple.
type Member interface {
	QualifiedName() string
}

// Declarable is the two-phase reconstruction protocol
// describes: declare first (skeleton, registered), finalize second (body).
type Declarable interface {
	Member
	Declare(f *ModuleFactory, declaringType *ClassModel, global *Scope) (Member, error)
	Finalize(f *ModuleFactory) error
}

// Scope is the minimal global-name registry declare() populates and
// finalize() reads back from — a parallel, serialization-side counterpart
// to pyanalysis.Scope, deliberately not sharing that type since persisted
// models reconstruct independently of any live analysis run.
type Scope struct {
	names map[string]Member
}

func NewScope() *Scope { return &Scope{names: make(map[string]Member)} }

func (s *Scope) Define(name string, m Member) { s.names[name] = m }

func (s *Scope) Lookup(name string) (Member, bool) {
	m, ok := s.names[name]
	return m, ok
}

// declareGuard gives every model a reentrancy guard for Finalize: enter()
// marks the model the first time Finalize runs and reports false on every
// later call, so a nested declare/finalize chain that loops back into a
// model still mid-construction returns instead of recursing.
type declareGuard struct {
	declaring bool
	finalized bool
}

func (g *declareGuard) enter() bool {
	if g.declaring {
		return false
	}
	g.declaring = true
	return true
}

func (g *declareGuard) done() { g.finalized = true }

// ModuleFactory resolves qualified names (e.g. "moduleA.ClassX") to live
// Members across every module this process has declared, loading from the
// backing Store on a cache miss.
type ModuleFactory struct {
	store   *Store
	modules map[string]*ModuleModel
}

func NewModuleFactory(store *Store) *ModuleFactory {
	return &ModuleFactory{store: store, modules: make(map[string]*ModuleModel)}
}

// Module returns the declared (not necessarily finalized) ModuleModel for
// name, declaring it from the store on first reference.
func (f *ModuleFactory) Module(name string) (*ModuleModel, error) {
	if m, ok := f.modules[name]; ok {
		return m, nil
	}
	if f.store == nil {
		return nil, fmt.Errorf("persist: no module %q and no backing store to load it from", name)
	}
	m, err := f.store.LoadModule(name)
	if err != nil {
		return nil, fmt.Errorf("persist: loading module %q: %w", name, err)
	}
	f.modules[name] = m
	global := NewScope()
	if _, err := m.Declare(f, nil, global); err != nil {
		return nil, err
	}
	return m, nil
}

// ConstructType resolves a qualified name into a Member, substituting
// UnknownModel when the name can't be resolved (
// "construct_type(qname) ... substituting Unknown when absent").
func (f *ModuleFactory) ConstructType(qname string) Member {
	module, name, ok := splitQualifiedName(qname)
	if !ok {
		return Unknown
	}
	mod, err := f.Module(module)
	if err != nil {
		return Unknown
	}
	if class, ok := mod.Classes[name]; ok {
		return class
	}
	if fn, ok := mod.Functions[name]; ok {
		return fn
	}
	if v, ok := mod.Variables[name]; ok {
		return v
	}
	return Unknown
}

func splitQualifiedName(qname string) (module, name string, ok bool) {
	i := lastDot(qname)
	if i < 0 {
		return "", "", false
	}
	return qname[:i], qname[i+1:], true
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// Unknown is the best-effort sentinel ConstructType falls back to, mirroring
// pytype.Unknown's role in the live analyzer ("best-effort, not
// a runtime" applies here too: an unresolved qualified name degrades rather
// than failing reconstruction).
var Unknown Member = unknownModel{}

type unknownModel struct{}

func (unknownModel) QualifiedName() string { return "<unknown>" }
