package pyanalysis

import "github.com/pymodel/langcore/internal/pytype"

// Scope is a single lexical level: the module's global scope, or a narrowed
// scope pushed for an isinstance guard's suite. Scopes
// chain to a parent rather than copying, so a narrowed scope only needs to
// hold the names it actually narrows.
type Scope struct {
	parent *Scope
	vars   map[string]pytype.Member
}

// NewScope creates a root (module-level) scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]pytype.Member)}
}

// Child pushes a new scope narrowing zero or more names; lookups that miss
// fall through to parent.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, vars: make(map[string]pytype.Member)}
}

// Define binds name in this scope, shadowing any outer binding.
func (s *Scope) Define(name string, m pytype.Member) {
	s.vars[name] = m
}

// Lookup walks outward from this scope to find name.
func (s *Scope) Lookup(name string) (pytype.Member, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if m, ok := sc.vars[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// Names returns every name bound directly in this scope (not parents) —
// used to collect a module's global scope into the published Analysis.
func (s *Scope) Names() map[string]pytype.Member {
	return s.vars
}
