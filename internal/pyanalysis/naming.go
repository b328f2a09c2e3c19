package pyanalysis

import (
	"strings"

	"github.com/pymodel/langcore/internal/pyast"
)

// wellKnownPublics are names that look private by the leading-underscore
// rule but are conventionally treated as public API (resolved
// open question on IsPrivate).
var wellKnownPublics = map[string]bool{
	"__init__":    true,
	"__all__":     true,
	"__version__": true,
	"__repr__":    true,
	"__str__":     true,
	"__eq__":      true,
	"__hash__":    true,
	"__call__":    true,
	"__len__":     true,
	"__iter__":    true,
	"__next__":    true,
	"__enter__":   true,
	"__exit__":    true,
	"__getitem__": true,
	"__setitem__": true,
}

// isPrivate: a name is private when it starts with '_', is not listed in
// the module's __all__, and is not one of the well-known dunder publics —
// one rule shared by every pass that cares about visibility.
func isPrivate(name string, dunderAll []string) bool {
	if !strings.HasPrefix(name, "_") {
		return false
	}
	if wellKnownPublics[name] {
		return false
	}
	for _, exported := range dunderAll {
		if exported == name {
			return false
		}
	}
	return true
}

// dunderAllFromBody reads a module's top-level `__all__ = [...]` (list or
// tuple of string literals) as an ordered export list. A later assignment
// replaces an earlier one; non-literal entries are skipped rather than
// guessed at. Returns nil when __all__ is absent.
func dunderAllFromBody(body []pyast.Statement) []string {
	var out []string
	for _, stmt := range body {
		assign, ok := stmt.(*pyast.AssignStatement)
		if !ok {
			continue
		}
		targeted := false
		for _, t := range assign.Targets {
			if id, ok := t.(*pyast.Identifier); ok && id.Value == "__all__" {
				targeted = true
			}
		}
		if !targeted {
			continue
		}
		var elems []pyast.Expression
		switch v := assign.Value.(type) {
		case *pyast.ListExpr:
			elems = v.Elements
		case *pyast.TupleExpr:
			elems = v.Elements
		default:
			continue
		}
		out = nil
		for _, e := range elems {
			c, ok := e.(*pyast.Constant)
			if !ok || c.Kind != pyast.ConstStr {
				continue
			}
			if s, ok := c.Value.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
