// Package pyanalysis implements the Analysis pipeline: a
// single top-down walk over a freshly parsed module AST that builds its
// global scope, resolves imports, assigns types to names, computes class
// MRO and function overloads, and narrows types inside isinstance guards.
//
// The published Analysis is immutable once released; a
// later edit produces a brand new Analysis and replaces the Document's
// published value atomically via Document.NotifyAnalysisComplete, never
// mutating one in place.
package pyanalysis

import (
	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/pytype"
)

// Analysis is the immutable result of analyzing one module version.
type Analysis struct {
	ModuleName string

	// Globals holds every name bound at module scope: variables, classes,
	// functions, and star-imported re-exports.
	Globals map[string]pytype.Member

	Classes   map[string]*pytype.ClassType
	Functions map[string]*pytype.FunctionType

	// Dependencies is every module name this module imported, in source
	// order, used to enqueue dependents on change.
	Dependencies []string

	// PrimaryModule is set when this analysis is for a stub-attached pair:
	// the stub's members override matched primary members, but the
	// primary .py remains reachable for navigation.
	PrimaryModule string

	Diagnostics []*diagnostics.Diagnostic

	// dunderAll holds the module's __all__ contents, read once during the
	// overview pass; unexported since only this package's star-import and
	// privacy logic needs it.
	dunderAll []string
}

// DunderAll returns the module's __all__ contents (nil if absent), for
// consumers outside this package that need the same export list the
// privacy rule uses (e.g. internal/stubgen's RemovePrivateMemberWalker).
func (a *Analysis) DunderAll() []string {
	return a.dunderAll
}

// IsPrivate exposes this package's standardized privacy rule
// to other components that need the identical definition rather than a
// re-derived approximation.
func IsPrivate(name string, dunderAll []string) bool {
	return isPrivate(name, dunderAll)
}

func newAnalysis(moduleName string) *Analysis {
	return &Analysis{
		ModuleName: moduleName,
		Globals:    make(map[string]pytype.Member),
		Classes:    make(map[string]*pytype.ClassType),
		Functions:  make(map[string]*pytype.FunctionType),
	}
}
