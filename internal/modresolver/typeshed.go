package modresolver

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pymodel/langcore/internal/pyresolve"
)

// BundledStubsDir is the parallel stub folder shipped alongside the
// server binary, searched after sibling .pyi files and before the
// configured typeshed root.
const BundledStubsDir = "Stubs"

// TypeshedSearchPaths enumerates the stub roots inside a typeshed checkout
// for the given interpreter version: stdlib/<major>, stdlib/2and3, and
// stdlib/<major>.<minor> for every minor up to the interpreter's, plus the
// same set under third_party. Roots that don't exist on disk are skipped
// rather than reported — an absent typeshed subtree is an IO condition
// absorbed with empty results.
func TypeshedSearchPaths(root string, major, minor int) []string {
	if root == "" {
		return nil
	}
	var out []string
	add := func(parts ...string) {
		p := filepath.Join(append([]string{root}, parts...)...)
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			out = append(out, p)
		}
	}
	for _, group := range []string{"stdlib", "third_party"} {
		add(group, strconv.Itoa(major))
		add(group, "2and3")
		for m := 0; m <= minor; m++ {
			add(group, strconv.Itoa(major)+"."+strconv.Itoa(m))
		}
	}
	return out
}

// NewTypeshedResolver builds the dedicated stub-only resolver: the bundled
// Stubs/ folder next to bundleDir (if present) plus the typeshed roots for
// the configured interpreter version. Returns nil when no root exists at
// all; stub lookup then only ever succeeds via sibling .pyi files.
func NewTypeshedResolver(bundleDir, typeshedRoot string, major, minor int) *pyresolve.Resolver {
	var roots []string
	if bundleDir != "" {
		bundled := filepath.Join(bundleDir, BundledStubsDir)
		if fi, err := os.Stat(bundled); err == nil && fi.IsDir() {
			roots = append(roots, bundled)
		}
	}
	roots = append(roots, TypeshedSearchPaths(typeshedRoot, major, minor)...)
	if len(roots) == 0 {
		return nil
	}

	// Stub trees never require __init__.py — typeshed packages are laid
	// out as plain directories of .pyi files.
	r := pyresolve.New(false)
	r.SetInterpreterSearchPaths(roots)
	return r
}
