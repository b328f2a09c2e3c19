// Package pyresolve implements the Path resolver: mapping
// dotted Python module names to files across interpreter, workspace, and
// user-configured search roots, with package/stub/compiled-module
// detection and the stub-adjacency tie-break rule.
package pyresolve

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RootKind orders the three root groups for tie-breaking: interpreter
// search paths win over user paths, which win over the workspace root
//.
type RootKind int

const (
	RootInterpreter RootKind = iota
	RootUser
	RootWorkspace
)

// Root is one directory entry in a resolver's search path.
type Root struct {
	Path string
	Kind RootKind
}

// ModuleImport is the resolved shape of a dotted import.
type ModuleImport struct {
	FullName   string
	ModulePath string
	RootPath   string
	IsBuiltin  bool
	IsCompiled bool
	IsLibrary  bool
}

// CompiledExtensions are the recognized binary-extension-module suffixes.
var CompiledExtensions = []string{".pyd", ".so"}

// StubExtension is the Typeshed/inline stub file suffix.
const StubExtension = ".pyi"

// SourceExtension is the plain Python source suffix.
const SourceExtension = ".py"

// snapshot is the immutable index handed out once built; package detection
// and stub pairing are resolved against a single snapshot so readers never
// observe roots mutating mid-lookup ("Path resolver mutations
// publish a new immutable snapshot").
type snapshot struct {
	roots         []Root
	requireInitPy bool
	added         map[string]string // absolute file path -> full dotted name, from TryAddModulePath
}

// Resolver is the Path resolver. The zero value is not usable (it has no
// snapshot); create one with New, then call SetRoot /
// SetInterpreterSearchPaths / SetUserSearchPaths to populate it.
type Resolver struct {
	mu   sync.Mutex
	snap *snapshot
}

// New creates a Resolver. requireInitPy mirrors policy value
// derived from the configured Python language version: true for pre-3.3
// semantics (packages need __init__.py), false to allow implicit namespace
// packages.
func New(requireInitPy bool) *Resolver {
	return &Resolver{
		snap: &snapshot{requireInitPy: requireInitPy, added: make(map[string]string)},
	}
}

func (r *Resolver) currentSnapshot() *snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

func (r *Resolver) publish(mutate func(next *snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := &snapshot{
		requireInitPy: r.snap.requireInitPy,
		added:         make(map[string]string, len(r.snap.added)),
	}
	next.roots = append(next.roots, r.snap.roots...)
	for k, v := range r.snap.added {
		next.added[k] = v
	}
	mutate(next)
	r.snap = next
}

func replaceRootsOfKind(roots []Root, kind RootKind, paths []string) ([]Root, []string) {
	kept := make([]Root, 0, len(roots))
	existing := make(map[string]bool)
	for _, rt := range roots {
		if rt.Kind == kind {
			continue
		}
		kept = append(kept, rt)
		existing[rt.Path] = true
	}
	var added []string
	for _, p := range paths {
		if existing[p] {
			continue
		}
		kept = append(kept, Root{Path: p, Kind: kind})
		added = append(added, p)
		existing[p] = true
	}
	return kept, added
}

// SetRoot sets the single workspace root, returning it if newly added (it
// replaces any prior workspace root, so it is "new" whenever it changes).
func (r *Resolver) SetRoot(path string) []string {
	var added []string
	r.publish(func(next *snapshot) {
		next.roots, added = replaceRootsOfKind(next.roots, RootWorkspace, []string{path})
	})
	return added
}

// SetInterpreterSearchPaths replaces the interpreter-provided roots
// (normally queried once from the configured interpreter at startup).
func (r *Resolver) SetInterpreterSearchPaths(paths []string) []string {
	var added []string
	r.publish(func(next *snapshot) {
		next.roots, added = replaceRootsOfKind(next.roots, RootInterpreter, paths)
	})
	return added
}

// SetUserSearchPaths replaces the user-configured roots, deduping against
// the current interpreter roots.
func (r *Resolver) SetUserSearchPaths(paths []string) []string {
	interp := make(map[string]bool)
	for _, rt := range r.currentSnapshot().roots {
		if rt.Kind == RootInterpreter {
			interp[rt.Path] = true
		}
	}
	filtered := make([]string, 0, len(paths))
	for _, p := range paths {
		if !interp[p] {
			filtered = append(filtered, p)
		}
	}
	var added []string
	r.publish(func(next *snapshot) {
		next.roots, added = replaceRootsOfKind(next.roots, RootUser, filtered)
	})
	return added
}

// orderedRoots returns the roots ordered by tie-break precedence: interpreter,
// then user, then workspace.
func (s *snapshot) orderedRoots() []Root {
	order := []RootKind{RootInterpreter, RootUser, RootWorkspace}
	var out []Root
	for _, k := range order {
		for _, rt := range s.roots {
			if rt.Kind == k {
				out = append(out, rt)
			}
		}
	}
	return out
}

func dottedToRelPath(name string) string {
	return filepath.Join(strings.Split(name, ".")...)
}

// candidateBase returns, for a root and a dotted name, the path (without
// extension) that the name would resolve to under that root.
func candidateBase(root, name string) string {
	return filepath.Join(root, dottedToRelPath(name))
}

// isPackageDir reports whether dir is a Python package: has __init__.py,
// or (when requireInitPy is false) is simply a directory containing any
// recognized source — implicit namespace packages.
func isPackageDir(dir string, requireInitPy bool) (ok bool, initPath string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false, ""
	}
	initCandidate := filepath.Join(dir, "__init__.py")
	if _, err := os.Stat(initCandidate); err == nil {
		return true, initCandidate
	}
	if requireInitPy {
		return false, ""
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, ""
	}
	for _, e := range entries {
		if !e.IsDir() && (strings.HasSuffix(e.Name(), SourceExtension) || strings.HasSuffix(e.Name(), StubExtension)) {
			return true, ""
		}
	}
	return false, ""
}

func isCompiledExt(ext string) bool {
	for _, c := range CompiledExtensions {
		if ext == c {
			return true
		}
	}
	return false
}

// GetModuleImportFromName resolves a dotted module name against every root
// in tie-break precedence order.
func (r *Resolver) GetModuleImportFromName(name string) *ModuleImport {
	snap := r.currentSnapshot()
	for _, root := range snap.orderedRoots() {
		base := candidateBase(root.Path, name)

		if ok, initPath := isPackageDir(base, snap.requireInitPy); ok {
			modPath := initPath
			if modPath == "" {
				modPath = base // implicit namespace package: directory stands in for the module
			}
			return &ModuleImport{
				FullName:   name,
				ModulePath: modPath,
				RootPath:   root.Path,
				IsLibrary:  root.Kind != RootWorkspace,
			}
		}

		if path := base + SourceExtension; fileExists(path) {
			return &ModuleImport{FullName: name, ModulePath: path, RootPath: root.Path, IsLibrary: root.Kind != RootWorkspace}
		}
		if path := base + StubExtension; fileExists(path) {
			return &ModuleImport{FullName: name, ModulePath: path, RootPath: root.Path, IsLibrary: root.Kind != RootWorkspace}
		}
		for _, ext := range CompiledExtensions {
			if path := base + ext; fileExists(path) {
				return &ModuleImport{FullName: name, ModulePath: path, RootPath: root.Path, IsCompiled: true, IsLibrary: root.Kind != RootWorkspace}
			}
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetPossibleModuleStubPaths returns candidate .pyi locations: first the
// sibling stub under every search root, then a parallel Stubs/ tree rooted
// at each search root, each group in tie-break precedence order.
func (r *Resolver) GetPossibleModuleStubPaths(name string) []string {
	snap := r.currentSnapshot()
	roots := snap.orderedRoots()
	var out []string
	for _, root := range roots {
		out = append(out, candidateBase(root.Path, name)+StubExtension)
	}
	for _, root := range roots {
		out = append(out, filepath.Join(root.Path, "Stubs", dottedToRelPath(name)+StubExtension))
	}
	return out
}

// TryAddModulePath registers a newly discovered file under its computed
// dotted name (derived from whichever root contains it), returning ok=false
// if the path isn't under any known root.
func (r *Resolver) TryAddModulePath(path string) (ok bool, fullName string) {
	snap := r.currentSnapshot()
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, ""
	}
	for _, root := range snap.orderedRoots() {
		rootAbs, err := filepath.Abs(root.Path)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(rootAbs, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = strings.TrimSuffix(rel, SourceExtension)
		rel = strings.TrimSuffix(rel, StubExtension)
		for _, ext := range CompiledExtensions {
			rel = strings.TrimSuffix(rel, ext)
		}
		rel = strings.TrimSuffix(rel, string(filepath.Separator)+"__init__")
		name := strings.ReplaceAll(rel, string(filepath.Separator), ".")
		if name == "" || name == "." {
			continue
		}
		r.publish(func(next *snapshot) { next.added[abs] = name })
		return true, name
	}
	return false, ""
}

// RemoveModulePath forgets a previously added path — called when the RDT
// disposes a document (a Removed event, re: the
// resolver "forgetting" a closed file's path).
func (r *Resolver) RemoveModulePath(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	r.publish(func(next *snapshot) { delete(next.added, abs) })
}
