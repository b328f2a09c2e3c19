// Package scraper implements the two scraping strategies a module
// resolver's Scraper seam anticipates for compiled-extension (.so/.pyd) and C-builtin
// modules: a LocalScraper that shells out to a Python interpreter
// subprocess, and a RemoteScraperClient that dispatches the same work to
// a remote gRPC worker (for cross-platform workspaces where the server's
// own interpreter can't load the target extension at all).
//
// Both satisfy modresolver.Scraper's single method, so
// internal/modresolver never needs to import this package directly —
// wiring is the caller's job (cmd/pyls).
package scraper

import (
	"bytes"
	"context"
	"os/exec"
)

// introspectScript is passed to the interpreter with -c: it imports the
// target module and prints one stub-shaped line per public attribute
// ("class X: ...", "def f(*args, **kwargs): ...", or "name: ..."), enough
// raw material for internal/stubgen's later passes to
// turn into an actual .pyi-shaped stub. A real deployment would use a
// fuller inspect-module-based script; this is deliberately minimal since
// the interpreter itself is "assumed available" the same way pyast's own
// package doc treats the parser.
const introspectScript = `
import importlib, inspect, sys
mod = importlib.import_module(sys.argv[1])
for name in sorted(vars(mod)):
    if name.startswith("_"):
        continue
    obj = getattr(mod, name)
    if inspect.isclass(obj):
        print(f"class {name}: ...")
    elif inspect.isroutine(obj):
        print(f"def {name}(*args, **kwargs): ...")
    else:
        print(f"{name}: ...")
`

// LocalScraper runs the introspection script through a Python interpreter
// subprocess on the same machine as the server.
type LocalScraper struct {
	// InterpreterPath is the Python binary to invoke, e.g. "python3".
	InterpreterPath string

	// LibraryPath is the subprocess's working directory — the
	// interpreter's library path. Empty inherits the server's own cwd.
	LibraryPath string
}

// NewLocalScraper builds a LocalScraper targeting interpreterPath, running
// the subprocess from libraryPath.
func NewLocalScraper(interpreterPath, libraryPath string) *LocalScraper {
	return &LocalScraper{InterpreterPath: interpreterPath, LibraryPath: libraryPath}
}

// Scrape implements modresolver.Scraper by running introspectScript
// against modulePath (a dotted module name, not a file path — the
// subprocess's own import machinery resolves it). The interpreter runs
// with -W ignore -B -E so a user's warning filters, bytecode caches, and
// environment overrides can't corrupt the emitted text. A failed launch
// yields empty content, not an error: an unscrapable
// module analyzes as an empty one.
func (s *LocalScraper) Scrape(ctx context.Context, modulePath string) (string, error) {
	interp := s.InterpreterPath
	if interp == "" {
		interp = "python3"
	}
	cmd := exec.CommandContext(ctx, interp, "-W", "ignore", "-B", "-E", "-c", introspectScript, modulePath)
	cmd.Dir = s.LibraryPath
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", nil
	}
	return stdout.String(), nil
}
