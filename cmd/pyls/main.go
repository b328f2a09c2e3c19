package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/modresolver"
	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyconfig"
	"github.com/pymodel/langcore/internal/pyparse"
	"github.com/pymodel/langcore/internal/pyresolve"
	"github.com/pymodel/langcore/internal/rdt"
	"github.com/pymodel/langcore/internal/scraper"
)

// Provider must keep satisfying the analyzer's collaborator contract; a
// drift between the two packages should fail the build here, at the one
// place that wires them together.
var _ pyanalysis.ModuleProvider = (*modresolver.Provider)(nil)

func main() {
	log.SetFlags(0)          // Disable timestamp in logs
	log.SetOutput(os.Stderr) // Log to stderr, not stdout (stdout is for LSP protocol)

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("pyls: getwd: %v", err)
	}
	cfg, err := loadConfig(cwd)
	if err != nil {
		log.Fatalf("pyls: %v", err)
	}

	server := buildServer(cfg, os.Stdout)
	server.Start()
}

// loadConfig finds and loads pyls.yaml above dir, falling back to an
// all-defaults config rooted at dir when none exists.
func loadConfig(dir string) (*pyconfig.Config, error) {
	path, err := pyconfig.FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return pyconfig.ParseConfig(nil, filepath.Join(dir, pyconfig.FileName))
	}
	return pyconfig.LoadConfig(path)
}

// buildServer wires the whole pipeline in one place: path resolvers, the
// module resolver, the RDT, the analyzer, and the LSP front end. All
// composition happens here; the packages themselves never import each
// other's concrete implementations.
func buildServer(cfg *pyconfig.Config, out *os.File) *Server {
	mainRes := pyresolve.New(cfg.RequireInitPy())
	mainRes.SetRoot(cfg.WorkspaceRoot)
	mainRes.SetInterpreterSearchPaths(cfg.InterpreterSearchPaths)
	mainRes.SetUserSearchPaths(cfg.UserSearchPaths)

	exe, _ := os.Executable()
	bundleDir := ""
	if exe != "" {
		bundleDir = filepath.Dir(exe)
	}
	major, minor := cfg.Version()
	typeshed := modresolver.NewTypeshedResolver(bundleDir, cfg.TypeshedRoot, major, minor)

	resolver := modresolver.New(mainRes, typeshed, pyparse.New(), buildScraper(cfg))
	table := rdt.New(resolver)
	provider := modresolver.NewProvider(table, resolver)
	analyzer := pyanalysis.New(provider)

	server := NewServer(out, table, resolver, analyzer, provider)

	hook := pyanalysis.Hook(analyzer)
	table.SetOnNewAst(func(d *document.Document) {
		hook(d)
		if d.IsOpen() {
			server.publishDiagnostics(d)
		}
	})

	// A Removed event means the last lock on a document is gone; the path
	// resolver forgets its registration of that path. Name lookups scan the
	// file system and do not read these registrations.
	table.Subscribe(func(ev rdt.Event) {
		if ev.Kind == rdt.EventRemoved {
			mainRes.RemoveModulePath(uriToPath(ev.URI))
		}
	})

	return server
}

func buildScraper(cfg *pyconfig.Config) modresolver.Scraper {
	switch cfg.Scraper.Mode {
	case pyconfig.ScraperRemote:
		client, err := scraper.DialRemoteScraper(cfg.Scraper.RemoteAddr, cfg.PythonVersion)
		if err != nil {
			log.Printf("pyls: remote scraper %s unavailable, compiled modules disabled: %v", cfg.Scraper.RemoteAddr, err)
			return nil
		}
		return client
	case pyconfig.ScraperDisabled:
		return nil
	default:
		return scraper.NewLocalScraper(cfg.Scraper.InterpreterPath, cfg.Scraper.LibraryPath)
	}
}
