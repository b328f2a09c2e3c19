// Command pylscache warms and reports the persisted-analysis cache for a
// workspace without starting a language server: it enumerates the
// workspace's Python modules, runs the parse+analyze pipeline over each
// one, lowers the results into the persistence models, and prints a
// per-module report of what the cache now holds.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/location"
	"github.com/pymodel/langcore/internal/modresolver"
	"github.com/pymodel/langcore/internal/persist"
	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyconfig"
	"github.com/pymodel/langcore/internal/pyparse"
	"github.com/pymodel/langcore/internal/pyresolve"
	"github.com/pymodel/langcore/internal/rdt"
	"github.com/pymodel/langcore/internal/scraper"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorDim   = "\033[2m"
	colorReset = "\033[0m"
)

func main() {
	log.SetFlags(0)

	workspace := flag.String("workspace", ".", "workspace directory to enumerate")
	timeout := flag.Duration("timeout", 10*time.Second, "per-module analysis deadline")
	flag.Parse()

	if err := run(*workspace, *timeout); err != nil {
		log.Fatalf("pylscache: %v", err)
	}
}

func run(workspace string, timeout time.Duration) error {
	cfg, err := loadConfig(workspace)
	if err != nil {
		return err
	}

	mainRes := pyresolve.New(cfg.RequireInitPy())
	mainRes.SetRoot(cfg.WorkspaceRoot)
	mainRes.SetInterpreterSearchPaths(cfg.InterpreterSearchPaths)
	mainRes.SetUserSearchPaths(cfg.UserSearchPaths)

	major, minor := cfg.Version()
	typeshed := modresolver.NewTypeshedResolver("", cfg.TypeshedRoot, major, minor)

	var scrape modresolver.Scraper
	if cfg.Scraper.Mode == pyconfig.ScraperLocal {
		scrape = scraper.NewLocalScraper(cfg.Scraper.InterpreterPath, cfg.Scraper.LibraryPath)
	}

	resolver := modresolver.New(mainRes, typeshed, pyparse.New(), scrape)
	table := rdt.New(resolver)
	provider := modresolver.NewProvider(table, resolver)
	analyzer := pyanalysis.New(provider)
	table.SetOnNewAst(pyanalysis.Hook(analyzer))

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	ctx := context.Background()
	store, err := persist.Open(ctx, cfg.StorePath())
	if err != nil {
		return err
	}
	defer store.Close()

	names := enumerateModules(cfg, mainRes)
	color := isatty.IsTerminal(os.Stdout.Fd())

	saved := 0
	for _, name := range names {
		if err := warmModule(ctx, table, store, name, timeout); err != nil {
			fmt.Printf("%s %s: %v\n", badge(color, false), name, err)
			continue
		}
		saved++
		fmt.Printf("%s %s\n", badge(color, true), name)
	}

	return report(ctx, store, color, saved, len(names))
}

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

// enumerateModules walks the workspace root, registers every Python source
// file with the path resolver, and returns the sorted dotted names to warm.
func enumerateModules(cfg *pyconfig.Config, res *pyresolve.Resolver) []string {
	seen := make(map[string]struct{})
	filepath.WalkDir(cfg.WorkspaceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if excluded(cfg, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), pyresolve.SourceExtension) || excluded(cfg, path) {
			return nil
		}
		if ok, name := res.TryAddModulePath(path); ok {
			seen[name] = struct{}{}
		}
		return nil
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func excluded(cfg *pyconfig.Config, path string) bool {
	rel, err := filepath.Rel(cfg.WorkspaceRoot, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, glob := range cfg.ExcludeGlobs {
		if ok, _ := filepath.Match(glob, rel); ok {
			return true
		}
	}
	return false
}

// warmModule runs the add_module parse+analyze path for one dotted name
// and saves the lowered model, waiting up to timeout for the pipeline.
func warmModule(ctx context.Context, table *rdt.Table, store *persist.Store, name string, timeout time.Duration) error {
	doc, err := table.AddModule(rdt.AddModuleOptions{ModuleName: name})
	if err != nil {
		return err
	}

	analysis := awaitAnalysis(doc, timeout)
	if analysis == nil {
		return fmt.Errorf("analysis did not complete within %s", timeout)
	}

	model := persist.FromAnalysis(analysis, location.NewNewLineTable(doc.Text()))
	return store.SaveModule(ctx, model)
}

// awaitAnalysis polls for the document's published analysis. The pipeline
// runs on the document's own parse goroutine, so there is nothing to join
// on from here — the offline tool just watches the published slot.
func awaitAnalysis(doc *document.Document, timeout time.Duration) *pyanalysis.Analysis {
	deadline := time.Now().Add(timeout)
	for {
		if a, ok := doc.GetAnalysis().(*pyanalysis.Analysis); ok {
			return a
		}
		if time.Now().After(deadline) {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func report(ctx context.Context, store *persist.Store, color bool, saved, total int) error {
	sizes, err := store.ModuleSizes(ctx)
	if err != nil {
		return err
	}
	var totalBytes int64
	for _, ms := range sizes {
		totalBytes += ms.Bytes
		fmt.Printf("  %s%-40s%s %8s\n", dim(color), ms.Name, reset(color), humanize.Bytes(uint64(ms.Bytes)))
	}
	fmt.Printf("%d/%d modules cached, %s in %d entries\n",
		saved, total, humanize.Bytes(uint64(totalBytes)), len(sizes))
	return nil
}

func badge(color, ok bool) string {
	if !color {
		if ok {
			return "ok  "
		}
		return "fail"
	}
	if ok {
		return colorGreen + "ok  " + colorReset
	}
	return colorRed + "fail" + colorReset
}

func dim(color bool) string {
	if color {
		return colorDim
	}
	return ""
}

func reset(color bool) string {
	if color {
		return colorReset
	}
	return ""
}
