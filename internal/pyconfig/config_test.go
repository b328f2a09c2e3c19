package pyconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfigValidMinimal(t *testing.T) {
	yaml := `
python_version: "3.9"
user_search_paths:
  - ./vendor
typeshed_root: ./typeshed
`
	cfg, err := ParseConfig([]byte(yaml), "/work/pyls.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PythonVersion != "3.9" {
		t.Errorf("python_version = %q, want 3.9", cfg.PythonVersion)
	}
	if len(cfg.UserSearchPaths) != 1 || cfg.UserSearchPaths[0] != "./vendor" {
		t.Errorf("user_search_paths = %v", cfg.UserSearchPaths)
	}
	if cfg.WorkspaceRoot != "/work" {
		t.Errorf("workspace_root defaulted to %q, want /work", cfg.WorkspaceRoot)
	}
	if cfg.CacheDir != filepath.Join("/work", ".langserver-cache") {
		t.Errorf("cache_dir defaulted to %q", cfg.CacheDir)
	}
	if cfg.Scraper.Mode != ScraperLocal {
		t.Errorf("scraper.mode defaulted to %q, want %q", cfg.Scraper.Mode, ScraperLocal)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log_level defaulted to %q, want info", cfg.LogLevel)
	}
}

func TestParseConfigRejectsUnknownScraperMode(t *testing.T) {
	yaml := `
scraper:
  mode: teleport
`
	if _, err := ParseConfig([]byte(yaml), "test.yaml"); err == nil {
		t.Fatal("expected an error for an unrecognized scraper mode")
	}
}

func TestParseConfigRequiresRemoteAddrForRemoteScraper(t *testing.T) {
	yaml := `
scraper:
  mode: remote
`
	if _, err := ParseConfig([]byte(yaml), "test.yaml"); err == nil {
		t.Fatal("expected an error when scraper.mode is remote with no remote_addr")
	}
}

func TestParseConfigRejectsUnknownLogLevel(t *testing.T) {
	yaml := `
log_level: verbose
`
	if _, err := ParseConfig([]byte(yaml), "test.yaml"); err == nil {
		t.Fatal("expected an error for an unrecognized log level")
	}
}

func TestRequireInitPyTracksPythonVersion(t *testing.T) {
	old := &Config{PythonVersion: "2.7"}
	if !old.RequireInitPy() {
		t.Error("expected Python 2.7 to require __init__.py")
	}
	early3 := &Config{PythonVersion: "3.2"}
	if !early3.RequireInitPy() {
		t.Error("expected Python 3.2 to require __init__.py (pre-namespace-packages)")
	}
	modern := &Config{PythonVersion: "3.11"}
	if modern.RequireInitPy() {
		t.Error("expected Python 3.11 to allow namespace packages")
	}
}

func TestStorePathIsUnderCacheDir(t *testing.T) {
	cfg := &Config{CacheDir: "/tmp/cache"}
	if got, want := cfg.StorePath(), filepath.Join("/tmp/cache", "analysis.sqlite"); got != want {
		t.Errorf("StorePath() = %q, want %q", got, want)
	}
}

func TestFindConfigWalksUpToParent(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(root, FileName)
	if err := os.WriteFile(configPath, []byte("python_version: \"3.11\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(nested)
	if err != nil {
		t.Fatal(err)
	}
	if found != configPath {
		t.Errorf("FindConfig found %q, want %q", found, configPath)
	}
}

func TestFindConfigReturnsEmptyWhenAbsent(t *testing.T) {
	root := t.TempDir()
	found, err := FindConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	if found != "" {
		t.Errorf("expected no config found, got %q", found)
	}
}
