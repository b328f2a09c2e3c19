// Package pyconfig implements the ambient project configuration that
// drives the rest of the analysis core: where to find the interpreter's
// standard library, the workspace root, extra user search paths, the
// typeshed stub root, how compiled-extension modules get scraped, and
// where the persisted analysis cache lives.
//
// A yaml.v3 struct with FindConfig/LoadConfig/ParseConfig entry points,
// validation separated into its own method, and defaults filled in after
// parsing rather than inline with the struct tags.
package pyconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file the language server looks for, walking up
// from the workspace root.
const FileName = "pyls.yaml"

// ScraperMode selects how compiled-extension (.so/.pyd) modules are
// turned into a synthetic stub source.
type ScraperMode string

const (
	// ScraperLocal runs the scraping subprocess on the same machine as
	// the server (internal/scraper's default strategy).
	ScraperLocal ScraperMode = "local"
	// ScraperRemote dispatches scraping to a remote gRPC worker, useful
	// when the server's own Python interpreter can't load the extension
	// (different platform/arch than the workspace's interpreter).
	ScraperRemote ScraperMode = "remote"
	// ScraperDisabled turns off compiled-module scraping entirely;
	// CreateDocument returns ErrNoScraperConfigured for such modules.
	ScraperDisabled ScraperMode = "disabled"
)

// Config is the top-level pyls.yaml configuration.
type Config struct {
	// PythonVersion selects interpreter semantics, notably the
	// pre-3.3-vs-namespace-package policy pyresolve.New's requireInitPy
	// parameter takes.
	PythonVersion string `yaml:"python_version,omitempty"`

	// InterpreterSearchPaths are the interpreter's own standard-library
	// and site-packages directories, highest-priority root group
	// (pyresolve.RootInterpreter).
	InterpreterSearchPaths []string `yaml:"interpreter_search_paths,omitempty"`

	// UserSearchPaths are extra project-configured roots (pyresolve.RootUser),
	// e.g. a vendored third-party directory or a src/ layout's source root.
	UserSearchPaths []string `yaml:"user_search_paths,omitempty"`

	// WorkspaceRoot is the single workspace root (pyresolve.RootWorkspace).
	// Defaults to the directory containing this config file.
	WorkspaceRoot string `yaml:"workspace_root,omitempty"`

	// TypeshedRoot points at a typeshed checkout (or bundled subset) used
	// to build the dedicated stub resolver modresolver.Resolver.Typeshed.
	// Empty disables typeshed-backed stub resolution; stub lookup then
	// only ever succeeds via sibling .pyi files next to source.
	TypeshedRoot string `yaml:"typeshed_root,omitempty"`

	// Scraper selects the compiled-extension scraping strategy.
	Scraper ScraperConfig `yaml:"scraper,omitempty"`

	// CacheDir holds the persist.Store database and any scraped-stub
	// byproducts. Defaults to ".langserver-cache" under WorkspaceRoot.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// ExcludeGlobs are glob patterns (matched against a module's
	// workspace-relative path) that cmd/pylscache skips when it enumerates
	// the workspace, e.g. generated code or vendored copies the project
	// doesn't want analyzed. The RDT and cmd/pyls do not consult them.
	ExcludeGlobs []string `yaml:"exclude,omitempty"`

	// LogLevel is one of "debug", "info", "warn", "error". Defaults to
	// "info".
	LogLevel string `yaml:"log_level,omitempty"`
}

// ScraperConfig configures the compiled-extension scraping strategy.
type ScraperConfig struct {
	Mode ScraperMode `yaml:"mode,omitempty"`

	// RemoteAddr is the gRPC address of the remote scraper worker.
	// Required (and only meaningful) when Mode is ScraperRemote.
	RemoteAddr string `yaml:"remote_addr,omitempty"`

	// InterpreterPath is the Python interpreter binary the local scraper
	// subprocess invokes. Defaults to "python3" on PATH.
	InterpreterPath string `yaml:"interpreter_path,omitempty"`

	// LibraryPath is the working directory of the scraper subprocess —
	// the interpreter's library path. Defaults to the first entry of
	// InterpreterSearchPaths.
	LibraryPath string `yaml:"library_path,omitempty"`
}

// FindConfig searches for FileName starting at dir and walking up through
// parent directories, the same way .gitignore resolution walks up.
// Returns "" with a nil error if no config file is found anywhere above dir.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("pyconfig: resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadConfig reads and parses a pyls.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pyconfig: reading %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses config content from bytes. path is used only for
// error messages and for deriving WorkspaceRoot's default.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("pyconfig: parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults(filepath.Dir(path))
	return &cfg, nil
}

func (c *Config) validate(path string) error {
	switch c.Scraper.Mode {
	case "", ScraperLocal, ScraperRemote, ScraperDisabled:
	default:
		return fmt.Errorf("%s: scraper.mode: unrecognized mode %q", path, c.Scraper.Mode)
	}
	if c.Scraper.Mode == ScraperRemote && c.Scraper.RemoteAddr == "" {
		return fmt.Errorf("%s: scraper.remote_addr is required when scraper.mode is %q", path, ScraperRemote)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s: log_level: unrecognized level %q", path, c.LogLevel)
	}
	return nil
}

func (c *Config) setDefaults(configDir string) {
	if c.WorkspaceRoot == "" {
		c.WorkspaceRoot = configDir
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(c.WorkspaceRoot, ".langserver-cache")
	}
	if c.Scraper.Mode == "" {
		c.Scraper.Mode = ScraperLocal
	}
	if c.Scraper.InterpreterPath == "" {
		c.Scraper.InterpreterPath = "python3"
	}
	if c.Scraper.LibraryPath == "" && len(c.InterpreterSearchPaths) > 0 {
		c.Scraper.LibraryPath = c.InterpreterSearchPaths[0]
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PythonVersion == "" {
		c.PythonVersion = "3.11"
	}
}

// RequireInitPy reports the package-detection policy pyresolve.New
// expects, derived from PythonVersion: namespace packages (PEP 420) were
// introduced in 3.3, so any earlier configured version requires __init__.py.
func (c *Config) RequireInitPy() bool {
	major, minor, ok := parseVersion(c.PythonVersion)
	if !ok {
		return false
	}
	return major < 3 || (major == 3 && minor < 3)
}

// Version returns the configured interpreter's (major, minor) pair, used
// to enumerate the typeshed stdlib/<major>.<minor> stub roots. Falls back
// to the default 3.11 when PythonVersion doesn't parse.
func (c *Config) Version() (major, minor int) {
	major, minor, ok := parseVersion(c.PythonVersion)
	if !ok {
		return 3, 11
	}
	return major, minor
}

// StorePath is the persist.Store database file under CacheDir.
func (c *Config) StorePath() string {
	return filepath.Join(c.CacheDir, "analysis.sqlite")
}

func parseVersion(v string) (major, minor int, ok bool) {
	n, _ := fmt.Sscanf(v, "%d.%d", &major, &minor)
	return major, minor, n == 2
}
