package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaVersion is bumped whenever the persisted JSON shape of ModuleModel
// changes; Open reindexes (drops and recreates the table) when the
// database's recorded version doesn't match, the same PRAGMA user_version
// convention a plain file-backed SQLite index uses to detect a stale schema.
const schemaVersion = 1

// Store is a SQLite-backed cache of finalized module models, keyed by
// qualified module name — a derived index over whatever Document/AST the
// rest of the pipeline treats as authoritative, not a second source of
// truth: losing this database only costs a re-run of analysis, never data.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a persistence store at path. Pass
// ":memory:" for a throwaway store, e.g. in tests.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: opening %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("persist: reading schema version: %w", err)
	}
	if version == schemaVersion {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS modules`); err != nil {
		return fmt.Errorf("persist: dropping stale modules table: %w", err)
	}
	const create = `
		CREATE TABLE modules (
			name TEXT PRIMARY KEY,
			dependencies TEXT NOT NULL,
			body TEXT NOT NULL
		)`
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("persist: creating modules table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("persist: recording schema version: %w", err)
	}
	return nil
}

// SaveModule upserts m's finalized contents, keyed by its own name.
func (s *Store) SaveModule(ctx context.Context, m *ModuleModel) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("persist: marshaling module %q: %w", m.Name, err)
	}
	deps, err := json.Marshal(m.Dependencies)
	if err != nil {
		return fmt.Errorf("persist: marshaling dependencies of %q: %w", m.Name, err)
	}
	const upsert = `
		INSERT INTO modules (name, dependencies, body) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET dependencies = excluded.dependencies, body = excluded.body`
	if _, err := s.db.ExecContext(ctx, upsert, m.Name, string(deps), string(body)); err != nil {
		return fmt.Errorf("persist: saving module %q: %w", m.Name, err)
	}
	return nil
}

// LoadModule reads back a module's undeclared model tree; the caller is
// responsible for running Declare/Finalize against a ModuleFactory before
// using any of its members, exactly as freshly-built models must be.
func (s *Store) LoadModule(name string) (*ModuleModel, error) {
	row := s.db.QueryRow(`SELECT body FROM modules WHERE name = ?`, name)
	var body string
	if err := row.Scan(&body); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("persist: no persisted module %q", name)
		}
		return nil, fmt.Errorf("persist: loading module %q: %w", name, err)
	}
	var m ModuleModel
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, fmt.Errorf("persist: unmarshaling module %q: %w", name, err)
	}
	return &m, nil
}

// DependentsOf returns every persisted module whose Dependencies lists
// name — the on-disk counterpart of the live dependency graph's requeue
// query, usable from an offline cache-report tool with no RDT at all.
func (s *Store) DependentsOf(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, dependencies FROM modules`)
	if err != nil {
		return nil, fmt.Errorf("persist: scanning dependents of %q: %w", name, err)
	}
	defer rows.Close()

	var dependents []string
	for rows.Next() {
		var modName, depsJSON string
		if err := rows.Scan(&modName, &depsJSON); err != nil {
			return nil, err
		}
		var deps []string
		if err := json.Unmarshal([]byte(depsJSON), &deps); err != nil {
			return nil, err
		}
		for _, d := range deps {
			if d == name {
				dependents = append(dependents, modName)
				break
			}
		}
	}
	return dependents, rows.Err()
}

// ModuleSize is one row of a cache report: a persisted module and the
// byte size of its serialized model tree.
type ModuleSize struct {
	Name  string
	Bytes int64
}

// ModuleSizes lists every persisted module with its serialized size,
// ordered by name — the cache-report tool's one query.
func (s *Store) ModuleSizes(ctx context.Context) ([]ModuleSize, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, length(body) FROM modules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("persist: listing module sizes: %w", err)
	}
	defer rows.Close()

	var out []ModuleSize
	for rows.Next() {
		var ms ModuleSize
		if err := rows.Scan(&ms.Name, &ms.Bytes); err != nil {
			return nil, err
		}
		out = append(out, ms)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
