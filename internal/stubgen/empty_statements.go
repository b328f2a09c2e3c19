package stubgen

import (
	"context"

	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyast"
)

// CleanupEmptyStatement replaces a lone `pass` body inside a function or
// class with `...`, the conventional stub-file body marker.
type CleanupEmptyStatement struct{}

func (CleanupEmptyStatement) Name() string { return "CleanupEmptyStatement" }

func (CleanupEmptyStatement) Rewrite(ctx context.Context, text string, mod *pyast.Module, analysis *pyanalysis.Analysis) (string, error) {
	w := NewBaseWalker(text)
	cleanupEmptyBodies(w, mod.Body)
	return w.Finish(), nil
}

func cleanupEmptyBodies(w *BaseWalker, body []pyast.Statement) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *pyast.FunctionDef:
			replaceLonePass(w, s.Body)
		case *pyast.ClassDef:
			replaceLonePass(w, s.Body)
			cleanupEmptyBodies(w, s.Body)
		}
	}
}

func replaceLonePass(w *BaseWalker, body []pyast.Statement) {
	if len(body) != 1 {
		return
	}
	if p, ok := body[0].(*pyast.PassStatement); ok {
		w.Replace(p.Pos(), "...")
	}
}
