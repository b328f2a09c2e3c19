package stubgen

import (
	"context"
	"fmt"

	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyast"
)

// ConvertDocCommentWalker promotes a module's `__doc__ = "..."` assignment
// to a leading string-literal expression statement (the form Python
// actually recognizes as a docstring) when the module doesn't already
// start with one.
type ConvertDocCommentWalker struct{}

func (ConvertDocCommentWalker) Name() string { return "ConvertDocCommentWalker" }

func (ConvertDocCommentWalker) Rewrite(ctx context.Context, text string, mod *pyast.Module, analysis *pyanalysis.Analysis) (string, error) {
	if len(mod.Body) > 0 && isDocstringStatement(mod.Body[0]) {
		return text, nil
	}

	w := NewBaseWalker(text)
	for _, stmt := range mod.Body {
		assign, ok := stmt.(*pyast.AssignStatement)
		if !ok || len(assign.Targets) != 1 {
			continue
		}
		id, ok := assign.Targets[0].(*pyast.Identifier)
		if !ok || id.Value != "__doc__" {
			continue
		}
		str, ok := assign.Value.(*pyast.Constant)
		if !ok || str.Kind != pyast.ConstStr {
			continue
		}
		doc, _ := str.Value.(string)
		if len(mod.Body) > 0 {
			w.InsertBefore(mod.Body[0].Pos(), fmt.Sprintf("%q\n", doc))
		}
		w.RemoveNode(assign.Pos())
		break
	}
	return w.Finish(), nil
}

func isDocstringStatement(stmt pyast.Statement) bool {
	expr, ok := stmt.(*pyast.ExprStatement)
	if !ok {
		return false
	}
	c, ok := expr.Expression.(*pyast.Constant)
	return ok && c.Kind == pyast.ConstStr
}
