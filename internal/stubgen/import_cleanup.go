package stubgen

import (
	"context"
	"fmt"

	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyast"
)

// CleanupImportWalker collapses the `import x as y` + `y.z = ...` pattern
// scraped compiled-extension stubs commonly produce into a plain
// `from x import z as z`, provided y isn't referenced anywhere else (an
// import still in genuine use is left untouched).
type CleanupImportWalker struct{}

func (CleanupImportWalker) Name() string { return "CleanupImportWalker" }

func (CleanupImportWalker) Rewrite(ctx context.Context, text string, mod *pyast.Module, analysis *pyanalysis.Analysis) (string, error) {
	w := NewBaseWalker(text)

	for i, stmt := range mod.Body {
		imp, ok := stmt.(*pyast.ImportStatement)
		if !ok || len(imp.Names) != 1 || imp.Names[0].AsName == "" {
			continue
		}
		alias := imp.Names[0]
		reexport, assignIdx := findReexportAssign(mod.Body, i+1, alias.AsName)
		if reexport == "" {
			continue
		}
		if countIdentifierUses(mod.Body, alias.AsName) > 1 {
			// y is used for more than just this one re-export; keep the
			// original import form.
			continue
		}
		w.Replace(imp.Pos(), fmt.Sprintf("from %s import %s as %s", alias.Name, reexport, reexport))
		w.RemoveNode(mod.Body[assignIdx].Pos())
	}

	return w.Finish(), nil
}

// findReexportAssign looks for the first `y.z = ...` top-level assignment
// after index start, returning the attribute name z and its statement index.
func findReexportAssign(body []pyast.Statement, start int, y string) (string, int) {
	for i := start; i < len(body); i++ {
		assign, ok := body[i].(*pyast.AssignStatement)
		if !ok || len(assign.Targets) != 1 {
			continue
		}
		attr, ok := assign.Targets[0].(*pyast.Attribute)
		if !ok {
			continue
		}
		id, ok := attr.Value.(*pyast.Identifier)
		if !ok || id.Value != y {
			continue
		}
		return attr.Attr, i
	}
	return "", -1
}

// countIdentifierUses is a coarse, best-effort reference count over the
// module's statement tree (the stub generator only needs to decide "is
// this import otherwise live", not build a full reference graph — that
// lives in internal/pyanalysis).
func countIdentifierUses(body []pyast.Statement, name string) int {
	n := 0
	for _, stmt := range body {
		n += countInStatement(stmt, name)
	}
	return n
}

func countInStatement(stmt pyast.Statement, name string) int {
	switch s := stmt.(type) {
	case *pyast.ClassDef:
		return countInExprs(s.Bases, name) + countInStatements(s.Body, name)
	case *pyast.FunctionDef:
		return countInExpr(s.Returns, name) + countInStatements(s.Body, name)
	case *pyast.AssignStatement:
		return countInExprs(s.Targets, name) + countInExpr(s.Value, name)
	case *pyast.AnnAssignStatement:
		return countInExpr(s.Target, name) + countInExpr(s.Annotation, name) + countInExpr(s.Value, name)
	case *pyast.AugAssignStatement:
		return countInExpr(s.Target, name) + countInExpr(s.Value, name)
	case *pyast.ExprStatement:
		return countInExpr(s.Expression, name)
	case *pyast.ReturnStatement:
		return countInExpr(s.Value, name)
	case *pyast.IfStatement:
		return countInExpr(s.Test, name) + countInStatements(s.Body, name) + countInStatements(s.Orelse, name)
	case *pyast.ForStatement:
		return countInExpr(s.Target, name) + countInExpr(s.Iter, name) + countInStatements(s.Body, name) + countInStatements(s.Orelse, name)
	case *pyast.WhileStatement:
		return countInExpr(s.Test, name) + countInStatements(s.Body, name) + countInStatements(s.Orelse, name)
	case *pyast.WithStatement:
		total := countInStatements(s.Body, name)
		for _, item := range s.Items {
			total += countInExpr(item.Context, name) + countInExpr(item.Vars, name)
		}
		return total
	case *pyast.TryStatement:
		total := countInStatements(s.Body, name) + countInStatements(s.Orelse, name) + countInStatements(s.Finally, name)
		for _, h := range s.Handlers {
			total += countInExpr(h.Exc, name) + countInStatements(h.Body, name)
		}
		return total
	case *pyast.AssertStatement:
		return countInExpr(s.Test, name) + countInExpr(s.Msg, name)
	default:
		return 0
	}
}

func countInStatements(stmts []pyast.Statement, name string) int {
	n := 0
	for _, s := range stmts {
		n += countInStatement(s, name)
	}
	return n
}

func countInExprs(exprs []pyast.Expression, name string) int {
	n := 0
	for _, e := range exprs {
		n += countInExpr(e, name)
	}
	return n
}

func countInExpr(expr pyast.Expression, name string) int {
	if expr == nil {
		return 0
	}
	switch e := expr.(type) {
	case *pyast.Identifier:
		if e.Value == name {
			return 1
		}
		return 0
	case *pyast.Attribute:
		return countInExpr(e.Value, name)
	case *pyast.Call:
		total := countInExpr(e.Func, name) + countInExprs(e.Args, name)
		for _, kw := range e.Keywords {
			total += countInExpr(kw.Value, name)
		}
		return total
	case *pyast.TupleExpr:
		return countInExprs(e.Elements, name)
	case *pyast.ListExpr:
		return countInExprs(e.Elements, name)
	case *pyast.DictExpr:
		total := 0
		for _, entry := range e.Entries {
			total += countInExpr(entry.Key, name) + countInExpr(entry.Value, name)
		}
		return total
	case *pyast.BinOp:
		return countInExpr(e.Left, name) + countInExpr(e.Right, name)
	case *pyast.UnaryOp:
		return countInExpr(e.Operand, name)
	case *pyast.CompareExpr:
		return countInExpr(e.Left, name) + countInExprs(e.Comparators, name)
	case *pyast.BoolOp:
		return countInExprs(e.Values, name)
	case *pyast.IsInstanceExpr:
		return countInExpr(e.Target, name) + countInExpr(e.Type, name)
	case *pyast.SubscriptExpr:
		return countInExpr(e.Value, name) + countInExpr(e.Index, name)
	case *pyast.StarredExpr:
		return countInExpr(e.Value, name)
	default:
		return 0
	}
}
