package stubgen

import (
	"context"

	"github.com/pymodel/langcore/internal/location"
	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyast"
)

// OrganizeMemberWalker reorders each container's (module or class) trailing
// assignments and bare calls to immediately follow the container's opening
// statements, ahead of its function/class definitions — scraped extension
// modules often emit `__all__`-style bookkeeping and registration calls
// scattered after the defs they reference, and stub consumers read better
// with the declarations-then-defs shape real hand-written stubs use.
//
// Unlike the other passes, this one can't express its edit as a single
// forward sweep through BaseWalker (reordering means moving text earlier,
// not just replacing or dropping it in place), so it renders each container
// directly from source spans instead.
type OrganizeMemberWalker struct{}

func (OrganizeMemberWalker) Name() string { return "OrganizeMemberWalker" }

func (OrganizeMemberWalker) Rewrite(ctx context.Context, text string, mod *pyast.Module, analysis *pyanalysis.Analysis) (string, error) {
	table := location.NewNewLineTable(text)
	return renderContainer(text, table, mod.Body), nil
}

// reorderBody splits body into its leading "opening statements" (everything
// before the first function/class definition), the assignments and bare
// calls that occur after that point, and the remaining statements (defs and
// anything else), then concatenates them in that order. Relative order
// within each group is preserved.
func reorderBody(body []pyast.Statement) []pyast.Statement {
	firstDef := -1
	for i, stmt := range body {
		switch stmt.(type) {
		case *pyast.FunctionDef, *pyast.ClassDef:
			firstDef = i
		}
		if firstDef >= 0 {
			break
		}
	}
	if firstDef < 0 {
		return body
	}

	header := body[:firstDef]
	var movable, rest []pyast.Statement
	for _, stmt := range body[firstDef:] {
		if isMovableMember(stmt) {
			movable = append(movable, stmt)
		} else {
			rest = append(rest, stmt)
		}
	}

	out := make([]pyast.Statement, 0, len(body))
	out = append(out, header...)
	out = append(out, movable...)
	out = append(out, rest...)
	return out
}

func isMovableMember(stmt pyast.Statement) bool {
	switch s := stmt.(type) {
	case *pyast.AssignStatement, *pyast.AnnAssignStatement:
		return true
	case *pyast.ExprStatement:
		_, isCall := s.Expression.(*pyast.Call)
		return isCall
	default:
		return false
	}
}

// renderContainer renders body's statements, reordered, by slicing their
// original source spans — recursing into any ClassDef's own body so nested
// containers get the same treatment. Function bodies are left untouched;
// scopes this pass to "module or class" containers only.
func renderContainer(src string, table *location.NewLineTable, body []pyast.Statement) string {
	var out string
	for _, stmt := range reorderBody(body) {
		out += renderStatement(src, table, stmt)
	}
	return out
}

func renderStatement(src string, table *location.NewLineTable, stmt pyast.Statement) string {
	class, ok := stmt.(*pyast.ClassDef)
	if !ok || len(class.Body) == 0 {
		return sliceLines(src, table, stmt.Pos())
	}

	start := lineStart(src, table.LocationToIndex(class.Pos().Start))
	bodyStart := lineStart(src, table.LocationToIndex(class.Body[0].Pos().Start))
	head := src[start:bodyStart]
	return head + renderContainer(src, table, class.Body)
}

// sliceLines returns span's source text extended to the start of its first
// line and through the end (plus trailing newline) of its last line, so the
// slice keeps its original indentation and doesn't merge into the next
// statement's line.
func sliceLines(src string, table *location.NewLineTable, span location.SourceSpan) string {
	start := lineStart(src, table.LocationToIndex(span.Start))
	end := lineEnd(src, table.LocationToIndex(span.End))
	if end > len(src) {
		end = len(src)
	}
	return src[start:end]
}

func lineStart(src string, offset int) int {
	for offset > 0 && src[offset-1] != '\n' {
		offset--
	}
	return offset
}

func lineEnd(src string, offset int) int {
	for offset < len(src) && src[offset] != '\n' {
		offset++
	}
	if offset < len(src) {
		offset++
	}
	return offset
}
