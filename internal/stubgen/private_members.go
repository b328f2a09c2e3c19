package stubgen

import (
	"context"

	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyast"
)

// alwaysDroppedDunders are runtime-only attributes CPython attaches to
// every object/class; they carry no static type information worth
// preserving in a stub even though they don't match the leading-underscore
// privacy rule by themselves (they don't start with a single underscore,
// they start with "__").
var alwaysDroppedDunders = map[string]bool{
	"__class__":   true,
	"__bases__":   true,
	"__dict__":    true,
	"__weakref__": true,
	"__module__":  true,
}

// RemovePrivateMemberWalker drops top-level (and class-body) functions and
// assignments whose name is private by IsPrivate rule, plus a
// fixed list of runtime-only dunders that are always dropped — except __doc__ assignments,
// which ConvertDocCommentWalker handles specially.
type RemovePrivateMemberWalker struct{}

func (RemovePrivateMemberWalker) Name() string { return "RemovePrivateMemberWalker" }

func (RemovePrivateMemberWalker) Rewrite(ctx context.Context, text string, mod *pyast.Module, analysis *pyanalysis.Analysis) (string, error) {
	var dunderAll []string
	if analysis != nil {
		dunderAll = analysis.DunderAll()
	}
	w := NewBaseWalker(text)
	removePrivateMembers(w, mod.Body, dunderAll)
	return w.Finish(), nil
}

func removePrivateMembers(w *BaseWalker, body []pyast.Statement, dunderAll []string) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *pyast.FunctionDef:
			if shouldDropMember(s.Name, dunderAll) {
				w.RemoveNode(s.Pos())
			}
		case *pyast.ClassDef:
			if shouldDropMember(s.Name, dunderAll) {
				w.RemoveNode(s.Pos())
				continue
			}
			removePrivateMembers(w, s.Body, dunderAll)
		case *pyast.AssignStatement:
			if dropsAnyTarget(s.Targets, dunderAll) {
				w.RemoveNode(s.Pos())
			}
		case *pyast.AnnAssignStatement:
			if name, ok := s.Target.(*pyast.Identifier); ok && shouldDropMember(name.Value, dunderAll) {
				w.RemoveNode(s.Pos())
			}
		}
	}
}

func dropsAnyTarget(targets []pyast.Expression, dunderAll []string) bool {
	for _, t := range targets {
		if id, ok := t.(*pyast.Identifier); ok && shouldDropMember(id.Value, dunderAll) {
			return true
		}
	}
	return false
}

func shouldDropMember(name string, dunderAll []string) bool {
	if name == "__doc__" {
		return false
	}
	if alwaysDroppedDunders[name] {
		return true
	}
	return pyanalysis.IsPrivate(name, dunderAll)
}
