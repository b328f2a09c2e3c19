package stubgen

import (
	"context"
	"strings"

	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyast"
	"github.com/pymodel/langcore/internal/pytype"
)

// TypeInfoWalker annotates every function signature with the parameter and
// return types the analysis pass inferred, for defs the scraper pulled in
// without any `: type` / `-> type` annotations of their own. A function
// with multiple overloads is annotated using the overload matching its own
// parameter count, since that's the one this particular def actually is.
type TypeInfoWalker struct{}

func (TypeInfoWalker) Name() string { return "TypeInfoWalker" }

func (TypeInfoWalker) Rewrite(ctx context.Context, text string, mod *pyast.Module, analysis *pyanalysis.Analysis) (string, error) {
	if analysis == nil {
		return text, nil
	}
	w := NewBaseWalker(text)
	annotateContainer(w, mod.Body, nil, analysis)
	return w.Finish(), nil
}

// annotateContainer walks body looking up each FunctionDef's FunctionType —
// module-level functions come from analysis.Functions, methods from the
// enclosing class's own Member lookup — and recurses into class bodies.
func annotateContainer(w *BaseWalker, body []pyast.Statement, enclosing *pytype.ClassType, analysis *pyanalysis.Analysis) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *pyast.ClassDef:
			annotateContainer(w, s.Body, analysis.Classes[s.Name], analysis)
		case *pyast.FunctionDef:
			if fn := lookupFunctionType(s, enclosing, analysis); fn != nil {
				annotateFunction(w, s, fn)
			}
		}
	}
}

func lookupFunctionType(s *pyast.FunctionDef, enclosing *pytype.ClassType, analysis *pyanalysis.Analysis) *pytype.FunctionType {
	if enclosing == nil {
		return analysis.Functions[s.Name]
	}
	m, ok := enclosing.Member(s.Name)
	if !ok {
		return nil
	}
	callable, ok := m.(*pytype.FunctionCallable)
	if !ok {
		return nil
	}
	return callable.Fn
}

// annotateFunction locates the `(...)` parameter list by scanning source
// text from the def's own span (Parameter carries no span of its own to
// anchor an insertion on), splits it into top-level comma segments, and
// inserts a missing ": type"/" -> type" at each segment's name boundary.
func annotateFunction(w *BaseWalker, s *pyast.FunctionDef, fn *pytype.FunctionType) {
	overload := fn.SelectOverload(len(s.Params))
	if overload == nil {
		return
	}

	src := w.Source()
	start := w.Offset(s.Pos().Start)
	rel := strings.IndexByte(src[start:], '(')
	if rel < 0 {
		return
	}
	open := start + rel

	closeParen, ends := scanParamEnds(src, open)
	if closeParen < 0 {
		return
	}
	if s.Receiver != nil && len(ends) > 0 {
		ends = ends[1:]
	}

	for i, p := range s.Params {
		if p.Annotation != nil || i >= len(ends) || i >= len(overload.Params) {
			continue
		}
		t := overload.Params[i].Annotated
		if t == nil || t == pytype.Unknown {
			continue
		}
		w.InsertAt(ends[i], ": "+renderType(t))
	}

	if s.Returns == nil && overload.ReturnType != nil && overload.ReturnType != pytype.Unknown {
		w.InsertAt(closeParen+1, " -> "+renderType(overload.ReturnType))
	}
}

// scanParamEnds walks the parameter list starting at src[openParen] == '('
// and returns the offset of the matching ')' plus, for each top-level
// comma-separated segment, the byte offset right after its parameter name
// (skipping any leading */** marker). A segment with no identifier — a
// bare `*` or `/` separator — is omitted from the result entirely.
func scanParamEnds(src string, openParen int) (int, []int) {
	depth := 0
	var ends []int
	segStart := openParen + 1
	for i := openParen; i < len(src); i++ {
		switch src[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				if end := paramNameEnd(src, segStart, i); end >= 0 {
					ends = append(ends, end)
				}
				return i, ends
			}
		case ',':
			if depth == 1 {
				if end := paramNameEnd(src, segStart, i); end >= 0 {
					ends = append(ends, end)
				}
				segStart = i + 1
			}
		}
	}
	return -1, nil
}

func paramNameEnd(src string, start, end int) int {
	i := start
	for i < end && isSpaceByte(src[i]) {
		i++
	}
	for i < end && src[i] == '*' {
		i++
	}
	for i < end && isSpaceByte(src[i]) {
		i++
	}
	nameStart := i
	for i < end && isIdentByte(src[i]) {
		i++
	}
	if i == nameStart {
		return -1
	}
	return i
}

func isSpaceByte(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func renderType(t pytype.Type) string {
	if t == nil {
		return "Any"
	}
	switch v := t.(type) {
	case *pytype.ListType:
		return "list[" + renderType(v.ElementType) + "]"
	case *pytype.SetType:
		return "set[" + renderType(v.ElementType) + "]"
	case *pytype.DictionaryType:
		return "dict[" + renderType(v.KeyType) + ", " + renderType(v.ValueType) + "]"
	case *pytype.TupleType:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = renderType(e)
		}
		return "tuple[" + strings.Join(parts, ", ") + "]"
	case *pytype.IteratorType:
		return "Iterator[" + renderType(v.ElementType) + "]"
	case *pytype.GenericInstantiation:
		parts := make([]string, len(v.Bindings))
		for i, b := range v.Bindings {
			parts[i] = renderType(b.Bound)
		}
		return v.Origin.Name() + "[" + strings.Join(parts, ", ") + "]"
	default:
		return t.Name()
	}
}
