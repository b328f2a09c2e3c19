package persist

import (
	"github.com/pymodel/langcore/internal/location"
	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pyast"
	"github.com/pymodel/langcore/internal/pytype"
)

// FromAnalysis lowers a live Analysis into its serializable model tree.
// lines is the analyzed document's current new-line table, used to turn
// each member's line/column span into the byte-offset IndexSpanModel the
// store persists; nil leaves spans zeroed (synthetic modules have no text).
//
// The conversion is lossy on purpose: only the shapes the persistence
// round-trip guarantees — public member names, class bases by qualified
// name, overload arities, static return qualified names — survive. Live
// references, narrowings, and instances are per-session state and are
// rebuilt by the next analysis, not restored.
func FromAnalysis(a *pyanalysis.Analysis, lines *location.NewLineTable) *ModuleModel {
	m := &ModuleModel{
		Name:         a.ModuleName,
		Classes:      make(map[string]*ClassModel),
		Functions:    make(map[string]*FunctionModel),
		Variables:    make(map[string]*VariableModel),
		TypeVars:     make(map[string]*TypeVarModel),
		NamedTuples:  make(map[string]*NamedTupleModel),
		Dependencies: append([]string(nil), a.Dependencies...),
	}

	for name, member := range a.Globals {
		v, ok := member.(*pytype.Variable)
		if !ok {
			continue
		}
		span := spanModel(lines, member.MemberLocation().Span)
		switch t := v.Val.(type) {
		case *pytype.NamedTupleType:
			m.NamedTuples[name] = &NamedTupleModel{
				Module: a.ModuleName,
				Name:   name,
				Fields: append([]string(nil), t.FieldOrder...),
				Span:   span,
			}
		case *pytype.ClassType:
			m.Classes[name] = classModel(a.ModuleName, name, t, span, lines)
		case *pytype.FunctionType:
			m.Functions[name] = functionModel(a.ModuleName, name, t, span, false)
		case *pytype.TypeVar:
			m.TypeVars[name] = &TypeVarModel{
				Module:          a.ModuleName,
				Name:            name,
				ConstraintQuals: qualNames(t.Constraints),
				BoundQual:       qualName(t.Bound),
				Variance:        varianceString(t.Variance),
			}
		default:
			m.Variables[name] = &VariableModel{
				Module:        a.ModuleName,
				Name:          name,
				AnnotatedQual: qualName(v.Val),
				Span:          span,
			}
		}
	}
	return m
}

func classModel(module, name string, c *pytype.ClassType, span IndexSpanModel, lines *location.NewLineTable) *ClassModel {
	cm := &ClassModel{
		Module:      module,
		Name:        name,
		Methods:     make(map[string]*FunctionModel),
		Properties:  make(map[string]*PropertyModel),
		Variables:   make(map[string]*VariableModel),
		NestedTypes: make(map[string]*ClassModel),
		Span:        span,
	}
	for _, base := range c.BasesList {
		cm.BaseQuals = append(cm.BaseQuals, qualName(base))
	}
	for _, tv := range c.TypeParams {
		cm.TypeParams = append(cm.TypeParams, tv.Name())
	}
	for memberName, member := range c.Members() {
		memberSpan := spanModel(lines, member.MemberLocation().Span)
		switch mv := member.(type) {
		case *pytype.FunctionCallable:
			cm.Methods[memberName] = functionModel(module, memberName, mv.Fn, memberSpan, true)
		case *pytype.Variable:
			switch t := mv.Val.(type) {
			case *pytype.FunctionType:
				cm.Methods[memberName] = functionModel(module, memberName, t, memberSpan, true)
			case *pytype.ClassType:
				cm.NestedTypes[memberName] = classModel(module, memberName, t, memberSpan, lines)
			default:
				cm.Variables[memberName] = &VariableModel{
					Module:        module,
					Name:          memberName,
					AnnotatedQual: qualName(mv.Val),
					Span:          memberSpan,
				}
			}
		}
	}
	return cm
}

func functionModel(module, name string, f *pytype.FunctionType, span IndexSpanModel, isMethod bool) *FunctionModel {
	fm := &FunctionModel{
		Module:   module,
		Name:     name,
		IsMethod: isMethod,
		Span:     span,
	}
	for _, o := range f.Overloads {
		om := OverloadModel{ReturnQual: qualName(o.ReturnType)}
		for _, p := range o.Params {
			om.Params = append(om.Params, ParameterModel{
				Name:          p.Name,
				AnnotatedQual: qualName(p.Annotated),
				HasDefault:    p.HasDefault,
				Kind:          kindString(p.Kind),
			})
		}
		fm.Overloads = append(fm.Overloads, om)
	}
	return fm
}

// qualName is the canonical serialization of a type reference: dotted
// module plus name, or the bare name for builtins declared nowhere.
// Unknown (and nil) serialize to "", which ConstructType maps back to
// Unknown on load.
func qualName(t pytype.Type) string {
	if t == nil || t == pytype.Unknown {
		return ""
	}
	if t.DeclaringModule() == "" {
		return t.Name()
	}
	return t.DeclaringModule() + "." + t.Name()
}

func qualNames(ts []pytype.Type) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = qualName(t)
	}
	return out
}

func kindString(k pyast.ParamKind) string {
	switch k {
	case pyast.ParamKeywordOnly:
		return "keyword_only"
	case pyast.ParamVarPositional:
		return "var_positional"
	case pyast.ParamVarKeyword:
		return "var_keyword"
	default:
		return "positional"
	}
}

func varianceString(v pytype.Variance) string {
	switch v {
	case pytype.Covariant:
		return "covariant"
	case pytype.Contravariant:
		return "contravariant"
	default:
		return "invariant"
	}
}

func spanModel(lines *location.NewLineTable, span location.SourceSpan) IndexSpanModel {
	if lines == nil {
		return IndexSpanModel{}
	}
	is := lines.SpanToIndexSpan(span)
	return IndexSpanModel{Start: is.Start, Length: is.Length}
}
