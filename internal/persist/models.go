package persist

import "fmt"

// IndexSpanModel is the serializable counterpart to location.IndexSpan —
// persist stores byte offsets rather than line/column pairs. Nothing in
// persist converts a stored IndexSpanModel back to a SourceSpan on load.
type IndexSpanModel struct {
	Start  int
	Length int
}

// ParameterModel mirrors pytype.Parameter: name, a qualified-name type
// reference (resolved lazily through the ModuleFactory), and its kind.
type ParameterModel struct {
	Name          string
	AnnotatedQual string // qualified name, empty if unannotated
	HasDefault    bool
	Kind          string // "positional" | "keyword_only" | "var_positional" | "var_keyword"
}

// OverloadModel mirrors pytype.FunctionOverload.
type OverloadModel struct {
	Params     []ParameterModel
	ReturnQual string
}

// FunctionModel persists a FunctionType: one or more overloads under a
// single declared name.
type FunctionModel struct {
	declareGuard
	Module    string
	Name      string
	Overloads []OverloadModel
	IsMethod  bool
	Span      IndexSpanModel
}

func (m *FunctionModel) QualifiedName() string { return m.Module + "." + m.Name }

func (m *FunctionModel) Declare(f *ModuleFactory, declaringType *ClassModel, global *Scope) (Member, error) {
	if declaringType == nil {
		global.Define(m.Name, m)
	}
	return m, nil
}

// Finalize is a no-op for FunctionModel: its overloads' parameter/return
// types are qualified-name references resolved on demand by
// ResolveOverload, not eagerly during finalize (only requires
// forward references to resolve by the time they're *used*).
func (m *FunctionModel) Finalize(f *ModuleFactory) error {
	if !m.enter() {
		return nil
	}
	m.done()
	return nil
}

// ResolveOverload resolves one overload's parameter/return qualified names
// through f; an entry with no declared annotation resolves to Unknown.
func (m *FunctionModel) ResolveOverload(f *ModuleFactory, i int) (params []Member, ret Member) {
	o := m.Overloads[i]
	params = make([]Member, len(o.Params))
	for i, p := range o.Params {
		if p.AnnotatedQual == "" {
			params[i] = Unknown
			continue
		}
		params[i] = f.ConstructType(p.AnnotatedQual)
	}
	if o.ReturnQual == "" {
		return params, Unknown
	}
	return params, f.ConstructType(o.ReturnQual)
}

// PropertyModel persists a @property: a getter (and optional setter)
// function qualified by their declaring class.
type PropertyModel struct {
	declareGuard
	Module       string
	ClassName    string
	Name         string
	GetterQual   string
	SetterQual   string // empty if read-only
	Span         IndexSpanModel
}

func (m *PropertyModel) QualifiedName() string { return m.Module + "." + m.ClassName + "." + m.Name }

func (m *PropertyModel) Declare(f *ModuleFactory, declaringType *ClassModel, global *Scope) (Member, error) {
	return m, nil
}

func (m *PropertyModel) Finalize(f *ModuleFactory) error {
	if !m.enter() {
		return nil
	}
	m.done()
	return nil
}

// VariableModel persists a module- or class-level binding.
type VariableModel struct {
	declareGuard
	Module        string
	Name          string
	AnnotatedQual string
	Span          IndexSpanModel
}

func (m *VariableModel) QualifiedName() string { return m.Module + "." + m.Name }

func (m *VariableModel) Declare(f *ModuleFactory, declaringType *ClassModel, global *Scope) (Member, error) {
	if declaringType == nil {
		global.Define(m.Name, m)
	}
	return m, nil
}

func (m *VariableModel) Finalize(f *ModuleFactory) error {
	if !m.enter() {
		return nil
	}
	m.done()
	return nil
}

// Type resolves this variable's declared type through f, defaulting to
// Unknown when unannotated (mirrors pytype.Variable.Val's role).
func (m *VariableModel) Type(f *ModuleFactory) Member {
	if m.AnnotatedQual == "" {
		return Unknown
	}
	return f.ConstructType(m.AnnotatedQual)
}

// TypeVarModel persists a typing.TypeVar declaration.
type TypeVarModel struct {
	declareGuard
	Module          string
	Name            string
	ConstraintQuals []string
	BoundQual       string
	Variance        string // "invariant" | "covariant" | "contravariant"
}

func (m *TypeVarModel) QualifiedName() string { return m.Module + "." + m.Name }

func (m *TypeVarModel) Declare(f *ModuleFactory, declaringType *ClassModel, global *Scope) (Member, error) {
	global.Define(m.Name, m)
	return m, nil
}

func (m *TypeVarModel) Finalize(f *ModuleFactory) error {
	if !m.enter() {
		return nil
	}
	m.done()
	return nil
}

// NamedTupleModel persists a typing.NamedTuple class.
type NamedTupleModel struct {
	declareGuard
	Module string
	Name   string
	Fields []string
	Span   IndexSpanModel
}

func (m *NamedTupleModel) QualifiedName() string { return m.Module + "." + m.Name }

func (m *NamedTupleModel) Declare(f *ModuleFactory, declaringType *ClassModel, global *Scope) (Member, error) {
	global.Define(m.Name, m)
	return m, nil
}

func (m *NamedTupleModel) Finalize(f *ModuleFactory) error {
	if !m.enter() {
		return nil
	}
	m.done()
	return nil
}

// ClassModel persists a ClassType: bases (as qualified names, resolved
// lazily to tolerate forward references and import cycles), methods,
// properties, and class-level variables.
type ClassModel struct {
	declareGuard
	Module      string
	Name        string
	BaseQuals   []string
	TypeParams  []string
	Methods     map[string]*FunctionModel
	Properties  map[string]*PropertyModel
	Variables   map[string]*VariableModel
	NestedTypes map[string]*ClassModel
	Span        IndexSpanModel
}

func (m *ClassModel) QualifiedName() string { return m.Module + "." + m.Name }

func (m *ClassModel) Declare(f *ModuleFactory, declaringType *ClassModel, global *Scope) (Member, error) {
	if declaringType == nil {
		global.Define(m.Name, m)
	}
	for _, method := range m.Methods {
		if _, err := method.Declare(f, m, global); err != nil {
			return nil, err
		}
	}
	for _, prop := range m.Properties {
		if _, err := prop.Declare(f, m, global); err != nil {
			return nil, err
		}
	}
	for _, v := range m.Variables {
		if _, err := v.Declare(f, m, global); err != nil {
			return nil, err
		}
	}
	for _, nested := range m.NestedTypes {
		if _, err := nested.Declare(f, m, global); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Bases resolves this class's declared bases through f, in declaration
// order, substituting Unknown for any base that can't be resolved rather
// than failing the whole class's reconstruction (best-effort
// framing extends to the persistence layer, not just the live analyzer).
func (m *ClassModel) Bases(f *ModuleFactory) []Member {
	bases := make([]Member, len(m.BaseQuals))
	for i, q := range m.BaseQuals {
		bases[i] = f.ConstructType(q)
	}
	return bases
}

func (m *ClassModel) Finalize(f *ModuleFactory) error {
	if !m.enter() {
		return nil
	}
	for _, method := range m.Methods {
		if err := method.Finalize(f); err != nil {
			return fmt.Errorf("persist: finalizing %s: %w", method.QualifiedName(), err)
		}
	}
	for _, prop := range m.Properties {
		if err := prop.Finalize(f); err != nil {
			return fmt.Errorf("persist: finalizing %s: %w", prop.QualifiedName(), err)
		}
	}
	for _, v := range m.Variables {
		if err := v.Finalize(f); err != nil {
			return fmt.Errorf("persist: finalizing %s: %w", v.QualifiedName(), err)
		}
	}
	for _, nested := range m.NestedTypes {
		if err := nested.Finalize(f); err != nil {
			return err
		}
	}
	m.done()
	return nil
}

// ModuleModel is the root of one module's persisted member tree.
type ModuleModel struct {
	declareGuard
	Name         string
	Classes      map[string]*ClassModel
	Functions    map[string]*FunctionModel
	Variables    map[string]*VariableModel
	TypeVars     map[string]*TypeVarModel
	NamedTuples  map[string]*NamedTupleModel
	Dependencies []string
}

func (m *ModuleModel) QualifiedName() string { return m.Name }

func (m *ModuleModel) Declare(f *ModuleFactory, declaringType *ClassModel, global *Scope) (Member, error) {
	for _, c := range m.Classes {
		if _, err := c.Declare(f, nil, global); err != nil {
			return nil, err
		}
	}
	for _, fn := range m.Functions {
		if _, err := fn.Declare(f, nil, global); err != nil {
			return nil, err
		}
	}
	for _, v := range m.Variables {
		if _, err := v.Declare(f, nil, global); err != nil {
			return nil, err
		}
	}
	for _, tv := range m.TypeVars {
		if _, err := tv.Declare(f, nil, global); err != nil {
			return nil, err
		}
	}
	for _, nt := range m.NamedTuples {
		if _, err := nt.Declare(f, nil, global); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *ModuleModel) Finalize(f *ModuleFactory) error {
	if !m.enter() {
		return nil
	}
	for _, c := range m.Classes {
		if err := c.Finalize(f); err != nil {
			return err
		}
	}
	for _, fn := range m.Functions {
		if err := fn.Finalize(f); err != nil {
			return err
		}
	}
	for _, v := range m.Variables {
		if err := v.Finalize(f); err != nil {
			return err
		}
	}
	m.done()
	return nil
}
