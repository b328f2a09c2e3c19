package pytype

import "github.com/pymodel/langcore/internal/location"

// VarSource records where a Variable's value came from: a declaration, an
// assignment, a parameter, a builtin, or an isinstance narrowing.
type VarSource int

const (
	SourceDeclaration VarSource = iota
	SourceAssignment
	SourceParameter
	SourceBuiltin
	SourceNarrowed
)

// Member is anything a Type can expose by name: a Variable, a nested
// FunctionType, a nested ClassType, a property. Every
// member to be "located" — it carries its declaration site and an
// append-only list of reference sites gathered during analysis.
type Member interface {
	MemberName() string
	MemberLocation() location.Info
	AddReference(loc location.Info)
	References() []location.Info
}

// LocatedMember is the shared base for concrete Member implementations:
// reference tracking is identical across variants, so it lives here once
// rather than being reimplemented per variant ("collapse the
// inheritance chain" note applied to members instead of types).
type LocatedMember struct {
	Name string
	Loc  location.Info
	refs []location.Info
}

func NewLocatedMember(name string, loc location.Info) LocatedMember {
	return LocatedMember{Name: name, Loc: loc}
}

func (m *LocatedMember) MemberName() string             { return m.Name }
func (m *LocatedMember) MemberLocation() location.Info  { return m.Loc }
func (m *LocatedMember) AddReference(loc location.Info) { m.refs = append(m.refs, loc) }
func (m *LocatedMember) References() []location.Info    { return m.refs }

// RemoveReferencesFrom drops every tracked reference whose file matches the
// given module path — called when a document is invalidated and re-parsed,
// so stale reference sites from the old AST don't linger (
// "remove_references(module)").
func (m *LocatedMember) RemoveReferencesFrom(filePath string) {
	kept := m.refs[:0]
	for _, r := range m.refs {
		if r.FilePath != filePath {
			kept = append(kept, r)
		}
	}
	m.refs = kept
}

// Variable is a plain named value: a local, a parameter binding, an
// attribute assignment. It is the most common Member variant.
type Variable struct {
	LocatedMember
	VarName   string
	Val       Type
	VarSource VarSource
}

var _ Member = (*Variable)(nil)

func NewVariable(name string, loc location.Info, val Type, src VarSource) *Variable {
	return &Variable{LocatedMember: NewLocatedMember(name, loc), VarName: name, Val: val, VarSource: src}
}
