// Package pytype implements the typed member model: a
// polymorphic Type contract (classes, functions, properties, collections,
// generics) plus the Member/Instance/Variable shapes and reference tracking
// that own them.
//
// A typical interpreter's deep inheritance chain (Type -> Collection ->
// Sequence -> List) collapses here into one Type interface plus tagged
// variants; the fields and getters every variant shares live in an
// embedded Base struct instead of a base-class chain, and each variant
// implements its own CreateInstance, Call and Index.
package pytype

import (
	"github.com/google/uuid"
	"github.com/pymodel/langcore/internal/location"
)

// Type is the capability-set contract every class/function/collection/
// generic variant implements.
type Type interface {
	Name() string
	DeclaringModule() string
	TypeID() uuid.UUID
	Documentation() string
	IsBuiltin() bool
	IsAbstract() bool
	Member(name string) (Member, bool)
	Members() map[string]Member
	CreateInstance(args []Value) (*Instance, error)
	Call(instance *Instance, memberName string, args []Value) (Member, error)
	Index(instance *Instance, args []Value) (Member, error)
}

// Value is the minimal call/index argument shape the best-effort inference
// engine needs: a static type plus, for literals, a constant Go value used
// for static-return-value propagation.
type Value struct {
	Type    Type
	Literal interface{} // nil unless this argument is a literal constant
}

// Base holds the fields common to every Type variant and the getters that
// never vary across variants. Embed it first in each concrete type.
type Base struct {
	TypeName     string
	Module       string
	ID           uuid.UUID
	Doc          string
	Builtin      bool
	Abstract     bool
	MemberMap    map[string]Member
	DeclLocation location.Info
}

// NewBase initializes a Base with a fresh type id and an empty member map.
func NewBase(name, module string) Base {
	return Base{
		TypeName:  name,
		Module:    module,
		ID:        uuid.New(),
		MemberMap: make(map[string]Member),
	}
}

func (b *Base) Name() string            { return b.TypeName }
func (b *Base) DeclaringModule() string { return b.Module }
func (b *Base) TypeID() uuid.UUID       { return b.ID }
func (b *Base) Documentation() string   { return b.Doc }
func (b *Base) IsBuiltin() bool         { return b.Builtin }
func (b *Base) IsAbstract() bool        { return b.Abstract }
func (b *Base) Location() location.Info { return b.DeclLocation }

func (b *Base) Member(name string) (Member, bool) {
	m, ok := b.MemberMap[name]
	return m, ok
}

func (b *Base) Members() map[string]Member {
	return b.MemberMap
}

// AddMember registers a member, owned by this type (ownership:
// "Members of a class are owned by the class").
func (b *Base) AddMember(name string, m Member) {
	if b.MemberMap == nil {
		b.MemberMap = make(map[string]Member)
	}
	b.MemberMap[name] = m
}

// NewOpaqueType builds a minimal named Type with no declared members — used
// for builtin scalar names (int, str, bool, ...) and other annotations the
// analyzer hasn't loaded a full declaration for. Member/Call/Index on it
// behave exactly like Unknown's, just under a more useful display name.
func NewOpaqueType(name, module string) Type {
	return &unknownType{Base: NewBase(name, module)}
}

// Unknown is the best-effort sentinel type returned whenever inference
// cannot determine something concrete — out-of-range indexing, a call
// through an unresolved import, an un-annotated
// parameter with no inferable default.
var Unknown Type = &unknownType{Base: NewBase("Unknown", "")}

type unknownType struct {
	Base
}

func (u *unknownType) CreateInstance(args []Value) (*Instance, error) {
	return &Instance{TypeRef: u}, nil
}

func (u *unknownType) Call(instance *Instance, memberName string, args []Value) (Member, error) {
	return &Variable{VarName: memberName, Val: Unknown, VarSource: SourceBuiltin}, nil
}

func (u *unknownType) Index(instance *Instance, args []Value) (Member, error) {
	return &Variable{VarName: "[]", Val: Unknown, VarSource: SourceBuiltin}, nil
}
