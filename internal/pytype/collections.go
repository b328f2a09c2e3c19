package pytype

import "fmt"

// CollectionType is the shared shape for list and set: a container whose
// element type is known statically. ListType and SetType embed it; the
// tuple, dict and iterator types embed Base directly with their own element
// fields. The variants are siblings rather than a Collection->Sequence->List
// inheritance chain.
type CollectionType struct {
	Base
	ElementType Type
}

var _ Type = (*ListType)(nil)

// ListType is list[T].
type ListType struct{ CollectionType }

func NewListType(module string, elem Type) *ListType {
	return &ListType{CollectionType{Base: NewBase("list", module), ElementType: elem}}
}

func (l *ListType) CreateInstance(args []Value) (*Instance, error) {
	return &Instance{TypeRef: l}, nil
}

func (l *ListType) Call(instance *Instance, memberName string, args []Value) (Member, error) {
	if m, ok := l.Member(memberName); ok {
		return m, nil
	}
	return NewVariable(memberName, l.DeclLocation, Unknown, SourceBuiltin), nil
}

// Index on a list always yields its element type regardless of index value
// or slice form (indexing never fails analysis,
// out-of-range or unknown-index indexing still returns the declared
// element type rather than Unknown, when one is known).
func (l *ListType) Index(instance *Instance, args []Value) (Member, error) {
	elem := l.ElementType
	if elem == nil {
		elem = Unknown
	}
	return NewVariable("[]", l.DeclLocation, elem, SourceBuiltin), nil
}

// SetType is set[T].
type SetType struct{ CollectionType }

var _ Type = (*SetType)(nil)

func NewSetType(module string, elem Type) *SetType {
	return &SetType{CollectionType{Base: NewBase("set", module), ElementType: elem}}
}

func (s *SetType) CreateInstance(args []Value) (*Instance, error) { return &Instance{TypeRef: s}, nil }
func (s *SetType) Call(instance *Instance, memberName string, args []Value) (Member, error) {
	if m, ok := s.Member(memberName); ok {
		return m, nil
	}
	return NewVariable(memberName, s.DeclLocation, Unknown, SourceBuiltin), nil
}
func (s *SetType) Index(instance *Instance, args []Value) (Member, error) {
	return nil, fmt.Errorf("pytype: set is not subscriptable")
}

// TupleType is tuple[T1, T2, ...] — fixed arity, heterogeneous elements.
type TupleType struct {
	Base
	Elements []Type
}

var _ Type = (*TupleType)(nil)

func NewTupleType(module string, elements []Type) *TupleType {
	return &TupleType{Base: NewBase("tuple", module), Elements: elements}
}

func (t *TupleType) CreateInstance(args []Value) (*Instance, error) {
	return &Instance{TypeRef: t}, nil
}
func (t *TupleType) Call(instance *Instance, memberName string, args []Value) (Member, error) {
	if m, ok := t.Member(memberName); ok {
		return m, nil
	}
	return NewVariable(memberName, t.DeclLocation, Unknown, SourceBuiltin), nil
}

// Index on a tuple resolves a literal integer index to the matching
// positional element type. A negative index n maps to len+n before
// bounds-checking; anything still out of range (or non-literal) falls
// back to Unknown rather than failing analysis.
func (t *TupleType) Index(instance *Instance, args []Value) (Member, error) {
	if len(args) == 1 && args[0].Literal != nil {
		if i, ok := args[0].Literal.(int); ok {
			if i < 0 {
				i += len(t.Elements)
			}
			if i >= 0 && i < len(t.Elements) {
				return NewVariable("[]", t.DeclLocation, t.Elements[i], SourceBuiltin), nil
			}
		}
	}
	return NewVariable("[]", t.DeclLocation, Unknown, SourceBuiltin), nil
}

// DictionaryType is dict[K, V].
type DictionaryType struct {
	Base
	KeyType   Type
	ValueType Type
}

var _ Type = (*DictionaryType)(nil)

func NewDictionaryType(module string, key, value Type) *DictionaryType {
	return &DictionaryType{Base: NewBase("dict", module), KeyType: key, ValueType: value}
}

func (d *DictionaryType) CreateInstance(args []Value) (*Instance, error) {
	return &Instance{TypeRef: d}, nil
}
func (d *DictionaryType) Call(instance *Instance, memberName string, args []Value) (Member, error) {
	if m, ok := d.Member(memberName); ok {
		return m, nil
	}
	return NewVariable(memberName, d.DeclLocation, Unknown, SourceBuiltin), nil
}
func (d *DictionaryType) Index(instance *Instance, args []Value) (Member, error) {
	v := d.ValueType
	if v == nil {
		v = Unknown
	}
	return NewVariable("[]", d.DeclLocation, v, SourceBuiltin), nil
}

// IteratorType is the result of iter(x) / a generator function's return
// type: yields ElementType from __next__.
type IteratorType struct {
	Base
	ElementType Type
}

var _ Type = (*IteratorType)(nil)

func NewIteratorType(module string, elem Type) *IteratorType {
	return &IteratorType{Base: NewBase("Iterator", module), ElementType: elem}
}

func (it *IteratorType) CreateInstance(args []Value) (*Instance, error) {
	return &Instance{TypeRef: it}, nil
}
func (it *IteratorType) Call(instance *Instance, memberName string, args []Value) (Member, error) {
	if memberName == "__next__" {
		elem := it.ElementType
		if elem == nil {
			elem = Unknown
		}
		return NewVariable("__next__", it.DeclLocation, elem, SourceBuiltin), nil
	}
	if m, ok := it.Member(memberName); ok {
		return m, nil
	}
	return NewVariable(memberName, it.DeclLocation, Unknown, SourceBuiltin), nil
}
func (it *IteratorType) Index(instance *Instance, args []Value) (Member, error) {
	return nil, fmt.Errorf("pytype: Iterator is not subscriptable")
}

// NamedTupleType is a typing.NamedTuple or collections.namedtuple class:
// tuple positional semantics plus named field access.
type NamedTupleType struct {
	ClassType
	FieldOrder []string
}

func NewNamedTupleType(name, module string, fields []string) *NamedTupleType {
	return &NamedTupleType{ClassType: *NewClassType(name, module), FieldOrder: fields}
}
