package pytype

import "fmt"

// ClassType models a Python class: its bases, its linearized MRO, and its
// own members (methods, class variables). Instance attribute lookups walk
// the MRO in order, matching CPython's own algorithm.
type ClassType struct {
	Base
	BasesList  []*ClassType
	mro        []*ClassType
	TypeParams []*TypeVar  // generic parameters, e.g. class Box(Generic[T])
	Decl       interface{} // *pyast.ClassDef, kept opaque for callers that don't need it
}

var _ Type = (*ClassType)(nil)

// NewClassType creates a class with no bases; call SetBases to populate the
// MRO once all bases are known (classes can reference each other, so MRO
// computation is deferred rather than eager).
func NewClassType(name, module string) *ClassType {
	return &ClassType{Base: NewBase(name, module)}
}

// SetBases records the class's direct bases and recomputes its MRO via C3
// linearization.
func (c *ClassType) SetBases(bases []*ClassType) error {
	c.BasesList = bases
	mro, err := c3Merge(c, bases)
	if err != nil {
		return err
	}
	c.mro = mro
	return nil
}

// MRO returns the linearized method resolution order, self first.
func (c *ClassType) MRO() []*ClassType {
	if c.mro == nil {
		return []*ClassType{c}
	}
	return c.mro
}

// c3Merge computes the C3 linearization of self+bases, the same algorithm
// CPython uses to order multiple inheritance (calls this out
// explicitly as required, not "first base wins").
func c3Merge(self *ClassType, bases []*ClassType) ([]*ClassType, error) {
	if len(bases) == 0 {
		return []*ClassType{self}, nil
	}
	sequences := make([][]*ClassType, 0, len(bases)+1)
	for _, b := range bases {
		sequences = append(sequences, append([]*ClassType{}, b.MRO()...))
	}
	sequences = append(sequences, append([]*ClassType{}, bases...))

	result := []*ClassType{self}
	for {
		sequences = dropEmpty(sequences)
		if len(sequences) == 0 {
			return result, nil
		}
		var head *ClassType
		for _, seq := range sequences {
			candidate := seq[0]
			if !appearsInTail(candidate, sequences) {
				head = candidate
				break
			}
		}
		if head == nil {
			return nil, fmt.Errorf("pytype: inconsistent MRO for class %s", self.Name())
		}
		result = append(result, head)
		for i := range sequences {
			sequences[i] = removeFirstOccurrence(sequences[i], head)
		}
	}
}

func dropEmpty(seqs [][]*ClassType) [][]*ClassType {
	out := seqs[:0]
	for _, s := range seqs {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func appearsInTail(c *ClassType, seqs [][]*ClassType) bool {
	for _, seq := range seqs {
		for _, other := range seq[1:] {
			if other == c {
				return true
			}
		}
	}
	return false
}

func removeFirstOccurrence(seq []*ClassType, c *ClassType) []*ClassType {
	out := make([]*ClassType, 0, len(seq))
	for _, x := range seq {
		if x == c {
			continue
		}
		out = append(out, x)
	}
	return out
}

// Member resolves a name by walking the MRO, self first (so own members
// win), overriding Base.Member so inherited methods/attributes are
// visible through subclasses.
func (c *ClassType) Member(name string) (Member, bool) {
	for _, cls := range c.MRO() {
		if m, ok := cls.MemberMap[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *ClassType) CreateInstance(args []Value) (*Instance, error) {
	return &Instance{TypeRef: c}, nil
}

// Call looks up memberName on c through its MRO (not on the instance's
// Narrowed type) and, if it is callable, invokes it.
func (c *ClassType) Call(instance *Instance, memberName string, args []Value) (Member, error) {
	m, ok := c.Member(memberName)
	if !ok {
		return NewVariable(memberName, c.DeclLocation, Unknown, SourceBuiltin), nil
	}
	if fn, ok := m.(*FunctionCallable); ok {
		return fn.Fn.Call(instance, memberName, args)
	}
	return m, nil
}

func (c *ClassType) Index(instance *Instance, args []Value) (Member, error) {
	if dunder, ok := c.Member("__getitem__"); ok {
		if fn, ok := dunder.(*FunctionCallable); ok {
			return fn.Fn.Call(instance, "__getitem__", args)
		}
	}
	return NewVariable("[]", c.DeclLocation, Unknown, SourceBuiltin), nil
}

// FunctionCallable wraps a FunctionType so it can be stored as a Member on
// a class (methods are members that are also callable).
type FunctionCallable struct {
	LocatedMember
	Fn *FunctionType
}

var _ Member = (*FunctionCallable)(nil)
