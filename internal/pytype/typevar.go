package pytype

// Variance describes how a TypeVar's subtyping relates to its bound's
// subtyping, mirroring typing.TypeVar's covariant/contravariant flags.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// TypeVar is a generic type parameter: typing.TypeVar("T", bound=..., ...)
// or a class's Generic[T] parameter list entry.
type TypeVar struct {
	Base
	Constraints []Type
	Bound       Type
	Variance    Variance
}

var _ Type = (*TypeVar)(nil)

func NewTypeVar(name, module string) *TypeVar {
	return &TypeVar{Base: NewBase(name, module)}
}

func (t *TypeVar) CreateInstance(args []Value) (*Instance, error) {
	return &Instance{TypeRef: t}, nil
}

func (t *TypeVar) Call(instance *Instance, memberName string, args []Value) (Member, error) {
	return NewVariable(memberName, t.DeclLocation, Unknown, SourceBuiltin), nil
}

func (t *TypeVar) Index(instance *Instance, args []Value) (Member, error) {
	return NewVariable("[]", t.DeclLocation, Unknown, SourceBuiltin), nil
}

// Binding maps a generic class or function's TypeVars to concrete Types,
// produced when a generic is parameterized: Box[int] binds Box's T to int.
type Binding struct {
	Var   *TypeVar
	Bound Type
}

// GenericInstantiation is the result of subscripting a generic Type, e.g.
// Box[int] — a specialization of a generic ClassType/FunctionType with its
// TypeVars resolved to concrete Types for this use site.
type GenericInstantiation struct {
	Base
	Origin   Type
	Bindings []Binding
}

var _ Type = (*GenericInstantiation)(nil)

// NewGenericInstantiation specializes origin with the given bindings,
// inheriting its members (subscripting a generic class
// produces a type with the same members as the origin class").
func NewGenericInstantiation(origin Type, bindings []Binding) *GenericInstantiation {
	g := &GenericInstantiation{
		Base:     NewBase(origin.Name(), origin.DeclaringModule()),
		Origin:   origin,
		Bindings: bindings,
	}
	g.MemberMap = origin.Members()
	return g
}

func (g *GenericInstantiation) CreateInstance(args []Value) (*Instance, error) {
	return g.Origin.CreateInstance(args)
}

func (g *GenericInstantiation) Call(instance *Instance, memberName string, args []Value) (Member, error) {
	return g.Origin.Call(instance, memberName, args)
}

func (g *GenericInstantiation) Index(instance *Instance, args []Value) (Member, error) {
	return g.Origin.Index(instance, args)
}

// Resolve substitutes t if it is one of this instantiation's bound
// TypeVars, else returns t unchanged — used when propagating a generic
// method's declared return type through a particular specialization.
func (g *GenericInstantiation) Resolve(t Type) Type {
	for _, b := range g.Bindings {
		if b.Var == t {
			return b.Bound
		}
	}
	return t
}
