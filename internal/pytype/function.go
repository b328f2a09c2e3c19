package pytype

import (
	"fmt"

	"github.com/pymodel/langcore/internal/pyast"
)

// Parameter is a function parameter's static shape: name, declared/inferred
// type, optional default, and its pyast.ParamKind (positional, keyword-only,
// *args, **kwargs).
type Parameter struct {
	Name         string
	Annotated    Type // nil if unannotated
	HasDefault   bool
	DefaultValue Value
	Kind         pyast.ParamKind
}

// FunctionOverload is one arity/signature variant of a FunctionDef. Plain
// (non-overloaded) functions have exactly one overload.
type FunctionOverload struct {
	Params     []Parameter
	ReturnType Type
	Decl       *pyast.FunctionDef
}

// requiredCount is the number of parameters a caller must supply at minimum
// (positional params with no default, excluding *args/**kwargs).
func (o *FunctionOverload) requiredCount() int {
	n := 0
	for _, p := range o.Params {
		if p.Kind == pyast.ParamPositional && !p.HasDefault {
			n++
		}
	}
	return n
}

// acceptsCount reports whether this overload's arity can accept argc
// positional arguments.
func (o *FunctionOverload) acceptsCount(argc int) bool {
	max := 0
	hasVarArgs := false
	for _, p := range o.Params {
		switch p.Kind {
		case pyast.ParamPositional:
			max++
		case pyast.ParamVarPositional:
			hasVarArgs = true
		}
	}
	if hasVarArgs {
		return argc >= o.requiredCount()
	}
	return argc >= o.requiredCount() && argc <= max
}

// FunctionType is a def (or set of @overload defs sharing one name). Member
// lookups on a FunctionType's call result resolve via Call, which performs
// arity-based overload selection: "the first declared
// overload whose parameter count accepts the call's argument count wins;
// ties are broken by declaration order."
type FunctionType struct {
	Base
	Overloads []FunctionOverload
	IsAsync   bool
	IsMethod  bool
}

var _ Type = (*FunctionType)(nil)

// NewFunctionType wraps a single (non-overloaded) signature.
func NewFunctionType(name, module string, overload FunctionOverload) *FunctionType {
	return &FunctionType{Base: NewBase(name, module), Overloads: []FunctionOverload{overload}}
}

// SelectOverload returns the first-declared overload accepting argc
// positional arguments, falling back to the first overload when none
// matches (an unmatched call still yields a usable — if imprecise —
// return type rather than failing, and first-declared is the tiebreaker).
func (f *FunctionType) SelectOverload(argc int) *FunctionOverload {
	for i := range f.Overloads {
		if f.Overloads[i].acceptsCount(argc) {
			return &f.Overloads[i]
		}
	}
	if len(f.Overloads) > 0 {
		return &f.Overloads[0]
	}
	return nil
}

func (f *FunctionType) CreateInstance(args []Value) (*Instance, error) {
	return nil, fmt.Errorf("pytype: %s is not instantiable", f.Name())
}

// Call resolves the overload matching len(args), returning its return type
// as an unnamed Variable member (calling a function "produces
// a value typed as its selected overload's return type").
func (f *FunctionType) Call(instance *Instance, memberName string, args []Value) (Member, error) {
	o := f.SelectOverload(len(args))
	if o == nil {
		return NewVariable(f.Name(), f.DeclLocation, Unknown, SourceBuiltin), nil
	}
	ret := o.ReturnType
	if ret == nil {
		ret = Unknown
	}
	return NewVariable(f.Name(), f.DeclLocation, ret, SourceBuiltin), nil
}

func (f *FunctionType) Index(instance *Instance, args []Value) (Member, error) {
	return nil, fmt.Errorf("pytype: %s is not subscriptable", f.Name())
}
