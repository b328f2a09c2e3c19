package pyanalysis

import (
	"github.com/pymodel/langcore/internal/pyast"
	"github.com/pymodel/langcore/internal/pytype"
)

func memberType(m pytype.Member) pytype.Type {
	switch mem := m.(type) {
	case *pytype.Variable:
		return mem.Val
	case *pytype.FunctionCallable:
		return mem.Fn
	default:
		return pytype.Unknown
	}
}

// inferExpr is the best-effort static evaluator behind statement typing:
// it never fails and never executes anything, only propagates shapes
// already known from declarations, imports, and literals.
func (r *run) inferExpr(scope *Scope, expr pyast.Expression) pytype.Type {
	if expr == nil {
		return pytype.Unknown
	}
	switch e := expr.(type) {
	case *pyast.Identifier:
		if m, ok := scope.Lookup(e.Value); ok {
			return memberType(m)
		}
		return pytype.Unknown

	case *pyast.Attribute:
		base := r.inferExpr(scope, e.Value)
		if m, ok := base.Member(e.Attr); ok {
			return memberType(m)
		}
		return pytype.Unknown

	case *pyast.Call:
		return r.inferCall(scope, e)

	case *pyast.Constant:
		return constantType(e)

	case *pyast.TupleExpr:
		elems := make([]pytype.Type, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = r.inferExpr(scope, el)
		}
		return pytype.NewTupleType(r.moduleName, elems)

	case *pyast.ListExpr:
		return pytype.NewListType(r.moduleName, r.commonElementType(scope, e.Elements))

	case *pyast.DictExpr:
		var key, val pytype.Type = pytype.Unknown, pytype.Unknown
		if len(e.Entries) > 0 && e.Entries[0].Key != nil {
			key = r.inferExpr(scope, e.Entries[0].Key)
			val = r.inferExpr(scope, e.Entries[0].Value)
		}
		return pytype.NewDictionaryType(r.moduleName, key, val)

	case *pyast.SubscriptExpr:
		base := r.inferExpr(scope, e.Value)
		inst := &pytype.Instance{TypeRef: base}
		arg := pytype.Value{Type: r.inferExpr(scope, e.Index), Literal: literalOf(e.Index)}
		if m, err := base.Index(inst, []pytype.Value{arg}); err == nil {
			return memberType(m)
		}
		return pytype.Unknown

	case *pyast.CompareExpr, *pyast.BoolOp, *pyast.IsInstanceExpr:
		return pytype.NewOpaqueType("bool", "builtins")

	case *pyast.UnaryOp:
		return r.inferExpr(scope, e.Operand)

	case *pyast.StarredExpr:
		return r.inferExpr(scope, e.Value)

	case *pyast.LambdaExpr:
		return pytype.NewFunctionType("<lambda>", r.moduleName, pytype.FunctionOverload{ReturnType: pytype.Unknown})

	default:
		return pytype.Unknown
	}
}

func (r *run) commonElementType(scope *Scope, elements []pyast.Expression) pytype.Type {
	if len(elements) == 0 {
		return pytype.Unknown
	}
	return r.inferExpr(scope, elements[0])
}

func (r *run) inferArgs(scope *Scope, args []pyast.Expression) []pytype.Value {
	out := make([]pytype.Value, len(args))
	for i, a := range args {
		out[i] = pytype.Value{Type: r.inferExpr(scope, a), Literal: literalOf(a)}
	}
	return out
}

// literalOf extracts a Go literal from an int constant (including a
// unary-minus negative literal), for array/tuple index resolution; nil for
// anything else.
func literalOf(expr pyast.Expression) interface{} {
	switch e := expr.(type) {
	case *pyast.Constant:
		if e.Kind == pyast.ConstInt {
			return e.Value
		}
	case *pyast.UnaryOp:
		if e.Op == "-" {
			if c, ok := e.Operand.(*pyast.Constant); ok && c.Kind == pyast.ConstInt {
				if i, ok := c.Value.(int); ok {
					return -i
				}
			}
		}
	}
	return nil
}

func constantType(c *pyast.Constant) pytype.Type {
	switch c.Kind {
	case pyast.ConstInt:
		return pytype.NewOpaqueType("int", "builtins")
	case pyast.ConstFloat:
		return pytype.NewOpaqueType("float", "builtins")
	case pyast.ConstStr:
		return pytype.NewOpaqueType("str", "builtins")
	case pyast.ConstBool:
		return pytype.NewOpaqueType("bool", "builtins")
	case pyast.ConstBytes:
		return pytype.NewOpaqueType("bytes", "builtins")
	case pyast.ConstNone:
		return pytype.NewOpaqueType("None", "builtins")
	default:
		return pytype.Unknown
	}
}

// inferCall implements call handling: a method call (Attr
// form) dispatches through the receiver's Call; a bare call either invokes
// a known function or, for a class name, yields that class as the call's
// static result (this analyzer does not distinguish "the class object"
// from "an instance of the class" — both resolve member lookups the same
// way through Type.Member, so collapsing them loses no observable
// precision here).
func (r *run) inferCall(scope *Scope, call *pyast.Call) pytype.Type {
	args := r.inferArgs(scope, call.Args)

	if attr, ok := call.Func.(*pyast.Attribute); ok {
		base := r.inferExpr(scope, attr.Value)
		inst := &pytype.Instance{TypeRef: base}
		if m, err := base.Call(inst, attr.Attr, args); err == nil {
			return memberType(m)
		}
		return pytype.Unknown
	}

	target := r.inferExpr(scope, call.Func)
	switch t := target.(type) {
	case *pytype.FunctionType:
		if m, err := t.Call(nil, t.Name(), args); err == nil {
			return memberType(m)
		}
	case *pytype.ClassType:
		return t
	}
	return pytype.Unknown
}

// resolveAnnotation parses an annotation expression into a Type: bare
// names (a builtin or a locally/ imported-declared class), subscripted
// generics (List[int], Dict[K, V], Optional[X], Tuple[...]), and
// string forward-references.
func (r *run) resolveAnnotation(scope *Scope, expr pyast.Expression) pytype.Type {
	if expr == nil {
		return pytype.Unknown
	}
	switch e := expr.(type) {
	case *pyast.Identifier:
		return r.resolveAnnotationName(scope, e.Value)

	case *pyast.Constant:
		if e.Kind == pyast.ConstStr {
			if name, ok := e.Value.(string); ok {
				return r.resolveAnnotationName(scope, name)
			}
		}
		return pytype.Unknown

	case *pyast.Attribute:
		base := r.inferExpr(scope, e.Value)
		if m, ok := base.Member(e.Attr); ok {
			if ct, ok := memberType(m).(*pytype.ClassType); ok {
				return ct
			}
		}
		return pytype.NewOpaqueType(e.Attr, "")

	case *pyast.SubscriptExpr:
		return r.resolveGeneric(scope, e)

	case *pyast.BinOp:
		if e.Op == "|" {
			// PEP 604 union `X | Y`: approximate with the left operand.
			return r.resolveAnnotation(scope, e.Left)
		}
		return pytype.Unknown

	default:
		return pytype.Unknown
	}
}

func (r *run) resolveAnnotationName(scope *Scope, name string) pytype.Type {
	if name == "None" {
		return pytype.NewOpaqueType("None", "builtins")
	}
	if ct, ok := r.mod.Classes[name]; ok {
		return ct
	}
	if m, ok := scope.Lookup(name); ok {
		if ct, ok := memberType(m).(*pytype.ClassType); ok {
			return ct
		}
	}
	return pytype.NewOpaqueType(name, "builtins")
}

func (r *run) resolveGeneric(scope *Scope, e *pyast.SubscriptExpr) pytype.Type {
	name, ok := e.Value.(*pyast.Identifier)
	if !ok {
		return pytype.Unknown
	}
	args := flattenSubscriptArgs(e.Index)

	switch name.Value {
	case "List", "list":
		return pytype.NewListType(r.moduleName, r.annotationOrUnknown(scope, args, 0))
	case "Set", "set", "FrozenSet", "frozenset":
		return pytype.NewSetType(r.moduleName, r.annotationOrUnknown(scope, args, 0))
	case "Dict", "dict":
		return pytype.NewDictionaryType(r.moduleName, r.annotationOrUnknown(scope, args, 0), r.annotationOrUnknown(scope, args, 1))
	case "Tuple", "tuple":
		elems := make([]pytype.Type, len(args))
		for i := range args {
			elems[i] = r.annotationOrUnknown(scope, args, i)
		}
		return pytype.NewTupleType(r.moduleName, elems)
	case "Optional":
		return r.annotationOrUnknown(scope, args, 0)
	case "Iterator", "Iterable", "Generator", "Sequence":
		return pytype.NewIteratorType(r.moduleName, r.annotationOrUnknown(scope, args, 0))
	case "Union":
		return r.annotationOrUnknown(scope, args, 0)
	default:
		base := r.resolveAnnotationName(scope, name.Value)
		ct, ok := base.(*pytype.ClassType)
		if !ok || len(ct.TypeParams) == 0 {
			return base
		}
		bindings := make([]pytype.Binding, 0, len(args))
		for i, tv := range ct.TypeParams {
			if i >= len(args) {
				break
			}
			bindings = append(bindings, pytype.Binding{Var: tv, Bound: r.resolveAnnotation(scope, args[i])})
		}
		return pytype.NewGenericInstantiation(ct, bindings)
	}
}

func (r *run) annotationOrUnknown(scope *Scope, args []pyast.Expression, i int) pytype.Type {
	if i >= len(args) {
		return pytype.Unknown
	}
	return r.resolveAnnotation(scope, args[i])
}

func flattenSubscriptArgs(index pyast.Expression) []pyast.Expression {
	if tup, ok := index.(*pyast.TupleExpr); ok {
		return tup.Elements
	}
	return []pyast.Expression{index}
}
