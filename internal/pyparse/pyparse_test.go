package pyparse

import (
	"context"
	"testing"

	"github.com/pymodel/langcore/internal/pyast"
)

func parse(t *testing.T, src string) *pyast.Module {
	t.Helper()
	fn := New()
	mod, diags := fn(context.Background(), src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return mod
}

func TestParsesTopLevelImports(t *testing.T) {
	mod := parse(t, "import os\nimport a.b.c as abc\nfrom . import sibling\nfrom ..pkg import x, y as z\nfrom pkg import *\n")
	if len(mod.Body) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(mod.Body))
	}

	imp, ok := mod.Body[0].(*pyast.ImportStatement)
	if !ok || len(imp.Names) != 1 || imp.Names[0].Name != "os" {
		t.Fatalf("statement 0 = %#v", mod.Body[0])
	}

	imp2 := mod.Body[1].(*pyast.ImportStatement)
	if imp2.Names[0].Name != "a.b.c" || imp2.Names[0].AsName != "abc" {
		t.Fatalf("statement 1 = %#v", imp2.Names[0])
	}

	rel := mod.Body[2].(*pyast.ImportFromStatement)
	if rel.Level != 1 || rel.Module != "" || len(rel.Names) != 1 || rel.Names[0].Name != "sibling" {
		t.Fatalf("statement 2 = %#v", rel)
	}

	rel2 := mod.Body[3].(*pyast.ImportFromStatement)
	if rel2.Level != 2 || rel2.Module != "pkg" || len(rel2.Names) != 2 || rel2.Names[1].AsName != "z" {
		t.Fatalf("statement 3 = %#v", rel2)
	}

	star := mod.Body[4].(*pyast.ImportFromStatement)
	if !star.IsStar || star.Module != "pkg" {
		t.Fatalf("statement 4 = %#v", star)
	}
}

func TestParsesClassWithBasesDocstringAndMethod(t *testing.T) {
	src := `class Widget(Base, metaclass=ABCMeta):
    """A widget."""
    count: int = 0

    def render(self, ctx):
        return ctx
`
	mod := parse(t, src)
	if len(mod.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(mod.Body))
	}
	cls, ok := mod.Body[0].(*pyast.ClassDef)
	if !ok {
		t.Fatalf("expected ClassDef, got %#v", mod.Body[0])
	}
	if cls.Name != "Widget" {
		t.Fatalf("class name = %q", cls.Name)
	}
	if len(cls.Bases) != 1 {
		t.Fatalf("expected one base (metaclass kwarg excluded), got %d: %#v", len(cls.Bases), cls.Bases)
	}
	if id, ok := cls.Bases[0].(*pyast.Identifier); !ok || id.Value != "Base" {
		t.Fatalf("base = %#v", cls.Bases[0])
	}
	if cls.Docstring != "A widget." {
		t.Fatalf("docstring = %q", cls.Docstring)
	}
	if len(cls.Body) != 3 {
		t.Fatalf("expected docstring + field + method in body, got %d: %#v", len(cls.Body), cls.Body)
	}
	if _, ok := cls.Body[0].(*pyast.ExprStatement); !ok {
		t.Fatalf("expected the docstring itself to remain in Body, got %#v", cls.Body[0])
	}

	field, ok := cls.Body[1].(*pyast.AnnAssignStatement)
	if !ok {
		t.Fatalf("expected AnnAssignStatement, got %#v", cls.Body[1])
	}
	if id, ok := field.Target.(*pyast.Identifier); !ok || id.Value != "count" {
		t.Fatalf("field target = %#v", field.Target)
	}

	method, ok := cls.Body[2].(*pyast.FunctionDef)
	if !ok {
		t.Fatalf("expected FunctionDef, got %#v", cls.Body[1])
	}
	if method.Name != "render" {
		t.Fatalf("method name = %q", method.Name)
	}
	if method.Receiver == nil || method.Receiver.Name != "self" {
		t.Fatalf("expected self promoted to Receiver, got %#v", method.Receiver)
	}
	if len(method.Params) != 1 || method.Params[0].Name != "ctx" {
		t.Fatalf("params = %#v", method.Params)
	}
}

func TestParsesFunctionSignatureWithAnnotationsDefaultsAndVarargs(t *testing.T) {
	mod := parse(t, "def f(a: int, b: str = \"x\", *args, **kwargs) -> bool:\n    return True\n")
	fn := mod.Body[0].(*pyast.FunctionDef)
	if fn.Name != "f" {
		t.Fatalf("name = %q", fn.Name)
	}
	if len(fn.Params) != 4 {
		t.Fatalf("expected 4 params, got %d: %#v", len(fn.Params), fn.Params)
	}
	if fn.Params[0].Name != "a" || fn.Params[0].Annotation == nil {
		t.Fatalf("param a = %#v", fn.Params[0])
	}
	if fn.Params[1].Name != "b" || fn.Params[1].Default == nil {
		t.Fatalf("param b = %#v", fn.Params[1])
	}
	if fn.Params[2].Kind != pyast.ParamVarPositional || fn.Params[2].Name != "args" {
		t.Fatalf("param *args = %#v", fn.Params[2])
	}
	if fn.Params[3].Kind != pyast.ParamVarKeyword || fn.Params[3].Name != "kwargs" {
		t.Fatalf("param **kwargs = %#v", fn.Params[3])
	}
	ret, ok := fn.Returns.(*pyast.Identifier)
	if !ok || ret.Value != "bool" {
		t.Fatalf("returns = %#v", fn.Returns)
	}
}

func TestParsesAsyncDef(t *testing.T) {
	mod := parse(t, "async def fetch():\n    pass\n")
	fn := mod.Body[0].(*pyast.FunctionDef)
	if !fn.IsAsync {
		t.Fatal("expected IsAsync true")
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected one pass statement, got %#v", fn.Body)
	}
	if _, ok := fn.Body[0].(*pyast.PassStatement); !ok {
		t.Fatalf("expected PassStatement, got %#v", fn.Body[0])
	}
}

func TestParsesAssignmentShapes(t *testing.T) {
	mod := parse(t, "x = 1\ny: int\nz: int = 2\na = b = 3\n")
	if len(mod.Body) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(mod.Body))
	}

	assign := mod.Body[0].(*pyast.AssignStatement)
	if len(assign.Targets) != 1 {
		t.Fatalf("x assign targets = %#v", assign.Targets)
	}
	if c, ok := assign.Value.(*pyast.Constant); !ok || c.Kind != pyast.ConstInt || c.Value.(int) != 1 {
		t.Fatalf("x value = %#v", assign.Value)
	}

	annOnly := mod.Body[1].(*pyast.AnnAssignStatement)
	if annOnly.Value != nil {
		t.Fatalf("bare annotation should have nil value, got %#v", annOnly.Value)
	}

	annWithValue := mod.Body[2].(*pyast.AnnAssignStatement)
	if annWithValue.Value == nil {
		t.Fatal("expected a value for z: int = 2")
	}

	chained := mod.Body[3].(*pyast.AssignStatement)
	if len(chained.Targets) != 2 {
		t.Fatalf("chained assign targets = %#v", chained.Targets)
	}
}

func TestSkipsUnmodeledControlFlowBodies(t *testing.T) {
	src := `if True:
    x = 1
    y = 2
z = 3
`
	mod := parse(t, src)
	if len(mod.Body) != 1 {
		t.Fatalf("expected the if-block's body to be skipped, leaving only z = 3, got %d: %#v", len(mod.Body), mod.Body)
	}
	if _, ok := mod.Body[0].(*pyast.AssignStatement); !ok {
		t.Fatalf("expected AssignStatement for z, got %#v", mod.Body[0])
	}
}

func TestModuleDocstringIsLifted(t *testing.T) {
	mod := parse(t, "\"\"\"Module summary.\"\"\"\nimport os\n")
	if mod.Docstring != "Module summary." {
		t.Fatalf("docstring = %q", mod.Docstring)
	}
}

func TestParseExprRecognizesCallsSubscriptsAndAttributes(t *testing.T) {
	mod := parse(t, "x = collections.OrderedDict()\ny: typing.List[int]\nz = obj.attr\n")

	call := mod.Body[0].(*pyast.AssignStatement).Value.(*pyast.Call)
	fn, ok := call.Func.(*pyast.Attribute)
	if !ok || fn.Attr != "OrderedDict" {
		t.Fatalf("call func = %#v", call.Func)
	}

	ann := mod.Body[1].(*pyast.AnnAssignStatement).Annotation.(*pyast.SubscriptExpr)
	if attr, ok := ann.Value.(*pyast.Attribute); !ok || attr.Attr != "List" {
		t.Fatalf("subscript value = %#v", ann.Value)
	}

	attr := mod.Body[2].(*pyast.AssignStatement).Value.(*pyast.Attribute)
	if attr.Attr != "attr" {
		t.Fatalf("attribute = %#v", attr)
	}
}
