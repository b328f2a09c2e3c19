package pyanalysis

import (
	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/location"
	"github.com/pymodel/langcore/internal/pyast"
)

// Analyzer drives one module's analysis pass. It is stateless across runs;
// all per-module state lives in the run it constructs for each Analyze
// call, so concurrent analyses of different modules never share mutable
// state.
type Analyzer struct {
	modules ModuleProvider
}

// New builds an Analyzer backed by the given module provider.
func New(modules ModuleProvider) *Analyzer {
	return &Analyzer{modules: modules}
}

// run carries the mutable state of a single Analyze call: the module being
// built, its diagnostics, and the file path used to stamp every location
// this pass records.
type run struct {
	modules    ModuleProvider
	filePath   string
	moduleName string
	mod        *Analysis
}

func (r *run) addDiag(d *diagnostics.Diagnostic) {
	r.mod.Diagnostics = append(r.mod.Diagnostics, d)
}

func (r *run) loc(n pyast.Node) location.Info {
	return location.Info{FilePath: r.filePath, Span: n.Pos()}
}

// Attach wires an Analyzer into a Document's OnNewAst hook and a
// ModuleProvider's reanalysis path: every time the document publishes a
// fresh AST, analysis runs and the result is submitted through
// NotifyAnalysisPending/NotifyAnalysisComplete exactly as and
// Completion order matters here: stale completions are discarded automatically by
// Document itself).
func Attach(doc *document.Document, a *Analyzer) {
	doc.OnNewAst = Hook(a)
}

// Hook builds the OnNewAst callback Attach installs, exposed separately so
// an rdt.Table can wire the same callback onto every document it creates
// (Table.SetOnNewAst) instead of attaching per document.
func Hook(a *Analyzer) func(*document.Document) {
	return func(d *document.Document) {
		version := d.NotifyAnalysisPending()
		// OnNewAst fires from inside the parse task, after the AST is
		// already published — read it without waiting (GetAST would wait
		// on the very task this callback is running in).
		ast := d.AST()
		if ast == nil {
			return
		}
		result := a.Analyze(d.ModuleName, d.FilePath, ast)
		if stub, err := a.modules.ResolveStub(d.ModuleName); err == nil && stub != nil {
			if stubAnalysis, ok := stub.GetAnalysis().(*Analysis); ok {
				mergeStub(result, stubAnalysis)
			}
		}
		if d.NotifyAnalysisComplete(result, version) {
			d.AppendDiagnostics(result.Diagnostics)
			for _, depName := range result.Dependencies {
				if dep, err := a.modules.ResolveImport(depName); err == nil && dep != nil && dep != d {
					dep.AddDependent(d.URI)
				}
			}
			for _, dependentURI := range d.Dependents() {
				a.modules.RequestReanalysis(dependentURI)
			}
		}
	}
}

// Analyze runs the full pipeline over ast, producing a fresh immutable
// Analysis.
func (a *Analyzer) Analyze(moduleName, filePath string, ast *pyast.Module) *Analysis {
	mod := newAnalysis(moduleName)
	if ast != nil {
		mod.dunderAll = dunderAllFromBody(ast.Body)
		ast.DunderAll = mod.dunderAll
	}
	r := &run{modules: a.modules, filePath: filePath, moduleName: moduleName, mod: mod}

	global := NewScope()
	if ast == nil {
		return mod
	}

	// Overview pass: predeclare top-level class/function names so
	// forward references (a class using another defined later) resolve.
	r.overview(global, ast.Body)

	// Imports.
	for _, stmt := range ast.Body {
		switch s := stmt.(type) {
		case *pyast.ImportStatement:
			r.processImport(global, s)
		case *pyast.ImportFromStatement:
			r.processImportFrom(global, s)
		}
	}

	// Statement evaluation, class/function detail, narrowing.
	r.execBlock(global, ast.Body)

	for name, member := range global.Names() {
		mod.Globals[name] = member
	}
	return mod
}
