// Package document implements the Document (parse controller): a buffer
// plus the latest AST/diagnostics, driving a cancellable async re-parse
// task and tracking a versioned analysis slot that the analysis pipeline
// (internal/pyanalysis) publishes into.
package document

import (
	"context"
	"sync"

	"github.com/pymodel/langcore/internal/buffer"
	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/pyast"
)

// ModuleType is the module_type tag.
type ModuleType int

const (
	TypeUser ModuleType = iota
	TypeLibrary
	TypeStub
	TypeCompiled
	TypeCompiledBuiltin
	TypeBuiltins
	TypePackage
)

// ParseFunc is the lexer/parser collaborator. The actual Python parser is
// external; Document only needs this much of its contract.
type ParseFunc func(ctx context.Context, text string) (*pyast.Module, []*diagnostics.Diagnostic)

// Document is the per-module instance the Running Document Table tracks:
// exactly one Document exists per URI; dependents are tracked here so that
// re-analysis can be requeued without the RDT having to walk every document
// on every change.
type Document struct {
	URI        string
	ModuleName string
	FilePath   string
	ModuleType ModuleType

	parseFn ParseFunc

	parseMu    sync.Mutex
	isOpen     bool
	buf        *buffer.Buffer
	ast        *pyast.Module
	diags      []*diagnostics.Diagnostic
	cancelFunc context.CancelFunc
	parseWG    sync.WaitGroup

	analysisMu      sync.Mutex
	analysis        interface{}
	analysisVersion uint32
	expectedVersion uint32
	analysisWaiters []chan struct{}

	depMu      sync.Mutex
	dependents map[string]struct{}

	disposeCtx    context.Context
	disposeCancel context.CancelFunc

	// OnNewAst, when set, is invoked (outside any lock) every time a parse
	// publishes a new AST. The analysis pipeline (internal/pyanalysis) is
	// wired in here by whoever owns the Document (normally the RDT) rather
	// than through a hard import.
	OnNewAst func(d *Document)
}

// New constructs a Document. version/text seed its buffer directly; callers
// typically follow with Update or rely on this initial content.
func New(uri, moduleName, filePath string, mtype ModuleType, version uint32, text string, parseFn ParseFunc) *Document {
	ctx, cancel := context.WithCancel(context.Background())
	return &Document{
		URI:           uri,
		ModuleName:    moduleName,
		FilePath:      filePath,
		ModuleType:    mtype,
		parseFn:       parseFn,
		buf:           buffer.New(version, text),
		dependents:    make(map[string]struct{}),
		disposeCtx:    ctx,
		disposeCancel: cancel,
	}
}

// TriggerInitialParse schedules the first parse of a freshly constructed
// Document. Callers that need OnNewAst wired before the first parse result
// arrives (the RDT does, in OpenDocument and AddModule) must set OnNewAst
// immediately after New and before calling this, since runParse reads it
// without synchronization once scheduled.
func (d *Document) TriggerInitialParse() {
	d.scheduleParse()
}

// IsOpen reports whether the document is currently open in an editor.
func (d *Document) IsOpen() bool {
	d.parseMu.Lock()
	defer d.parseMu.Unlock()
	return d.isOpen
}

// SetOpen marks the document open or closed without touching its contents.
func (d *Document) SetOpen(open bool) {
	d.parseMu.Lock()
	d.isOpen = open
	d.parseMu.Unlock()
}

// Version returns the buffer's current version.
func (d *Document) Version() uint32 {
	d.parseMu.Lock()
	defer d.parseMu.Unlock()
	return d.buf.Version()
}

// Text returns the buffer's current text.
func (d *Document) Text() string {
	d.parseMu.Lock()
	defer d.parseMu.Unlock()
	return d.buf.Text()
}

// ResetContent replaces the buffer wholesale (used when (re)opening a
// previously-closed document with fresh editor content) and schedules a
// re-parse exactly like Update would.
func (d *Document) ResetContent(version uint32, text string) {
	d.parseMu.Lock()
	d.buf.Reset(version, text)
	d.parseMu.Unlock()
	d.scheduleParse()
}

// Update applies a change set to the buffer and schedules a re-parse without
// waiting for it. Buffer-level errors (stale set dropped,
// version mismatch, reverse-order violation) propagate unchanged; the parse
// is only scheduled on success.
func (d *Document) Update(set buffer.DocumentChangeSet) error {
	d.parseMu.Lock()
	err := d.buf.Update(set)
	d.parseMu.Unlock()
	if err != nil {
		return err
	}
	d.scheduleParse()
	return nil
}

// scheduleParse cancels any in-flight parse and starts a new one. The new
// task's cancellation token is a child of the document's disposal token, so
// Dispose cancels every outstanding parse too.
func (d *Document) scheduleParse() {
	d.parseMu.Lock()
	if d.cancelFunc != nil {
		d.cancelFunc()
	}
	ctx, cancel := context.WithCancel(d.disposeCtx)
	d.cancelFunc = cancel
	version := d.buf.Version()
	text := d.buf.Text()
	d.parseMu.Unlock()

	d.parseWG.Add(1)
	go d.runParse(ctx, version, text)
}

func (d *Document) runParse(ctx context.Context, version uint32, text string) {
	defer d.parseWG.Done()
	if d.parseFn == nil {
		return
	}
	ast, diags := d.parseFn(ctx, text)

	select {
	case <-ctx.Done():
		// Canceled — a newer parse (or disposal) won; drop this result
		// with no observable state change.
		return
	default:
	}

	d.parseMu.Lock()
	if d.buf.Version() != version {
		d.parseMu.Unlock()
		return
	}
	d.ast = ast
	d.diags = diags
	d.parseMu.Unlock()

	if d.OnNewAst != nil {
		d.OnNewAst(d)
	}
}

// AST returns the latest published AST without waiting on any in-flight
// parse (nil if no parse has completed yet). This is the accessor OnNewAst
// callbacks must use: they run inside the parse task itself, so waiting on
// it would never return.
func (d *Document) AST() *pyast.Module {
	d.parseMu.Lock()
	defer d.parseMu.Unlock()
	return d.ast
}

// GetAST waits for the current parse task to finish and returns the latest
// published AST (nil if parsing has never completed). If canceled mid-wait
// by ctx, it returns the immediately-available AST instead of blocking
// further; callers that need a non-nil AST retry against the next task.
func (d *Document) GetAST(ctx context.Context) *pyast.Module {
	done := make(chan struct{})
	go func() {
		d.parseWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	d.parseMu.Lock()
	defer d.parseMu.Unlock()
	return d.ast
}

// Diagnostics returns the diagnostics produced by the latest published
// parse (and, once analysis has run, the semantic diagnostics appended by
// the analysis pipeline via AppendDiagnostics).
func (d *Document) Diagnostics() []*diagnostics.Diagnostic {
	d.parseMu.Lock()
	defer d.parseMu.Unlock()
	return d.diags
}

// AppendDiagnostics lets the analysis pipeline add its own diagnostics
// (unresolved imports, use-before-def, ...) to the set published for this
// version, without taking over ownership of parse errors.
func (d *Document) AppendDiagnostics(extra []*diagnostics.Diagnostic) {
	d.parseMu.Lock()
	d.diags = append(d.diags, extra...)
	d.parseMu.Unlock()
}

// NotifyAnalysisPending bumps expected_analysis_version and returns the
// new expected version for the caller to tag its eventual
// NotifyAnalysisComplete call with.
func (d *Document) NotifyAnalysisPending() uint32 {
	d.analysisMu.Lock()
	defer d.analysisMu.Unlock()
	d.expectedVersion++
	return d.expectedVersion
}

// NotifyAnalysisComplete publishes result if version matches the current
// expected_analysis_version; otherwise the stale result is discarded and the
// published analysis is left unchanged.
func (d *Document) NotifyAnalysisComplete(result interface{}, version uint32) bool {
	d.analysisMu.Lock()
	defer d.analysisMu.Unlock()
	if version != d.expectedVersion {
		return false
	}
	d.analysis = result
	d.analysisVersion = version
	for _, w := range d.analysisWaiters {
		close(w)
	}
	d.analysisWaiters = nil
	return true
}

// GetAnalysis returns the current published analysis (nil if none has
// completed yet).
func (d *Document) GetAnalysis() interface{} {
	d.analysisMu.Lock()
	defer d.analysisMu.Unlock()
	return d.analysis
}

// GetAnalysisWithTimeout returns the completed analysis if it arrives
// before ctx is done, otherwise the currently published result — it never
// returns an error, just whatever's published so far.
func (d *Document) GetAnalysisWithTimeout(ctx context.Context) interface{} {
	d.analysisMu.Lock()
	expected := d.expectedVersion
	current := d.analysisVersion
	// Both counters sit at zero until the first analysis is scheduled;
	// treat that as "not yet published" rather than "up to date", so an
	// early caller waits for the initial result instead of reading nil.
	if current == expected && d.analysis != nil {
		result := d.analysis
		d.analysisMu.Unlock()
		return result
	}
	wait := make(chan struct{})
	d.analysisWaiters = append(d.analysisWaiters, wait)
	d.analysisMu.Unlock()

	select {
	case <-wait:
	case <-ctx.Done():
	}
	d.analysisMu.Lock()
	defer d.analysisMu.Unlock()
	return d.analysis
}

// AddDependent records that another module's analysis references this one,
// so a future change here can requeue it.
func (d *Document) AddDependent(uri string) {
	d.depMu.Lock()
	d.dependents[uri] = struct{}{}
	d.depMu.Unlock()
}

// Dependents snapshots the current dependent set.
func (d *Document) Dependents() []string {
	d.depMu.Lock()
	defer d.depMu.Unlock()
	out := make([]string, 0, len(d.dependents))
	for uri := range d.dependents {
		out = append(out, uri)
	}
	return out
}

// Dispose cancels any pending parse/analyze work for this document. Called
// when the RDT's lock_count for this document reaches zero.
func (d *Document) Dispose() {
	d.disposeCancel()
	d.parseWG.Wait()
}
