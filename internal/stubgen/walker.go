// Package stubgen implements the Stub generator: given a
// module's scraped source and its analyzed member model, it produces a
// trimmed `.pyi` via an ordered pipeline of single-pass rewriters. Each
// pass reparses the current text and emits new text — state never flows
// pass-to-pass as an AST, only as source, so every pass is independently
// testable against plain Python input.
//
// The rewriters share a cursor-forward text splice: a running output
// buffer plus a last-index-processed cursor. A rewrite copies unchanged
// text up to a span, appends the replacement, and advances the cursor
// past the span.
package stubgen

import (
	"strings"

	"github.com/pymodel/langcore/internal/location"
)

// BaseWalker is the shared splicing engine every pass builds on: it holds
// the original text, a new-line table for span→offset conversion, and a
// "last processed" cursor. Callers must issue Replace/RemoveNode calls in
// non-decreasing span order (matching how passes walk the AST top-down);
// Finish copies any remaining tail and returns the assembled text.
type BaseWalker struct {
	src  string
	table *location.NewLineTable
	out  strings.Builder
	last int
}

// NewBaseWalker starts a walker over src.
func NewBaseWalker(src string) *BaseWalker {
	return &BaseWalker{src: src, table: location.NewNewLineTable(src)}
}

// Offset resolves a SourceLocation to a byte offset in the original text.
func (w *BaseWalker) Offset(loc location.SourceLocation) int {
	return w.table.LocationToIndex(loc)
}

func (w *BaseWalker) emitUpTo(offset int) {
	if offset < w.last {
		return
	}
	if offset > len(w.src) {
		offset = len(w.src)
	}
	w.out.WriteString(w.src[w.last:offset])
	w.last = offset
}

// Replace copies unchanged text up to span's start, writes replacement in
// its place, and advances the cursor past span's end.
func (w *BaseWalker) Replace(span location.SourceSpan, replacement string) {
	start := w.Offset(span.Start)
	end := w.Offset(span.End)
	w.emitUpTo(start)
	w.out.WriteString(replacement)
	if end > w.last {
		w.last = end
	}
}

// RemoveNode deletes span entirely, extending through the line's trailing
// newline so the removal doesn't leave a blank line behind.
func (w *BaseWalker) RemoveNode(span location.SourceSpan) {
	start := w.Offset(span.Start)
	end := w.Offset(span.End)
	for end < len(w.src) && w.src[end] != '\n' {
		end++
	}
	if end < len(w.src) {
		end++ // consume the newline itself
	}
	w.emitUpTo(start)
	w.last = end
}

// InsertBefore writes text immediately before span's start without
// consuming any of span — used to prepend a synthesized statement.
func (w *BaseWalker) InsertBefore(span location.SourceSpan, text string) {
	w.InsertAt(w.Offset(span.Start), text)
}

// InsertAt writes text at a raw byte offset without consuming anything —
// used by passes (e.g. TypeInfoWalker) that locate their insertion point by
// scanning source text rather than from an AST node's own span, since not
// every node the pipeline annotates carries a span of its own (Parameter
// has none).
func (w *BaseWalker) InsertAt(offset int, text string) {
	w.emitUpTo(offset)
	w.out.WriteString(text)
}

// Source returns the original text the walker was built from.
func (w *BaseWalker) Source() string { return w.src }

// Finish copies any remaining original text and returns the result.
func (w *BaseWalker) Finish() string {
	w.emitUpTo(len(w.src))
	return w.out.String()
}
