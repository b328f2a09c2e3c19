// Package location holds the position and span primitives shared by every
// other package that points into Python source text: the parser-facing AST,
// diagnostics, the typed member model, and the stub generator.
package location

import "path/filepath"

// IndexSpan identifies a contiguous byte range in a document's text.
type IndexSpan struct {
	Start  int
	Length int
}

// End returns the exclusive end offset of the span.
func (s IndexSpan) End() int {
	return s.Start + s.Length
}

// Empty reports whether the span covers no bytes.
func (s IndexSpan) Empty() bool {
	return s.Length == 0
}

// SourceLocation is a 1-based line/column pair, matching LSP's own
// conventions at the line level (columns here are still 1-based; callers
// translating to/from LSP wire positions subtract one).
type SourceLocation struct {
	Line   int
	Column int
}

// SourceSpan is a half-open range between two SourceLocations.
type SourceSpan struct {
	Start SourceLocation
	End   SourceLocation
}

// Info is the canonical "where is this" tuple threaded through the typed
// member model, diagnostics, and references. Equality is coarse by design
// — start line + file only, so two members on the same line of the same
// file compare equal for quick containment checks; use EqualExact for the
// precise, full-field comparison.
type Info struct {
	FilePath string
	URI      string
	Span     SourceSpan
}

// Empty is the sentinel location used for synthetic members (builtins,
// virtual stub members) that have no real source position.
var Empty = Info{
	FilePath: "",
	Span: SourceSpan{
		Start: SourceLocation{Line: 1, Column: 1},
		End:   SourceLocation{Line: 1, Column: 1},
	},
}

// Equal is the coarse comparator: (start_line, file_path) only.
func (i Info) Equal(other Info) bool {
	return i.Span.Start.Line == other.Span.Start.Line && i.FilePath == other.FilePath
}

// EqualExact compares every field, for callers that need precise ordering
// or deduplication rather than the coarse "same line" notion.
func (i Info) EqualExact(other Info) bool {
	return i.FilePath == other.FilePath &&
		i.URI == other.URI &&
		i.Span == other.Span
}

// IsEmpty reports whether this is the Empty sentinel.
func (i Info) IsEmpty() bool {
	return i.FilePath == "" && i.Span == Empty.Span
}

// Base returns the file's base name, a convenience used by hover/diagnostic
// rendering call sites that only want a short label.
func (i Info) Base() string {
	if i.FilePath == "" {
		return ""
	}
	return filepath.Base(i.FilePath)
}
