package location

import "sort"

// LineKind distinguishes the newline styles a scraped or edited document may
// mix; CRLF still advances the new-line table by the index of the '\n'.
type LineKind int

const (
	LF LineKind = iota
	CRLF
)

// lineEnd records where one physical line ends.
type lineEnd struct {
	EndIndex int
	Kind     LineKind
}

// NewLineTable maps byte offsets to line/column pairs and back, in O(log N)
// per query via binary search over a sorted line-end table.
type NewLineTable struct {
	ends []lineEnd
}

// NewNewLineTable scans text once and records every line ending.
func NewNewLineTable(text string) *NewLineTable {
	t := &NewLineTable{}
	t.recompute(text)
	return t
}

// Recompute rebuilds the table after a whole-buffer replacement.
func (t *NewLineTable) Recompute(text string) {
	t.recompute(text)
}

func (t *NewLineTable) recompute(text string) {
	t.ends = t.ends[:0]
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			kind := LF
			if i > 0 && text[i-1] == '\r' {
				kind = CRLF
			}
			t.ends = append(t.ends, lineEnd{EndIndex: i, Kind: kind})
		}
	}
}

// IndexToLocation converts a byte offset into a 1-based SourceLocation.
func (t *NewLineTable) IndexToLocation(index int) SourceLocation {
	// lineStart[i] is the offset of the first byte of line i+2 (1-based line
	// number i+2), found by the sorted index of the first line-end at or
	// after `index`.
	line := sort.Search(len(t.ends), func(i int) bool {
		return t.ends[i].EndIndex >= index
	})
	lineStart := 0
	if line > 0 {
		lineStart = t.ends[line-1].EndIndex + 1
	}
	return SourceLocation{Line: line + 1, Column: index - lineStart + 1}
}

// LocationToIndex converts a 1-based SourceLocation back into a byte offset.
func (t *NewLineTable) LocationToIndex(loc SourceLocation) int {
	lineStart := 0
	if loc.Line > 1 {
		idx := loc.Line - 2
		if idx >= 0 && idx < len(t.ends) {
			lineStart = t.ends[idx].EndIndex + 1
		} else if idx >= len(t.ends) && len(t.ends) > 0 {
			// Past the last recorded line ending: clamp to end of text by
			// walking forward from the last known line start.
			lineStart = t.ends[len(t.ends)-1].EndIndex + 1
		}
	}
	return lineStart + loc.Column - 1
}

// SpanToIndexSpan resolves a SourceSpan against the table into byte offsets.
func (t *NewLineTable) SpanToIndexSpan(span SourceSpan) IndexSpan {
	start := t.LocationToIndex(span.Start)
	end := t.LocationToIndex(span.End)
	if end < start {
		end = start
	}
	return IndexSpan{Start: start, Length: end - start}
}

// IndexSpanToSpan is the inverse of SpanToIndexSpan.
func (t *NewLineTable) IndexSpanToSpan(span IndexSpan) SourceSpan {
	return SourceSpan{
		Start: t.IndexToLocation(span.Start),
		End:   t.IndexToLocation(span.End()),
	}
}
