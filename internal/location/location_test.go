package location

import "testing"

func TestNewLineTableRoundTrip(t *testing.T) {
	text := "import os\nx = 1\ny = 2\n"
	table := NewNewLineTable(text)

	cases := []struct {
		index int
		loc   SourceLocation
	}{
		{0, SourceLocation{Line: 1, Column: 1}},
		{7, SourceLocation{Line: 1, Column: 8}},
		{10, SourceLocation{Line: 2, Column: 1}},
		{16, SourceLocation{Line: 3, Column: 1}},
	}
	for _, c := range cases {
		got := table.IndexToLocation(c.index)
		if got != c.loc {
			t.Errorf("IndexToLocation(%d) = %+v, want %+v", c.index, got, c.loc)
		}
		back := table.LocationToIndex(got)
		if back != c.index {
			t.Errorf("LocationToIndex(%+v) = %d, want %d", got, back, c.index)
		}
	}
}

func TestInfoEqualIsCoarse(t *testing.T) {
	a := Info{FilePath: "a.py", Span: SourceSpan{Start: SourceLocation{Line: 3, Column: 1}, End: SourceLocation{Line: 3, Column: 5}}}
	b := Info{FilePath: "a.py", Span: SourceSpan{Start: SourceLocation{Line: 3, Column: 9}, End: SourceLocation{Line: 3, Column: 20}}}
	if !a.Equal(b) {
		t.Fatalf("expected coarse equality for same line/file")
	}
	if a.EqualExact(b) {
		t.Fatalf("expected exact equality to fail for different columns")
	}
}

func TestEmptyIsSentinel(t *testing.T) {
	if !Empty.IsEmpty() {
		t.Fatalf("Empty sentinel should report IsEmpty")
	}
	if Empty.Span.Start.Line != 1 || Empty.Span.Start.Column != 1 {
		t.Fatalf("Empty sentinel must sit at (1,1)")
	}
}

func TestIndexSpan(t *testing.T) {
	s := IndexSpan{Start: 5, Length: 3}
	if s.End() != 8 {
		t.Fatalf("End() = %d, want 8", s.End())
	}
	if s.Empty() {
		t.Fatalf("non-zero-length span reported Empty")
	}
	if (IndexSpan{}).Empty() == false {
		t.Fatalf("zero-value span should be Empty")
	}
}
