package buffer

import (
	"errors"
	"testing"

	"github.com/pymodel/langcore/internal/location"
)

func span(sl, sc, el, ec int) location.SourceSpan {
	return location.SourceSpan{
		Start: location.SourceLocation{Line: sl, Column: sc},
		End:   location.SourceLocation{Line: el, Column: ec},
	}
}

// Open and edit a single-line buffer.
func TestUpdateSingleEdit(t *testing.T) {
	b := New(0, "x = 1\n")
	err := b.Update(DocumentChangeSet{
		FromVersion: 0,
		ToVersion:   1,
		Changes: []Change{
			{Kind: KindReplace, Span: span(1, 5, 1, 6), Text: "2"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Version() != 1 {
		t.Fatalf("version = %d, want 1", b.Version())
	}
	if b.Text() != "x = 2\n" {
		t.Fatalf("text = %q, want %q", b.Text(), "x = 2\n")
	}
}

// Reverse-descending edits within one set apply correctly; forward
// order must fail.
func TestUpdateReverseOrderWithinSet(t *testing.T) {
	b := New(0, "abc\n")
	err := b.Update(DocumentChangeSet{
		FromVersion: 0,
		ToVersion:   1,
		Changes: []Change{
			{Kind: KindReplace, Span: span(1, 3, 1, 4), Text: "Z"},
			{Kind: KindReplace, Span: span(1, 1, 1, 2), Text: "A"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Text() != "AbZ\n" {
		t.Fatalf("text = %q, want %q", b.Text(), "AbZ\n")
	}
}

func TestUpdateForwardOrderWithinSetFails(t *testing.T) {
	b := New(0, "abc\n")
	err := b.Update(DocumentChangeSet{
		FromVersion: 0,
		ToVersion:   1,
		Changes: []Change{
			{Kind: KindReplace, Span: span(1, 1, 1, 2), Text: "A"},
			{Kind: KindReplace, Span: span(1, 3, 1, 4), Text: "Z"},
		},
	})
	if !errors.Is(err, ErrChangesNotInReverseOrder) {
		t.Fatalf("err = %v, want ErrChangesNotInReverseOrder", err)
	}
	if b.Text() != "abc\n" || b.Version() != 0 {
		t.Fatalf("buffer mutated on failed update: text=%q version=%d", b.Text(), b.Version())
	}
}

func TestUpdateStaleSetDroppedSilently(t *testing.T) {
	b := New(5, "x\n")
	err := b.Update(DocumentChangeSet{FromVersion: 2, ToVersion: 3})
	if err != nil {
		t.Fatalf("stale set should be dropped silently, got %v", err)
	}
	if b.Version() != 5 || b.Text() != "x\n" {
		t.Fatalf("stale set mutated buffer: version=%d text=%q", b.Version(), b.Text())
	}
}

func TestUpdateFutureSetFails(t *testing.T) {
	b := New(0, "x\n")
	err := b.Update(DocumentChangeSet{FromVersion: 3, ToVersion: 4})
	if !errors.Is(err, ErrMissingPriorVersions) {
		t.Fatalf("err = %v, want ErrMissingPriorVersions", err)
	}
}

func TestUpdateIllegalVersionMove(t *testing.T) {
	b := New(1, "x\n")
	err := b.Update(DocumentChangeSet{FromVersion: 1, ToVersion: 1})
	if !errors.Is(err, ErrIllegalVersionMove) {
		t.Fatalf("err = %v, want ErrIllegalVersionMove", err)
	}
}

// An empty change set leaves text and version unchanged.
func TestUpdateEmptyChangeSet(t *testing.T) {
	b := New(0, "x = 1\n")
	if err := b.Update(DocumentChangeSet{FromVersion: 0, ToVersion: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Text() != "x = 1\n" || b.Version() != 1 {
		t.Fatalf("empty change set should leave text unchanged: text=%q version=%d", b.Text(), b.Version())
	}
}

// A WholeBuffer entry resets the reverse-order tracking so a following
// positional edit (an atypical but valid pattern, since it starts a fresh
// "infinite" lastStart) still applies against the freshly replaced text.
func TestWholeBufferThenPositionalEdit(t *testing.T) {
	b := New(0, "old\n")
	err := b.Update(DocumentChangeSet{
		FromVersion: 0,
		ToVersion:   1,
		Changes: []Change{
			{Kind: KindWholeBuffer, Text: "new text\n"},
			{Kind: KindReplace, Span: span(1, 1, 1, 4), Text: "NEW"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Text() != "NEW text\n" {
		t.Fatalf("text = %q, want %q", b.Text(), "NEW text\n")
	}
}

func TestChainedSetsMatchIndependentReset(t *testing.T) {
	a := New(0, "abc\n")
	if err := a.Update(DocumentChangeSet{FromVersion: 0, ToVersion: 1, Changes: []Change{
		{Kind: KindReplace, Span: span(1, 1, 1, 2), Text: "X"},
	}}); err != nil {
		t.Fatal(err)
	}
	if err := a.Update(DocumentChangeSet{FromVersion: 1, ToVersion: 2, Changes: []Change{
		{Kind: KindReplace, Span: span(1, 2, 1, 3), Text: "Y"},
	}}); err != nil {
		t.Fatal(err)
	}

	b := New(1, "Xbc\n")
	if err := b.Update(DocumentChangeSet{FromVersion: 1, ToVersion: 2, Changes: []Change{
		{Kind: KindReplace, Span: span(1, 2, 1, 3), Text: "Y"},
	}}); err != nil {
		t.Fatal(err)
	}

	if a.Text() != b.Text() {
		t.Fatalf("sequential application %q != independent reset application %q", a.Text(), b.Text())
	}
}
