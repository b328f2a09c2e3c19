// Package buffer implements the versioned in-memory document text: a
// buffer that applies LSP-style change sets with reverse-offset-ordered
// edits within a set, and strict version chaining across sets.
package buffer

import (
	"errors"
	"fmt"

	"github.com/pymodel/langcore/internal/location"
)

// Errors returned by Update. MissingPriorVersions and IllegalVersionMove are
// Structural errors: they surface to the caller synchronously
// rather than becoming diagnostics.
var (
	ErrMissingPriorVersions     = errors.New("buffer: missing prior versions")
	ErrIllegalVersionMove       = errors.New("buffer: illegal version move")
	ErrChangesNotInReverseOrder = errors.New("buffer: changes not in reverse order")
)

// ChangeKind distinguishes a whole-buffer replacement from a ranged edit.
type ChangeKind int

const (
	KindReplace ChangeKind = iota
	KindWholeBuffer
)

// Change is one edit within a DocumentChangeSet.
type Change struct {
	Kind ChangeKind
	Span location.SourceSpan // ignored when Kind == KindWholeBuffer
	Text string
}

// DocumentChangeSet is the wire shape sent by a client, already decoded from
// JSON by the LSP front end.
type DocumentChangeSet struct {
	FromVersion uint32
	ToVersion   uint32
	Changes     []Change
}

// Buffer is the versioned text. The zero value is not ready for use;
// call Reset first.
type Buffer struct {
	version uint32
	text    string
	lines   *location.NewLineTable
}

// New creates a Buffer already holding text at the given version.
func New(version uint32, text string) *Buffer {
	b := &Buffer{}
	b.Reset(version, text)
	return b
}

// Reset replaces the contents wholesale and sets the version.
func (b *Buffer) Reset(version uint32, text string) {
	b.version = version
	b.text = text
	b.lines = location.NewNewLineTable(text)
}

// Version returns the buffer's current version.
func (b *Buffer) Version() uint32 { return b.version }

// Text returns the buffer's current text.
func (b *Buffer) Text() string { return b.text }

// Lines returns the new-line table backing the current text, used by
// components that need to translate between offsets and locations against
// exactly this snapshot (the document's parse task, for instance).
func (b *Buffer) Lines() *location.NewLineTable { return b.lines }

// Update applies a change set. A successful Update leaves the buffer at
// exactly ToVersion; a failed Update leaves it unchanged.
func (b *Buffer) Update(set DocumentChangeSet) error {
	if set.FromVersion < b.version {
		// Already-applied sets are
		// dropped silently, not reported as an error.
		return nil
	}
	if set.FromVersion > b.version {
		return fmt.Errorf("%w: buffer at %d, change set expects %d", ErrMissingPriorVersions, b.version, set.FromVersion)
	}
	if set.FromVersion == set.ToVersion {
		return fmt.Errorf("%w: from and to are both %d", ErrIllegalVersionMove, set.FromVersion)
	}

	text := b.text
	lines := b.lines
	lastStart := int(^uint(0) >> 1) // +infinity sentinel, reset on WholeBuffer

	for _, c := range set.Changes {
		if c.Kind == KindWholeBuffer {
			text = c.Text
			lines = location.NewNewLineTable(text)
			lastStart = int(^uint(0) >> 1)
			continue
		}

		span := lines.SpanToIndexSpan(c.Span)
		if span.Start > lastStart {
			return ErrChangesNotInReverseOrder
		}
		lastStart = span.Start

		if span.Start < 0 || span.End() > len(text) {
			return fmt.Errorf("buffer: change span %v out of bounds for %d-byte text", span, len(text))
		}
		text = text[:span.Start] + c.Text + text[span.End():]
		lines = location.NewNewLineTable(text)
	}

	b.text = text
	b.lines = lines
	b.version = set.ToVersion
	return nil
}
