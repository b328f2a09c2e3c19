package rdt

import (
	"context"
	"testing"

	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/pyast"
)

func noopParse(ctx context.Context, text string) (*pyast.Module, []*diagnostics.Diagnostic) {
	return &pyast.Module{}, nil
}

type stubFactory struct{}

func (stubFactory) CreateDocument(opts AddModuleOptions) (*document.Document, error) {
	if opts.ModuleType != document.TypeUser && opts.ModuleType != document.TypeLibrary {
		return nil, ErrUnsupportedModuleType
	}
	return document.New(opts.URI, opts.ModuleName, opts.FilePath, opts.ModuleType, 0, "", noopParse), nil
}

// Open then add (importer), close twice, Removed fires and lock count
// tracks exactly.
func TestCloseRefcount(t *testing.T) {
	table := New(stubFactory{})
	var events []Event
	table.Subscribe(func(e Event) { events = append(events, e) })

	table.OpenDocument("file:///f.py", "/f.py", 0, "x = 1\n", noopParse)
	if lc := table.LockCount("file:///f.py"); lc != 1 {
		t.Fatalf("lock count after open = %d, want 1", lc)
	}

	doc, err := table.AddModule(AddModuleOptions{URI: "file:///f.py", ModuleType: document.TypeUser})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc == nil {
		t.Fatal("expected existing document to be returned")
	}
	if lc := table.LockCount("file:///f.py"); lc != 2 {
		t.Fatalf("lock count after add_module on existing doc = %d, want 2", lc)
	}

	table.CloseDocument("file:///f.py")
	if lc := table.LockCount("file:///f.py"); lc != 1 {
		t.Fatalf("lock count after first close = %d, want 1", lc)
	}
	if table.GetDocumentByURI("file:///f.py") == nil {
		t.Fatal("document should still be present with lock_count=1")
	}

	table.UnlockDocument("file:///f.py")
	if table.GetDocumentByURI("file:///f.py") != nil {
		t.Fatal("document should be removed once lock_count reaches zero")
	}

	var sawRemoved bool
	for _, e := range events {
		if e.Kind == EventRemoved {
			sawRemoved = true
		}
	}
	if !sawRemoved {
		t.Fatal("expected a Removed event once lock_count reached zero")
	}
}

// A second close of an already-closed document still drops a lock but
// must not fire a second Closed event.
func TestDoubleCloseFiresClosedOnce(t *testing.T) {
	table := New(stubFactory{})
	var events []Event
	table.Subscribe(func(e Event) { events = append(events, e) })

	table.OpenDocument("file:///f.py", "/f.py", 0, "x = 1\n", noopParse)
	if _, err := table.AddModule(AddModuleOptions{URI: "file:///f.py", ModuleType: document.TypeUser}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table.CloseDocument("file:///f.py")
	if lc := table.LockCount("file:///f.py"); lc != 1 {
		t.Fatalf("lock count after first close = %d, want 1", lc)
	}
	table.CloseDocument("file:///f.py")
	if table.GetDocumentByURI("file:///f.py") != nil {
		t.Fatal("document should be removed once lock_count reaches zero")
	}

	closed := 0
	for _, e := range events {
		if e.Kind == EventClosed {
			closed++
		}
	}
	if closed != 1 {
		t.Fatalf("Closed fired %d times, want exactly once", closed)
	}
}

func TestAddModuleUnsupportedType(t *testing.T) {
	table := New(stubFactory{})
	_, err := table.AddModule(AddModuleOptions{URI: "file:///x.so", ModuleType: document.TypeCompiledBuiltin})
	if err != ErrUnsupportedModuleType {
		t.Fatalf("err = %v, want ErrUnsupportedModuleType", err)
	}
}

func TestLockCountNeverNegativeAfterRemoval(t *testing.T) {
	table := New(stubFactory{})
	table.OpenDocument("file:///a.py", "/a.py", 0, "", noopParse)
	table.CloseDocument("file:///a.py")
	if got := table.UnlockDocument("file:///a.py"); got != -1 {
		t.Fatalf("unlocking an absent document returned %d, want -1", got)
	}
}
