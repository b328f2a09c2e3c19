package document

import (
	"context"
	"testing"
	"time"

	"github.com/pymodel/langcore/internal/buffer"
	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/pyast"
)

func noopParse(ctx context.Context, text string) (*pyast.Module, []*diagnostics.Diagnostic) {
	return &pyast.Module{File: "t.py"}, nil
}

func TestNewAstFiresOnce(t *testing.T) {
	var fired int
	d := New("file:///a.py", "a", "/a.py", TypeUser, 0, "x = 1\n", noopParse)
	done := make(chan struct{})
	d.OnNewAst = func(doc *Document) {
		fired++
		close(done)
	}
	d.ResetContent(0, "x = 1\n")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for NewAst")
	}
	if fired != 1 {
		t.Fatalf("NewAst fired %d times, want 1", fired)
	}
}

// Stale analysis discarded: only the matching expected version publishes.
func TestStaleAnalysisDiscarded(t *testing.T) {
	d := New("file:///a.py", "a", "/a.py", TypeUser, 0, "", noopParse)

	v1 := d.NotifyAnalysisPending() // expected = 1
	v2 := d.NotifyAnalysisPending() // expected = 2

	if ok := d.NotifyAnalysisComplete("stale-result", v1); ok {
		t.Fatalf("stale completion (version %d) should not publish", v1)
	}
	if d.GetAnalysis() != nil {
		t.Fatalf("stale completion must not change published analysis, got %v", d.GetAnalysis())
	}

	if ok := d.NotifyAnalysisComplete("fresh-result", v2); !ok {
		t.Fatalf("completion matching expected version %d should publish", v2)
	}
	if got := d.GetAnalysis(); got != "fresh-result" {
		t.Fatalf("GetAnalysis() = %v, want fresh-result", got)
	}
}

func TestGetAnalysisWithTimeoutReturnsCurrentOnExpiry(t *testing.T) {
	d := New("file:///a.py", "a", "/a.py", TypeUser, 0, "", noopParse)
	v1 := d.NotifyAnalysisPending()
	d.NotifyAnalysisComplete("first", v1)
	d.NotifyAnalysisPending() // a new analysis is now pending and never completes

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	got := d.GetAnalysisWithTimeout(ctx)
	if got != "first" {
		t.Fatalf("GetAnalysisWithTimeout at expiry = %v, want the last published result", got)
	}
}

func TestDisposeCancelsPendingParse(t *testing.T) {
	blocked := make(chan struct{})
	parseStarted := make(chan struct{})
	slowParse := func(ctx context.Context, text string) (*pyast.Module, []*diagnostics.Diagnostic) {
		close(parseStarted)
		select {
		case <-blocked:
		case <-ctx.Done():
		}
		return nil, nil
	}
	d := New("file:///a.py", "a", "/a.py", TypeUser, 0, "x\n", slowParse)
	d.scheduleParse()
	<-parseStarted
	d.Dispose()
	close(blocked)
}

func TestUpdatePropagatesBufferErrors(t *testing.T) {
	d := New("file:///a.py", "a", "/a.py", TypeUser, 5, "x\n", noopParse)
	err := d.Update(buffer.DocumentChangeSet{FromVersion: 9, ToVersion: 10})
	if err == nil {
		t.Fatal("expected buffer error to propagate")
	}
}
