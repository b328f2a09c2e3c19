package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/pymodel/langcore/internal/buffer"
	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/location"
	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/pytype"
)

// analysisWait bounds how long a hover/definition request waits for the
// current analysis before answering from whatever is already published.
const analysisWait = 500 * time.Millisecond

func (s *Server) handleInitialize(id interface{}, params InitializeParams) error {
	rootPath := ""
	if params.RootURI != nil && *params.RootURI != "" {
		rootPath = uriToPath(*params.RootURI)
	} else if params.RootPath != nil {
		rootPath = *params.RootPath
	}
	if rootPath != "" {
		s.rootPath = rootPath
		for _, added := range s.resolver.Main.SetRoot(rootPath) {
			s.provider.IndexRoot(added)
		}
		log.Printf("pyls: workspace root %s", rootPath)
	}

	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result: InitializeResult{
			Capabilities: ServerCapabilities{
				TextDocumentSync:   1,
				HoverProvider:      true,
				DefinitionProvider: true,
			},
		},
	})
}

func (s *Server) handleShutdown(id interface{}) error {
	return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
}

func (s *Server) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	path := uriToPath(uri)
	s.resolver.Main.TryAddModulePath(path)
	s.table.OpenDocument(uri, path, uint32(params.TextDocument.Version), params.TextDocument.Text, s.resolver.ParseFn)
	return nil
}

func (s *Server) handleDidChange(params DidChangeTextDocumentParams) error {
	doc := s.table.GetDocumentByURI(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	set := buffer.DocumentChangeSet{
		FromVersion: doc.Version(),
		ToVersion:   uint32(params.TextDocument.Version),
	}
	for _, c := range params.ContentChanges {
		if c.Range == nil {
			set.Changes = append(set.Changes, buffer.Change{Kind: buffer.KindWholeBuffer, Text: c.Text})
			continue
		}
		set.Changes = append(set.Changes, buffer.Change{
			Kind: buffer.KindReplace,
			Span: rangeToSpan(*c.Range),
			Text: c.Text,
		})
	}

	if err := doc.Update(set); err != nil {
		// Structural errors (bad version chain, out-of-order edits) are
		// caller-contract violations; log and drop
		// rather than crashing the whole session over one bad change set.
		log.Printf("pyls: didChange %s: %v", params.TextDocument.URI, err)
	}
	return nil
}

func (s *Server) handleDidClose(params DidCloseTextDocumentParams) error {
	s.table.CloseDocument(params.TextDocument.URI)
	return nil
}

func (s *Server) handleHover(id interface{}, params HoverParams) error {
	member := s.memberAt(params.TextDocument.URI, params.Position)
	if member == nil {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	}
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result: Hover{
			Contents: MarkupContent{Kind: "markdown", Value: "```python\n" + formatMember(member) + "\n```"},
		},
	})
}

func (s *Server) handleDefinition(id interface{}, params DefinitionParams) error {
	member := s.memberAt(params.TextDocument.URI, params.Position)
	if member == nil {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	}
	loc := member.MemberLocation()
	if loc.IsEmpty() || loc.FilePath == "" {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	}
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  Location{URI: pathToURI(loc.FilePath), Range: spanToRange(loc.Span)},
	})
}

// memberAt resolves the identifier under the cursor against the document's
// published analysis, waiting briefly for an in-flight analysis first.
func (s *Server) memberAt(uri string, pos Position) pytype.Member {
	doc := s.table.GetDocumentByURI(uri)
	if doc == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), analysisWait)
	defer cancel()
	analysis, _ := doc.GetAnalysisWithTimeout(ctx).(*pyanalysis.Analysis)
	if analysis == nil {
		return nil
	}
	name := identifierAt(doc.Text(), pos)
	if name == "" {
		return nil
	}
	if m, ok := analysis.Globals[name]; ok {
		return m
	}
	return nil
}

// identifierAt extracts the Python identifier covering the given 0-based
// LSP position in text.
func identifierAt(text string, pos Position) string {
	lines := strings.Split(text, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := pos.Character
	if col > len(line) {
		col = len(line)
	}
	isIdent := func(b byte) bool {
		return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
	}
	start := col
	for start > 0 && isIdent(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isIdent(line[end]) {
		end++
	}
	if start == end {
		return ""
	}
	return line[start:end]
}

func formatMember(m pytype.Member) string {
	switch v := m.(type) {
	case *pytype.Variable:
		switch t := v.Val.(type) {
		case *pytype.ClassType:
			return formatClass(t)
		case *pytype.FunctionType:
			return formatFunction(t)
		}
		return fmt.Sprintf("%s: %s", v.VarName, typeLabel(v.Val))
	case *pytype.FunctionCallable:
		return formatFunction(v.Fn)
	default:
		return m.MemberName()
	}
}

func formatClass(c *pytype.ClassType) string {
	if len(c.BasesList) == 0 {
		return "class " + c.Name()
	}
	names := make([]string, len(c.BasesList))
	for i, b := range c.BasesList {
		names[i] = b.Name()
	}
	return fmt.Sprintf("class %s(%s)", c.Name(), strings.Join(names, ", "))
}

func formatFunction(f *pytype.FunctionType) string {
	if len(f.Overloads) == 0 {
		return "def " + f.Name() + "(...)"
	}
	o := &f.Overloads[0]
	params := make([]string, 0, len(o.Params))
	for _, p := range o.Params {
		if p.Annotated != nil {
			params = append(params, p.Name+": "+typeLabel(p.Annotated))
		} else {
			params = append(params, p.Name)
		}
	}
	sig := fmt.Sprintf("def %s(%s)", f.Name(), strings.Join(params, ", "))
	if o.ReturnType != nil {
		sig += " -> " + typeLabel(o.ReturnType)
	}
	return sig
}

func typeLabel(t pytype.Type) string {
	if t == nil {
		return "Unknown"
	}
	return t.Name()
}

// publishDiagnostics pushes a document's current diagnostics to the client.
// Invoked from the table's analysis hook, so it runs after both the parse
// and the analysis contributions for a version have landed.
func (s *Server) publishDiagnostics(d *document.Document) {
	diags := d.Diagnostics()
	out := make([]Diagnostic, 0, len(diags))
	for _, dg := range diags {
		out = append(out, Diagnostic{
			Range:    spanToRange(dg.Span),
			Severity: severityToLSP(dg.Severity),
			Code:     string(dg.Code),
			Message:  dg.Message,
			Source:   "pyls",
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.Start.Line != out[j].Range.Start.Line {
			return out[i].Range.Start.Line < out[j].Range.Start.Line
		}
		return out[i].Range.Start.Character < out[j].Range.Start.Character
	})
	if err := s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  PublishDiagnosticsParams{URI: d.URI, Diagnostics: out},
	}); err != nil {
		log.Printf("pyls: publishDiagnostics %s: %v", d.URI, err)
	}
}

func severityToLSP(s diagnostics.Severity) DiagnosticSeverity {
	switch s {
	case diagnostics.SeverityError:
		return SeverityError
	case diagnostics.SeverityWarning:
		return SeverityWarning
	case diagnostics.SeverityInformation:
		return SeverityInfo
	default:
		return SeverityHint
	}
}

// rangeToSpan converts a 0-based LSP range to a 1-based SourceSpan.
func rangeToSpan(r Range) location.SourceSpan {
	return location.SourceSpan{
		Start: location.SourceLocation{Line: r.Start.Line + 1, Column: r.Start.Character + 1},
		End:   location.SourceLocation{Line: r.End.Line + 1, Column: r.End.Character + 1},
	}
}

// spanToRange converts a 1-based SourceSpan to a 0-based LSP range.
func spanToRange(span location.SourceSpan) Range {
	toPos := func(l location.SourceLocation) Position {
		line, col := l.Line-1, l.Column-1
		if line < 0 {
			line = 0
		}
		if col < 0 {
			col = 0
		}
		return Position{Line: line, Character: col}
	}
	return Range{Start: toPos(span.Start), End: toPos(span.End)}
}
