// Package pyparse is the default document.ParseFunc wired into cmd/pyls
// when no external Python parser is configured. internal/pyast treats the
// real lexer/parser as "assumed available as a library that yields an AST
// and new-line table" and is that contract, not an implementation of
// Python's grammar. This package is a deliberately minimal, line-based
// scanner that covers the shapes a language server's hover/definition/
// diagnostics paths actually exercise (top-level imports, classes,
// functions, and module-level assignments, plus one level of class-body
// members): enough to drive internal/pyanalysis end to end against real
// source without pretending to be a full CPython-grade parser.
package pyparse

import (
	"context"
	"strconv"
	"strings"

	"github.com/pymodel/langcore/internal/diagnostics"
	"github.com/pymodel/langcore/internal/document"
	"github.com/pymodel/langcore/internal/location"
	"github.com/pymodel/langcore/internal/pyast"
)

// New returns a document.ParseFunc backed by this package's scanner, ready
// to hand to modresolver.New's ParseFn slot (and from there to
// rdt.Table.OpenDocument).
func New() document.ParseFunc {
	return func(ctx context.Context, text string) (*pyast.Module, []*diagnostics.Diagnostic) {
		p := newParser(text)
		body := p.statements(0, nil)
		mod := &pyast.Module{Body: body}
		if doc, ok := leadingDocstring(body); ok {
			mod.Docstring = doc
		}
		return mod, p.diags
	}
}

type line struct {
	number int // 1-based
	indent int
	text   string // content with leading indentation stripped, trailing whitespace trimmed
}

type parser struct {
	lines []line
	pos   int
	diags []*diagnostics.Diagnostic
}

func newParser(text string) *parser {
	raw := strings.Split(text, "\n")
	lines := make([]line, 0, len(raw))
	for i, l := range raw {
		trimmed := strings.TrimRight(l, " \t\r")
		stripped := strings.TrimLeft(trimmed, " \t")
		if strings.TrimSpace(stripped) == "" {
			continue // blank lines never carry statements or indentation info
		}
		if strings.HasPrefix(stripped, "#") {
			continue // whole-line comments
		}
		indent := len(trimmed) - len(stripped)
		lines = append(lines, line{number: i + 1, indent: indent, text: stripped})
	}
	return &parser{lines: lines}
}

func (p *parser) peek() (line, bool) {
	if p.pos >= len(p.lines) {
		return line{}, false
	}
	return p.lines[p.pos], true
}

func (p *parser) span(l line) location.SourceSpan {
	loc := location.SourceLocation{Line: l.number, Column: l.indent + 1}
	end := location.SourceLocation{Line: l.number, Column: l.indent + len(l.text) + 1}
	return location.SourceSpan{Start: loc, End: end}
}

// statements scans every statement at exactly indent, stopping once a line
// at a shallower indent is reached (end of this block) or input runs out.
// pendingDecorators carries @decorator lines already consumed by the
// caller for the very first statement of the block (class bodies don't
// have decorators above them the way module-level defs do).
func (p *parser) statements(indent int, pendingDecorators []pyast.Expression) []pyast.Statement {
	var body []pyast.Statement
	var decorators []pyast.Expression
	if len(pendingDecorators) > 0 {
		decorators = pendingDecorators
	}

	for {
		l, ok := p.peek()
		if !ok || l.indent < indent {
			return body
		}
		if l.indent > indent {
			// Orphaned deeper indentation (a block this scanner doesn't
			// recognize at this level) — consume and discard to keep the
			// cursor aligned for the next sibling at `indent`.
			p.skipBlock(indent)
			continue
		}

		switch {
		case strings.HasPrefix(l.text, "@"):
			decorators = append(decorators, p.parseDecorator(l))
			p.pos++

		case strings.HasPrefix(l.text, "import "):
			body = append(body, p.parseImport(l))
			p.pos++

		case strings.HasPrefix(l.text, "from "):
			body = append(body, p.parseFromImport(l))
			p.pos++

		case isClassHeader(l.text):
			stmt := p.parseClass(l, decorators)
			decorators = nil
			body = append(body, stmt)

		case isDefHeader(l.text):
			stmt := p.parseFunc(l, decorators)
			decorators = nil
			body = append(body, stmt)

		case l.text == "pass":
			body = append(body, &pyast.PassStatement{Base: pyast.Base{Span: p.span(l)}})
			p.pos++

		case strings.HasSuffix(l.text, ":"):
			// A control-flow header (if/for/while/try/with/...) this
			// scanner doesn't model as its own statement; its body is
			// skipped rather than guessed at.
			p.pos++
			p.skipBlock(indent)

		default:
			body = append(body, p.parseSimpleStatement(l))
			p.pos++
		}
	}
}

// skipBlock consumes every line more indented than parentIndent, used both
// for recognized-but-unmodeled headers and for stray deeper indentation.
func (p *parser) skipBlock(parentIndent int) {
	for {
		l, ok := p.peek()
		if !ok || l.indent <= parentIndent {
			return
		}
		p.pos++
	}
}

func isClassHeader(text string) bool {
	return text == "class" || strings.HasPrefix(text, "class ") || strings.HasPrefix(text, "class(")
}

func isDefHeader(text string) bool {
	return strings.HasPrefix(text, "def ") || strings.HasPrefix(text, "async def ")
}

func leadingDocstring(body []pyast.Statement) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	if es, ok := body[0].(*pyast.ExprStatement); ok {
		if c, ok := es.Expression.(*pyast.Constant); ok && c.Kind == pyast.ConstStr {
			if s, ok := c.Value.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func (p *parser) parseDecorator(l line) pyast.Expression {
	return parseExpr(strings.TrimPrefix(l.text, "@"), p.span(l))
}

func (p *parser) parseImport(l line) pyast.Statement {
	rest := strings.TrimPrefix(l.text, "import ")
	var names []pyast.ImportAlias
	for _, part := range splitTopLevel(rest, ',') {
		names = append(names, parseAlias(part))
	}
	return &pyast.ImportStatement{Base: pyast.Base{Span: p.span(l)}, Names: names}
}

func (p *parser) parseFromImport(l line) pyast.Statement {
	rest := strings.TrimPrefix(l.text, "from ")
	idx := strings.Index(rest, " import ")
	if idx < 0 {
		return &pyast.ImportFromStatement{Base: pyast.Base{Span: p.span(l)}}
	}
	modPart := strings.TrimSpace(rest[:idx])
	namesPart := strings.TrimSpace(rest[idx+len(" import "):])

	level := 0
	for level < len(modPart) && modPart[level] == '.' {
		level++
	}
	modName := strings.TrimPrefix(modPart, strings.Repeat(".", level))

	stmt := &pyast.ImportFromStatement{Base: pyast.Base{Span: p.span(l)}, Level: level, Module: modName}
	namesPart = strings.Trim(namesPart, "()")
	if strings.TrimSpace(namesPart) == "*" {
		stmt.IsStar = true
		return stmt
	}
	for _, part := range splitTopLevel(namesPart, ',') {
		stmt.Names = append(stmt.Names, parseAlias(part))
	}
	return stmt
}

func parseAlias(part string) pyast.ImportAlias {
	part = strings.TrimSpace(part)
	if idx := strings.Index(part, " as "); idx >= 0 {
		return pyast.ImportAlias{Name: strings.TrimSpace(part[:idx]), AsName: strings.TrimSpace(part[idx+4:])}
	}
	return pyast.ImportAlias{Name: part}
}

func (p *parser) parseClass(l line, decorators []pyast.Expression) pyast.Statement {
	header := strings.TrimSuffix(l.text, ":")
	header = strings.TrimPrefix(header, "class")
	header = strings.TrimSpace(header)

	name := header
	var basesText string
	if idx := strings.Index(header, "("); idx >= 0 && strings.HasSuffix(header, ")") {
		name = strings.TrimSpace(header[:idx])
		basesText = header[idx+1 : len(header)-1]
	}

	stmt := &pyast.ClassDef{Base: pyast.Base{Span: p.span(l)}, Name: name, Decorators: decorators}
	for _, b := range splitTopLevel(basesText, ',') {
		b = strings.TrimSpace(b)
		if b == "" || strings.Contains(b, "=") {
			continue // keyword argument (e.g. metaclass=...), not a base
		}
		stmt.Bases = append(stmt.Bases, parseExpr(b, p.span(l)))
	}

	p.pos++
	stmt.Body = p.statements(l.indent+indentUnit(p), nil)
	if doc, ok := leadingDocstring(stmt.Body); ok {
		stmt.Docstring = doc
	}
	return stmt
}

func (p *parser) parseFunc(l line, decorators []pyast.Expression) pyast.Statement {
	isAsync := strings.HasPrefix(l.text, "async def ")
	header := strings.TrimSuffix(l.text, ":")
	header = strings.TrimPrefix(header, "async ")
	header = strings.TrimPrefix(header, "def ")
	header = strings.TrimSpace(header)

	open := strings.Index(header, "(")
	close := strings.LastIndex(header, ")")
	name := header
	var paramsText, returnsText string
	if open >= 0 && close > open {
		name = strings.TrimSpace(header[:open])
		paramsText = header[open+1 : close]
		returnsText = strings.TrimSpace(header[close+1:])
		returnsText = strings.TrimPrefix(returnsText, "->")
		returnsText = strings.TrimSpace(returnsText)
	}

	stmt := &pyast.FunctionDef{Base: pyast.Base{Span: p.span(l)}, Name: name, Decorators: decorators, IsAsync: isAsync}
	params := parseParams(paramsText, p.span(l))
	if len(params) > 0 && (params[0].Name == "self" || params[0].Name == "cls") {
		stmt.Receiver = &params[0]
		params = params[1:]
	}
	stmt.Params = params
	if returnsText != "" {
		stmt.Returns = parseExpr(returnsText, p.span(l))
	}

	p.pos++
	stmt.Body = p.statements(l.indent+indentUnit(p), nil)
	if doc, ok := leadingDocstring(stmt.Body); ok {
		stmt.Docstring = doc
	}
	return stmt
}

// indentUnit guesses the body's indentation step from the very next
// physical line if one is indented deeper than the header just consumed,
// defaulting to 4 (PEP 8) for an empty body.
func indentUnit(p *parser) int {
	header := p.lines[p.pos-1]
	if l, ok := p.peek(); ok && l.indent > header.indent {
		return l.indent - header.indent
	}
	return 4
}

func parseParams(text string, span location.SourceSpan) []pyast.Parameter {
	var params []pyast.Parameter
	for _, raw := range splitTopLevel(text, ',') {
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "/" || raw == "*" {
			continue
		}
		param := pyast.Parameter{Kind: pyast.ParamPositional}
		switch {
		case strings.HasPrefix(raw, "**"):
			param.Kind = pyast.ParamVarKeyword
			raw = strings.TrimPrefix(raw, "**")
		case strings.HasPrefix(raw, "*"):
			param.Kind = pyast.ParamVarPositional
			raw = strings.TrimPrefix(raw, "*")
		}

		if idx := strings.Index(raw, "="); idx >= 0 {
			param.Default = parseExpr(strings.TrimSpace(raw[idx+1:]), span)
			raw = raw[:idx]
		}
		if idx := strings.Index(raw, ":"); idx >= 0 {
			param.Annotation = parseExpr(strings.TrimSpace(raw[idx+1:]), span)
			raw = raw[:idx]
		}
		param.Name = strings.TrimSpace(raw)
		if param.Name == "" {
			continue
		}
		params = append(params, param)
	}
	return params
}

func (p *parser) parseSimpleStatement(l line) pyast.Statement {
	text := l.text
	span := p.span(l)

	if isStringLiteral(text) {
		return &pyast.ExprStatement{Base: pyast.Base{Span: span}, Expression: parseExpr(text, span)}
	}

	if eq := topLevelAssignSplit(text); len(eq) >= 2 {
		last := eq[len(eq)-1]
		targetsText := eq[:len(eq)-1]

		// `name: Annotation = value` / `name: Annotation` has exactly one
		// target, and that target carries a colon before any `=`.
		if len(targetsText) == 1 {
			if ci := topLevelColon(targetsText[0]); ci >= 0 {
				target := parseExpr(strings.TrimSpace(targetsText[0][:ci]), span)
				ann := parseExpr(strings.TrimSpace(targetsText[0][ci+1:]), span)
				return &pyast.AnnAssignStatement{Base: pyast.Base{Span: span}, Target: target, Annotation: ann, Value: parseExpr(last, span)}
			}
		}

		var targets []pyast.Expression
		for _, t := range targetsText {
			targets = append(targets, parseExpr(strings.TrimSpace(t), span))
		}
		return &pyast.AssignStatement{Base: pyast.Base{Span: span}, Targets: targets, Value: parseExpr(last, span)}
	}

	if ci := topLevelColon(text); ci >= 0 && !strings.Contains(text[:ci], "(") {
		target := parseExpr(strings.TrimSpace(text[:ci]), span)
		ann := parseExpr(strings.TrimSpace(text[ci+1:]), span)
		return &pyast.AnnAssignStatement{Base: pyast.Base{Span: span}, Target: target, Annotation: ann}
	}

	if strings.HasPrefix(text, "return") {
		rest := strings.TrimSpace(strings.TrimPrefix(text, "return"))
		if rest == "" {
			return &pyast.ReturnStatement{Base: pyast.Base{Span: span}}
		}
		return &pyast.ReturnStatement{Base: pyast.Base{Span: span}, Value: parseExpr(rest, span)}
	}

	return &pyast.ExprStatement{Base: pyast.Base{Span: span}, Expression: parseExpr(text, span)}
}

func isStringLiteral(text string) bool {
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return true
		}
	}
	return false
}

// topLevelAssignSplit splits on `=` signs outside of brackets/strings and
// that aren't part of `==`, `!=`, `<=`, `>=`, or `:=`. A non-assignment
// line yields a single-element (or empty) result.
func topLevelAssignSplit(text string) []string {
	depth := 0
	var quote rune
	var parts []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if quote != 0 {
			if runes[i] == quote {
				quote = 0
			}
			continue
		}
		switch runes[i] {
		case '\'', '"':
			quote = runes[i]
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i > 0 && strings.ContainsRune("=!<>:+-*/%", runes[i-1]) {
				continue
			}
			if i+1 < len(runes) && runes[i+1] == '=' {
				continue
			}
			parts = append(parts, string(runes[start:i]))
			start = i + 1
		}
	}
	parts = append(parts, string(runes[start:]))
	if len(parts) < 2 {
		return nil
	}
	return parts
}

func topLevelColon(text string) int {
	depth := 0
	for i, r := range text {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on sep at bracket depth zero, skipping quoted
// sections, used for parameter lists, import lists, and base-class lists.
func splitTopLevel(text string, sep rune) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	depth := 0
	var quote rune
	var parts []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == sep && depth == 0:
			parts = append(parts, string(runes[start:i]))
			start = i + 1
		}
	}
	parts = append(parts, string(runes[start:]))
	return parts
}

// parseExpr is a best-effort expression reader: enough structure
// (identifiers, dotted attributes, subscripted generics, literals, simple
// calls) for annotations, defaults, and decorators to resolve meaningfully,
// falling back to a bare Identifier for anything more exotic so callers
// always get a non-nil Expression.
func parseExpr(text string, span location.SourceSpan) pyast.Expression {
	text = strings.TrimSpace(text)
	if text == "" {
		return &pyast.Identifier{Base: pyast.Base{Span: span}, Value: ""}
	}

	switch text {
	case "None":
		return &pyast.Constant{Base: pyast.Base{Span: span}, Kind: pyast.ConstNone}
	case "True":
		return &pyast.Constant{Base: pyast.Base{Span: span}, Kind: pyast.ConstBool, Value: true}
	case "False":
		return &pyast.Constant{Base: pyast.Base{Span: span}, Kind: pyast.ConstBool, Value: false}
	case "...":
		return &pyast.Constant{Base: pyast.Base{Span: span}, Kind: pyast.ConstEllipsis}
	}

	if isStringLiteral(text) {
		return &pyast.Constant{Base: pyast.Base{Span: span}, Kind: pyast.ConstStr, Value: unquote(text)}
	}
	if n, err := strconv.Atoi(text); err == nil {
		return &pyast.Constant{Base: pyast.Base{Span: span}, Kind: pyast.ConstInt, Value: n}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return &pyast.Constant{Base: pyast.Base{Span: span}, Kind: pyast.ConstFloat, Value: f}
	}

	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		var elems []pyast.Expression
		for _, e := range splitTopLevel(text[1:len(text)-1], ',') {
			if strings.TrimSpace(e) == "" {
				continue
			}
			elems = append(elems, parseExpr(e, span))
		}
		return &pyast.ListExpr{Base: pyast.Base{Span: span}, Elements: elems}
	}

	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		inner := text[1 : len(text)-1]
		parts := splitTopLevel(inner, ',')
		var elems []pyast.Expression
		for _, e := range parts {
			if strings.TrimSpace(e) == "" {
				continue
			}
			elems = append(elems, parseExpr(e, span))
		}
		if len(elems) == 1 && !strings.Contains(inner, ",") {
			return elems[0]
		}
		return &pyast.TupleExpr{Base: pyast.Base{Span: span}, Elements: elems}
	}

	if open := strings.Index(text, "["); open > 0 && strings.HasSuffix(text, "]") {
		base := parseExpr(text[:open], span)
		indexText := text[open+1 : len(text)-1]
		parts := splitTopLevel(indexText, ',')
		var index pyast.Expression
		if len(parts) == 1 {
			index = parseExpr(parts[0], span)
		} else {
			var elems []pyast.Expression
			for _, part := range parts {
				elems = append(elems, parseExpr(part, span))
			}
			index = &pyast.TupleExpr{Base: pyast.Base{Span: span}, Elements: elems}
		}
		return &pyast.SubscriptExpr{Base: pyast.Base{Span: span}, Value: base, Index: index}
	}

	if open := strings.Index(text, "("); open > 0 && strings.HasSuffix(text, ")") {
		fn := parseExpr(text[:open], span)
		var args []pyast.Expression
		for _, a := range splitTopLevel(text[open+1:len(text)-1], ',') {
			a = strings.TrimSpace(a)
			if a == "" || strings.Contains(a, "=") {
				continue // keyword argument, not positional
			}
			args = append(args, parseExpr(a, span))
		}
		return &pyast.Call{Base: pyast.Base{Span: span}, Func: fn, Args: args}
	}

	if dot := strings.LastIndex(text, "."); dot > 0 && isDottedPath(text) {
		return &pyast.Attribute{Base: pyast.Base{Span: span}, Value: parseExpr(text[:dot], span), Attr: text[dot+1:]}
	}

	return &pyast.Identifier{Base: pyast.Base{Span: span}, Value: text}
}

func isDottedPath(text string) bool {
	for _, part := range strings.Split(text, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
				continue
			}
			return false
		}
	}
	return true
}

func unquote(text string) string {
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) {
			return text[len(q) : len(text)-len(q)]
		}
	}
	return text
}
