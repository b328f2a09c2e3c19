// Package diagnostics defines the stable, exported diagnostic taxonomy
// shared by the parser-facing collaborator, the analysis
// pipeline, and the LSP front end that publishes them.
package diagnostics

import (
	"fmt"

	"github.com/pymodel/langcore/internal/location"
)

// Code is one of the stable diagnostic code strings. New codes are always
// added, never renamed, since editors may key off them.
type Code string

const (
	CodeUnresolvedImport     Code = "unresolved-import"
	CodeUseBeforeDef         Code = "use-before-def"
	CodeNotCallable          Code = "not-callable"
	CodeParseError           Code = "parse-error"
	CodeMissingInit          Code = "missing-init-py"
	CodeInvalidNarrowing     Code = "invalid-isinstance-narrowing"
	CodeCircularImport       Code = "circular-import"
	CodeUnsupportedModule    Code = "unsupported-module-type"
	CodeStructuralError      Code = "structural-error"
)

// Severity mirrors the LSP DiagnosticSeverity enum.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Tag mirrors the LSP DiagnosticTag enum.
type Tag int

const (
	TagUnnecessary Tag = 1
	TagDeprecated  Tag = 2
)

// Diagnostic is a (message, span, code, severity) tuple plus the file it
// belongs to, so a multi-file analysis pass can file diagnostics against
// any dependency.
type Diagnostic struct {
	File     string
	Span     location.SourceSpan
	Code     Code
	Severity Severity
	Message  string
	Tags     []Tag
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s [%s]", d.File, d.Span.Start.Line, d.Span.Start.Column, d.Message, d.Code)
}

// New builds a Diagnostic; severity defaults to Error when zero-valued.
func New(file string, span location.SourceSpan, code Code, severity Severity, format string, args ...interface{}) *Diagnostic {
	if severity == 0 {
		severity = SeverityError
	}
	return &Diagnostic{
		File:     file,
		Span:     span,
		Code:     code,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	}
}

// UnresolvedImport builds the canonical unresolved-import diagnostic:
// `import no_such_module` produces a Warning carrying CodeUnresolvedImport.
func UnresolvedImport(file string, span location.SourceSpan, moduleName string) *Diagnostic {
	return New(file, span, CodeUnresolvedImport, SeverityWarning, "could not resolve import %q", moduleName)
}
