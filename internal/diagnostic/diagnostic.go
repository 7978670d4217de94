// Package diagnostic provides error reporting for the ShaderLab compiler.
//
// Diagnostics are collected rather than thrown: recoverable problems are
// appended to a List while compilation continues with degraded output, so
// callers can report every error of a source file at once.
package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic. The numeric
// values follow the language server protocol.
type Severity uint8

const (
	// Error marks output that is degraded or missing.
	Error Severity = iota + 1
	// Warning is a non-blocking issue.
	Warning
	// Information is an informational message.
	Information
	// Hint is a suggestion.
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Information:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Position is a 1-based line/column location.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"character"`
}

// Range represents a range in source code.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code,omitempty"`
	Message  string   `json:"message"`
	Range    Range    `json:"token"`
}

// Error returns a formatted error string.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Message)
}

// List collects diagnostics during compilation.
type List struct {
	diagnostics []Diagnostic
	hasErrors   bool
}

// NewList creates an empty diagnostic list.
func NewList() *List {
	return &List{diagnostics: make([]Diagnostic, 0)}
}

// Add adds a diagnostic to the list.
func (l *List) Add(d Diagnostic) {
	l.diagnostics = append(l.diagnostics, d)
	if d.Severity == Error {
		l.hasErrors = true
	}
}

// Error adds an error diagnostic with a code.
func (l *List) Error(code Code, r Range, message string) {
	l.Add(Diagnostic{Severity: Error, Code: code, Message: message, Range: r})
}

// Errorf adds an error diagnostic with a formatted message.
func (l *List) Errorf(code Code, r Range, format string, args ...any) {
	l.Error(code, r, fmt.Sprintf(format, args...))
}

// Warning adds a warning diagnostic.
func (l *List) Warning(code Code, r Range, message string) {
	l.Add(Diagnostic{Severity: Warning, Code: code, Message: message, Range: r})
}

// HasErrors returns true if there are any error-level diagnostics.
func (l *List) HasErrors() bool {
	return l.hasErrors
}

// Diagnostics returns all collected diagnostics in the order they were added.
func (l *List) Diagnostics() []Diagnostic {
	return l.diagnostics
}

// Errors returns only error-level diagnostics.
func (l *List) Errors() []Diagnostic {
	var errors []Diagnostic
	for _, d := range l.diagnostics {
		if d.Severity == Error {
			errors = append(errors, d)
		}
	}
	return errors
}

// Count returns the total number of diagnostics.
func (l *List) Count() int {
	return len(l.diagnostics)
}

// Format formats all diagnostics as a human-readable string with source
// context taken from source.
func (l *List) Format(source string) string {
	if len(l.diagnostics) == 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	var sb strings.Builder
	for i := range l.diagnostics {
		sb.WriteString(formatDiagnostic(&l.diagnostics[i], lines))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatDiagnostic formats a single diagnostic with source context.
func FormatDiagnostic(d *Diagnostic, source string) string {
	return formatDiagnostic(d, strings.Split(source, "\n"))
}

func formatDiagnostic(d *Diagnostic, lines []string) string {
	var sb strings.Builder

	if d.Code != "" {
		sb.WriteString(fmt.Sprintf("%d:%d: %s[%s]: %s\n",
			d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Code, d.Message))
	} else {
		sb.WriteString(fmt.Sprintf("%d:%d: %s: %s\n",
			d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Message))
	}

	line := d.Range.Start.Line
	if line < 1 || line > len(lines) {
		return sb.String()
	}
	sourceLine := strings.TrimRight(lines[line-1], "\r")
	if sourceLine == "" {
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("    %s\n", sourceLine))

	col := d.Range.Start.Column
	if col < 1 {
		col = 1
	}
	caret := strings.Repeat(" ", col-1+4) + "^"
	if d.Range.End.Line == d.Range.Start.Line && d.Range.End.Column > col+1 {
		caret += strings.Repeat("~", d.Range.End.Column-col-1)
	}
	sb.WriteString(caret)
	sb.WriteByte('\n')
	return sb.String()
}

// Code identifies a diagnostic kind.
type Code string

const (
	// Symbol errors (E01xx)
	CodeUndefinedSymbol Code = "E0100"
	CodeDuplicateEntry  Code = "E0101"

	// Type errors (E02xx)
	CodeNoSuchMember Code = "E0206"

	// Declaration errors (E03xx)
	CodeInvalidInitializer Code = "E0301"

	// Entry point errors (E06xx)
	CodeMissingEntryPoint Code = "E0600"
	CodeInvalidShaderIO   Code = "E0602"

	// Render state errors (E09xx)
	CodeUnknownRenderStateKey   Code = "E0900"
	CodeUnknownRenderStateValue Code = "E0901"
	CodeUnknownRenderState      Code = "E0902"
)
