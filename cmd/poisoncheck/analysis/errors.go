// Package analysis - diagnostics for the guard-discipline checker.
//
// Diagnostics carry file position (file:line:column) and, where we can
// offer one, a concrete suggestion for fixing the finding.
package analysis

import (
	"fmt"
	"go/token"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityWarning marks findings that are suspicious but may be
	// intentional, e.g. a guard that is released but never committed.
	SeverityWarning Severity = iota

	// SeverityError marks findings that are almost certainly bugs,
	// e.g. a guard that is never released on any path.
	SeverityError
)

// String returns "warning" or "error".
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a single checker finding with source position context.
//
// Fields:
//   - File: source file path where the finding occurred
//   - Line, Column: 1-indexed position
//   - Severity: warning or error
//   - Message: human-readable description
//   - Suggestion: optional hint for fixing the finding (empty if none)
//
// Immutable after creation, safe for concurrent use.
type Diagnostic struct {
	File       string
	Line       int
	Column     int
	Severity   Severity
	Message    string
	Suggestion string
}

// String formats the diagnostic as file:line:column: severity: message,
// with the suggestion, if any, appended on its own line.
func (d *Diagnostic) String() string {
	result := fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
	if d.Suggestion != "" {
		result += fmt.Sprintf("\n\tsuggestion: %s", d.Suggestion)
	}
	return result
}

// newDiagnostic creates a Diagnostic positioned at pos.
func newDiagnostic(fset *token.FileSet, pos token.Pos, sev Severity, msg, suggestion string) Diagnostic {
	position := fset.Position(pos)
	return Diagnostic{
		File:       position.Filename,
		Line:       position.Line,
		Column:     position.Column,
		Severity:   sev,
		Message:    msg,
		Suggestion: suggestion,
	}
}
