// Copyright (c) 2026 Oleh Synelnykov
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package frontend

import (
	"fmt"
	"io"

	"github.com/oleh-synelnykov/hasten/syntax"
)

type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	}
	return "unknown"
}

// Diagnostic is one message about one source location. The position is
// resolved eagerly so the source buffer does not need to outlive the
// frontend.
type Diagnostic struct {
	Severity Severity
	Path     string
	Pos      syntax.Position
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Path, d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
}

// NewDiagnostic resolves span against file and builds a Diagnostic.
func NewDiagnostic(severity Severity, file *SourceFile, span syntax.Span, message string) Diagnostic {
	return Diagnostic{
		Severity: severity,
		Path:     file.Path,
		Pos:      file.Position(span),
		Message:  message,
	}
}

// HasErrors reports whether any diagnostic is a hard failure.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountBySeverity returns (errors, warnings, notes).
func CountBySeverity(diags []Diagnostic) (int, int, int) {
	var errors, warnings, notes int
	for _, d := range diags {
		switch d.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityNote:
			notes++
		}
	}
	return errors, warnings, notes
}

// Render writes diagnostics grouped by severity: errors, then warnings,
// then notes.
func Render(w io.Writer, diags []Diagnostic) {
	for _, severity := range []Severity{SeverityError, SeverityWarning, SeverityNote} {
		for _, d := range diags {
			if d.Severity == severity {
				fmt.Fprintln(w, d.String())
			}
		}
	}
}
