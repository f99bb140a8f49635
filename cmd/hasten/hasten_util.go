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

package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/oleh-synelnykov/hasten/compiler"
	"github.com/oleh-synelnykov/hasten/frontend"
)

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

var severityStyles = map[frontend.Severity]*pterm.Style{
	frontend.SeverityError:   pterm.NewStyle(pterm.FgRed),
	frontend.SeverityWarning: pterm.NewStyle(pterm.FgYellow),
	frontend.SeverityNote:    pterm.NewStyle(pterm.FgCyan),
}

// printDiagnostics renders diagnostics grouped by severity and returns
// whether any hard error was among them.
func printDiagnostics(diags []frontend.Diagnostic) bool {
	for _, severity := range []frontend.Severity{
		frontend.SeverityError,
		frontend.SeverityWarning,
		frontend.SeverityNote,
	} {
		for _, d := range diags {
			if d.Severity == severity {
				severityStyles[severity].Println(d.String())
			}
		}
	}
	errors, warnings, notes := frontend.CountBySeverity(diags)
	if errors+warnings+notes > 0 {
		pterm.Printf("%d error(s), %d warning(s), %d note(s)\n", errors, warnings, notes)
	}
	return frontend.HasErrors(diags)
}

// compileRoot loads one root file and runs the default validation pipeline.
func compileRoot(root string) (*frontend.Program, []frontend.Diagnostic) {
	program, diags := frontend.LoadProgram(root)
	diags = append(diags, compiler.Validate(program)...)
	return program, diags
}
