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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oleh-synelnykov/hasten/syntax"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestLoadProgramFollowsImports(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"root.hidl": `
module root;
import "shared/types.hidl";
struct R { 1: shared.Blob b; };
`,
		"shared/types.hidl": `module shared; struct Blob { 1: bytes data; };`,
	})

	program, diags := LoadProgram(filepath.Join(dir, "root.hidl"))
	require.Empty(t, diags)
	require.Equal(t, 2, program.Len())

	files := program.Files()
	require.Equal(t, filepath.Join(dir, "root.hidl"), files[0].Path)
	require.Equal(t, filepath.Join(dir, "shared", "types.hidl"), files[1].Path)
}

func TestLoadProgramImportsResolveAgainstRootDir(t *testing.T) {
	// Both files import by root-relative path even though one lives in a
	// subdirectory.
	dir := writeTree(t, map[string]string{
		"root.hidl": `
module root;
import "sub/a.hidl";
`,
		"sub/a.hidl": `
module a;
import "sub/b.hidl";
`,
		"sub/b.hidl": `module b;`,
	})

	program, diags := LoadProgram(filepath.Join(dir, "root.hidl"))
	require.Empty(t, diags)
	require.Equal(t, 3, program.Len())
}

func TestLoadProgramCyclesAreSkipped(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.hidl": `
module a;
import "b.hidl";
`,
		"b.hidl": `
module b;
import "a.hidl";
`,
	})

	program, diags := LoadProgram(filepath.Join(dir, "a.hidl"))
	require.Empty(t, diags)
	require.Equal(t, 2, program.Len())
}

func TestDuplicateRootIsError(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.hidl": `module a;`,
	})
	loader := NewLoader()
	root := filepath.Join(dir, "a.hidl")
	require.NoError(t, loader.AddRoot(root))
	err := loader.AddRoot(root)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already added")
}

func TestMissingFileIsDiagnosed(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"root.hidl": `
module root;
import "missing.hidl";
`,
	})
	_, diags := LoadProgram(filepath.Join(dir, "root.hidl"))
	require.Len(t, diags, 1)
	require.Equal(t, SeverityError, diags[0].Severity)
	require.Contains(t, diags[0].Message, "Cannot read source file")
}

func TestParseErrorCarriesPosition(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"bad.hidl": "module m;\nstruct F {\n\tbroken\n};\n",
	})
	_, diags := LoadProgram(filepath.Join(dir, "bad.hidl"))
	require.Len(t, diags, 1)
	require.Equal(t, 3, diags[0].Pos.Line)
}

func TestDiagnosticRendering(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityError,
		Path:     "x.hidl",
		Pos:      syntax.Position{Line: 4, Column: 7},
		Message:  "boom",
	}
	require.Equal(t, "x.hidl:4:7: error: boom", d.String())
}

func TestRenderGroupsBySeverity(t *testing.T) {
	diags := []Diagnostic{
		{Severity: SeverityNote, Path: "a", Message: "n"},
		{Severity: SeverityError, Path: "a", Message: "e"},
		{Severity: SeverityWarning, Path: "a", Message: "w"},
	}
	var buf strings.Builder
	Render(&buf, diags)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "error")
	require.Contains(t, lines[1], "warning")
	require.Contains(t, lines[2], "note")
}
