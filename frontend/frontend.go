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

// Package frontend reads Hasten IDL source trees. Given a root file it
// follows imports (relative to the root file's directory), parses every
// reachable file once, and collects the result into a Program.
package frontend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oleh-synelnykov/hasten/syntax"
)

// SourceFile is one parsed IDL file. Module is nil when parsing failed; the
// failure is recorded as a diagnostic.
type SourceFile struct {
	Path   string
	Src    []byte
	Module *syntax.Module
}

// Position resolves a span from this file for diagnostics.
func (f *SourceFile) Position(span syntax.Span) syntax.Position {
	return span.Position(f.Src)
}

// Program is the set of parsed files, keyed by cleaned path. Iteration
// order is load order, so downstream passes are deterministic.
type Program struct {
	files map[string]*SourceFile
	order []string
}

func NewProgram() *Program {
	return &Program{files: make(map[string]*SourceFile)}
}

func (p *Program) File(path string) *SourceFile {
	return p.files[filepath.Clean(path)]
}

func (p *Program) Files() []*SourceFile {
	out := make([]*SourceFile, 0, len(p.order))
	for _, path := range p.order {
		out = append(out, p.files[path])
	}
	return out
}

func (p *Program) Len() int {
	return len(p.order)
}

// AddSource parses src and registers it under path without touching the
// filesystem. Imports are not followed.
func (p *Program) AddSource(path string, src []byte) (*SourceFile, error) {
	module, err := syntax.ParseModule(src)
	if err != nil {
		return nil, err
	}
	file := &SourceFile{Path: filepath.Clean(path), Src: src, Module: module}
	p.add(file)
	return file, nil
}

func (p *Program) add(file *SourceFile) {
	p.files[file.Path] = file
	p.order = append(p.order, file.Path)
}

// Loader accumulates one Program from one or more root files.
type Loader struct {
	program *Program
	roots   map[string]struct{}
	diags   []Diagnostic
}

func NewLoader() *Loader {
	return &Loader{
		program: NewProgram(),
		roots:   make(map[string]struct{}),
	}
}

func (l *Loader) Program() *Program {
	return l.program
}

func (l *Loader) Diagnostics() []Diagnostic {
	return l.diags
}

// AddRoot loads rootPath and everything it transitively imports. Import
// paths resolve relative to the root file's directory. A file that was
// already loaded is skipped, which makes import cycles terminate without
// any dedicated graph handling. Adding the same root twice is an error.
func (l *Loader) AddRoot(rootPath string) error {
	rootPath = filepath.Clean(rootPath)
	if _, dup := l.roots[rootPath]; dup {
		return fmt.Errorf("root %q already added", rootPath)
	}
	l.roots[rootPath] = struct{}{}
	l.load(rootPath, filepath.Dir(rootPath))
	return nil
}

func (l *Loader) load(path, rootDir string) {
	path = filepath.Clean(path)
	if _, seen := l.program.files[path]; seen {
		return
	}

	src, err := os.ReadFile(path)
	if err != nil {
		l.diags = append(l.diags, Diagnostic{
			Severity: SeverityError,
			Path:     path,
			Pos:      syntax.Position{Line: 1, Column: 1},
			Message:  fmt.Sprintf("Cannot read source file: %v", err),
		})
		return
	}

	file := &SourceFile{Path: path, Src: src}
	module, err := syntax.ParseModule(src)
	if err != nil {
		l.diags = append(l.diags, parseDiagnostic(file, err))
		l.program.add(file)
		return
	}
	file.Module = module
	l.program.add(file)

	for _, imp := range module.Imports {
		l.load(filepath.Join(rootDir, imp.Path), rootDir)
	}
}

func parseDiagnostic(file *SourceFile, err error) Diagnostic {
	pos := syntax.Position{Line: 1, Column: 1}
	message := err.Error()
	if syntaxErr, ok := err.(*syntax.Error); ok {
		pos = file.Position(syntaxErr.Span())
	}
	return Diagnostic{
		Severity: SeverityError,
		Path:     file.Path,
		Pos:      pos,
		Message:  message,
	}
}

// LoadProgram is the single-root convenience entry point.
func LoadProgram(rootPath string) (*Program, []Diagnostic) {
	loader := NewLoader()
	if err := loader.AddRoot(rootPath); err != nil {
		return loader.Program(), append(loader.Diagnostics(), Diagnostic{
			Severity: SeverityError,
			Path:     rootPath,
			Pos:      syntax.Position{Line: 1, Column: 1},
			Message:  err.Error(),
		})
	}
	return loader.Program(), loader.Diagnostics()
}
