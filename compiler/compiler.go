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

// Package compiler validates a parsed Program with a pipeline of semantic
// passes. Passes collect diagnostics instead of failing fast, so one run
// reports every problem it can find.
package compiler

import (
	"github.com/oleh-synelnykov/hasten/frontend"
	"github.com/oleh-synelnykov/hasten/syntax"
)

type DeclKind uint8

const (
	DeclKindStruct DeclKind = iota
	DeclKindEnum
	DeclKindInterface
)

func (k DeclKind) String() string {
	switch k {
	case DeclKindStruct:
		return "struct"
	case DeclKindEnum:
		return "enum"
	case DeclKindInterface:
		return "interface"
	}
	return "unknown"
}

// DeclInfo is one entry of the qualified-declaration index.
type DeclInfo struct {
	Kind DeclKind
	File *frontend.SourceFile
	Decl syntax.Decl
}

// Pass is one stateless validation stage. Passes may read indexes built by
// earlier passes out of the shared Context.
type Pass interface {
	Name() string
	Run(*Context)
}

// DefaultPasses returns the standard pipeline, in order.
func DefaultPasses() []Pass {
	return []Pass{
		&ModuleIndexPass{},
		&DeclarationIndexPass{},
		&EnumValidationPass{},
		&StructValidationPass{},
		&InterfaceValidationPass{},
	}
}

// Validate runs the default pipeline over program.
func Validate(program *frontend.Program) []frontend.Diagnostic {
	return ValidateWith(program, DefaultPasses())
}

// ValidateWith runs a custom pipeline. Each call starts from a fresh
// Context, so repeated validation of the same program yields the same
// diagnostics.
func ValidateWith(program *frontend.Program, passes []Pass) []frontend.Diagnostic {
	ctx := &Context{
		program:     program,
		moduleIndex: make(map[string]*frontend.SourceFile),
		declIndex:   make(map[string]DeclInfo),
	}
	for _, pass := range passes {
		pass.Run(ctx)
	}
	return ctx.diags
}

// Context carries the program, the collected diagnostics, and the indexes
// shared between passes. The validator has no other state.
type Context struct {
	program     *frontend.Program
	diags       []frontend.Diagnostic
	moduleIndex map[string]*frontend.SourceFile
	declIndex   map[string]DeclInfo
}

func (c *Context) Program() *frontend.Program {
	return c.program
}

func (c *Context) Diagnostics() []frontend.Diagnostic {
	return c.diags
}

func (c *Context) ModuleIndex() map[string]*frontend.SourceFile {
	return c.moduleIndex
}

func (c *Context) DeclarationIndex() map[string]DeclInfo {
	return c.declIndex
}

func (c *Context) QualifiedName(moduleName, declName string) string {
	return moduleName + "." + declName
}

func (c *Context) reportError(file *frontend.SourceFile, node syntax.Node, message string) {
	c.report(frontend.SeverityError, file, node, message)
}

func (c *Context) reportWarning(file *frontend.SourceFile, node syntax.Node, message string) {
	c.report(frontend.SeverityWarning, file, node, message)
}

func (c *Context) reportNote(file *frontend.SourceFile, node syntax.Node, message string) {
	c.report(frontend.SeverityNote, file, node, message)
}

func (c *Context) report(severity frontend.Severity, file *frontend.SourceFile, node syntax.Node, message string) {
	c.diags = append(c.diags, frontend.NewDiagnostic(severity, file, node.Span(), message))
}

// resolveUserType looks a user type up by its exact qualified name first,
// then falls back to the declaring module for single-part names. An
// unresolved type is reported and nil returned.
func (c *Context) resolveUserType(user *syntax.TypeUser, moduleName string, file *frontend.SourceFile, usage string) *DeclInfo {
	name := user.Name.String()
	if info, ok := c.declIndex[name]; ok {
		return &info
	}
	if len(user.Name.Parts) == 1 {
		if info, ok := c.declIndex[c.QualifiedName(moduleName, name)]; ok {
			return &info
		}
	}
	c.reportError(file, user, "Unknown type '"+name+"' referenced in "+usage)
	return nil
}

// parsedFiles yields the files that survived parsing.
func (c *Context) parsedFiles() []*frontend.SourceFile {
	var out []*frontend.SourceFile
	for _, file := range c.program.Files() {
		if file.Module != nil {
			out = append(out, file)
		}
	}
	return out
}
