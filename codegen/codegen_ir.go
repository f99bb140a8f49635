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

// Package codegen lowers validated programs to a flat intermediate
// representation and emits Go bindings plus serialization helpers for the
// HB1 wire format.
package codegen

import (
	"sort"
	"strings"

	"github.com/oleh-synelnykov/hasten/frontend"
	"github.com/oleh-synelnykov/hasten/syntax"
)

// The IR mirrors the AST structurally but drops parser-only detail (source
// spans). Types and constant values are shared with the syntax package;
// they carry no per-parse state.

type Attribute struct {
	Name  string
	Value syntax.ConstValue // nil for bare attributes
}

type Field struct {
	ID         uint64
	Name       string
	Type       syntax.Type
	Default    syntax.ConstValue
	Attributes []Attribute
}

type Struct struct {
	Name   string
	Fields []Field
}

type Enumerator struct {
	Name  string
	Value *int64 // explicit values preserved, implicit left nil
}

type Enum struct {
	Name   string
	Values []Enumerator
}

type Method struct {
	Name         string
	Kind         syntax.MethodKind
	Parameters   []Field
	ResultFields []Field     // tuple results
	ResultType   syntax.Type // single-type results; nil when tuple or absent
	Attributes   []Attribute
}

type Interface struct {
	Name    string
	Methods []Method
}

type Module struct {
	Name           string
	NamespaceParts []string
	Structs        []Struct
	Enums          []Enum
	Interfaces     []Interface
}

// CompilationUnit is the deterministic-order module set: lexicographic by
// module name, so emission is reproducible.
type CompilationUnit struct {
	Modules []Module
}

// Build lowers every parsed file of program. It performs no validation; a
// program that has not passed the compiler may produce an inconsistent
// unit.
func Build(program *frontend.Program) CompilationUnit {
	byName := make(map[string]*Module)
	var names []string

	for _, file := range program.Files() {
		if file.Module == nil {
			continue
		}
		name := file.Module.Name.String()
		module, ok := byName[name]
		if !ok {
			module = &Module{
				Name:           name,
				NamespaceParts: strings.Split(name, "."),
			}
			byName[name] = module
			names = append(names, name)
		}
		lowerDecls(module, file.Module.Decls)
	}

	sort.Strings(names)
	unit := CompilationUnit{Modules: make([]Module, 0, len(names))}
	for _, name := range names {
		unit.Modules = append(unit.Modules, *byName[name])
	}
	return unit
}

func lowerDecls(module *Module, decls []syntax.Decl) {
	for _, decl := range decls {
		switch decl := decl.(type) {
		case *syntax.Struct:
			module.Structs = append(module.Structs, Struct{
				Name:   decl.Name,
				Fields: lowerFields(decl.Fields),
			})
		case *syntax.Enum:
			enum := Enum{Name: decl.Name}
			for _, item := range decl.Items {
				enum.Values = append(enum.Values, Enumerator{
					Name:  item.Name,
					Value: item.Value,
				})
			}
			module.Enums = append(module.Enums, enum)
		case *syntax.Interface:
			iface := Interface{Name: decl.Name}
			for _, method := range decl.Methods {
				iface.Methods = append(iface.Methods, lowerMethod(method))
			}
			module.Interfaces = append(module.Interfaces, iface)
		case *syntax.ConstDecl:
			// Constants are not lowered; neither the IR nor the emitted
			// source has a representation of them.
		}
	}
}

func lowerFields(fields []syntax.Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, Field{
			ID:         f.ID,
			Name:       f.Name,
			Type:       f.Type,
			Default:    f.Default,
			Attributes: lowerAttrs(f.Attrs),
		})
	}
	return out
}

func lowerAttrs(attrs []syntax.Attribute) []Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, Attribute{Name: a.Name, Value: a.Value})
	}
	return out
}

func lowerMethod(method syntax.Method) Method {
	out := Method{
		Name:       method.Name,
		Kind:       method.Kind,
		Attributes: lowerAttrs(method.Attrs),
	}
	for _, p := range method.Params {
		out.Parameters = append(out.Parameters, Field{
			ID:         p.ID,
			Name:       p.Name,
			Type:       p.Type,
			Default:    p.Default,
			Attributes: lowerAttrs(p.Attrs),
		})
	}
	switch result := method.Result.(type) {
	case *syntax.ResultSingle:
		out.ResultType = result.Type
	case *syntax.ResultTuple:
		out.ResultFields = lowerFields(result.Fields)
	}
	return out
}
