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

package compiler

import (
	"math"
	"sort"
	"strconv"

	"github.com/oleh-synelnykov/hasten/frontend"
	"github.com/oleh-synelnykov/hasten/syntax"
)

// ModuleIndexPass builds module name -> file and rejects duplicates.
type ModuleIndexPass struct{}

func (p *ModuleIndexPass) Name() string {
	return "module-index"
}

func (p *ModuleIndexPass) Run(ctx *Context) {
	index := ctx.moduleIndex
	clear(index)

	for _, file := range ctx.parsedFiles() {
		moduleName := file.Module.Name.String()
		if prev, dup := index[moduleName]; dup {
			ctx.reportError(file, file.Module,
				"Module '"+moduleName+"' already defined in "+prev.Path)
			continue
		}
		index[moduleName] = file
	}
}

// DeclarationIndexPass builds qualified declaration name -> info and rejects
// duplicates, including cross-file duplicates within one module name.
type DeclarationIndexPass struct{}

func (p *DeclarationIndexPass) Name() string {
	return "declaration-index"
}

func (p *DeclarationIndexPass) Run(ctx *Context) {
	decls := ctx.declIndex
	clear(decls)

	for _, file := range ctx.parsedFiles() {
		moduleName := file.Module.Name.String()
		for _, decl := range file.Module.Decls {
			var kind DeclKind
			switch decl.(type) {
			case *syntax.Struct:
				kind = DeclKindStruct
			case *syntax.Enum:
				kind = DeclKindEnum
			case *syntax.Interface:
				kind = DeclKindInterface
			default:
				continue
			}

			fq := ctx.QualifiedName(moduleName, decl.DeclName())
			if prev, dup := decls[fq]; dup {
				ctx.reportError(file, decl,
					"Declaration '"+fq+"' already defined in "+prev.File.Path)
				continue
			}
			decls[fq] = DeclInfo{Kind: kind, File: file, Decl: decl}
		}
	}
}

// EnumValidationPass checks enumerator name uniqueness.
type EnumValidationPass struct{}

func (p *EnumValidationPass) Name() string {
	return "enum-validation"
}

func (p *EnumValidationPass) Run(ctx *Context) {
	for _, file := range ctx.parsedFiles() {
		for _, decl := range file.Module.Decls {
			enum, ok := decl.(*syntax.Enum)
			if !ok {
				continue
			}
			checkUniqueNames(ctx, file, enum.Items,
				func(e syntax.Enumerator) string { return e.Name },
				"enum '"+enum.Name+"'", "enumerator")
		}
	}
}

// StructValidationPass checks field names, ids, and field types.
type StructValidationPass struct{}

func (p *StructValidationPass) Name() string {
	return "struct-validation"
}

func (p *StructValidationPass) Run(ctx *Context) {
	types := typeValidator{ctx: ctx}
	for _, file := range ctx.parsedFiles() {
		moduleName := file.Module.Name.String()
		for _, decl := range file.Module.Decls {
			structDecl, ok := decl.(*syntax.Struct)
			if !ok {
				continue
			}
			owner := "struct '" + structDecl.Name + "'"
			checkUniqueNames(ctx, file, structDecl.Fields,
				func(f syntax.Field) string { return f.Name }, owner, "field")
			checkIdCollection(ctx, file, structDecl.Fields,
				func(f syntax.Field) uint64 { return f.ID }, owner, "field")
			for _, field := range structDecl.Fields {
				types.validate(field.Type, file, field, moduleName,
					"field '"+field.Name+"' of struct '"+structDecl.Name+"'")
			}
		}
	}
}

// InterfaceValidationPass checks method names, per-method parameter and
// result-tuple names and ids, and all referenced types.
type InterfaceValidationPass struct{}

func (p *InterfaceValidationPass) Name() string {
	return "interface-validation"
}

func (p *InterfaceValidationPass) Run(ctx *Context) {
	types := typeValidator{ctx: ctx}
	for _, file := range ctx.parsedFiles() {
		moduleName := file.Module.Name.String()
		for _, decl := range file.Module.Decls {
			iface, ok := decl.(*syntax.Interface)
			if !ok {
				continue
			}
			interfaceOwner := "interface '" + iface.Name + "'"
			checkUniqueNames(ctx, file, iface.Methods,
				func(m syntax.Method) string { return m.Name }, interfaceOwner, "method")

			for _, method := range iface.Methods {
				methodOwner := "method '" + method.Name + "'"
				checkUniqueNames(ctx, file, method.Params,
					func(p syntax.Param) string { return p.Name }, methodOwner, "parameter")
				checkIdCollection(ctx, file, method.Params,
					func(p syntax.Param) uint64 { return p.ID }, methodOwner, "parameter")
				for _, param := range method.Params {
					types.validate(param.Type, file, param, moduleName,
						"parameter '"+param.Name+"' of method '"+method.Name+"'")
				}

				switch result := method.Result.(type) {
				case nil:
				case *syntax.ResultTuple:
					checkUniqueNames(ctx, file, result.Fields,
						func(f syntax.Field) string { return f.Name }, methodOwner+" result", "field")
					checkIdCollection(ctx, file, result.Fields,
						func(f syntax.Field) uint64 { return f.ID }, methodOwner, "result field")
					for _, field := range result.Fields {
						types.validate(field.Type, file, field, moduleName,
							"result field '"+field.Name+"' of method '"+method.Name+"'")
					}
				case *syntax.ResultSingle:
					types.validate(result.Type, file, method, moduleName,
						"result of method '"+method.Name+"'")
				}
			}
		}
	}
}

// ---------- shared checks ----------

const maxWireId = uint64(math.MaxInt32)

func checkUniqueNames[T syntax.Node](ctx *Context, file *frontend.SourceFile, nodes []T, nameOf func(T) string, ownerLabel, elementKind string) {
	seen := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		name := nameOf(node)
		if _, dup := seen[name]; dup {
			ctx.reportError(file, node,
				"Duplicate "+elementKind+" name '"+name+"' in "+ownerLabel)
			continue
		}
		seen[name] = struct{}{}
	}
}

func checkIdCollection[T syntax.Node](ctx *Context, file *frontend.SourceFile, nodes []T, idOf func(T) uint64, ownerLabel, elementKind string) {
	seen := make(map[uint64]struct{}, len(nodes))
	ordered := make([]T, 0, len(nodes))
	for _, node := range nodes {
		ordered = append(ordered, node)
		checkIdBounds(ctx, file, node, idOf(node), ownerLabel, elementKind)
		id := idOf(node)
		if _, dup := seen[id]; dup {
			ctx.reportError(file, node,
				"Duplicate "+elementKind+" id '"+strconv.FormatUint(id, 10)+"' in "+ownerLabel)
			continue
		}
		seen[id] = struct{}{}
	}

	sort.SliceStable(ordered, func(a, b int) bool {
		return idOf(ordered[a]) < idOf(ordered[b])
	})
	for ii := 1; ii < len(ordered); ii++ {
		prev := idOf(ordered[ii-1])
		current := idOf(ordered[ii])
		if current > prev+1 {
			ctx.reportNote(file, ordered[ii],
				"Gap detected between "+strconv.FormatUint(prev, 10)+" and "+
					strconv.FormatUint(current, 10)+" for "+elementKind+" ids in "+ownerLabel)
		}
	}
}

func checkIdBounds[T syntax.Node](ctx *Context, file *frontend.SourceFile, node T, id uint64, ownerLabel, elementKind string) {
	if id == 0 {
		ctx.reportError(file, node,
			"Invalid "+elementKind+" id '0' in "+ownerLabel+"; ids must start at 1")
		return
	}
	if id > maxWireId {
		ctx.reportError(file, node,
			"Invalid "+elementKind+" id '"+strconv.FormatUint(id, 10)+"' in "+ownerLabel+
				"; maximum allowed value is "+strconv.FormatUint(maxWireId, 10))
	}
}
