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

package codegen

import (
	"strings"
	"unicode"

	"github.com/oleh-synelnykov/hasten/syntax"
)

// wireShape is the result of the describe_type mapping: which wire type a
// field uses and which value kind the codec should prefer.
type wireShape struct {
	Wire     string // hb1.Wire* constant name
	Kind     string // hb1.Kind* constant name
	Optional bool
}

// describeType maps an IDL type to its wire shape. Optional unwraps to the
// inner type's shape with Optional set; a missing optional field is
// absence, not a sentinel.
func describeType(t syntax.Type) wireShape {
	if opt, ok := t.(*syntax.TypeOptional); ok {
		shape := describeType(opt.Inner)
		shape.Optional = true
		return shape
	}
	switch t := t.(type) {
	case *syntax.TypePrimitive:
		switch t.Kind {
		case syntax.PrimitiveBool,
			syntax.PrimitiveU8, syntax.PrimitiveU16, syntax.PrimitiveU32, syntax.PrimitiveU64:
			return wireShape{Wire: "hb1.WireVarint", Kind: "hb1.KindUnsigned"}
		case syntax.PrimitiveI8, syntax.PrimitiveI16, syntax.PrimitiveI32, syntax.PrimitiveI64:
			return wireShape{Wire: "hb1.WireZigZagVarint", Kind: "hb1.KindSigned"}
		case syntax.PrimitiveF32:
			return wireShape{Wire: "hb1.WireFixed32", Kind: "hb1.KindUnsigned"}
		case syntax.PrimitiveF64:
			return wireShape{Wire: "hb1.WireFixed64", Kind: "hb1.KindUnsigned"}
		case syntax.PrimitiveString:
			return wireShape{Wire: "hb1.WireLengthDelimited", Kind: "hb1.KindString"}
		case syntax.PrimitiveBytes:
			return wireShape{Wire: "hb1.WireLengthDelimited", Kind: "hb1.KindBytes"}
		}
	}
	// User types, vectors, and maps all nest as length-delimited blobs.
	return wireShape{Wire: "hb1.WireLengthDelimited", Kind: "hb1.KindBytes"}
}

var primitiveGoTypes = map[syntax.PrimitiveKind]string{
	syntax.PrimitiveBool:   "bool",
	syntax.PrimitiveI8:     "int8",
	syntax.PrimitiveI16:    "int16",
	syntax.PrimitiveI32:    "int32",
	syntax.PrimitiveI64:    "int64",
	syntax.PrimitiveU8:     "uint8",
	syntax.PrimitiveU16:    "uint16",
	syntax.PrimitiveU32:    "uint32",
	syntax.PrimitiveU64:    "uint64",
	syntax.PrimitiveF32:    "float32",
	syntax.PrimitiveF64:    "float64",
	syntax.PrimitiveString: "string",
	syntax.PrimitiveBytes:  "[]byte",
}

// declKind classifies resolvable user types so the emitter picks between
// struct-message and enum-varint encoding.
type declKind uint8

const (
	declUnknown declKind = iota
	declStruct
	declEnum
	declInterface
)

// declIndex maps fully qualified names to kinds; resolve also looks up a
// single-part name inside the current module.
type declIndex struct {
	byQualified map[string]declKind
}

func buildDeclIndex(unit CompilationUnit) *declIndex {
	idx := &declIndex{byQualified: make(map[string]declKind)}
	for _, module := range unit.Modules {
		for _, s := range module.Structs {
			idx.byQualified[module.Name+"."+s.Name] = declStruct
		}
		for _, e := range module.Enums {
			idx.byQualified[module.Name+"."+e.Name] = declEnum
		}
		for _, i := range module.Interfaces {
			idx.byQualified[module.Name+"."+i.Name] = declInterface
		}
	}
	return idx
}

func (idx *declIndex) resolve(user *syntax.TypeUser, currentModule string) declKind {
	name := user.Name.String()
	if kind, ok := idx.byQualified[name]; ok {
		return kind
	}
	if len(user.Name.Parts) == 1 {
		if kind, ok := idx.byQualified[currentModule+"."+name]; ok {
			return kind
		}
	}
	return declUnknown
}

// goType renders the Go type for an IDL type as seen from currentModule's
// generated package. Cross-module user types qualify with the other
// module's package name (its last namespace part).
func goType(t syntax.Type, currentModule string) string {
	switch t := t.(type) {
	case *syntax.TypePrimitive:
		return primitiveGoTypes[t.Kind]
	case *syntax.TypeUser:
		parts := t.Name.Parts
		if len(parts) == 1 {
			return exportName(parts[0])
		}
		owner := parts[:len(parts)-1]
		if strings.Join(owner, ".") == currentModule {
			return exportName(parts[len(parts)-1])
		}
		return owner[len(owner)-1] + "." + exportName(parts[len(parts)-1])
	case *syntax.TypeVector:
		return "[]" + goType(t.Element, currentModule)
	case *syntax.TypeMap:
		return "map[" + goType(t.Key, currentModule) + "]" + goType(t.Value, currentModule)
	case *syntax.TypeOptional:
		return "*" + goType(t.Inner, currentModule)
	}
	return "any"
}

var goKeywords = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {},
	"default": {}, "defer": {}, "else": {}, "fallthrough": {}, "for": {},
	"func": {}, "go": {}, "goto": {}, "if": {}, "import": {}, "interface": {},
	"map": {}, "package": {}, "range": {}, "return": {}, "select": {},
	"struct": {}, "switch": {}, "type": {}, "var": {},
}

// exportName converts an IDL identifier to an exported Go name:
// "reply_code" -> "ReplyCode".
func exportName(name string) string {
	var out strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			out.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// paramName converts an IDL identifier to an unexported Go name, avoiding
// keywords.
func paramName(name string) string {
	exported := exportName(name)
	out := strings.ToLower(exported[:1]) + exported[1:]
	if _, clash := goKeywords[out]; clash {
		out += "Arg"
	}
	return out
}
