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

package syntax

import (
	"strings"
)

// Span is a half-open byte range into the source buffer that produced a
// node. Spans stay valid independently of the buffer; resolving one to a
// line/column position requires the buffer again.
type Span struct {
	Start uint32
	Len   uint32
}

func (s Span) End() uint32 {
	return s.Start + s.Len
}

// Position is a 1-based line/column pair for diagnostics.
type Position struct {
	Line   int
	Column int
}

// Position resolves the span's start offset against src. Columns count
// bytes, which matches the ASCII-only identifier rules of the grammar.
func (s Span) Position(src []byte) Position {
	line := 1
	col := 1
	end := int(s.Start)
	if end > len(src) {
		end = len(src)
	}
	for _, c := range src[:end] {
		if c == '\n' {
			line += 1
			col = 1
		} else {
			col += 1
		}
	}
	return Position{Line: line, Column: col}
}

// Node is any AST element that remembers where it came from.
type Node interface {
	Span() Span
}

type QualIdent struct {
	Parts []string
	span  Span
}

func (q QualIdent) Span() Span {
	return q.span
}

func (q QualIdent) String() string {
	return strings.Join(q.Parts, ".")
}

// ---------- types ----------

type PrimitiveKind uint8

const (
	PrimitiveBool PrimitiveKind = iota
	PrimitiveI8
	PrimitiveI16
	PrimitiveI32
	PrimitiveI64
	PrimitiveU8
	PrimitiveU16
	PrimitiveU32
	PrimitiveU64
	PrimitiveF32
	PrimitiveF64
	PrimitiveString
	PrimitiveBytes
)

var primitiveNames = map[PrimitiveKind]string{
	PrimitiveBool:   "bool",
	PrimitiveI8:     "i8",
	PrimitiveI16:    "i16",
	PrimitiveI32:    "i32",
	PrimitiveI64:    "i64",
	PrimitiveU8:     "u8",
	PrimitiveU16:    "u16",
	PrimitiveU32:    "u32",
	PrimitiveU64:    "u64",
	PrimitiveF32:    "f32",
	PrimitiveF64:    "f64",
	PrimitiveString: "string",
	PrimitiveBytes:  "bytes",
}

var primitiveByName = func() map[string]PrimitiveKind {
	m := make(map[string]PrimitiveKind, len(primitiveNames))
	for kind, name := range primitiveNames {
		m[name] = kind
	}
	return m
}()

func (k PrimitiveKind) String() string {
	if name, ok := primitiveNames[k]; ok {
		return name
	}
	return "unknown"
}

// Type is the closed sum over IDL type shapes. Recursive shapes hold their
// element types behind the interface, keeping variant sizes bounded.
type Type interface {
	Node
	isType()
}

type TypePrimitive struct {
	Kind PrimitiveKind
	span Span
}

type TypeUser struct {
	Name QualIdent
}

type TypeVector struct {
	Element Type
	span    Span
}

type TypeMap struct {
	Key   Type
	Value Type
	span  Span
}

type TypeOptional struct {
	Inner Type
	span  Span
}

func (t *TypePrimitive) isType() {}
func (t *TypeUser) isType()      {}
func (t *TypeVector) isType()    {}
func (t *TypeMap) isType()       {}
func (t *TypeOptional) isType()  {}

func (t *TypePrimitive) Span() Span { return t.span }
func (t *TypeUser) Span() Span      { return t.Name.span }
func (t *TypeVector) Span() Span    { return t.span }
func (t *TypeMap) Span() Span       { return t.span }
func (t *TypeOptional) Span() Span  { return t.span }

// TypeString renders a type the way it is written in source, for use in
// diagnostics.
func TypeString(t Type) string {
	switch t := t.(type) {
	case *TypePrimitive:
		return t.Kind.String()
	case *TypeUser:
		return t.Name.String()
	case *TypeVector:
		return "vector<" + TypeString(t.Element) + ">"
	case *TypeMap:
		return "map<" + TypeString(t.Key) + "," + TypeString(t.Value) + ">"
	case *TypeOptional:
		return "optional<" + TypeString(t.Inner) + ">"
	}
	return "?"
}

// ---------- constant values ----------

// ConstValue is the closed sum over constant literal shapes.
type ConstValue interface {
	Node
	isConstValue()
}

type ConstNull struct {
	span Span
}

type ConstBool struct {
	Value bool
	span  Span
}

type ConstInt struct {
	Value int64
	span  Span
}

type ConstFloat struct {
	Value float64
	span  Span
}

type ConstString struct {
	Value string
	span  Span
}

type ConstBytes struct {
	Value []byte
	span  Span
}

// ConstRef is a symbolic reference to another named value. Reserved words
// may appear as path components here.
type ConstRef struct {
	Name QualIdent
}

func (v *ConstNull) isConstValue()   {}
func (v *ConstBool) isConstValue()   {}
func (v *ConstInt) isConstValue()    {}
func (v *ConstFloat) isConstValue()  {}
func (v *ConstString) isConstValue() {}
func (v *ConstBytes) isConstValue()  {}
func (v *ConstRef) isConstValue()    {}

func (v *ConstNull) Span() Span   { return v.span }
func (v *ConstBool) Span() Span   { return v.span }
func (v *ConstInt) Span() Span    { return v.span }
func (v *ConstFloat) Span() Span  { return v.span }
func (v *ConstString) Span() Span { return v.span }
func (v *ConstBytes) Span() Span  { return v.span }
func (v *ConstRef) Span() Span    { return v.Name.span }

// ---------- attributes, fields, parameters ----------

type Attribute struct {
	Name  string
	Value ConstValue // nil for bare [name]
	span  Span
}

func (a Attribute) Span() Span {
	return a.span
}

type Field struct {
	ID      uint64
	Type    Type
	Name    string
	Default ConstValue // nil when absent
	Attrs   []Attribute
	span    Span
}

func (f Field) Span() Span {
	return f.span
}

type Param struct {
	ID      uint64
	Type    Type
	Name    string
	Default ConstValue
	Attrs   []Attribute
	span    Span
}

func (p Param) Span() Span {
	return p.span
}

// ---------- methods ----------

type MethodKind uint8

const (
	MethodRpc MethodKind = iota
	MethodOneway
	MethodStream
	MethodNotify
)

func (k MethodKind) String() string {
	switch k {
	case MethodRpc:
		return "rpc"
	case MethodOneway:
		return "oneway"
	case MethodStream:
		return "stream"
	case MethodNotify:
		return "notify"
	}
	return "unknown"
}

// Result is the closed sum over method result shapes: a bare type, or an
// ordered tuple of named, id-tagged fields.
type Result interface {
	Node
	isResult()
}

type ResultSingle struct {
	Type Type
}

type ResultTuple struct {
	Fields []Field
	span   Span
}

func (r *ResultSingle) isResult() {}
func (r *ResultTuple) isResult()  {}

func (r *ResultSingle) Span() Span { return r.Type.Span() }
func (r *ResultTuple) Span() Span  { return r.span }

type Method struct {
	Kind   MethodKind
	Name   string
	Params []Param
	Result Result // nil when the method has no result clause
	Attrs  []Attribute
	span   Span
}

func (m Method) Span() Span {
	return m.span
}

// ---------- declarations ----------

// Decl is the closed sum over top-level declarations.
type Decl interface {
	Node
	isDecl()
	DeclName() string
}

type ConstDecl struct {
	Type  Type
	Name  string
	Value ConstValue
	span  Span
}

type Enumerator struct {
	Name  string
	Value *int64 // nil when implicit
	Attrs []Attribute
	span  Span
}

func (e Enumerator) Span() Span {
	return e.span
}

type Enum struct {
	Name  string
	Items []Enumerator
	span  Span
}

type Struct struct {
	Name   string
	Fields []Field
	span   Span
}

type Interface struct {
	Name    string
	Methods []Method
	span    Span
}

func (d *ConstDecl) isDecl() {}
func (d *Enum) isDecl()      {}
func (d *Struct) isDecl()    {}
func (d *Interface) isDecl() {}

func (d *ConstDecl) Span() Span { return d.span }
func (d *Enum) Span() Span      { return d.span }
func (d *Struct) Span() Span    { return d.span }
func (d *Interface) Span() Span { return d.span }

func (d *ConstDecl) DeclName() string { return d.Name }
func (d *Enum) DeclName() string      { return d.Name }
func (d *Struct) DeclName() string    { return d.Name }
func (d *Interface) DeclName() string { return d.Name }

// ---------- module ----------

type Import struct {
	Path string
	span Span
}

func (i Import) Span() Span {
	return i.span
}

type Module struct {
	Name    QualIdent
	Imports []Import
	Decls   []Decl
	span    Span
}

func (m *Module) Span() Span {
	return m.span
}
