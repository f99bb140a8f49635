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
	"bytes"
	"fmt"
	"strings"

	"github.com/oleh-synelnykov/hasten"
	"github.com/oleh-synelnykov/hasten/syntax"
)

// Emit renders one Go source file per module through writer, write-if-
// changed. It returns the generated file names in emission order.
func Emit(unit CompilationUnit, writer *FileWriter) ([]string, error) {
	decls := buildDeclIndex(unit)
	var files []string
	for ii := range unit.Modules {
		module := &unit.Modules[ii]
		name := strings.Join(module.NamespaceParts, "_") + "_hasten.go"
		content := emitModule(module, decls)
		if _, err := writer.Write(name, content); err != nil {
			return files, err
		}
		files = append(files, name)
	}
	return files, nil
}

// EmitModuleSource renders a single module without touching disk. Tests use
// it.
func EmitModuleSource(module *Module, unit CompilationUnit) []byte {
	return emitModule(module, buildDeclIndex(unit))
}

// gen is the per-module generation state: the body buffer, the import set,
// and a counter for unique temporaries.
type gen struct {
	body    bytes.Buffer
	module  *Module
	decls   *declIndex
	indent  int
	n       int
	imports map[string]struct{}
}

func emitModule(module *Module, decls *declIndex) []byte {
	g := &gen{
		module:  module,
		decls:   decls,
		imports: make(map[string]struct{}),
	}

	for ii := range module.Enums {
		g.emitEnum(&module.Enums[ii])
	}
	for ii := range module.Structs {
		s := &module.Structs[ii]
		g.emitMessage(exportName(s.Name), module.Name+"."+s.Name, s.Fields, true)
	}
	for ii := range module.Interfaces {
		g.emitInterface(&module.Interfaces[ii])
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "// Code generated by hasten-codegen. DO NOT EDIT.\n")
	fmt.Fprintf(&out, "// source module: %s\n\n", module.Name)
	fmt.Fprintf(&out, "package %s\n\n", module.NamespaceParts[len(module.NamespaceParts)-1])

	if len(g.imports) > 0 {
		fmt.Fprintf(&out, "import (\n")
		stdPrinted := false
		for _, path := range []string{"bytes", "math"} {
			if _, ok := g.imports[path]; ok {
				fmt.Fprintf(&out, "\t%q\n", path)
				stdPrinted = true
			}
		}
		modulePaths := []string{
			"github.com/oleh-synelnykov/hasten",
			"github.com/oleh-synelnykov/hasten/encoding/hb1",
			"github.com/oleh-synelnykov/hasten/runtime",
		}
		first := true
		for _, path := range modulePaths {
			if _, ok := g.imports[path]; ok {
				if first && stdPrinted {
					fmt.Fprintf(&out, "\n")
				}
				first = false
				fmt.Fprintf(&out, "\t%q\n", path)
			}
		}
		fmt.Fprintf(&out, ")\n\n")
	}

	fmt.Fprintf(&out, "// ModuleID identifies module %q on the wire.\n", module.Name)
	fmt.Fprintf(&out, "const ModuleID uint64 = %#x\n\n", hasten.ModuleID(module.Name))
	out.Write(g.body.Bytes())
	return out.Bytes()
}

func (g *gen) use(path string) {
	g.imports[path] = struct{}{}
}

func (g *gen) p(format string, args ...any) {
	if format != "" {
		g.body.WriteString(strings.Repeat("\t", g.indent))
		fmt.Fprintf(&g.body, format, args...)
	}
	g.body.WriteByte('\n')
}

func (g *gen) tmp(prefix string) string {
	g.n++
	return fmt.Sprintf("%s%d", prefix, g.n)
}

// ---------- enums ----------

func (g *gen) emitEnum(enum *Enum) {
	g.use("github.com/oleh-synelnykov/hasten/encoding/hb1")
	name := exportName(enum.Name)
	g.p("type %s int64", name)
	g.p("")
	g.p("const (")
	g.indent++
	next := int64(0)
	for _, item := range enum.Values {
		value := next
		if item.Value != nil {
			value = *item.Value
		}
		g.p("%s%s %s = %d", name, exportName(item.Name), name, value)
		next = value + 1
	}
	g.indent--
	g.p(")")
	g.p("")
	g.p("// Encode%s renders the enum as its length-delimited wire blob.", name)
	g.p("func Encode%s(v %s) []byte {", name, name)
	g.indent++
	g.p("var buf bytes.Buffer")
	g.p("hb1.NewWriter(&buf).WriteVarint(uint64(v))")
	g.p("return buf.Bytes()")
	g.indent--
	g.p("}")
	g.p("")
	g.p("func Decode%s(data []byte) (%s, error) {", name, name)
	g.indent++
	g.p("u, err := hb1.DecodeVarint(data)")
	g.p("if err != nil {")
	g.p("\treturn 0, err")
	g.p("}")
	g.p("return %s(u), nil", name)
	g.indent--
	g.p("}")
	g.p("")
	g.use("bytes")
}

// ---------- messages (structs and method envelopes) ----------

// emitMessage renders a message-backed Go type plus its descriptor and
// encode/decode helpers. Struct types and tuple-result records are
// exported; method parameter envelopes are not.
func (g *gen) emitMessage(typeName, wireName string, fields []Field, exported bool) {
	g.use("github.com/oleh-synelnykov/hasten/encoding/hb1")
	g.n = 0

	g.p("type %s struct {", typeName)
	g.indent++
	for _, f := range fields {
		g.p("%s %s // id %d", exportName(f.Name), goType(f.Type, g.module.Name), f.ID)
	}
	g.indent--
	g.p("}")
	g.p("")

	descVar := descriptorVar(typeName)
	g.p("var %s = hb1.MessageDescriptor{", descVar)
	g.indent++
	g.p("Name: %q,", wireName)
	g.p("Fields: []hb1.FieldDescriptor{")
	g.indent++
	for _, f := range fields {
		shape := describeType(f.Type)
		if shape.Optional {
			g.p("{ID: %d, WireType: %s, Optional: true, Kind: %s},", f.ID, shape.Wire, shape.Kind)
		} else {
			g.p("{ID: %d, WireType: %s, Kind: %s},", f.ID, shape.Wire, shape.Kind)
		}
	}
	g.indent--
	g.p("},")
	g.indent--
	g.p("}")
	g.p("")

	encodeName := codecFuncName("Encode", typeName, exported)
	decodeName := codecFuncName("Decode", typeName, exported)

	g.p("func %s(v *%s) ([]byte, error) {", encodeName, typeName)
	g.indent++
	if len(fields) == 0 {
		g.p("return hb1.EncodeToBytes(&%s, nil)", descVar)
	} else {
		g.p("var values []hb1.FieldValue")
		for _, f := range fields {
			g.emitFieldEncode(&f, "v."+exportName(f.Name))
		}
		g.p("return hb1.EncodeToBytes(&%s, values)", descVar)
	}
	g.indent--
	g.p("}")
	g.p("")

	g.p("func %s(data []byte) (*%s, error) {", decodeName, typeName)
	g.indent++
	if len(fields) == 0 {
		g.p("if _, err := hb1.DecodeMessage(&%s, data); err != nil {", descVar)
		g.p("\treturn nil, err")
		g.p("}")
		g.p("return &%s{}, nil", typeName)
	} else {
		g.p("values, err := hb1.DecodeMessage(&%s, data)", descVar)
		g.p("if err != nil {")
		g.p("\treturn nil, err")
		g.p("}")
		g.p("out := &%s{}", typeName)
		g.p("for ii := range values {")
		g.indent++
		g.p("fv := &values[ii]")
		g.p("switch fv.ID {")
		for _, f := range fields {
			g.p("case %d:", f.ID)
			g.indent++
			g.emitFieldDecode(&f, "out."+exportName(f.Name))
			g.indent--
		}
		g.p("}")
		g.indent--
		g.p("}")
		g.p("return out, nil")
	}
	g.indent--
	g.p("}")
	g.p("")
}

func descriptorVar(typeName string) string {
	return strings.ToLower(typeName[:1]) + typeName[1:] + "Descriptor"
}

func codecFuncName(verb, typeName string, exported bool) string {
	if exported {
		return verb + typeName
	}
	return strings.ToLower(verb[:1]) + verb[1:] + exportName(typeName)
}

// emitFieldEncode appends one hb1.FieldValue for expr, honoring optional
// absence.
func (g *gen) emitFieldEncode(f *Field, expr string) {
	fieldType := f.Type
	if opt, ok := fieldType.(*syntax.TypeOptional); ok {
		g.p("if %s != nil {", expr)
		g.indent++
		g.emitFieldValue(f.ID, opt.Inner, "(*"+expr+")", expr)
		g.indent--
		g.p("}")
		return
	}
	g.emitFieldValue(f.ID, fieldType, expr, "&"+expr)
}

// emitFieldValue renders the FieldValue append for one non-optional type.
// addrExpr is a *T-typed expression for the same value.
func (g *gen) emitFieldValue(id uint64, t syntax.Type, expr, addrExpr string) {
	switch t := t.(type) {
	case *syntax.TypePrimitive:
		switch t.Kind {
		case syntax.PrimitiveBool:
			u := g.tmp("u")
			g.p("var %s uint64", u)
			g.p("if %s {", expr)
			g.p("\t%s = 1", u)
			g.p("}")
			g.appendValue(id, "hb1.WireVarint", "hb1.UnsignedValue("+u+")")
		case syntax.PrimitiveU8, syntax.PrimitiveU16, syntax.PrimitiveU32, syntax.PrimitiveU64:
			g.appendValue(id, "hb1.WireVarint", "hb1.UnsignedValue(uint64("+expr+"))")
		case syntax.PrimitiveI8, syntax.PrimitiveI16, syntax.PrimitiveI32, syntax.PrimitiveI64:
			g.appendValue(id, "hb1.WireZigZagVarint", "hb1.SignedValue(int64("+expr+"))")
		case syntax.PrimitiveF32:
			g.use("math")
			g.appendValue(id, "hb1.WireFixed32", "hb1.UnsignedValue(uint64(math.Float32bits("+expr+")))")
		case syntax.PrimitiveF64:
			g.use("math")
			g.appendValue(id, "hb1.WireFixed64", "hb1.UnsignedValue(math.Float64bits("+expr+"))")
		case syntax.PrimitiveString:
			g.appendValue(id, "hb1.WireLengthDelimited", "hb1.StringValue("+expr+")")
		case syntax.PrimitiveBytes:
			g.appendValue(id, "hb1.WireLengthDelimited", "hb1.BytesValue("+expr+")")
		}
	case *syntax.TypeUser:
		if g.decls.resolve(t, g.module.Name) == declEnum {
			g.appendValue(id, "hb1.WireLengthDelimited",
				"hb1.BytesValue("+g.userFuncName(t, "Encode")+"("+expr+"))")
			return
		}
		blob := g.tmp("blob")
		g.p("%s, err := %s(%s)", blob, g.userFuncName(t, "Encode"), addrExpr)
		g.p("if err != nil {")
		g.p("\treturn nil, err")
		g.p("}")
		g.appendValue(id, "hb1.WireLengthDelimited", "hb1.BytesValue("+blob+")")
	case *syntax.TypeVector, *syntax.TypeMap:
		g.use("bytes")
		buf := g.tmp("buf")
		ew := g.tmp("ew")
		g.p("var %s bytes.Buffer", buf)
		g.p("%s := hb1.NewWriter(&%s)", ew, buf)
		g.emitContainerEncode(ew, t, expr)
		g.appendValue(id, "hb1.WireLengthDelimited", "hb1.BytesValue("+buf+".Bytes())")
	}
}

func (g *gen) appendValue(id uint64, wire, value string) {
	g.p("values = append(values, hb1.FieldValue{ID: %d, WireType: %s, Value: %s})", id, wire, value)
}

// userFuncName renders Encode/Decode helper references for user types,
// qualifying cross-module names with their generated package.
func (g *gen) userFuncName(t *syntax.TypeUser, verb string) string {
	parts := t.Name.Parts
	local := verb + exportName(parts[len(parts)-1])
	if len(parts) == 1 {
		return local
	}
	owner := strings.Join(parts[:len(parts)-1], ".")
	if owner == g.module.Name {
		return local
	}
	return parts[len(parts)-2] + "." + local
}

// emitContainerEncode writes a vector or map interior through writer ew:
// varint(count) followed by the elements.
func (g *gen) emitContainerEncode(ew string, t syntax.Type, expr string) {
	switch t := t.(type) {
	case *syntax.TypeVector:
		g.checked("%s.WriteVarint(uint64(len(%s)))", ew, expr)
		elem := g.tmp("e")
		g.p("for _, %s := range %s {", elem, expr)
		g.indent++
		g.emitElementEncode(ew, t.Element, elem)
		g.indent--
		g.p("}")
	case *syntax.TypeMap:
		g.checked("%s.WriteVarint(uint64(len(%s)))", ew, expr)
		k := g.tmp("k")
		v := g.tmp("mv")
		g.p("for %s, %s := range %s {", k, v, expr)
		g.indent++
		g.emitElementEncode(ew, t.Key, k)
		g.emitElementEncode(ew, t.Value, v)
		g.indent--
		g.p("}")
	}
}

func (g *gen) checked(format string, args ...any) {
	g.p("if err := "+format+"; err != nil {", args...)
	g.p("\treturn nil, err")
	g.p("}")
}

// emitElementEncode writes one untagged container element.
func (g *gen) emitElementEncode(ew string, t syntax.Type, expr string) {
	switch t := t.(type) {
	case *syntax.TypePrimitive:
		switch t.Kind {
		case syntax.PrimitiveBool:
			u := g.tmp("u")
			g.p("var %s uint64", u)
			g.p("if %s {", expr)
			g.p("\t%s = 1", u)
			g.p("}")
			g.checked("%s.WriteVarint(%s)", ew, u)
		case syntax.PrimitiveU8, syntax.PrimitiveU16, syntax.PrimitiveU32, syntax.PrimitiveU64:
			g.checked("%s.WriteVarint(uint64(%s))", ew, expr)
		case syntax.PrimitiveI8, syntax.PrimitiveI16, syntax.PrimitiveI32, syntax.PrimitiveI64:
			g.checked("%s.WriteZigzag(int64(%s))", ew, expr)
		case syntax.PrimitiveF32:
			g.use("math")
			g.checked("%s.WriteFixed32(math.Float32bits(%s))", ew, expr)
		case syntax.PrimitiveF64:
			g.use("math")
			g.checked("%s.WriteFixed64(math.Float64bits(%s))", ew, expr)
		case syntax.PrimitiveString:
			g.checked("%s.WriteLengthPrefixed([]byte(%s))", ew, expr)
		case syntax.PrimitiveBytes:
			g.checked("%s.WriteLengthPrefixed(%s)", ew, expr)
		}
	case *syntax.TypeUser:
		if g.decls.resolve(t, g.module.Name) == declEnum {
			g.checked("%s.WriteVarint(uint64(%s))", ew, expr)
			return
		}
		blob := g.tmp("blob")
		g.p("%s, err := %s(&%s)", blob, g.userFuncName(t, "Encode"), expr)
		g.p("if err != nil {")
		g.p("\treturn nil, err")
		g.p("}")
		g.checked("%s.WriteLengthPrefixed(%s)", ew, blob)
	case *syntax.TypeVector, *syntax.TypeMap:
		g.emitContainerEncode(ew, t, expr)
	case *syntax.TypeOptional:
		g.p("if %s == nil {", expr)
		g.indent++
		g.checked("%s.WriteVarint(0)", ew)
		g.indent--
		g.p("} else {")
		g.indent++
		g.checked("%s.WriteVarint(1)", ew)
		g.emitElementEncode(ew, t.Inner, "(*"+expr+")")
		g.indent--
		g.p("}")
	}
}

// emitFieldDecode assigns target from fv, honoring optional wrapping.
func (g *gen) emitFieldDecode(f *Field, target string) {
	if opt, ok := f.Type.(*syntax.TypeOptional); ok {
		value := g.emitValueDecode(opt.Inner)
		g.p("%s = &%s", target, value)
		return
	}
	value := g.emitValueDecode(f.Type)
	g.p("%s = %s", target, value)
}

// emitValueDecode decodes a non-optional field value out of fv and returns
// the variable holding it.
func (g *gen) emitValueDecode(t syntax.Type) string {
	out := g.tmp("x")
	switch t := t.(type) {
	case *syntax.TypePrimitive:
		switch t.Kind {
		case syntax.PrimitiveBool:
			g.p("%s := fv.Value.Unsigned != 0", out)
		case syntax.PrimitiveU8, syntax.PrimitiveU16, syntax.PrimitiveU32, syntax.PrimitiveU64:
			g.p("%s := %s(fv.Value.Unsigned)", out, primitiveGoTypes[t.Kind])
		case syntax.PrimitiveI8, syntax.PrimitiveI16, syntax.PrimitiveI32, syntax.PrimitiveI64:
			g.p("%s := %s(fv.Value.Signed)", out, primitiveGoTypes[t.Kind])
		case syntax.PrimitiveF32:
			g.use("math")
			g.p("%s := math.Float32frombits(uint32(fv.Value.Unsigned))", out)
		case syntax.PrimitiveF64:
			g.use("math")
			g.p("%s := math.Float64frombits(fv.Value.Unsigned)", out)
		case syntax.PrimitiveString:
			g.p("%s := fv.Value.Text", out)
		case syntax.PrimitiveBytes:
			g.p("%s := fv.Value.Bytes", out)
		}
	case *syntax.TypeUser:
		if g.decls.resolve(t, g.module.Name) == declEnum {
			g.p("%s, err := %s(fv.Value.Bytes)", out, g.userFuncName(t, "Decode"))
			g.p("if err != nil {")
			g.p("\treturn nil, err")
			g.p("}")
			return out
		}
		ptr := g.tmp("nested")
		g.p("%s, err := %s(fv.Value.Bytes)", ptr, g.userFuncName(t, "Decode"))
		g.p("if err != nil {")
		g.p("\treturn nil, err")
		g.p("}")
		g.p("%s := *%s", out, ptr)
	case *syntax.TypeVector, *syntax.TypeMap:
		er := g.tmp("er")
		g.p("%s := hb1.NewReader(fv.Value.Bytes)", er)
		value := g.emitContainerDecode(er, t)
		g.p("%s := %s", out, value)
	}
	return out
}

// emitContainerDecode reads a vector or map interior from reader er and
// returns the variable holding the decoded container.
func (g *gen) emitContainerDecode(er string, t syntax.Type) string {
	switch t := t.(type) {
	case *syntax.TypeVector:
		n := g.tmp("n")
		out := g.tmp("vec")
		g.p("%s, err := %s.ReadVarint()", n, er)
		g.p("if err != nil {")
		g.p("\treturn nil, err")
		g.p("}")
		g.p("%s := make(%s, 0, int(%s))", out, goType(t, g.module.Name), n)
		loop := g.tmp("ii")
		g.p("for %s := uint64(0); %s < %s; %s++ {", loop, loop, n, loop)
		g.indent++
		elem := g.emitElementDecode(er, t.Element)
		g.p("%s = append(%s, %s)", out, out, elem)
		g.indent--
		g.p("}")
		return out
	case *syntax.TypeMap:
		n := g.tmp("n")
		out := g.tmp("mp")
		g.p("%s, err := %s.ReadVarint()", n, er)
		g.p("if err != nil {")
		g.p("\treturn nil, err")
		g.p("}")
		g.p("%s := make(%s, int(%s))", out, goType(t, g.module.Name), n)
		loop := g.tmp("ii")
		g.p("for %s := uint64(0); %s < %s; %s++ {", loop, loop, n, loop)
		g.indent++
		key := g.emitElementDecode(er, t.Key)
		value := g.emitElementDecode(er, t.Value)
		g.p("%s[%s] = %s", out, key, value)
		g.indent--
		g.p("}")
		return out
	}
	return "nil"
}

// emitElementDecode reads one untagged container element from er and
// returns the variable holding it.
func (g *gen) emitElementDecode(er string, t syntax.Type) string {
	out := g.tmp("e")
	switch t := t.(type) {
	case *syntax.TypePrimitive:
		switch t.Kind {
		case syntax.PrimitiveBool:
			u := g.tmp("u")
			g.p("%s, err := %s.ReadVarint()", u, er)
			g.errCheck()
			g.p("%s := %s != 0", out, u)
		case syntax.PrimitiveU8, syntax.PrimitiveU16, syntax.PrimitiveU32, syntax.PrimitiveU64:
			u := g.tmp("u")
			g.p("%s, err := %s.ReadVarint()", u, er)
			g.errCheck()
			g.p("%s := %s(%s)", out, primitiveGoTypes[t.Kind], u)
		case syntax.PrimitiveI8, syntax.PrimitiveI16, syntax.PrimitiveI32, syntax.PrimitiveI64:
			s := g.tmp("s")
			g.p("%s, err := %s.ReadZigzag()", s, er)
			g.errCheck()
			g.p("%s := %s(%s)", out, primitiveGoTypes[t.Kind], s)
		case syntax.PrimitiveF32:
			g.use("math")
			u := g.tmp("u")
			g.p("%s, err := %s.ReadFixed32()", u, er)
			g.errCheck()
			g.p("%s := math.Float32frombits(%s)", out, u)
		case syntax.PrimitiveF64:
			g.use("math")
			u := g.tmp("u")
			g.p("%s, err := %s.ReadFixed64()", u, er)
			g.errCheck()
			g.p("%s := math.Float64frombits(%s)", out, u)
		case syntax.PrimitiveString:
			b := g.tmp("b")
			g.p("%s, err := %s.ReadLengthPrefixed()", b, er)
			g.errCheck()
			g.p("%s := string(%s)", out, b)
		case syntax.PrimitiveBytes:
			b := g.tmp("b")
			g.p("%s, err := %s.ReadLengthPrefixed()", b, er)
			g.errCheck()
			g.p("%s := append([]byte(nil), %s...)", out, b)
		}
	case *syntax.TypeUser:
		if g.decls.resolve(t, g.module.Name) == declEnum {
			u := g.tmp("u")
			g.p("%s, err := %s.ReadVarint()", u, er)
			g.errCheck()
			g.p("%s := %s(%s)", out, goType(t, g.module.Name), u)
			return out
		}
		b := g.tmp("b")
		ptr := g.tmp("nested")
		g.p("%s, err := %s.ReadLengthPrefixed()", b, er)
		g.errCheck()
		g.p("%s, err := %s(%s)", ptr, g.userFuncName(t, "Decode"), b)
		g.errCheck()
		g.p("%s := *%s", out, ptr)
	case *syntax.TypeVector, *syntax.TypeMap:
		value := g.emitContainerDecode(er, t)
		g.p("%s := %s", out, value)
	case *syntax.TypeOptional:
		flag := g.tmp("flag")
		g.p("%s, err := %s.ReadVarint()", flag, er)
		g.errCheck()
		g.p("var %s %s", out, goType(t, g.module.Name))
		g.p("if %s != 0 {", flag)
		g.indent++
		inner := g.emitElementDecode(er, t.Inner)
		g.p("%s = &%s", out, inner)
		g.indent--
		g.p("}")
	}
	return out
}

func (g *gen) errCheck() {
	g.p("if err != nil {")
	g.p("\treturn nil, err")
	g.p("}")
}
