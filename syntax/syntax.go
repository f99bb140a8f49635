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

// Package syntax tokenizes and parses Hasten IDL source into a
// position-tagged AST. Parsing stops at the first syntax error; semantic
// checks live elsewhere.
package syntax

import (
	"strconv"
	"strings"
)

var reservedWords = map[string]struct{}{
	"module": {}, "import": {}, "interface": {}, "struct": {}, "enum": {},
	"const": {}, "rpc": {}, "oneway": {}, "stream": {}, "notify": {},
	"vector": {}, "map": {}, "optional": {}, "null": {}, "true": {}, "false": {},
	"bool": {}, "i8": {}, "i16": {}, "i32": {}, "i64": {},
	"u8": {}, "u16": {}, "u32": {}, "u64": {}, "f32": {}, "f64": {},
	"string": {}, "bytes": {},
}

var methodKinds = map[string]MethodKind{
	"rpc":    MethodRpc,
	"oneway": MethodOneway,
	"stream": MethodStream,
	"notify": MethodNotify,
}

func IsReserved(name string) bool {
	_, ok := reservedWords[name]
	return ok
}

// ParseModule parses one source file into a Module.
func ParseModule(src []byte) (*Module, error) {
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseModule()
}

type parser struct {
	src     []byte
	tokens  *Tokens
	tok     Token
	prevEnd uint32
}

func (p *parser) advance() error {
	p.prevEnd = p.tok.Start + p.tok.Len
	return p.tokens.Next(&p.tok)
}

func (p *parser) text() string {
	return string(p.src[p.tok.Start : p.tok.Start+p.tok.Len])
}

func (p *parser) at(kind TokenKind) bool {
	return p.tok.Kind == kind
}

func (p *parser) atKeyword(keyword string) bool {
	return p.tok.Kind == T_IDENT && p.text() == keyword
}

func (p *parser) spanFrom(start uint32) Span {
	return Span{Start: start, Len: p.prevEnd - start}
}

func (p *parser) expectSigil(kind TokenKind) error {
	if p.tok.Kind != kind {
		return errExpectedSigil(kind, p.tok.Kind, p.text(), p.tok.Span())
	}
	return p.advance()
}

func (p *parser) trySigil(kind TokenKind) (bool, error) {
	if p.tok.Kind != kind {
		return false, nil
	}
	return true, p.advance()
}

func (p *parser) expectKeyword(keyword string) error {
	if !p.atKeyword(keyword) {
		return errExpectedKeyword(keyword, p.tok.Kind, p.text(), p.tok.Span())
	}
	return p.advance()
}

// name parses an identifier that names a declaration or member; reserved
// words are rejected.
func (p *parser) name() (string, error) {
	if p.tok.Kind != T_IDENT {
		return "", errExpectedIdent(p.tok.Kind, p.text(), p.tok.Span())
	}
	text := p.text()
	if IsReserved(text) {
		return "", errReservedWord(text, p.tok.Span())
	}
	return text, p.advance()
}

func (p *parser) qualIdent(allowReserved bool) (QualIdent, error) {
	start := p.tok.Start
	var parts []string
	for {
		if p.tok.Kind != T_IDENT {
			return QualIdent{}, errExpectedIdent(p.tok.Kind, p.text(), p.tok.Span())
		}
		text := p.text()
		if !allowReserved && IsReserved(text) {
			return QualIdent{}, errReservedWord(text, p.tok.Span())
		}
		parts = append(parts, text)
		if err := p.advance(); err != nil {
			return QualIdent{}, err
		}
		if ok, err := p.trySigil(T_DOT); err != nil {
			return QualIdent{}, err
		} else if !ok {
			break
		}
	}
	return QualIdent{Parts: parts, span: p.spanFrom(start)}, nil
}

func (p *parser) parseModule() (*Module, error) {
	start := p.tok.Start
	if err := p.expectKeyword("module"); err != nil {
		return nil, err
	}
	name, err := p.qualIdent(false)
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_SEMI); err != nil {
		return nil, err
	}

	module := &Module{Name: name}
	for p.atKeyword("import") {
		imp, err := p.parseImport()
		if err != nil {
			return nil, err
		}
		module.Imports = append(module.Imports, imp)
	}

	for !p.at(T_EOF) {
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		module.Decls = append(module.Decls, decl)
	}
	module.span = p.spanFrom(start)
	return module, nil
}

func (p *parser) parseImport() (Import, error) {
	start := p.tok.Start
	if err := p.expectKeyword("import"); err != nil {
		return Import{}, err
	}
	if p.tok.Kind != T_TEXT_LIT {
		return Import{}, errExpectedTextLit(p.tok.Kind, p.text(), p.tok.Span())
	}
	path, err := decodeTextLit(p.text(), p.tok.Span())
	if err != nil {
		return Import{}, err
	}
	if err := p.advance(); err != nil {
		return Import{}, err
	}
	if err := p.expectSigil(T_SEMI); err != nil {
		return Import{}, err
	}
	return Import{Path: path, span: p.spanFrom(start)}, nil
}

func (p *parser) parseDecl() (Decl, error) {
	if p.tok.Kind != T_IDENT {
		return nil, errExpectedDeclaration(p.tok.Kind, p.text(), p.tok.Span())
	}
	switch p.text() {
	case "const":
		return p.parseConstDecl()
	case "enum":
		return p.parseEnum()
	case "struct":
		return p.parseStruct()
	case "interface":
		return p.parseInterface()
	}
	return nil, errExpectedDeclaration(p.tok.Kind, p.text(), p.tok.Span())
}

func (p *parser) parseConstDecl() (*ConstDecl, error) {
	start := p.tok.Start
	if err := p.expectKeyword("const"); err != nil {
		return nil, err
	}
	constType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_EQ); err != nil {
		return nil, err
	}
	value, err := p.parseConstValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_SEMI); err != nil {
		return nil, err
	}
	return &ConstDecl{
		Type:  constType,
		Name:  name,
		Value: value,
		span:  p.spanFrom(start),
	}, nil
}

func (p *parser) parseEnum() (*Enum, error) {
	start := p.tok.Start
	if err := p.expectKeyword("enum"); err != nil {
		return nil, err
	}
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_OPEN_CURL); err != nil {
		return nil, err
	}

	var items []Enumerator
	for !p.at(T_CLOSE_CURL) {
		item, err := p.parseEnumItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if ok, err := p.trySigil(T_COMMA); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if err := p.expectSigil(T_CLOSE_CURL); err != nil {
		return nil, err
	}
	if _, err := p.trySigil(T_SEMI); err != nil {
		return nil, err
	}
	return &Enum{Name: name, Items: items, span: p.spanFrom(start)}, nil
}

func (p *parser) parseEnumItem() (Enumerator, error) {
	start := p.tok.Start
	name, err := p.name()
	if err != nil {
		return Enumerator{}, err
	}

	var value *int64
	if ok, err := p.trySigil(T_EQ); err != nil {
		return Enumerator{}, err
	} else if ok {
		if p.tok.Kind != T_INT_LIT {
			return Enumerator{}, errExpectedIntLit(p.tok.Kind, p.text(), p.tok.Span())
		}
		v, err := parseIntText(p.text(), p.tok.Span())
		if err != nil {
			return Enumerator{}, err
		}
		value = &v
		if err := p.advance(); err != nil {
			return Enumerator{}, err
		}
	}

	attrs, err := p.parseAttrList()
	if err != nil {
		return Enumerator{}, err
	}
	return Enumerator{
		Name:  name,
		Value: value,
		Attrs: attrs,
		span:  p.spanFrom(start),
	}, nil
}

func (p *parser) parseStruct() (*Struct, error) {
	start := p.tok.Start
	if err := p.expectKeyword("struct"); err != nil {
		return nil, err
	}
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_OPEN_CURL); err != nil {
		return nil, err
	}

	var fields []Field
	for !p.at(T_CLOSE_CURL) {
		field, err := p.parseField(true)
		if err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_SEMI); err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	if err := p.expectSigil(T_CLOSE_CURL); err != nil {
		return nil, err
	}
	if _, err := p.trySigil(T_SEMI); err != nil {
		return nil, err
	}
	return &Struct{Name: name, Fields: fields, span: p.spanFrom(start)}, nil
}

// parseField parses "id : Type name [= const] [attrs]". Defaults are
// accepted only where withDefault allows (struct fields and parameters, not
// result tuples).
func (p *parser) parseField(withDefault bool) (Field, error) {
	start := p.tok.Start
	id, err := p.parseFieldID()
	if err != nil {
		return Field{}, err
	}
	if err := p.expectSigil(T_COLON); err != nil {
		return Field{}, err
	}
	fieldType, err := p.parseType()
	if err != nil {
		return Field{}, err
	}
	name, err := p.name()
	if err != nil {
		return Field{}, err
	}

	var defaultValue ConstValue
	if withDefault {
		if ok, err := p.trySigil(T_EQ); err != nil {
			return Field{}, err
		} else if ok {
			defaultValue, err = p.parseConstValue()
			if err != nil {
				return Field{}, err
			}
		}
	}

	attrs, err := p.parseAttrList()
	if err != nil {
		return Field{}, err
	}
	return Field{
		ID:      id,
		Type:    fieldType,
		Name:    name,
		Default: defaultValue,
		Attrs:   attrs,
		span:    p.spanFrom(start),
	}, nil
}

func (p *parser) parseFieldID() (uint64, error) {
	if p.tok.Kind != T_INT_LIT {
		return 0, errExpectedIntLit(p.tok.Kind, p.text(), p.tok.Span())
	}
	text := p.text()
	if strings.HasPrefix(text, "-") {
		return 0, errFieldIdNegative(text, p.tok.Span())
	}
	id, err := parseUintText(text, p.tok.Span())
	if err != nil {
		return 0, err
	}
	return id, p.advance()
}

func (p *parser) parseInterface() (*Interface, error) {
	start := p.tok.Start
	if err := p.expectKeyword("interface"); err != nil {
		return nil, err
	}
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_OPEN_CURL); err != nil {
		return nil, err
	}

	var methods []Method
	for !p.at(T_CLOSE_CURL) {
		method, err := p.parseMethod()
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if err := p.expectSigil(T_CLOSE_CURL); err != nil {
		return nil, err
	}
	if _, err := p.trySigil(T_SEMI); err != nil {
		return nil, err
	}
	return &Interface{Name: name, Methods: methods, span: p.spanFrom(start)}, nil
}

func (p *parser) parseMethod() (Method, error) {
	start := p.tok.Start
	if p.tok.Kind != T_IDENT {
		return Method{}, errExpectedMethodKind(p.tok.Kind, p.text(), p.tok.Span())
	}
	kind, ok := methodKinds[p.text()]
	if !ok {
		return Method{}, errExpectedMethodKind(p.tok.Kind, p.text(), p.tok.Span())
	}
	if err := p.advance(); err != nil {
		return Method{}, err
	}

	name, err := p.name()
	if err != nil {
		return Method{}, err
	}
	if err := p.expectSigil(T_OPEN_PAREN); err != nil {
		return Method{}, err
	}

	var params []Param
	for !p.at(T_CLOSE_PAREN) {
		field, err := p.parseField(true)
		if err != nil {
			return Method{}, err
		}
		params = append(params, Param{
			ID:      field.ID,
			Type:    field.Type,
			Name:    field.Name,
			Default: field.Default,
			Attrs:   field.Attrs,
			span:    field.span,
		})
		if ok, err := p.trySigil(T_COMMA); err != nil {
			return Method{}, err
		} else if !ok {
			break
		}
	}
	if err := p.expectSigil(T_CLOSE_PAREN); err != nil {
		return Method{}, err
	}

	var result Result
	if ok, err := p.trySigil(T_ARROW); err != nil {
		return Method{}, err
	} else if ok {
		result, err = p.parseResult()
		if err != nil {
			return Method{}, err
		}
	}

	attrs, err := p.parseAttrList()
	if err != nil {
		return Method{}, err
	}
	if err := p.expectSigil(T_SEMI); err != nil {
		return Method{}, err
	}
	return Method{
		Kind:   kind,
		Name:   name,
		Params: params,
		Result: result,
		Attrs:  attrs,
		span:   p.spanFrom(start),
	}, nil
}

func (p *parser) parseResult() (Result, error) {
	start := p.tok.Start
	if ok, err := p.trySigil(T_OPEN_PAREN); err != nil {
		return nil, err
	} else if !ok {
		resultType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &ResultSingle{Type: resultType}, nil
	}

	var fields []Field
	for {
		field, err := p.parseField(false)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		if ok, err := p.trySigil(T_COMMA); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if err := p.expectSigil(T_CLOSE_PAREN); err != nil {
		return nil, err
	}
	return &ResultTuple{Fields: fields, span: p.spanFrom(start)}, nil
}

func (p *parser) parseType() (Type, error) {
	if p.tok.Kind != T_IDENT {
		return nil, errExpectedType(p.tok.Kind, p.text(), p.tok.Span())
	}
	start := p.tok.Start
	text := p.text()

	if kind, ok := primitiveByName[text]; ok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &TypePrimitive{Kind: kind, span: p.spanFrom(start)}, nil
	}

	switch text {
	case "vector":
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_LT); err != nil {
			return nil, err
		}
		element, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_GT); err != nil {
			return nil, err
		}
		return &TypeVector{Element: element, span: p.spanFrom(start)}, nil
	case "map":
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_LT); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_COMMA); err != nil {
			return nil, err
		}
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_GT); err != nil {
			return nil, err
		}
		return &TypeMap{Key: key, Value: value, span: p.spanFrom(start)}, nil
	case "optional":
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_LT); err != nil {
			return nil, err
		}
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_GT); err != nil {
			return nil, err
		}
		return &TypeOptional{Inner: inner, span: p.spanFrom(start)}, nil
	}

	if IsReserved(text) {
		return nil, errExpectedType(p.tok.Kind, text, p.tok.Span())
	}
	name, err := p.qualIdent(false)
	if err != nil {
		return nil, err
	}
	return &TypeUser{Name: name}, nil
}

func (p *parser) parseAttrList() ([]Attribute, error) {
	if ok, err := p.trySigil(T_OPEN_SQUARE); err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}

	var attrs []Attribute
	for {
		start := p.tok.Start
		if p.tok.Kind != T_IDENT {
			return nil, errExpectedIdent(p.tok.Kind, p.text(), p.tok.Span())
		}
		name := p.text()
		if err := p.advance(); err != nil {
			return nil, err
		}

		var value ConstValue
		if ok, err := p.trySigil(T_EQ); err != nil {
			return nil, err
		} else if ok {
			value, err = p.parseConstValue()
			if err != nil {
				return nil, err
			}
		}
		attrs = append(attrs, Attribute{Name: name, Value: value, span: p.spanFrom(start)})

		if ok, err := p.trySigil(T_COMMA); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if err := p.expectSigil(T_CLOSE_SQUARE); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (p *parser) parseConstValue() (ConstValue, error) {
	span := p.tok.Span()
	switch p.tok.Kind {
	case T_INT_LIT:
		value, err := parseIntText(p.text(), span)
		if err != nil {
			return nil, err
		}
		return &ConstInt{Value: value, span: span}, p.advance()
	case T_FLOAT_LIT:
		value, err := strconv.ParseFloat(p.text(), 64)
		if err != nil {
			return nil, errFloatLitInvalid(p.text(), span)
		}
		return &ConstFloat{Value: value, span: span}, p.advance()
	case T_TEXT_LIT:
		value, err := decodeTextLit(p.text(), span)
		if err != nil {
			return nil, err
		}
		return &ConstString{Value: value, span: span}, p.advance()
	case T_BYTES_LIT:
		value, err := decodeBytesLit(p.text(), span)
		if err != nil {
			return nil, err
		}
		return &ConstBytes{Value: value, span: span}, p.advance()
	case T_IDENT:
		switch p.text() {
		case "null":
			return &ConstNull{span: span}, p.advance()
		case "true":
			return &ConstBool{Value: true, span: span}, p.advance()
		case "false":
			return &ConstBool{Value: false, span: span}, p.advance()
		}
		// Reserved words are legal as symbolic reference components.
		name, err := p.qualIdent(true)
		if err != nil {
			return nil, err
		}
		return &ConstRef{Name: name}, nil
	}
	return nil, errExpectedConstValue(p.tok.Kind, p.text(), span)
}

// ---------- literal decoding ----------

func parseIntText(text string, span Span) (int64, error) {
	neg := false
	digits := text
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x"), strings.HasPrefix(digits, "0X"):
		base = 16
		digits = digits[2:]
	case strings.HasPrefix(digits, "0b"), strings.HasPrefix(digits, "0B"):
		base = 2
		digits = digits[2:]
	case strings.HasPrefix(digits, "0o"), strings.HasPrefix(digits, "0O"):
		base = 8
		digits = digits[2:]
	}
	if neg {
		digits = "-" + digits
	}
	value, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		if neg {
			return 0, errIntLitTooNegative(text, span)
		}
		return 0, errIntLitTooPositive(text, span)
	}
	return value, nil
}

func parseUintText(text string, span Span) (uint64, error) {
	digits := text
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x"), strings.HasPrefix(digits, "0X"):
		base = 16
		digits = digits[2:]
	case strings.HasPrefix(digits, "0b"), strings.HasPrefix(digits, "0B"):
		base = 2
		digits = digits[2:]
	case strings.HasPrefix(digits, "0o"), strings.HasPrefix(digits, "0O"):
		base = 8
		digits = digits[2:]
	}
	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, errIntLitTooPositive(text, span)
	}
	return value, nil
}

func decodeTextLit(raw string, span Span) (string, error) {
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var out strings.Builder
	out.Grow(len(body))
	for ii := 0; ii < len(body); ii++ {
		c := body[ii]
		if c != '\\' {
			out.WriteByte(c)
			continue
		}
		ii++
		if ii >= len(body) {
			return "", errInvalidEscape(raw, span)
		}
		switch body[ii] {
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case 't':
			out.WriteByte('\t')
		case '0':
			out.WriteByte(0)
		case '\\':
			out.WriteByte('\\')
		case '"':
			out.WriteByte('"')
		case '\'':
			out.WriteByte('\'')
		case 'x':
			if ii+2 >= len(body) {
				return "", errInvalidEscape(raw, span)
			}
			hi := hexDigit(body[ii+1])
			lo := hexDigit(body[ii+2])
			if hi < 0 || lo < 0 {
				return "", errInvalidEscape(raw, span)
			}
			out.WriteByte(byte(hi<<4 | lo))
			ii += 2
		default:
			return "", errInvalidEscape(raw, span)
		}
	}
	return out.String(), nil
}

func decodeBytesLit(raw string, span Span) ([]byte, error) {
	body := raw[2 : len(raw)-1] // strip b" and "
	var out []byte
	hi := -1
	for ii := 0; ii < len(body); ii++ {
		c := body[ii]
		if c == ' ' || c == '\t' {
			if hi >= 0 {
				return nil, errInvalidBytesLit(raw, span)
			}
			continue
		}
		d := hexDigit(c)
		if d < 0 {
			return nil, errInvalidBytesLit(raw, span)
		}
		if hi < 0 {
			hi = d
		} else {
			out = append(out, byte(hi<<4|d))
			hi = -1
		}
	}
	if hi >= 0 {
		return nil, errInvalidBytesLit(raw, span)
	}
	return out, nil
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
